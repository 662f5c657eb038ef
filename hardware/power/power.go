// Package power drives the interface board's 3.3V enable line through the
// GPIO character device. The line must be high before the serial port opens
// and released on shutdown; the telegram pipeline itself never touches it.
package power

import (
	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"

	"github.com/hbus/ppsmon/log2"
)

const consumerLabel = "ppsmon"

type Config struct { //nolint:maligned
	Enable bool   `hcl:"enable"`
	Chip   string `hcl:"chip"`
	Line   int    `hcl:"line"`
}

type Pin struct {
	log   *log2.Log
	chip  gpio.Chiper
	lines gpio.Lineser
	set   gpio.LineSetFunc
}

// Enable opens the GPIO line and drives it high. Returns (nil, nil) when
// disabled in config; a nil *Pin is valid and Release() does nothing.
func Enable(c Config, log *log2.Log) (*Pin, error) {
	if !c.Enable {
		return nil, nil
	}
	chip, err := gpio.Open(c.Chip, consumerLabel)
	if err != nil {
		return nil, errors.Annotatef(err, "power chip=%s", c.Chip)
	}
	lines, err := chip.OpenLines(gpio.GPIOHANDLE_REQUEST_OUTPUT, consumerLabel, uint32(c.Line))
	if err != nil {
		chip.Close()
		return nil, errors.Annotatef(err, "power line=%d", c.Line)
	}
	p := &Pin{
		log:   log,
		chip:  chip,
		lines: lines,
		set:   lines.SetFunc(uint32(c.Line)),
	}
	p.set(1)
	if err = lines.Flush(); err != nil {
		p.Release()
		return nil, errors.Annotatef(err, "power set line=%d", c.Line)
	}
	log.Debugf("power enable chip=%s line=%d", c.Chip, c.Line)
	return p, nil
}

func (p *Pin) Release() {
	if p == nil {
		return
	}
	p.set(0)
	if err := p.lines.Flush(); err != nil {
		p.log.Errorf("power release: %v", err)
	}
	p.lines.Close()
	p.chip.Close()
	p.log.Debugf("power released")
}
