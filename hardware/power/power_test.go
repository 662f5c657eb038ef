package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gpio "github.com/temoto/gpio-cdev-go"
	gpio_mock "github.com/temoto/gpio-cdev-go/mock"

	"github.com/hbus/ppsmon/log2"
)

func TestEnableDisabled(t *testing.T) {
	t.Parallel()
	p, err := Enable(Config{Enable: false}, log2.NewTest(t, log2.LDebug))
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestReleaseNil(t *testing.T) {
	t.Parallel()
	var p *Pin
	p.Release()
}

// Release must drive the line low and close both handles, also on the error
// exit paths of the caller.
func TestReleaseDrivesLineLow(t *testing.T) {
	t.Parallel()
	var sets []byte
	lines := &gpio_mock.MockLines{}
	chip := &gpio_mock.MockChip{}
	lines.On("SetFunc", uint32(17)).Return(gpio.LineSetFunc(func(v byte) { sets = append(sets, v) }))
	lines.On("Flush").Return(nil)
	lines.On("Close").Return(nil)
	chip.On("Close").Return(nil)

	p := &Pin{
		log:   log2.NewTest(t, log2.LDebug),
		chip:  chip,
		lines: lines,
		set:   lines.SetFunc(17),
	}
	p.Release()

	assert.Equal(t, []byte{0}, sets)
	lines.AssertCalled(t, "Flush")
	lines.AssertCalled(t, "Close")
	chip.AssertCalled(t, "Close")
}
