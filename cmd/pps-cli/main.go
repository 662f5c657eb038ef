// pps-cli decodes PPS/H-Bus telegrams typed or piped in as hex, useful to
// study bus captures without a live serial port.
//
// Commands:
//
//	@FD080000000007D024  decode a 9 byte frame (last byte is the checksum)
//	sum@FD080000000007D0 compute the checksum of an 8 byte telegram
//	log=yes|no         toggle debug logging
package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/juju/errors"

	"github.com/hbus/ppsmon/hardware/pps"
	"github.com/hbus/ppsmon/helpers/cli"
	"github.com/hbus/ppsmon/log2"
)

var log = log2.NewStderr(log2.LInfo)

func main() {
	log.SetFlags(log2.LInteractiveFlags)
	cli.MainLoop("pps-cli", newExecutor(), newCompleter())
}

func newExecutor() func(string) {
	return func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		if err := execLine(line); err != nil {
			log.Errorf("error: %v", err)
		}
	}
}

func execLine(line string) error {
	switch {
	case line == "help":
		fmt.Print(`@XX..XX   decode hex frame (9 bytes with checksum, or 8 without)
sum@XX..  checksum of hex telegram
log=yes   toggle debug logging
`)
		return nil

	case line == "log=yes":
		log.SetLevel(log2.LDebug)
		return nil
	case line == "log=no":
		log.SetLevel(log2.LInfo)
		return nil

	case strings.HasPrefix(line, "sum@"):
		bs, err := parseHex(line[4:])
		if err != nil {
			return err
		}
		fmt.Printf("sum=%02x\n", pps.Checksum(bs))
		return nil

	case strings.HasPrefix(line, "@"):
		bs, err := parseHex(line[1:])
		if err != nil {
			return err
		}
		frame := bs
		if len(bs) == pps.TelegramLength {
			frame = append(bs, pps.Checksum(bs))
		}
		t, err := pps.ParseFrame(frame)
		if err != nil {
			return err
		}
		if t == nil {
			fmt.Println("idle")
			return nil
		}
		r := pps.Decode(t)
		log.Debugf("frame=%x", frame)
		if !r.Known {
			fmt.Printf("unknown %s\n", t.Format())
			return nil
		}
		fmt.Printf("%s = %s (raw=%d)\n", r.Label, r.Value, r.Raw)
		return nil
	}
	return errors.Errorf("unknown command line=%s", line)
}

func parseHex(s string) ([]byte, error) {
	s = strings.Replace(s, " ", "", -1)
	bs, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Annotatef(err, "invalid hex input=%s", s)
	}
	return bs, nil
}

func newCompleter() func(d prompt.Document) []prompt.Suggest {
	suggests := []prompt.Suggest{
		{Text: "help"},
		{Text: "log=yes", Description: "enable debug logging"},
		{Text: "log=no", Description: "disable debug logging"},
		{Text: "@", Description: "decode hex frame"},
		{Text: "sum@", Description: "checksum of hex telegram"},
	}
	return func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterFuzzy(suggests, d.GetWordBeforeCursor(), true)
	}
}
