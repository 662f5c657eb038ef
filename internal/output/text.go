package output

import (
	"fmt"
	"io"

	"github.com/hbus/ppsmon/hardware/pps"
)

// Text writes one line per known reading, `Room unit:  Mode: timed` style.
// ShowRaw echoes the telegram bytes after each known reading; ShowUnknown
// prints unrecognized telegrams instead of dropping them silently.
type Text struct {
	W           io.Writer
	ShowRaw     bool
	ShowUnknown bool
}

func NewText(w io.Writer, showRaw, showUnknown bool) *Text {
	return &Text{W: w, ShowRaw: showRaw, ShowUnknown: showUnknown}
}

func (t *Text) Reading(r *pps.Reading) error {
	peer := r.Telegram.Peer().String() + ":"
	if !r.Known {
		if !t.ShowUnknown {
			return nil
		}
		_, err := fmt.Fprintf(t.W, "%-11s %s\n", peer, r.Telegram.Format())
		return err
	}
	if _, err := fmt.Fprintf(t.W, "%-11s %s: %s\n", peer, r.Label, r.Value); err != nil {
		return err
	}
	if t.ShowRaw {
		if _, err := fmt.Fprintf(t.W, "%-11s %s\n", peer, r.Telegram.Format()); err != nil {
			return err
		}
	}
	return nil
}

func (t *Text) Record(rec pps.Record) error { return nil }
func (t *Text) Close() error                { return nil }
