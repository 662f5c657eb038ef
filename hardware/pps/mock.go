package pps

// Public API to script a byte source for tests: real silence timing is
// replaced by explicit timeout events, so framing tests are deterministic.

import (
	"encoding/hex"
	"io"
	"strings"

	"github.com/juju/errors"
)

type mockEvent struct {
	b       byte
	timeout bool
	err     error
}

type MockPort struct {
	pos         int
	events      []mockEvent
	opened      bool
	idleForever bool
}

// NewMockPort parses a whitespace-separated script:
//   - hex run: that many byte events, e.g. "fd280000"
//   - "-": one read timeout (inter-frame silence)
//   - "...": timeouts forever once the script is drained
//   - "!text": a fatal read error
func NewMockPort(script string) *MockPort {
	mp := &MockPort{}
	for _, token := range strings.Fields(script) {
		switch {
		case token == "-":
			mp.events = append(mp.events, mockEvent{timeout: true})
		case token == "...":
			mp.idleForever = true
		case token[0] == '!':
			mp.events = append(mp.events, mockEvent{err: errors.New(token[1:])})
		default:
			bs, err := hex.DecodeString(token)
			if err != nil {
				panic("mock port script: " + err.Error())
			}
			for _, b := range bs {
				mp.events = append(mp.events, mockEvent{b: b})
			}
		}
	}
	return mp
}

func (mp *MockPort) Open(path string, baud int) error { mp.opened = true; return nil }
func (mp *MockPort) Close() error                     { mp.opened = false; return nil }

func (mp *MockPort) ReadByte() (byte, error) {
	if mp.pos >= len(mp.events) {
		if mp.idleForever {
			return 0, ErrTimeoutT("mock silence")
		}
		return 0, io.EOF
	}
	ev := mp.events[mp.pos]
	mp.pos++
	switch {
	case ev.timeout:
		return 0, ErrTimeoutT("mock silence")
	case ev.err != nil:
		return 0, ev.err
	}
	return ev.b, nil
}

// Drained reports whether the whole script was consumed.
func (mp *MockPort) Drained() bool { return mp.pos >= len(mp.events) }
