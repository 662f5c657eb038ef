package pps

import (
	"github.com/juju/errors"
)

// ErrStopped is returned by ReadFrame when the stop channel fires while the
// line is idle. A partially received frame is always drained to its silence
// boundary first, so the port never holds a stale partial frame.
var ErrStopped = errors.New("pps: frame reader stopped")

// FrameReader groups bytes into raw frames. The frame boundary is silence:
// a read timeout with a non-empty buffer completes the frame. There is no
// length prefix or escape byte, so the reader resynchronizes automatically
// after any corruption once the line goes quiet.
type FrameReader struct {
	port Porter
	stop <-chan struct{}
	buf  []byte
}

func NewFrameReader(port Porter, stop <-chan struct{}) *FrameReader {
	return &FrameReader{
		port: port,
		stop: stop,
		buf:  make([]byte, 0, 2*FrameLength),
	}
}

// ReadFrame blocks until a complete frame arrives. The returned slice is
// valid until the next call. A lone FrameDelimiter byte returns immediately
// as the degenerate one-byte frame.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	fr.buf = fr.buf[:0]
	for {
		b, err := fr.port.ReadByte()
		switch {
		case err == nil:
			fr.buf = append(fr.buf, b)
			if len(fr.buf) == 1 && fr.buf[0] == FrameDelimiter {
				return fr.buf, nil
			}
		case IsTimeout(err):
			if len(fr.buf) > 0 {
				return fr.buf, nil
			}
			select {
			case <-fr.stop:
				return nil, ErrStopped
			default:
			}
		default:
			return nil, errors.Trace(err)
		}
	}
}
