package pps

import (
	"bufio"
	"os"
	"syscall"

	"github.com/juju/errors"
)

type filePort struct {
	f      *os.File
	reader fdReader
	r      *bufio.Reader
	t2     termios2
}

func NewFilePort() *filePort { return &filePort{} }

func (p *filePort) Open(path string, baud int) (err error) {
	if p.f != nil {
		p.f.Close()
	}
	p.f, err = os.OpenFile(path, syscall.O_RDONLY|syscall.O_NOCTTY, 0600)
	if err != nil {
		return errors.Trace(err)
	}
	p.reader = fdReader{fd: p.f.Fd(), timeout: SilenceTimeout(baud)}
	p.r = bufio.NewReader(p.reader)
	if err = io_reset_termios(p.f.Fd(), &p.t2, baud); err != nil {
		p.f.Close()
		p.f = nil
		p.r = nil
		return errors.Trace(err)
	}
	return nil
}

// ReadByte returns ErrTimeoutT when the line stays idle for the silence
// window. Buffered bytes are drained before the timeout applies.
func (p *filePort) ReadByte() (byte, error) { return p.r.ReadByte() }

func (p *filePort) Close() error {
	if p.f == nil {
		return nil
	}
	err := p.f.Close()
	p.f = nil
	p.r = nil
	return err
}
