package pps

import (
	"errors"
	"log"
	"os"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	cFIONREAD = 0x541b
	cNCCS     = 19
	cTCSETSF2 = 0x402c542d
)

type ErrTimeoutT string

func (e ErrTimeoutT) Error() string { return string(e) }
func (ErrTimeoutT) Timeout() bool   { return true }

type Timeouter interface {
	Timeout() bool
}

// IsTimeout reports whether err is the normal frame-boundary condition,
// as opposed to a real I/O failure.
func IsTimeout(err error) bool {
	if e, ok := err.(Timeouter); ok {
		return e.Timeout()
	}
	return false
}

// Porter is the byte source the frame reader consumes. The bus is listen
// only: there is no write path.
type Porter interface {
	Open(path string, baud int) error
	ReadByte() (byte, error)
	Close() error
}

// SilenceTimeout is ten character-times at the given baud rate, one
// character being 10 bit-periods (8 data + start + stop).
func SilenceTimeout(baud int) time.Duration {
	return 10 * 10 * time.Second / time.Duration(baud)
}

type cc_t byte
type speed_t uint32
type tcflag_t uint32
type termios2 struct {
	c_iflag  tcflag_t    // input mode flags
	c_oflag  tcflag_t    // output mode flags
	c_cflag  tcflag_t    // control mode flags
	c_lflag  tcflag_t    // local mode flags
	c_line   cc_t        // line discipline
	c_cc     [cNCCS]cc_t // control characters
	c_ispeed speed_t     // input speed
	c_ospeed speed_t     // output speed
}

var baudTable = map[int]speed_t{
	2400: speed_t(unix.B2400),
	4800: speed_t(unix.B4800),
	9600: speed_t(unix.B9600),
}

type fdReader struct {
	fd      uintptr
	timeout time.Duration
}

func (r fdReader) Read(p []byte) (n int, err error) {
	if err = io_wait_read(r.fd, 1, r.timeout); err != nil {
		return 0, err
	}
	return syscall.Read(int(r.fd), p)
}

func ioctl(fd uintptr, op, arg uintptr) (err error) {
	r, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, op, arg)
	if errno != 0 {
		err = os.NewSyscallError("SYS_IOCTL", errno)
	} else if r != 0 {
		err = errors.New("unknown error from SYS_IOCTL")
	}
	if err != nil {
		log.Printf("debug: pps.ioctl op=%x arg=%x err=%s", op, arg, err)
	}
	return err
}

func io_wait_read(fd uintptr, min int, wait time.Duration) error {
	var out int
	tfinal := time.Now().Add(wait)
	for {
		if err := ioctl(fd, uintptr(cFIONREAD), uintptr(unsafe.Pointer(&out))); err != nil {
			return err
		}
		if out >= min {
			return nil
		}
		time.Sleep(wait / 16)
		if time.Now().After(tfinal) {
			return ErrTimeoutT("io_wait_read timeout")
		}
	}
}

func io_reset_termios(fd uintptr, t2 *termios2, baud int) error {
	speed, ok := baudTable[baud]
	if !ok {
		return errors.New("pps: unsupported baud rate")
	}
	*t2 = termios2{
		c_iflag:  unix.IGNBRK | unix.IGNPAR,
		c_cflag:  syscall.CLOCAL | syscall.CREAD | syscall.CS8,
		c_ispeed: speed,
		c_ospeed: speed,
	}
	// VMIN=0 VTIME=0: reads return what is available, timing is ours
	return io_tcsetsf2(fd, t2)
}

// set termios, flush input and output
func io_tcsetsf2(fd uintptr, t2 *termios2) error {
	return ioctl(fd, uintptr(cTCSETSF2), uintptr(unsafe.Pointer(t2)))
}
