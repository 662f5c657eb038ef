// Package pps implements the PPS/H-Bus telegram layer: byte framing by
// inter-character silence, checksum validation and opcode decoding.
package pps

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// TelegramLength is the payload of a data telegram: peer, opcode,
	// 6 data bytes. On the wire one more trailing checksum byte follows.
	TelegramLength = 8
	FrameLength    = TelegramLength + 1

	// FrameDelimiter is the line idle marker, seen as a lone one-byte frame.
	FrameDelimiter = 0x17
)

type Peer byte

const (
	PeerRoomUnit   Peer = 0xfd
	PeerController Peer = 0x1d
)

func (p Peer) Known() bool { return p == PeerRoomUnit || p == PeerController }

func (p Peer) String() string {
	switch p {
	case PeerRoomUnit:
		return "Room unit"
	case PeerController:
		return "Controller"
	}
	return fmt.Sprintf("0x%02x", byte(p))
}

// Telegram is a checksum-verified data telegram. Immutable once built.
type Telegram struct {
	b [TelegramLength]byte
}

func (t *Telegram) Bytes() []byte { return t.b[:] }
func (t *Telegram) Peer() Peer    { return Peer(t.b[0]) }
func (t *Telegram) Opcode() byte  { return t.b[1] }

// Value16 is the big-endian 16 bit value in the last two payload bytes,
// fixed-point in units of 1/64.
func (t *Telegram) Value16() uint16 { return uint16(t.b[6])<<8 | uint16(t.b[7]) }

func (t *Telegram) ValueByte() byte { return t.b[7] }

func (t *Telegram) Temp() string {
	return fmt.Sprintf("%.1f", float64(t.Value16())/64)
}

// Format renders the telegram bytes in hex with the fixed-point
// interpretation appended, for diagnostic display of unknown telegrams.
func (t *Telegram) Format() string {
	ss := make([]string, 0, TelegramLength+1)
	for _, b := range t.b {
		ss = append(ss, fmt.Sprintf("%02x", b))
	}
	ss = append(ss, fmt.Sprintf("(T=%s)", t.Temp()))
	return strings.Join(ss, " ")
}

// Checksum of telegram bytes: two's complement negation of the low byte of
// the sum, so that sum(frame[:len-1]) + frame[len-1] == 0 (mod 256).
func Checksum(bs []byte) byte {
	var sum byte
	for _, b := range bs {
		sum += b
	}
	return 0xff - sum + 1
}

type ErrInvalidLength struct {
	Length int
}

func (e ErrInvalidLength) Error() string {
	return fmt.Sprintf("pps: invalid telegram length %d", e.Length)
}

type ErrInvalidChecksum struct {
	Received byte
	Actual   byte
}

func (e ErrInvalidChecksum) Error() string {
	return fmt.Sprintf("pps: invalid checksum received=%02x actual=%02x", e.Received, e.Actual)
}

// ParseFrame validates a raw frame. Returns (nil, nil) for the one-byte idle
// marker. ErrInvalidLength and ErrInvalidChecksum are recoverable: callers
// log them and continue with the next frame.
func ParseFrame(frame []byte) (*Telegram, error) {
	switch {
	case len(frame) == 1:
		return nil, nil
	case len(frame) != FrameLength:
		return nil, ErrInvalidLength{Length: len(frame)}
	}
	chk := Checksum(frame[:TelegramLength])
	if received := frame[TelegramLength]; received != chk {
		return nil, ErrInvalidChecksum{Received: received, Actual: chk}
	}
	t := &Telegram{}
	copy(t.b[:], frame[:TelegramLength])
	return t, nil
}

func TelegramFromHex(s string) (*Telegram, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return ParseFrame(b)
}

func MustTelegramFromBytes(bs []byte) *Telegram {
	t, err := ParseFrame(bs)
	if err != nil {
		panic(err)
	}
	if t == nil {
		panic("pps: idle marker is not a telegram")
	}
	return t
}
