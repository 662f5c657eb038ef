package pps

// Counters are read atomically but not consistently with each other.

import (
	"expvar"
	"fmt"
)

type Stat struct {
	Telegram      expvar.Int
	Idle          expvar.Int
	LengthError   expvar.Int
	ChecksumError expvar.Int
	Unknown       expvar.Int
	Record        expvar.Int
}

func (s *Stat) String() string {
	return fmt.Sprintf(`{"telegram":%d,"idle":%d,"length_error":%d,"checksum_error":%d,"unknown":%d,"record":%d}`,
		s.Telegram.Value(), s.Idle.Value(), s.LengthError.Value(),
		s.ChecksumError.Value(), s.Unknown.Value(), s.Record.Value())
}
