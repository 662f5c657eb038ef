package pps

import (
	"sort"
	"strconv"
)

// TempSentinel in the fixed-point payload means "no valid reading". Such
// telegrams decode as unknown instead of a bogus 512.0 temperature.
const TempSentinel = 0x8001

// Reading is the decoded interpretation of one telegram. Known is true only
// when both peer and opcode resolved and the value is not a sentinel. The
// telegram is retained so unknown readings can still be displayed raw.
type Reading struct {
	Telegram Telegram
	Label    string
	Value    string
	Raw      int32
	Known    bool
}

type decodeFunc func(t *Telegram) (value string, raw int32, ok bool)

func decodeTemp(t *Telegram) (string, int32, bool) {
	raw := int32(t.Value16())
	if raw == TempSentinel {
		return "", raw, false
	}
	return t.Temp(), raw, true
}

// Out-of-range index is a firmware surprise, not a data error: surface as
// unknown, never crash.
func decodeEnum(values ...string) decodeFunc {
	return func(t *Telegram) (string, int32, bool) {
		i := int(t.ValueByte())
		if i >= len(values) {
			return "", int32(i), false
		}
		return values[i], int32(i), true
	}
}

func decodeBool(t *Telegram) (string, int32, bool) {
	if t.ValueByte() != 0 {
		return "true", int32(t.ValueByte()), true
	}
	return "false", 0, true
}

func decodeCount(t *Telegram) (string, int32, bool) {
	v := t.ValueByte()
	return strconv.Itoa(int(v)), int32(v), true
}

// One entry per opcode. The historical sequential dispatch had duplicated
// branches; keying by opcode makes that bug class impossible.
var opcodeTable = map[byte]struct {
	label string
	f     decodeFunc
}{
	0x08: {"Set present room temp", decodeTemp},
	0x09: {"Set absent room temp", decodeTemp},
	0x0b: {"Set DHW temp", decodeTemp},
	0x19: {"Set room temp", decodeTemp},
	0x28: {"Actual room temp", decodeTemp},
	0x29: {"Outside temp", decodeTemp},
	0x2b: {"Actual DHW temp", decodeTemp},
	0x2c: {"Actual flow temp", decodeTemp},
	0x2e: {"Actual boiler temp", decodeTemp},
	0x48: {"Authority", decodeEnum("remote", "controller")},
	0x49: {"Mode", decodeEnum("timed", "manual", "off")},
	0x4c: {"Present", decodeBool},
	0x7c: {"Remaining absence days", decodeCount},
}

// Decode never fails; unrecognized input yields Known=false.
func Decode(t *Telegram) Reading {
	r := Reading{Telegram: *t}
	entry, ok := opcodeTable[t.Opcode()]
	if !ok {
		return r
	}
	r.Label = entry.label
	value, raw, ok := entry.f(t)
	r.Raw = raw
	if !ok {
		return r
	}
	r.Value = value
	r.Known = t.Peer().Known()
	return r
}

// Labels returns all labels the decoder can produce, sorted.
func Labels() []string {
	ls := make([]string, 0, len(opcodeTable))
	for _, entry := range opcodeTable {
		ls = append(ls, entry.label)
	}
	sort.Strings(ls)
	return ls
}
