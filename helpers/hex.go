package helpers

import "encoding/hex"

// MustHex is for tests and constants known to be valid hex.
func MustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
