package weavetest

import (
	"testing"

	"github.com/iov-one/unichan"
)

// ParseAddress takes an address in a human readable format and returns its
// binary representation. This function is a test helper that is using
// unichan.ParseAddress function functionality.
func ParseAddress(t testing.TB, encodedAddress string) unichan.Address {
	t.Helper()

	addr, err := unichan.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// SequenceID returns an 8 byte big endian encoded identifier as used by
// orm sequences.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}
