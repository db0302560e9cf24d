package weavetest

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/crypto"
)

var keySeq uint64

// NewKey returns a new private key. Keys are derived from a process wide
// counter so that test runs are reproducible.
func NewKey() *crypto.PrivateKey {
	seed := make([]byte, 8)
	binary.BigEndian.PutUint64(seed, atomic.AddUint64(&keySeq, 1))
	return crypto.PrivKeyFromSeed(append([]byte("weavetest:"), seed...))
}

// NewAddress returns the address of a new private key.
func NewAddress() unichan.Address {
	return NewKey().Address()
}
