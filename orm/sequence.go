package orm

import (
	"encoding/binary"
	"math"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

// SequenceSize is the length of every identifier produced by a Sequence.
const SequenceSize = 8

// Sequence hands out strictly increasing identifiers. Identifiers are
// fixed width big endian so that their byte order matches their numeric
// order and they can be used directly as model keys.
//
// The counter is kept in the database under
//    _s.<bucket>:<name>
// so it is subject to the same cache wrap as the models it identifies. A
// discarded transition does not consume an identifier.
type Sequence struct {
	key []byte
}

// NewSequence returns a counter bound to given bucket and name.
func NewSequence(bucket, name string) Sequence {
	return Sequence{key: []byte("_s." + bucket + ":" + name)}
}

// NextVal advances the counter and returns the new value encoded as an
// identifier. The first returned identifier is 1.
func (s *Sequence) NextVal(db unichan.KVStore) ([]byte, error) {
	n, err := s.NextInt(db)
	if err != nil {
		return nil, err
	}
	return EncodeSequence(n), nil
}

// NextInt advances the counter and returns the new value.
func (s *Sequence) NextInt(db unichan.KVStore) (uint64, error) {
	cur, err := s.Latest(db)
	if err != nil {
		return 0, err
	}
	if cur == math.MaxUint64 {
		return 0, errors.Wrapf(errors.ErrOverflow, "sequence %s", s.key)
	}
	cur++
	if err := db.Set(s.key, EncodeSequence(cur)); err != nil {
		return 0, errors.Wrap(err, "store sequence")
	}
	return cur, nil
}

// Latest returns the most recently issued value, or zero if the counter was
// never advanced.
func (s *Sequence) Latest(db unichan.ReadOnlyKVStore) (uint64, error) {
	raw, err := db.Get(s.key)
	if err != nil {
		return 0, errors.Wrap(err, "load sequence")
	}
	if raw == nil {
		return 0, nil
	}
	return DecodeSequence(raw)
}

// DecodeSequence returns the numeric value of an identifier.
func DecodeSequence(raw []byte) (uint64, error) {
	if len(raw) != SequenceSize {
		return 0, errors.Wrapf(errors.ErrInput, "sequence of %d bytes", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

// EncodeSequence returns the identifier of given sequence value.
func EncodeSequence(n uint64) []byte {
	raw := make([]byte, SequenceSize)
	binary.BigEndian.PutUint64(raw, n)
	return raw
}
