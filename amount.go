package unichan

import (
	"math/big"

	"github.com/iov-one/unichan/errors"
)

// AmountSize is the width of the canonical amount encoding. Amounts are
// unsigned 256 bit integers serialized big endian.
const AmountSize = 32

var maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 8*AmountSize), big.NewInt(1))

// ValidateAmount returns an error if given value cannot be used as an
// amount.
func ValidateAmount(a *big.Int) error {
	switch {
	case a == nil:
		return errors.Wrap(errors.ErrEmpty, "amount")
	case a.Sign() < 0:
		return errors.Wrap(errors.ErrAmount, "negative")
	case a.Cmp(maxAmount) > 0:
		return errors.Wrap(errors.ErrOverflow, "amount exceeds 256 bits")
	}
	return nil
}

// EncodeAmount returns the fixed width, big endian representation of given
// amount.
func EncodeAmount(a *big.Int) ([]byte, error) {
	if err := ValidateAmount(a); err != nil {
		return nil, err
	}
	raw := make([]byte, AmountSize)
	a.FillBytes(raw)
	return raw, nil
}

// DecodeAmount is the reverse of EncodeAmount. An empty input decodes to
// zero.
func DecodeAmount(raw []byte) (*big.Int, error) {
	if len(raw) > AmountSize {
		return nil, errors.Wrapf(errors.ErrInput, "amount of %d bytes", len(raw))
	}
	return new(big.Int).SetBytes(raw), nil
}

// ParseAmount decodes a base 10 amount representation.
func ParseAmount(s string) (*big.Int, error) {
	a, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "amount %q", s)
	}
	if err := ValidateAmount(a); err != nil {
		return nil, err
	}
	return a, nil
}
