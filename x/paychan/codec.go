package paychan

import (
	"math/big"
	"strconv"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/crypto"
	"github.com/iov-one/unichan/errors"
)

// SigningPrefix is the domain separator prepended to a payment digest before
// it is signed. It is followed by the decimal length of the digest.
const SigningPrefix = "\x19Ethereum Signed Message:\n"

// PaymentSize is the length of an encoded payment.
const PaymentSize = unichan.AddressLength + unichan.AmountSize

// EncodePayment returns the canonical encoding of a cumulative payment over
// given channel: the 20 byte channel address followed by the amount as a 32
// byte big endian integer.
func EncodePayment(channel unichan.Address, amount *big.Int) ([]byte, error) {
	if err := channel.Validate(); err != nil {
		return nil, errors.Wrap(err, "channel")
	}
	rawAmount, err := unichan.EncodeAmount(amount)
	if err != nil {
		return nil, errors.Wrap(err, "amount")
	}
	raw := make([]byte, 0, PaymentSize)
	raw = append(raw, channel...)
	return append(raw, rawAmount...), nil
}

// PaymentDigest returns the keccak256 digest of the encoded payment.
func PaymentDigest(channel unichan.Address, amount *big.Int) ([]byte, error) {
	raw, err := EncodePayment(channel, amount)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(raw), nil
}

// ApplySigningPrefix returns the hash that is signed for given digest.
func ApplySigningPrefix(digest []byte) ([]byte, error) {
	if len(digest) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "digest")
	}
	prefix := SigningPrefix + strconv.Itoa(len(digest))
	return crypto.Keccak256([]byte(prefix), digest), nil
}

// SignableHash returns the hash a sender signs to authorize given cumulative
// amount over given channel.
func SignableHash(channel unichan.Address, amount *big.Int) ([]byte, error) {
	digest, err := PaymentDigest(channel, amount)
	if err != nil {
		return nil, err
	}
	return ApplySigningPrefix(digest)
}
