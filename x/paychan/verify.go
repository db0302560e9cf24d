package paychan

import (
	"math/big"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/crypto"
	"github.com/iov-one/unichan/errors"
)

// RecoverSigner returns the address of the key that produced given signature
// over the prefixed digest. ErrInvalidSignature is returned if the signature
// is malformed or no key can be recovered.
func RecoverSigner(prefixedDigest []byte, sig *crypto.Signature) (unichan.Address, error) {
	addr, err := crypto.RecoverAddress(prefixedDigest, sig)
	if err != nil {
		return nil, errors.Wrap(err, "recover signer")
	}
	return addr, nil
}

// VerifyPayment returns nil if given signature authorizes the amount over
// the channel and was produced by the expected signer. A well formed
// signature of any other key results in ErrSignatureMismatch.
func VerifyPayment(channel unichan.Address, amount *big.Int, sig *crypto.Signature, expected unichan.Address) error {
	hash, err := SignableHash(channel, amount)
	if err != nil {
		return err
	}
	signer, err := RecoverSigner(hash, sig)
	if err != nil {
		return err
	}
	if !unichan.SameHex(signer.Hex(), expected.String()) {
		return errors.Wrapf(errors.ErrSignatureMismatch, "signed by %s", signer)
	}
	return nil
}

// IsAuthorizedBy returns true if the expected signer authorized the amount
// over the channel. It has no side effects, so it can be used to check a
// voucher before it is submitted.
func IsAuthorizedBy(channel unichan.Address, amount *big.Int, sig *crypto.Signature, expected unichan.Address) bool {
	return VerifyPayment(channel, amount, sig, expected) == nil
}
