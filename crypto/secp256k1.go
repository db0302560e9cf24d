package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

// Signer is the functionality we use from a private key. No serializing to
// support hardware devices as well.
type Signer interface {
	// SignDigest returns a recoverable signature over given 32 byte
	// digest.
	SignDigest(digest []byte) (*Signature, error)
	// Address returns the account address of the signing key.
	Address() unichan.Address
}

// PrivateKey is a secp256k1 private key.
type PrivateKey struct {
	key *btcec.PrivateKey
}

var _ Signer = (*PrivateKey)(nil)

// GenPrivKey returns a random new private key.
func GenPrivKey() (*PrivateKey, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}
	return &PrivateKey{key: key}, nil
}

// PrivKeyFromBytes decodes a 32 byte private key scalar.
func PrivKeyFromBytes(raw []byte) (*PrivateKey, error) {
	if len(raw) != 32 {
		return nil, errors.Wrapf(errors.ErrInput, "private key of %d bytes", len(raw))
	}
	var zero [32]byte
	if string(raw) == string(zero[:]) {
		return nil, errors.Wrap(errors.ErrInput, "zero private key")
	}
	key, _ := btcec.PrivKeyFromBytes(raw)
	return &PrivateKey{key: key}, nil
}

// PrivKeyFromSeed will deterministically generate a private key from a given
// seed. Use for deterministic keys in test cases.
func PrivKeyFromSeed(seed []byte) *PrivateKey {
	key, _ := btcec.PrivKeyFromBytes(Keccak256(seed))
	return &PrivateKey{key: key}
}

// Bytes returns the 32 byte scalar of this key.
func (p *PrivateKey) Bytes() []byte {
	return p.key.Serialize()
}

// PublicKey returns the corresponding public key.
func (p *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: p.key.PubKey()}
}

// Address returns the account address controlled by this key.
func (p *PrivateKey) Address() unichan.Address {
	return p.PublicKey().Address()
}

// SignDigest returns a recoverable signature over given digest. The digest
// is signed as is, without any further hashing.
func (p *PrivateKey) SignDigest(digest []byte) (*Signature, error) {
	if len(digest) != HashSize {
		return nil, errors.Wrapf(errors.ErrInput, "digest of %d bytes", len(digest))
	}
	// Compact format is <27 + recovery id><r><s> for uncompressed keys.
	compact := ecdsa.SignCompact(p.key, digest, false)
	return &Signature{
		Scheme: SchemeSecp256k1,
		R:      append([]byte(nil), compact[1:33]...),
		S:      append([]byte(nil), compact[33:65]...),
		V:      uint32(compact[0]),
	}, nil
}

// PublicKey is a secp256k1 public key.
type PublicKey struct {
	key *btcec.PublicKey
}

// ParsePublicKey decodes a compressed or uncompressed public key.
func ParsePublicKey(raw []byte) (*PublicKey, error) {
	key, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "public key: %s", err)
	}
	return &PublicKey{key: key}, nil
}

// Bytes returns the compressed form of this key.
func (p *PublicKey) Bytes() []byte {
	return p.key.SerializeCompressed()
}

// Address returns the last 20 bytes of the keccak256 hash of the
// uncompressed key coordinates.
func (p *PublicKey) Address() unichan.Address {
	raw := p.key.SerializeUncompressed()
	h := Keccak256(raw[1:])
	return unichan.Address(h[HashSize-unichan.AddressLength:])
}

// Equals returns true if both keys are the same point.
func (p *PublicKey) Equals(o *PublicKey) bool {
	return p.key.IsEqual(o.key)
}

func recoverSecp256k1(digest []byte, sig *Signature) (*PublicKey, error) {
	compact := make([]byte, 65)
	compact[0] = 27 + sig.RecoveryID()
	copy(compact[1:33], sig.R)
	copy(compact[33:], sig.S)

	key, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidSignature, "recover: %s", err)
	}
	return &PublicKey{key: key}, nil
}
