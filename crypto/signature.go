package crypto

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

// Scheme tags the algorithm a signature was produced with.
type Scheme int32

const (
	SchemeUnknown Scheme = 0
	// SchemeSecp256k1 is an ECDSA secp256k1 signature with a recovery
	// discriminant.
	SchemeSecp256k1 Scheme = 1
)

func (s Scheme) String() string {
	switch s {
	case SchemeSecp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("scheme(%d)", int32(s))
	}
}

// SignatureSize is the length of the r || s || v encoding.
const SignatureSize = 65

// Signature is a recoverable signature. R and S are 32 byte big endian
// integers. V is the recovery discriminant, accepted both as 0/1 and as
// 27/28.
type Signature struct {
	Scheme Scheme `protobuf:"varint,1,opt,name=scheme,proto3,casttype=Scheme" json:"scheme,omitempty"`
	R      []byte `protobuf:"bytes,2,opt,name=r,proto3" json:"r,omitempty"`
	S      []byte `protobuf:"bytes,3,opt,name=s,proto3" json:"s,omitempty"`
	V      uint32 `protobuf:"varint,4,opt,name=v,proto3" json:"v,omitempty"`
}

func (m *Signature) Reset()         { *m = Signature{} }
func (m *Signature) String() string { return proto.CompactTextString(m) }
func (*Signature) ProtoMessage()    {}

var curveOrder = btcec.S256().Params().N

// Validate returns ErrInvalidSignature if any of the components is
// malformed or out of the range accepted by the recovery algorithm.
func (m *Signature) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrInvalidSignature, "missing signature")
	}
	if m.Scheme != SchemeSecp256k1 {
		return errors.Field("Scheme", errors.ErrInvalidSignature, "unsupported %s", m.Scheme)
	}
	if len(m.R) != 32 || !inCurveOrder(m.R) {
		return errors.Field("R", errors.ErrInvalidSignature, "not a 32 byte scalar below curve order")
	}
	if len(m.S) != 32 || !inCurveOrder(m.S) {
		return errors.Field("S", errors.ErrInvalidSignature, "not a 32 byte scalar below curve order")
	}
	switch m.V {
	case 0, 1, 27, 28:
	default:
		return errors.Field("V", errors.ErrInvalidSignature, "recovery discriminant %d", m.V)
	}
	return nil
}

func inCurveOrder(raw []byte) bool {
	n := new(big.Int).SetBytes(raw)
	return n.Sign() > 0 && n.Cmp(curveOrder) < 0
}

// RecoveryID returns the normalized recovery discriminant, either 0 or 1.
func (m *Signature) RecoveryID() byte {
	if m.V >= 27 {
		return byte(m.V - 27)
	}
	return byte(m.V)
}

// Bytes returns the 65 byte r || s || v encoding with v as 27 or 28.
func (m *Signature) Bytes() []byte {
	raw := make([]byte, SignatureSize)
	copy(raw[32-len(m.R):32], m.R)
	copy(raw[64-len(m.S):64], m.S)
	raw[64] = 27 + m.RecoveryID()
	return raw
}

// ParseSignature decodes the 65 byte r || s || v encoding of a secp256k1
// signature.
func ParseSignature(raw []byte) (*Signature, error) {
	if len(raw) != SignatureSize {
		return nil, errors.Wrapf(errors.ErrInvalidSignature, "signature of %d bytes", len(raw))
	}
	sig := &Signature{
		Scheme: SchemeSecp256k1,
		R:      append([]byte(nil), raw[:32]...),
		S:      append([]byte(nil), raw[32:64]...),
		V:      uint32(raw[64]),
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	return sig, nil
}

// Recover returns the public key that produced given signature over given
// digest.
func Recover(digest []byte, sig *Signature) (*PublicKey, error) {
	if len(digest) != HashSize {
		return nil, errors.Wrapf(errors.ErrInput, "digest of %d bytes", len(digest))
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	switch sig.Scheme {
	case SchemeSecp256k1:
		return recoverSecp256k1(digest, sig)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidSignature, "unsupported %s", sig.Scheme)
	}
}

// RecoverAddress returns the address of the key that produced given
// signature over given digest.
func RecoverAddress(digest []byte, sig *Signature) (unichan.Address, error) {
	pub, err := Recover(digest, sig)
	if err != nil {
		return nil, err
	}
	return pub.Address(), nil
}
