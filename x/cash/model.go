package cash

import (
	"math/big"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Wallet keeps the balance of a single account. The balance is a 256 bit
// unsigned integer, big endian encoded.
type Wallet struct {
	Balance []byte `protobuf:"bytes,1,opt,name=balance,proto3" json:"balance,omitempty"`
}

func (m *Wallet) Reset()         { *m = Wallet{} }
func (m *Wallet) String() string { return proto.CompactTextString(m) }
func (*Wallet) ProtoMessage()    {}

var _ orm.Model = (*Wallet)(nil)

// NewWallet returns a wallet holding given amount.
func NewWallet(amount *big.Int) (*Wallet, error) {
	raw, err := unichan.EncodeAmount(amount)
	if err != nil {
		return nil, err
	}
	return &Wallet{Balance: raw}, nil
}

// Validate ensures the balance is a valid amount.
func (m *Wallet) Validate() error {
	if len(m.Balance) > unichan.AmountSize {
		return errors.Wrapf(errors.ErrOverflow, "balance of %d bytes", len(m.Balance))
	}
	return nil
}

// Amount returns the balance of this wallet.
func (m *Wallet) Amount() *big.Int {
	return new(big.Int).SetBytes(m.Balance)
}

// NewBucket returns a bucket for wallets, keyed by account address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}
