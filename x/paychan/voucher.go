package paychan

import (
	"math/big"
	"sync"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/crypto"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/orm"
)

// AuthorizedAmount is a voucher: the sender's signed statement that the
// recipient may withdraw up to Amount from the channel. Amounts are
// cumulative, so every new voucher supersedes all previous ones.
type AuthorizedAmount struct {
	ChannelID []byte            `protobuf:"bytes,1,opt,name=channel_id,json=channelId,proto3" json:"channel_id,omitempty"`
	Amount    []byte            `protobuf:"bytes,2,opt,name=amount,proto3" json:"amount,omitempty"`
	Signature *crypto.Signature `protobuf:"bytes,3,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *AuthorizedAmount) Reset()         { *m = AuthorizedAmount{} }
func (m *AuthorizedAmount) String() string { return proto.CompactTextString(m) }
func (*AuthorizedAmount) ProtoMessage()    {}

var _ orm.Model = (*AuthorizedAmount)(nil)

// Authorize returns a voucher for given cumulative amount over the channel
// with given ID, signed by the sender key.
func Authorize(sender crypto.Signer, channelID []byte, amount *big.Int) (*AuthorizedAmount, error) {
	if len(channelID) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "channel ID")
	}
	hash, err := SignableHash(ChannelAddress(channelID), amount)
	if err != nil {
		return nil, err
	}
	sig, err := sender.SignDigest(hash)
	if err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	raw, err := unichan.EncodeAmount(amount)
	if err != nil {
		return nil, err
	}
	return &AuthorizedAmount{ChannelID: channelID, Amount: raw, Signature: sig}, nil
}

// Validate ensures the voucher is well formed. It does not check who signed
// it.
func (m *AuthorizedAmount) Validate() error {
	var errs error
	if len(m.ChannelID) == 0 {
		errs = errors.Append(errs,
			errors.Field("ChannelID", errors.ErrEmpty, "missing channel ID"))
	}
	if len(m.Amount) > unichan.AmountSize {
		errs = errors.Append(errs,
			errors.Field("Amount", errors.ErrOverflow, "%d bytes", len(m.Amount)))
	}
	errs = errors.AppendField(errs, "Signature", m.Signature.Validate())
	return errs
}

// PaymentAmount returns the authorized cumulative amount.
func (m *AuthorizedAmount) PaymentAmount() *big.Int {
	return new(big.Int).SetBytes(m.Amount)
}

// Channel returns the channel identity this voucher is bound to.
func (m *AuthorizedAmount) Channel() unichan.Address {
	return ChannelAddress(m.ChannelID)
}

// Verify returns nil if the voucher is well formed and signed by given
// sender.
func (m *AuthorizedAmount) Verify(sender unichan.Address) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return VerifyPayment(m.Channel(), m.PaymentAmount(), m.Signature, sender)
}

// CloseMsg returns the message that settles the channel using this
// voucher.
func (m *AuthorizedAmount) CloseMsg() *CloseMsg {
	return &CloseMsg{
		ChannelID: m.ChannelID,
		Amount:    m.Amount,
		Signature: m.Signature,
	}
}

// VoucherStore is kept by a recipient. For every channel it holds only the
// best voucher received so far.
type VoucherStore struct {
	mu     sync.Mutex
	db     unichan.KVStore
	bucket orm.ModelBucket
}

// NewVoucherStore returns a store that keeps vouchers in given database.
func NewVoucherStore(db unichan.KVStore) *VoucherStore {
	return &VoucherStore{
		db:     db,
		bucket: orm.NewModelBucket("voucher", &AuthorizedAmount{}),
	}
}

// Accept verifies given voucher against the channel state and keeps it if it
// authorizes more than any voucher accepted before. A voucher for more than
// the channel deposit is refused because it can never be redeemed.
func (s *VoucherStore) Accept(ch *Channel, v *AuthorizedAmount) error {
	if !ch.Address.Equals(v.Channel()) {
		return errors.Wrap(errors.ErrInput, "voucher for another channel")
	}
	if err := v.Verify(ch.Sender); err != nil {
		return err
	}
	amount := v.PaymentAmount()
	if amount.Cmp(ch.DepositAmount()) > 0 {
		return errors.Wrapf(errors.ErrInsufficientEscrow, "%s authorized, %s deposited", amount, ch.DepositAmount())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	best, err := s.best(v.ChannelID)
	if err != nil {
		return err
	}
	if best != nil && amount.Cmp(best.PaymentAmount()) <= 0 {
		return errors.Wrapf(errors.ErrInput, "%s does not supersede %s", amount, best.PaymentAmount())
	}
	return s.bucket.Put(s.db, v.ChannelID, v)
}

// Best returns the voucher with the highest amount accepted for given
// channel, or nil if there is none.
func (s *VoucherStore) Best(channelID []byte) (*AuthorizedAmount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.best(channelID)
}

func (s *VoucherStore) best(channelID []byte) (*AuthorizedAmount, error) {
	var v AuthorizedAmount
	switch err := s.bucket.One(s.db, channelID, &v); {
	case err == nil:
		return &v, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// Forget drops the voucher of a settled channel.
func (s *VoucherStore) Forget(channelID []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.bucket.Delete(s.db, channelID)
	if errors.ErrNotFound.Is(err) {
		return nil
	}
	return err
}
