package paychan

import (
	"fmt"
	"math/big"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/orm"
)

// ChannelState is the lifecycle stage of a channel. Closed and TimedOut are
// terminal.
type ChannelState int32

const (
	StateInvalid ChannelState = 0
	StateOpen    ChannelState = 1
	// StateClosed is entered when the recipient settled using a voucher.
	StateClosed ChannelState = 2
	// StateTimedOut is entered when the deposit returned to the sender
	// after the expiration.
	StateTimedOut ChannelState = 3
)

func (s ChannelState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateTimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Channel is the persisted state of a single payment channel.
type Channel struct {
	Sender    unichan.Address `protobuf:"bytes,1,opt,name=sender,proto3,casttype=github.com/iov-one/unichan.Address" json:"sender,omitempty"`
	Recipient unichan.Address `protobuf:"bytes,2,opt,name=recipient,proto3,casttype=github.com/iov-one/unichan.Address" json:"recipient,omitempty"`
	// Address is the escrow account of this channel. It is also the
	// identity every voucher is bound to.
	Address    unichan.Address  `protobuf:"bytes,3,opt,name=address,proto3,casttype=github.com/iov-one/unichan.Address" json:"address,omitempty"`
	Deposit    []byte           `protobuf:"bytes,4,opt,name=deposit,proto3" json:"deposit,omitempty"`
	Expiration unichan.UnixTime `protobuf:"varint,5,opt,name=expiration,proto3,casttype=github.com/iov-one/unichan.UnixTime" json:"expiration,omitempty"`
	CreatedAt  unichan.UnixTime `protobuf:"varint,6,opt,name=created_at,json=createdAt,proto3,casttype=github.com/iov-one/unichan.UnixTime" json:"created_at,omitempty"`
	State      ChannelState     `protobuf:"varint,7,opt,name=state,proto3,casttype=ChannelState" json:"state,omitempty"`
	// Paid is the amount transferred to the recipient on close.
	Paid []byte `protobuf:"bytes,8,opt,name=paid,proto3" json:"paid,omitempty"`
	Memo string `protobuf:"bytes,9,opt,name=memo,proto3" json:"memo,omitempty"`
}

func (m *Channel) Reset()         { *m = Channel{} }
func (m *Channel) String() string { return proto.CompactTextString(m) }
func (*Channel) ProtoMessage()    {}

var _ orm.Model = (*Channel)(nil)

// Validate ensures the channel is valid.
func (m *Channel) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Sender", m.Sender.Validate())
	errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
	errs = errors.AppendField(errs, "Address", m.Address.Validate())
	deposit, err := unichan.DecodeAmount(m.Deposit)
	if err != nil {
		errs = errors.AppendField(errs, "Deposit", err)
	} else if deposit.Sign() <= 0 {
		errs = errors.Append(errs,
			errors.Field("Deposit", errors.ErrAmount, "must be positive"))
	}
	if err := m.Expiration.Validate(); err != nil {
		errs = errors.AppendField(errs, "Expiration", err)
	} else if m.Expiration <= m.CreatedAt {
		errs = errors.Append(errs,
			errors.Field("Expiration", errors.ErrState, "must be after creation"))
	}
	paid, err := unichan.DecodeAmount(m.Paid)
	if err != nil {
		errs = errors.AppendField(errs, "Paid", err)
	} else if deposit != nil && paid.Cmp(deposit) > 0 {
		errs = errors.Append(errs,
			errors.Field("Paid", errors.ErrState, "more than deposit"))
	}
	switch m.State {
	case StateOpen, StateClosed, StateTimedOut:
	default:
		errs = errors.Append(errs,
			errors.Field("State", errors.ErrState, "unknown %s", m.State))
	}
	return errs
}

// DepositAmount returns the amount locked at creation.
func (m *Channel) DepositAmount() *big.Int {
	return new(big.Int).SetBytes(m.Deposit)
}

// PaidAmount returns the amount transferred to the recipient.
func (m *Channel) PaidAmount() *big.Int {
	return new(big.Int).SetBytes(m.Paid)
}

// IsOpen returns true if no settlement happened yet.
func (m *Channel) IsOpen() bool {
	return m.State == StateOpen
}

// ChannelAddress returns an account address for a payment channel with
// given ID.
// Each payment channel deposit an initial value from sender to ensure that it
// is available to the recipient upon request. Each payment channel has a
// unique account address that can be deducted from its ID.
func ChannelAddress(channelID []byte) unichan.Address {
	return unichan.NewCondition("paychan", "seq", channelID).Address()
}

const (
	indexSender    = "sender"
	indexRecipient = "recipient"
)

// NewBucket returns a bucket for storing Channel state, indexed by both
// parties.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("paychan", &Channel{}).
		WithIndex(indexSender, func(m orm.Model) ([]byte, error) {
			ch, ok := m.(*Channel)
			if !ok {
				return nil, errors.WithType(errors.ErrModel, m)
			}
			return ch.Sender, nil
		}).
		WithIndex(indexRecipient, func(m orm.Model) ([]byte, error) {
			ch, ok := m.(*Channel)
			if !ok {
				return nil, errors.WithType(errors.ErrModel, m)
			}
			return ch.Recipient, nil
		})
}
