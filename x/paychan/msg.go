package paychan

import (
	"math"
	"math/big"
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/crypto"
	"github.com/iov-one/unichan/errors"
)

// MaxDurationLimit is the longest channel duration, in seconds, that can
// still be expressed as a time.Duration.
const MaxDurationLimit = math.MaxInt64 / int64(time.Second)

// CreateMsg opens a new channel. The authenticated caller is the sender and
// funds the deposit.
type CreateMsg struct {
	Recipient unichan.Address `protobuf:"bytes,1,opt,name=recipient,proto3,casttype=github.com/iov-one/unichan.Address" json:"recipient,omitempty"`
	// Duration in seconds after which the deposit can be reclaimed.
	Duration int64  `protobuf:"varint,2,opt,name=duration,proto3" json:"duration,omitempty"`
	Deposit  []byte `protobuf:"bytes,3,opt,name=deposit,proto3" json:"deposit,omitempty"`
	Memo     string `protobuf:"bytes,4,opt,name=memo,proto3" json:"memo,omitempty"`
}

func (m *CreateMsg) Reset()         { *m = CreateMsg{} }
func (m *CreateMsg) String() string { return proto.CompactTextString(m) }
func (*CreateMsg) ProtoMessage()    {}

// NewCreateMsg returns a message opening a channel to recipient.
func NewCreateMsg(recipient unichan.Address, duration int64, deposit *big.Int, memo string) (*CreateMsg, error) {
	raw, err := unichan.EncodeAmount(deposit)
	if err != nil {
		return nil, errors.Wrap(err, "deposit")
	}
	return &CreateMsg{Recipient: recipient, Duration: duration, Deposit: raw, Memo: memo}, nil
}

// Validate checks the message without any knowledge of the configuration.
func (m *CreateMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
	if m.Duration <= 0 {
		errs = errors.Append(errs,
			errors.Field("Duration", errors.ErrInput, "must be positive"))
	} else if m.Duration > MaxDurationLimit {
		errs = errors.Append(errs,
			errors.Field("Duration", errors.ErrOverflow, "longer than %d seconds", MaxDurationLimit))
	}
	if deposit, err := unichan.DecodeAmount(m.Deposit); err != nil {
		errs = errors.AppendField(errs, "Deposit", err)
	} else if deposit.Sign() == 0 {
		errs = errors.Append(errs,
			errors.Field("Deposit", errors.ErrAmount, "must be positive"))
	}
	return errs
}

// ValidateWith checks the message against the bounds of given configuration.
func (m *CreateMsg) ValidateWith(conf *Configuration) error {
	errs := m.Validate()
	if m.Duration > 0 && m.Duration < conf.MinDuration {
		errs = errors.Append(errs,
			errors.Field("Duration", errors.ErrInput, "shorter than %d seconds", conf.MinDuration))
	}
	if m.Duration > conf.MaxDuration && m.Duration <= MaxDurationLimit {
		errs = errors.Append(errs,
			errors.Field("Duration", errors.ErrInput, "longer than %d seconds", conf.MaxDuration))
	}
	if len(m.Memo) > int(conf.MaxMemoLength) {
		errs = errors.Append(errs,
			errors.Field("Memo", errors.ErrInput, "longer than %d characters", conf.MaxMemoLength))
	}
	return errs
}

// DepositAmount returns the deposit to lock.
func (m *CreateMsg) DepositAmount() *big.Int {
	return new(big.Int).SetBytes(m.Deposit)
}

// CloseMsg settles the channel using a voucher signed by the sender. Only
// the recipient may submit it.
type CloseMsg struct {
	ChannelID []byte            `protobuf:"bytes,1,opt,name=channel_id,json=channelId,proto3" json:"channel_id,omitempty"`
	Amount    []byte            `protobuf:"bytes,2,opt,name=amount,proto3" json:"amount,omitempty"`
	Signature *crypto.Signature `protobuf:"bytes,3,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *CloseMsg) Reset()         { *m = CloseMsg{} }
func (m *CloseMsg) String() string { return proto.CompactTextString(m) }
func (*CloseMsg) ProtoMessage()    {}

// Validate ensures all fields are present and well formed.
func (m *CloseMsg) Validate() error {
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

// PaymentAmount returns the cumulative amount authorized by the voucher.
func (m *CloseMsg) PaymentAmount() *big.Int {
	return new(big.Int).SetBytes(m.Amount)
}

// ClaimTimeoutMsg returns the deposit of an expired channel to its sender.
// Anyone may submit it.
type ClaimTimeoutMsg struct {
	ChannelID []byte `protobuf:"bytes,1,opt,name=channel_id,json=channelId,proto3" json:"channel_id,omitempty"`
}

func (m *ClaimTimeoutMsg) Reset()         { *m = ClaimTimeoutMsg{} }
func (m *ClaimTimeoutMsg) String() string { return proto.CompactTextString(m) }
func (*ClaimTimeoutMsg) ProtoMessage()    {}

// Validate ensures the channel is referenced.
func (m *ClaimTimeoutMsg) Validate() error {
	if len(m.ChannelID) == 0 {
		return errors.Field("ChannelID", errors.ErrEmpty, "missing channel ID")
	}
	return nil
}
