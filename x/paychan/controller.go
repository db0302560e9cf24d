package paychan

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/orm"
	"github.com/iov-one/unichan/x/cash"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/tendermint/tendermint/libs/log"
)

// Controller is the authority over all payment channels kept in a database.
//
// Every transition runs to completion in an isolated cache of the database
// and is written only if it succeeded. Transitions are serialized, so close
// and timeout claims of the same channel never interleave.
type Controller struct {
	mu     sync.Mutex
	db     unichan.CacheableKVStore
	auth   unichan.Authenticator
	cash   cash.Controller
	clock  clock.Clock
	logger log.Logger
	bucket orm.ModelBucket
	ids    orm.Sequence
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for expiration checks.
func WithClock(c clock.Clock) Option {
	return func(ctrl *Controller) {
		ctrl.clock = c
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l log.Logger) Option {
	return func(ctrl *Controller) {
		ctrl.logger = l
	}
}

// NewController returns a controller that keeps channels in given database
// and funds in the ledger of given cash controller.
func NewController(db unichan.CacheableKVStore, auth unichan.Authenticator, cashctrl cash.Controller, opts ...Option) *Controller {
	bucket := NewBucket()
	c := &Controller{
		db:     db,
		auth:   auth,
		cash:   cashctrl,
		clock:  clock.NewDefaultClock(),
		logger: log.NewNopLogger(),
		bucket: bucket,
		ids:    bucket.Sequence("id"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("module", "paychan")
	return c
}

// transition runs fn in a cache wrap of the database. Changes are written
// only if fn succeeds.
func (c *Controller) transition(op string, fn func(db unichan.KVStore) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cache := c.db.CacheWrap()
	if err := protect(cache, fn); err != nil {
		cache.Discard()
		c.logger.Debug("transition rejected", "op", op, "err", err)
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "write %s: %s", op, err)
	}
	return nil
}

// protect converts a panic raised by fn into ErrPanic.
func protect(db unichan.KVStore, fn func(db unichan.KVStore) error) (err error) {
	defer errors.Recover(&err)
	return fn(db)
}

// Create opens a new channel funded by the authenticated caller and returns
// its ID. The deposit is moved to the escrow account of the channel.
func (c *Controller) Create(ctx context.Context, msg *CreateMsg) ([]byte, error) {
	sender := unichan.MainSigner(ctx, c.auth)
	if sender == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}

	var id []byte
	err := c.transition("create", func(db unichan.KVStore) error {
		conf, err := loadConfiguration(db)
		if err != nil {
			return err
		}
		if err := msg.ValidateWith(conf); err != nil {
			return err
		}
		if sender.Equals(msg.Recipient) {
			return errors.Field("Recipient", errors.ErrInput, "sender cannot be the recipient")
		}

		now := unichan.Now(c.clock)
		expiration, err := now.AddSeconds(msg.Duration)
		if err != nil {
			return errors.Field("Duration", err, "expiration")
		}

		key, err := c.ids.NextVal(db)
		if err != nil {
			return errors.Wrap(err, "next id")
		}
		ch := &Channel{
			Sender:     sender,
			Recipient:  msg.Recipient,
			Address:    ChannelAddress(key),
			Deposit:    msg.Deposit,
			Expiration: expiration,
			CreatedAt:  now,
			State:      StateOpen,
			Memo:       msg.Memo,
		}
		if err := c.cash.MoveCoins(db, sender, ch.Address, msg.DepositAmount()); err != nil {
			return errors.Wrap(err, "lock deposit")
		}
		if err := c.bucket.Put(db, key, ch); err != nil {
			return errors.Wrap(err, "save channel")
		}
		id = key
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("channel created",
		"channel", fmt.Sprintf("%X", id),
		"sender", sender,
		"recipient", msg.Recipient,
		"amount", msg.DepositAmount())
	return id, nil
}

// Close settles an open channel using a voucher signed by the sender. It
// must be called by the recipient. The voucher amount is paid to the
// recipient and everything else held returns to the sender.
func (c *Controller) Close(ctx context.Context, msg *CloseMsg) error {
	var ch Channel
	err := c.transition("close", func(db unichan.KVStore) error {
		if err := c.loadOpen(db, msg.ChannelID, &ch); err != nil {
			return err
		}
		if !c.auth.HasAddress(ctx, ch.Recipient) {
			return errors.Wrap(errors.ErrUnauthorized, "only the recipient can close")
		}
		if err := msg.Validate(); err != nil {
			return err
		}

		amount := msg.PaymentAmount()
		held, err := c.cash.Balance(db, ch.Address)
		if err != nil {
			return errors.Wrap(err, "held balance")
		}
		if amount.Cmp(held) > 0 {
			return errors.Wrapf(errors.ErrInsufficientEscrow, "%s requested, %s held", amount, held)
		}
		if err := VerifyPayment(ch.Address, amount, msg.Signature, ch.Sender); err != nil {
			return err
		}

		if err := c.cash.MoveCoins(db, ch.Address, ch.Recipient, amount); err != nil {
			return errors.Wrap(err, "pay recipient")
		}
		rest := new(big.Int).Sub(held, amount)
		if err := c.cash.MoveCoins(db, ch.Address, ch.Sender, rest); err != nil {
			return errors.Wrap(err, "refund sender")
		}

		paid, err := unichan.EncodeAmount(amount)
		if err != nil {
			return err
		}
		ch.State = StateClosed
		ch.Paid = paid
		return c.bucket.Put(db, msg.ChannelID, &ch)
	})
	if err != nil {
		return err
	}
	c.logger.Info("channel closed",
		"channel", fmt.Sprintf("%X", msg.ChannelID),
		"sender", ch.Sender,
		"recipient", ch.Recipient,
		"amount", ch.PaidAmount())
	return nil
}

// ClaimTimeout returns everything held by an expired channel to its sender.
// Anyone can call it. The channel expires at its expiration time inclusive.
func (c *Controller) ClaimTimeout(ctx context.Context, msg *ClaimTimeoutMsg) error {
	var (
		ch   Channel
		held *big.Int
	)
	err := c.transition("claim timeout", func(db unichan.KVStore) error {
		if err := msg.Validate(); err != nil {
			return err
		}
		if err := c.loadOpen(db, msg.ChannelID, &ch); err != nil {
			return err
		}
		if now := c.clock.Now(); !ch.Expiration.IsExpired(now) {
			return errors.Wrapf(errors.ErrNotYetExpired, "expires at %s", ch.Expiration)
		}

		var err error
		held, err = c.cash.Balance(db, ch.Address)
		if err != nil {
			return errors.Wrap(err, "held balance")
		}
		if err := c.cash.MoveCoins(db, ch.Address, ch.Sender, held); err != nil {
			return errors.Wrap(err, "refund sender")
		}
		ch.State = StateTimedOut
		return c.bucket.Put(db, msg.ChannelID, &ch)
	})
	if err != nil {
		return err
	}
	c.logger.Info("channel timed out",
		"channel", fmt.Sprintf("%X", msg.ChannelID),
		"sender", ch.Sender,
		"recipient", ch.Recipient,
		"amount", held)
	return nil
}

func (c *Controller) loadOpen(db unichan.ReadOnlyKVStore, id []byte, ch *Channel) error {
	if len(id) == 0 {
		return errors.Field("ChannelID", errors.ErrEmpty, "missing channel ID")
	}
	if err := c.bucket.One(db, id, ch); err != nil {
		return errors.Wrap(err, "channel")
	}
	if !ch.IsOpen() {
		return errors.Wrapf(errors.ErrAlreadySettled, "channel is %s", ch.State)
	}
	return nil
}

// Channel returns the channel with given ID in any state.
func (c *Controller) Channel(id []byte) (*Channel, error) {
	var ch Channel
	if err := c.bucket.One(c.db, id, &ch); err != nil {
		return nil, errors.Wrap(err, "channel")
	}
	return &ch, nil
}

// Sender returns the address that funded the channel.
func (c *Controller) Sender(id []byte) (unichan.Address, error) {
	ch, err := c.Channel(id)
	if err != nil {
		return nil, err
	}
	return ch.Sender, nil
}

// Recipient returns the address the channel pays to.
func (c *Controller) Recipient(id []byte) (unichan.Address, error) {
	ch, err := c.Channel(id)
	if err != nil {
		return nil, err
	}
	return ch.Recipient, nil
}

// Expiration returns the time after which the deposit can be reclaimed.
func (c *Controller) Expiration(id []byte) (unichan.UnixTime, error) {
	ch, err := c.Channel(id)
	if err != nil {
		return 0, err
	}
	return ch.Expiration, nil
}

// HeldBalance returns the amount currently held by the channel escrow. It is
// zero once the channel is settled.
func (c *Controller) HeldBalance(id []byte) (*big.Int, error) {
	ch, err := c.Channel(id)
	if err != nil {
		return nil, err
	}
	return c.cash.Balance(c.db, ch.Address)
}

// ChannelsBySender returns IDs of all channels funded by given address.
func (c *Controller) ChannelsBySender(addr unichan.Address) ([][]byte, error) {
	return c.bucket.ByIndex(c.db, indexSender, addr)
}

// ChannelsByRecipient returns IDs of all channels paying to given address.
func (c *Controller) ChannelsByRecipient(addr unichan.Address) ([][]byte, error) {
	return c.bucket.ByIndex(c.db, indexRecipient, addr)
}

// Configuration returns the configuration in use.
func (c *Controller) Configuration() (*Configuration, error) {
	return loadConfiguration(c.db)
}

// UpdateConfiguration replaces the configuration. The current owner must
// authorize the change.
func (c *Controller) UpdateConfiguration(ctx context.Context, conf *Configuration) error {
	return c.transition("update configuration", func(db unichan.KVStore) error {
		return updateConfiguration(ctx, db, c.auth, conf)
	})
}
