package cash

import (
	"math/big"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/orm"
)

// Controller is the functionality needed by other extensions to move funds
// between accounts.
type Controller interface {
	// Balance returns the funds held by given account. An unknown
	// account holds nothing.
	Balance(db unichan.ReadOnlyKVStore, addr unichan.Address) (*big.Int, error)

	// MoveCoins moves the given amount from src to dest. Moving zero is a
	// no-op.
	MoveCoins(db unichan.KVStore, src, dest unichan.Address, amount *big.Int) error

	// IssueCoins creates given amount of coins on the dest account.
	IssueCoins(db unichan.KVStore, dest unichan.Address, amount *big.Int) error
}

// BaseController is a simple implementation of the Controller interface.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

// Balance returns the amount held by given account.
func (c BaseController) Balance(db unichan.ReadOnlyKVStore, addr unichan.Address) (*big.Int, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "address")
	}
	w, err := c.load(db, addr)
	if err != nil {
		return nil, err
	}
	return w.Amount(), nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db unichan.KVStore, src, dest unichan.Address, amount *big.Int) error {
	if err := unichan.ValidateAmount(amount); err != nil {
		return errors.Wrap(err, "move")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "src")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}
	if amount.Sign() == 0 {
		return nil
	}

	sender, err := c.load(db, src)
	if err != nil {
		return err
	}
	have := sender.Amount()
	if have.Cmp(amount) < 0 {
		return errors.Wrapf(errors.ErrInsufficientAmount, "account %s holds %s, need %s", src, have, amount)
	}
	if src.Equals(dest) {
		return nil
	}

	recipient, err := c.load(db, dest)
	if err != nil {
		return err
	}
	if err := c.save(db, src, have.Sub(have, amount)); err != nil {
		return err
	}
	return c.save(db, dest, new(big.Int).Add(recipient.Amount(), amount))
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db unichan.KVStore, dest unichan.Address, amount *big.Int) error {
	if err := unichan.ValidateAmount(amount); err != nil {
		return errors.Wrap(err, "issue")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}
	if amount.Sign() == 0 {
		return nil
	}
	recipient, err := c.load(db, dest)
	if err != nil {
		return err
	}
	return c.save(db, dest, new(big.Int).Add(recipient.Amount(), amount))
}

func (c BaseController) load(db unichan.ReadOnlyKVStore, addr unichan.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	default:
		return nil, errors.Wrapf(err, "wallet %s", addr)
	}
}

func (c BaseController) save(db unichan.KVStore, addr unichan.Address, amount *big.Int) error {
	w, err := NewWallet(amount)
	if err != nil {
		return errors.Wrapf(err, "wallet %s", addr)
	}
	return c.bucket.Put(db, addr, w)
}
