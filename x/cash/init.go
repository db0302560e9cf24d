package cash

import (
	"encoding/json"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file. The balance is
// a base 10 string so that amounts wider than 64 bits can be expressed.
type GenesisAccount struct {
	Address unichan.Address `json:"address"`
	Balance string          `json:"balance"`
}

// Initializer fulfils the unichan.Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ unichan.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts unichan.Options, kv unichan.KVStore) error {
	ctrl := NewController()
	return opts.Stream(optKey, func(raw json.RawMessage) error {
		var acct GenesisAccount
		if err := json.Unmarshal(raw, &acct); err != nil {
			return errors.Wrapf(errors.ErrInput, "cannot decode account: %s", err)
		}
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrap(err, "address")
		}
		amount, err := unichan.ParseAmount(acct.Balance)
		if err != nil {
			return errors.Wrap(err, "balance")
		}
		return ctrl.IssueCoins(kv, acct.Address, amount)
	})
}
