package unichan

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/unichan/errors"
)

// Options are the genesis options. Each extension reads its own section.
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key, and parses the json
// into the given obj. Returns an error if it cannot parse. Noop and no error
// if key is missing.
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal([]byte(msg), obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot read %q options: %s", key, err)
	}
	return nil
}

// Stream reads the values stored under a given key as a JSON array and
// calls fn with every raw element in order.
func (o Options) Stream(key string, fn func(json.RawMessage) error) error {
	var items []json.RawMessage
	if err := o.ReadOptions(key, &items); err != nil {
		return err
	}
	for i, item := range items {
		if err := fn(item); err != nil {
			return errors.Wrapf(err, "%s element %d", key, i)
		}
	}
	return nil
}

// Initializer implementations actually handle the parsing of the genesis
// file.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// ChainInitializers lets you initialize many extensions with one function.
func ChainInitializers(inits ...Initializer) Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []Initializer
}

func (c chainInitializer) FromGenesis(opts Options, kv KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}

// LoadGenesis reads the genesis document from given path.
func LoadGenesis(path string) (Options, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	var opts Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, errors.Wrap(errors.ErrInput, "cannot parse genesis")
	}
	return opts, nil
}
