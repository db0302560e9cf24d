package gconf

import (
	"context"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

// ReadStore is a subset of unichan.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of unichan.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// Configuration is implemented by all protobuf configuration messages. You
// must add your own Validate method.
type Configuration interface {
	proto.Message
	Validate() error
}

func key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save will Validate the object, before writing it to a special "configuration"
// singleton for that package name.
func Save(db Store, pkg string, src Configuration) error {
	key := key(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", key)
	}
	raw, err := proto.Marshal(src)
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "marshal: key %q: %s", key, err)
	}
	return db.Set(key, raw)
}

// Load reads the configuration singleton of given package into dst.
func Load(db ReadStore, pkg string, dst proto.Message) error {
	key := key(pkg)
	raw, err := db.Get(key)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", key)
	}
	if err := proto.Unmarshal(raw, dst); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal: key %q: %s", key, err)
	}
	return nil
}

// InitConfig will take opts["conf"][pkg], parse it into the given Configuration object
// validate it, and store under the proper key in the database
// Returns an error if anything goes wrong
func InitConfig(db Store, opts unichan.Options, pkg string, conf Configuration) error {
	var confOptions unichan.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if confOptions[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "read configuration for %s", pkg)
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "save configuration for %s", pkg)
	}
	return nil
}

// OwnedConfig must have an Owner field. A configuration update must be
// authorized by the current owner in order to be applied.
type OwnedConfig interface {
	Configuration
	GetOwner() unichan.Address
}

// Update replaces the configuration of given package with conf. The
// configuration must already exist and the current owner must be one of the
// authenticated signers. dst is used to load the current configuration.
func Update(ctx context.Context, db Store, auth unichan.Authenticator, pkg string, dst, conf OwnedConfig) error {
	if err := Load(db, pkg, dst); err != nil {
		return errors.Wrap(err, "load current configuration")
	}
	owner := dst.GetOwner()
	if len(owner) == 0 {
		return errors.Wrapf(errors.ErrUnauthorized, "%s configuration has no owner", pkg)
	}
	if !auth.HasAddress(ctx, owner) {
		return errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	return Save(db, pkg, conf)
}
