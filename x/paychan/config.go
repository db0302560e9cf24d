package paychan

import (
	"context"
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/gconf"
)

const pkgName = "paychan"

// Configuration bounds the channels that can be created. Durations are in
// seconds.
type Configuration struct {
	// Owner may replace this configuration.
	Owner         unichan.Address `protobuf:"bytes,1,opt,name=owner,proto3,casttype=github.com/iov-one/unichan.Address" json:"owner,omitempty"`
	MinDuration   int64           `protobuf:"varint,2,opt,name=min_duration,json=minDuration,proto3" json:"min_duration,omitempty"`
	MaxDuration   int64           `protobuf:"varint,3,opt,name=max_duration,json=maxDuration,proto3" json:"max_duration,omitempty"`
	MaxMemoLength int32           `protobuf:"varint,4,opt,name=max_memo_length,json=maxMemoLength,proto3" json:"max_memo_length,omitempty"`
}

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

// GetOwner implements gconf.OwnedConfig interface.
func (m *Configuration) GetOwner() unichan.Address {
	return m.Owner
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

// DefaultConfiguration is used when no configuration was stored.
func DefaultConfiguration() Configuration {
	return Configuration{
		MinDuration:   1,
		MaxDuration:   int64(365 * 24 * time.Hour / time.Second),
		MaxMemoLength: 128,
	}
}

// Validate ensures the bounds are consistent.
func (m *Configuration) Validate() error {
	var errs error
	if len(m.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	}
	if m.MinDuration <= 0 {
		errs = errors.Append(errs,
			errors.Field("MinDuration", errors.ErrInput, "must be positive"))
	}
	if m.MaxDuration < m.MinDuration {
		errs = errors.Append(errs,
			errors.Field("MaxDuration", errors.ErrInput, "must not be less than minimal duration"))
	}
	if m.MaxDuration > MaxDurationLimit {
		errs = errors.Append(errs,
			errors.Field("MaxDuration", errors.ErrOverflow, "longer than %d seconds", MaxDurationLimit))
	}
	if m.MaxMemoLength < 0 {
		errs = errors.Append(errs,
			errors.Field("MaxMemoLength", errors.ErrInput, "must not be negative"))
	}
	return errs
}

// loadConfiguration returns the stored configuration or the default one if
// none was stored.
func loadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, pkgName, &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		conf = DefaultConfiguration()
		return &conf, nil
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
}

func updateConfiguration(ctx context.Context, db gconf.Store, auth unichan.Authenticator, conf *Configuration) error {
	return gconf.Update(ctx, db, auth, pkgName, &Configuration{}, conf)
}

// Initializer loads the package configuration from the genesis file. A
// missing configuration is not an error, the defaults apply.
type Initializer struct{}

var _ unichan.Initializer = Initializer{}

// FromGenesis stores the "conf.paychan" genesis section.
func (Initializer) FromGenesis(opts unichan.Options, db unichan.KVStore) error {
	var confOptions unichan.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if confOptions[pkgName] == nil {
		return nil
	}
	return gconf.InitConfig(db, opts, pkgName, &Configuration{})
}
