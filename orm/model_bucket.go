package orm

import (
	"bytes"
	"reflect"
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	proto.Message
	Validate() error
}

// IndexerFunc returns the value a model is indexed under. Returning nil
// excludes the model from the index.
type IndexerFunc func(Model) ([]byte, error)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,20}$`).MatchString

// ModelBucket operates on a single model type stored under a name prefix.
type ModelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes []index
}

type index struct {
	name   string
	prefix []byte
	fn     IndexerFunc
}

// NewModelBucket returns a bucket that persists models of the same type as
// the given example. The example is used only to learn the type.
func NewModelBucket(name string, example Model) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	return ModelBucket{
		name:   name,
		prefix: []byte(name + ":"),
		model:  reflect.TypeOf(example).Elem(),
	}
}

// WithIndex returns a copy of this bucket that maintains an additional
// secondary index.
func (b ModelBucket) WithIndex(name string, fn IndexerFunc) ModelBucket {
	if !isBucketName(name) {
		panic("invalid index name: " + name)
	}
	for _, idx := range b.indexes {
		if idx.name == name {
			panic("duplicated index name: " + name)
		}
	}
	indexes := make([]index, len(b.indexes), len(b.indexes)+1)
	copy(indexes, b.indexes)
	b.indexes = append(indexes, index{
		name:   name,
		prefix: []byte("_i." + b.name + "_" + name + ":"),
		fn:     fn,
	})
	return b
}

// Name returns the bucket name.
func (b ModelBucket) Name() string {
	return b.name
}

// Sequence returns a sequence that is namespaced to this bucket.
func (b ModelBucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// DBKey is the full key under which a model with given primary key is
// stored.
func (b ModelBucket) DBKey(key []byte) []byte {
	return append(append([]byte(nil), b.prefix...), key...)
}

// One query the database for a single model instance. Lookup is done by the
// primary index key. Result is loaded into given destination model.
// This method returns ErrNotFound if the entity does not exist in the
// database.
func (b ModelBucket) One(db unichan.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest).Elem() != b.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", dest, b.model)
	}
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "get")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	if err := proto.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot unmarshal %s: %s", b.name, err)
	}
	return nil
}

// Has returns true if an entity with given primary key exists.
func (b ModelBucket) Has(db unichan.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Put saves given model in the database. Model is validated before being
// written and all indexes are updated.
func (b ModelBucket) Put(db unichan.KVStore, key []byte, m Model) error {
	if reflect.TypeOf(m).Elem() != b.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be stored in %s", m, b.name)
	}
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}

	var old Model
	if len(b.indexes) > 0 {
		prev, err := b.load(db, key)
		if err != nil {
			return err
		}
		old = prev
	}

	raw, err := proto.Marshal(m)
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot marshal %s: %s", b.name, err)
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "set")
	}
	return b.updateIndexes(db, key, old, m)
}

// Delete removes an entity with given primary key from the database.
// It returns ErrNotFound if an entity with given key does not exist.
func (b ModelBucket) Delete(db unichan.KVStore, key []byte) error {
	old, err := b.load(db, key)
	if err != nil {
		return err
	}
	if old == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	if err := db.Delete(b.DBKey(key)); err != nil {
		return errors.Wrap(err, "delete")
	}
	return b.updateIndexes(db, key, old, nil)
}

// ByIndex returns the primary keys of all models that are indexed under
// given value, in ascending order.
func (b ModelBucket) ByIndex(db unichan.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, error) {
	var idx *index
	for i := range b.indexes {
		if b.indexes[i].name == indexName {
			idx = &b.indexes[i]
			break
		}
	}
	if idx == nil {
		return nil, errors.Wrapf(errors.ErrInput, "no %q index in %s", indexName, b.name)
	}

	start := idx.entryPrefix(value)
	it, err := db.Iterator(start, prefixEnd(start))
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	defer it.Release()

	var keys [][]byte
	for {
		key, _, err := it.Next()
		if unichan.ErrIteratorDone.Is(err) {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, append([]byte(nil), key[len(start):]...))
	}
}

func (b ModelBucket) load(db unichan.ReadOnlyKVStore, key []byte) (Model, error) {
	m := reflect.New(b.model).Interface().(Model)
	switch err := b.One(db, key, m); {
	case err == nil:
		return m, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

func (b ModelBucket) updateIndexes(db unichan.KVStore, key []byte, old, cur Model) error {
	for _, idx := range b.indexes {
		var before, after []byte
		var err error
		if old != nil {
			if before, err = idx.fn(old); err != nil {
				return errors.Wrapf(err, "index %s", idx.name)
			}
		}
		if cur != nil {
			if after, err = idx.fn(cur); err != nil {
				return errors.Wrapf(err, "index %s", idx.name)
			}
		}
		if before != nil && (cur == nil || !bytes.Equal(before, after)) {
			if err := db.Delete(idx.entryKey(before, key)); err != nil {
				return errors.Wrapf(err, "index %s", idx.name)
			}
		}
		if after != nil {
			if err := db.Set(idx.entryKey(after, key), []byte{}); err != nil {
				return errors.Wrapf(err, "index %s", idx.name)
			}
		}
	}
	return nil
}

// entryPrefix encodes the indexed value together with its length so that
// values that are prefixes of each other never collide.
func (idx index) entryPrefix(value []byte) []byte {
	res := make([]byte, 0, len(idx.prefix)+1+len(value))
	res = append(res, idx.prefix...)
	res = append(res, byte(len(value)))
	return append(res, value...)
}

func (idx index) entryKey(value, key []byte) []byte {
	return append(idx.entryPrefix(value), key...)
}

// prefixEnd returns the smallest key that is greater than all keys starting
// with given prefix. It returns nil if there is no such key.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
