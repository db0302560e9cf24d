package iavl

import (
	"sync"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

const cacheSize = 10000

// CommitStore keeps the ledger state in an iavl tree backed by a leveldb
// database. Writes go to the working tree and become durable only after
// Commit.
type CommitStore struct {
	mu   sync.RWMutex
	db   dbm.DB
	tree *iavl.MutableTree
}

var (
	_ unichan.CommitKVStore = (*CommitStore)(nil)
	_ store.BatchWriter     = (*CommitStore)(nil)
)

// NewCommitStore opens (or creates) a leveldb database called name in dir
// and loads the latest committed version from it.
func NewCommitStore(dir, name string) (*CommitStore, error) {
	db := dbm.NewDB(name, dbm.GoLevelDBBackend, dir)
	s := &CommitStore{
		db:   db,
		tree: iavl.NewMutableTree(db, cacheSize),
	}
	if err := s.LoadLatestVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewMemCommitStore returns a commit store that keeps all versions in
// memory.
func NewMemCommitStore() *CommitStore {
	db := dbm.NewMemDB()
	return &CommitStore{
		db:   db,
		tree: iavl.NewMutableTree(db, cacheSize),
	}
}

// Close releases the underlying database.
func (s *CommitStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db.Close()
}

// Get returns nil iff key doesn't exist. Panics on nil key.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	if key == nil {
		panic("nil key")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, val := s.tree.Get(key)
	return val, nil
}

// Has checks if a key exists. Panics on nil key.
func (s *CommitStore) Has(key []byte) (bool, error) {
	if key == nil {
		panic("nil key")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Has(key), nil
}

// Set writes the value into the working tree.
func (s *CommitStore) Set(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return treeWriter{s.tree}.Set(key, value)
}

// Delete removes the key from the working tree.
func (s *CommitStore) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return treeWriter{s.tree}.Delete(key)
}

// WriteBatch applies all writes of fn while holding the store lock, so a
// flushed cache wrap is never observed half applied.
func (s *CommitStore) WriteBatch(fn func(unichan.SetDeleter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(treeWriter{s.tree})
}

// treeWriter writes to the working tree without locking.
type treeWriter struct {
	tree *iavl.MutableTree
}

func (w treeWriter) Set(key, value []byte) error {
	if key == nil {
		panic("nil key")
	}
	if value == nil {
		value = []byte{}
	}
	w.tree.Set(key, value)
	return nil
}

func (w treeWriter) Delete(key []byte) error {
	if key == nil {
		panic("nil key")
	}
	w.tree.Remove(key)
	return nil
}

// Iterator returns a snapshot of the working tree in the given range.
func (s *CommitStore) Iterator(start, end []byte) (unichan.Iterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var it sliceIterator
	s.tree.IterateRange(start, end, true, func(key, value []byte) bool {
		it.items = append(it.items, item{key: key, value: value})
		return false
	})
	return &it, nil
}

// CacheWrap gives us a savepoint to perform actions. Written cache
// changes land in the working tree and are persisted by the next Commit.
func (s *CommitStore) CacheWrap() unichan.KVCacheWrap {
	return store.NewBTreeCacheWrap(s, nil)
}

// Commit saves the working tree as the next version.
func (s *CommitStore) Commit() (unichan.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return unichan.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return unichan.CommitID{Version: version, Hash: hash}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s *CommitStore) LoadLatestVersion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() unichan.CommitID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version := s.tree.Version()
	var hash []byte
	if version > 0 {
		if t, err := s.tree.GetImmutable(version); err == nil {
			hash = t.Hash()
		}
	}
	return unichan.CommitID{Version: version, Hash: hash}
}
