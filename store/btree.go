package store

import (
	"bytes"
	"sync"

	"github.com/google/btree"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

const (
	// DefaultFreeListSize is the size we hold for free node in btree
	DefaultFreeListSize = btree.DefaultFreeListSize

	degree = 2
)

// MemStore returns a simple implementation useful for tests and for running
// channels in a single process. There is no persistence here.
func MemStore() unichan.CacheableKVStore {
	return &memStore{
		bt: btree.NewWithFreeList(degree, btree.NewFreeList(DefaultFreeListSize)),
	}
}

// memStore is the root layer. All access is guarded so that a cache wrap
// being written is never observed half applied.
type memStore struct {
	mu sync.RWMutex
	bt *btree.BTree
}

var _ unichan.CacheableKVStore = (*memStore)(nil)

func (m *memStore) Get(key []byte) ([]byte, error) {
	if key == nil {
		panic("nil key")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if res, ok := m.bt.Get(bkey{key}).(setItem); ok {
		return res.value, nil
	}
	return nil, nil
}

func (m *memStore) Has(key []byte) (bool, error) {
	if key == nil {
		panic("nil key")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bt.Has(bkey{key}), nil
}

func (m *memStore) Set(key, value []byte) error {
	if key == nil {
		panic("nil key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bt.ReplaceOrInsert(newSetItem(key, value))
	return nil
}

func (m *memStore) Delete(key []byte) error {
	if key == nil {
		panic("nil key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bt.Delete(bkey{key})
	return nil
}

func (m *memStore) Iterator(start, end []byte) (unichan.Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []setItem
	ascend(m.bt, start, end, func(item btree.Item) {
		if s, ok := item.(setItem); ok {
			items = append(items, s)
		}
	})
	return &sliceIterator{items: items}, nil
}

func (m *memStore) CacheWrap() unichan.KVCacheWrap {
	return NewBTreeCacheWrap(m, nil)
}

// apply writes all operations while holding the lock once.
func (m *memStore) apply(ops []btree.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		switch o := op.(type) {
		case setItem:
			m.bt.ReplaceOrInsert(o)
		case deletedItem:
			m.bt.Delete(bkey{o.key})
		default:
			return errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", op)
		}
	}
	return nil
}

// applier is implemented by stores that can accept a whole cache content
// in one step.
type applier interface {
	apply(ops []btree.Item) error
}

// BatchWriter is implemented by stores outside of this package that can
// accept a whole cache content in one step. fn is called once with a
// writer that is only valid for the duration of the call. Readers of the
// store must observe either none or all of the writes.
type BatchWriter interface {
	WriteBatch(fn func(unichan.SetDeleter) error) error
}

///////////////////////////////////////////////
// Actual CacheWrap implementation

// BTreeCacheWrap places a btree cache over a KVStore. Reads fall through to
// the parent, writes are kept until Write is called.
type BTreeCacheWrap struct {
	bt   *btree.BTree
	free *btree.FreeList
	back unichan.KVStore
}

var _ unichan.KVCacheWrap = (*BTreeCacheWrap)(nil)

// NewBTreeCacheWrap initializes a BTree to cache around this kv store.
//
// free may be nil, but set to an existing list to reuse it
// for memory savings
func NewBTreeCacheWrap(kv unichan.KVStore, free *btree.FreeList) *BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return &BTreeCacheWrap{
		bt:   btree.NewWithFreeList(degree, free),
		free: free,
		back: kv,
	}
}

// CacheWrap layers another BTree on top of this one.
func (b *BTreeCacheWrap) CacheWrap() unichan.KVCacheWrap {
	return NewBTreeCacheWrap(b, b.free)
}

// Write syncs with the underlying store.
// And then cleans up
func (b *BTreeCacheWrap) Write() error {
	var ops []btree.Item
	b.bt.Ascend(func(item btree.Item) bool {
		ops = append(ops, item)
		return true
	})

	var err error
	switch back := b.back.(type) {
	case applier:
		err = back.apply(ops)
	case BatchWriter:
		err = back.WriteBatch(func(db unichan.SetDeleter) error {
			return writeOps(db, ops)
		})
	default:
		err = writeOps(b.back, ops)
	}
	b.Discard()
	return err
}

func writeOps(db unichan.SetDeleter, ops []btree.Item) error {
	for _, op := range ops {
		switch o := op.(type) {
		case setItem:
			if err := db.Set(o.key, o.value); err != nil {
				return err
			}
		case deletedItem:
			if err := db.Delete(o.key); err != nil {
				return err
			}
		default:
			return errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", op)
		}
	}
	return nil
}

// Discard invalidates this CacheWrap and releases all data
func (b *BTreeCacheWrap) Discard() {
	// clean up the btree -> freelist
	for stop := false; !stop; {
		rem := b.bt.DeleteMin()
		stop = (rem == nil)
	}
}

// apply lets a nested cache be written into this one.
func (b *BTreeCacheWrap) apply(ops []btree.Item) error {
	for _, op := range ops {
		b.bt.ReplaceOrInsert(op)
	}
	return nil
}

// Set writes to the BTree
func (b *BTreeCacheWrap) Set(key, value []byte) error {
	if key == nil {
		panic("nil key")
	}
	b.bt.ReplaceOrInsert(newSetItem(key, value))
	return nil
}

// Delete marks the key as deleted in the BTree
func (b *BTreeCacheWrap) Delete(key []byte) error {
	if key == nil {
		panic("nil key")
	}
	b.bt.ReplaceOrInsert(newDeletedItem(key))
	return nil
}

// Get reads from btree if there, else backing store
func (b *BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch t := res.(type) {
		case setItem:
			return t.value, nil
		case deletedItem:
			return nil, nil
		default:
			return nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Get(key)
}

// Has reads from btree if there, else backing store
func (b *BTreeCacheWrap) Has(key []byte) (bool, error) {
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch res.(type) {
		case setItem:
			return true, nil
		case deletedItem:
			return false, nil
		default:
			return false, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Has(key)
}

// Iterator over a domain of keys in ascending order.
// Combines results from btree and backing store
func (b *BTreeCacheWrap) Iterator(start, end []byte) (unichan.Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer parent.Release()

	var below []setItem
	for {
		key, value, err := parent.Next()
		if unichan.ErrIteratorDone.Is(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		below = append(below, newSetItem(key, value))
	}

	var above []btree.Item
	ascend(b.bt, start, end, func(item btree.Item) {
		above = append(above, item)
	})
	return &sliceIterator{items: combine(below, above)}, nil
}

// combine joins our results with those of the parent, taking into
// consideration overwrites and deletes. Both inputs must be sorted.
func combine(below []setItem, above []btree.Item) []setItem {
	res := make([]setItem, 0, len(below)+len(above))
	i, j := 0, 0
	for i < len(below) || j < len(above) {
		if j == len(above) {
			res = append(res, below[i])
			i++
			continue
		}
		top := above[j].(keyer).Key()
		if i < len(below) {
			cmp := bytes.Compare(below[i].key, top)
			if cmp < 0 {
				res = append(res, below[i])
				i++
				continue
			}
			if cmp == 0 {
				// Overwritten or deleted in this layer.
				i++
			}
		}
		if s, ok := above[j].(setItem); ok {
			res = append(res, s)
		}
		j++
	}
	return res
}

// ascend calls fn for every item in [start, end). Nil bounds are open.
func ascend(bt *btree.BTree, start, end []byte, fn func(btree.Item)) {
	visit := func(item btree.Item) bool {
		fn(item)
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(visit)
	case start == nil:
		bt.AscendLessThan(bkey{end}, visit)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, visit)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, visit)
	}
}

/////////////////////////////////////////////////////////
// Items to write to btree

// we enforce all data in our btree implements keyer so we
// can compare nicely
type keyer interface {
	Key() []byte
}

// bkey implements keyer and btree.Item
// and may be used for queries or embedded in data to store
type bkey struct {
	key []byte
}

var _ keyer = bkey{}
var _ btree.Item = bkey{}

func (k bkey) Key() []byte {
	return k.key
}

// Less returns true iff second argument is greater than first
//
// panics if the item to compare doesn't implement keyer.
func (k bkey) Less(item btree.Item) bool {
	cmp := item.(keyer).Key()
	return bytes.Compare(k.key, cmp) < 0
}

type deletedItem struct {
	bkey
}

func newDeletedItem(key []byte) deletedItem {
	return deletedItem{bkey{key}}
}

type setItem struct {
	bkey
	value []byte
}

func newSetItem(key, value []byte) setItem {
	return setItem{bkey{key}, value}
}
