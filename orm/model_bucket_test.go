package orm

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Owner []byte `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner,omitempty"`
	Count int64  `protobuf:"varint,2,opt,name=count,proto3" json:"count,omitempty"`
}

func (m *counter) Reset()         { *m = counter{} }
func (m *counter) String() string { return proto.CompactTextString(m) }
func (*counter) ProtoMessage()    {}

func (m *counter) Validate() error {
	if len(m.Owner) == 0 {
		return errors.Wrap(errors.ErrEmpty, "owner")
	}
	if m.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

type other struct {
	Name string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
}

func (m *other) Reset()          { *m = other{} }
func (m *other) String() string  { return proto.CompactTextString(m) }
func (*other) ProtoMessage()     {}
func (m *other) Validate() error { return nil }

func byOwner(m Model) ([]byte, error) {
	c, ok := m.(*counter)
	if !ok {
		return nil, errors.WithType(errors.ErrType, m)
	}
	return c.Owner, nil
}

func TestModelBucketPutOne(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("counters", &counter{})

	require.NoError(t, b.Put(db, []byte("a"), &counter{Owner: []byte("alice"), Count: 3}))

	var got counter
	require.NoError(t, b.One(db, []byte("a"), &got))
	assert.Equal(t, []byte("alice"), got.Owner)
	assert.Equal(t, int64(3), got.Count)

	err := b.One(db, []byte("missing"), &got)
	assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)

	err = b.One(db, []byte("a"), &other{})
	assert.True(t, errors.ErrType.Is(err), "got %+v", err)

	err = b.Put(db, []byte("b"), &counter{Count: 1})
	assert.True(t, errors.ErrEmpty.Is(err), "got %+v", err)

	has, err := b.Has(db, []byte("b"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestModelBucketIndex(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("counters", &counter{}).WithIndex("owner", byOwner)

	require.NoError(t, b.Put(db, []byte("1"), &counter{Owner: []byte("alice")}))
	require.NoError(t, b.Put(db, []byte("2"), &counter{Owner: []byte("bob")}))
	require.NoError(t, b.Put(db, []byte("3"), &counter{Owner: []byte("alice")}))
	// Owner that is a prefix of another owner must not match it.
	require.NoError(t, b.Put(db, []byte("4"), &counter{Owner: []byte("ali")}))

	keys, err := b.ByIndex(db, "owner", []byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("1"), []byte("3")}, keys)

	// Changing the indexed value moves the entry.
	require.NoError(t, b.Put(db, []byte("1"), &counter{Owner: []byte("bob")}))
	keys, err = b.ByIndex(db, "owner", []byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("3")}, keys)
	keys, err = b.ByIndex(db, "owner", []byte("bob"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("1"), []byte("2")}, keys)

	require.NoError(t, b.Delete(db, []byte("3")))
	keys, err = b.ByIndex(db, "owner", []byte("alice"))
	require.NoError(t, err)
	assert.Empty(t, keys)

	err = b.Delete(db, []byte("3"))
	assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)

	_, err = b.ByIndex(db, "unknown", []byte("alice"))
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("ab"), prefixEnd([]byte("aa")))
	assert.Equal(t, []byte{0x02}, prefixEnd([]byte{0x01, 0xff}))
	assert.Nil(t, prefixEnd([]byte{0xff, 0xff}))
}
