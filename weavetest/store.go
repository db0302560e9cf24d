package weavetest

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/unichan/store/iavl"
)

// CommitKVStore returns a store instance that is using a filesystem backend
// engine to store the data. Use it instead of store.MemStore when the
// state must survive a restart. Reopen loads the same database again.
func CommitKVStore(t testing.TB) (db *iavl.CommitStore, reopen func() *iavl.CommitStore, cleanup func()) {
	t.Helper()

	dbpath, err := ioutil.TempDir("", "unichan")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}

	open := func() *iavl.CommitStore {
		db, err := iavl.NewCommitStore(dbpath, "db")
		if err != nil {
			t.Fatalf("cannot open commit store: %s", err)
		}
		return db
	}
	return open(), open, func() { os.RemoveAll(dbpath) }
}
