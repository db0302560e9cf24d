package unichan

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/unichan/errors"
)

type recordingInit struct {
	key  string
	seen *[]string
}

func (r recordingInit) FromGenesis(opts Options, kv KVStore) error {
	var v string
	if err := opts.ReadOptions(r.key, &v); err != nil {
		return err
	}
	*r.seen = append(*r.seen, v)
	return nil
}

func TestLoadGenesis(t *testing.T) {
	dir, err := ioutil.TempDir("", "genesis")
	if err != nil {
		t.Fatalf("cannot create directory: %s", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "genesis.json")
	if err := ioutil.WriteFile(path, []byte(`{"a": "first", "b": "second", "list": [1, 2, 3]}`), 0600); err != nil {
		t.Fatalf("cannot write genesis: %s", err)
	}

	opts, err := LoadGenesis(path)
	if err != nil {
		t.Fatalf("cannot load genesis: %s", err)
	}

	var seen []string
	chain := ChainInitializers(
		recordingInit{key: "a", seen: &seen},
		recordingInit{key: "b", seen: &seen},
		recordingInit{key: "missing", seen: &seen},
	)
	if err := chain.FromGenesis(opts, nil); err != nil {
		t.Fatalf("cannot initialize: %s", err)
	}
	if len(seen) != 3 || seen[0] != "first" || seen[1] != "second" || seen[2] != "" {
		t.Fatalf("unexpected initialization: %q", seen)
	}

	var sum int
	err = opts.Stream("list", func(raw json.RawMessage) error {
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		sum += n
		return nil
	})
	if err != nil || sum != 6 {
		t.Fatalf("unexpected stream result %d: %v", sum, err)
	}

	if err := opts.ReadOptions("a", &sum); !errors.ErrInput.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := LoadGenesis(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("missing file must fail")
	}
}
