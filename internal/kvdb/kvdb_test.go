package kvdb

import (
	"bytes"
	"errors"
	"testing"
)

func withEngines(t *testing.T, fn func(t *testing.T, db KV)) {
	for _, engine := range []string{EnginePebble, EngineLevelDB} {
		t.Run(engine, func(t *testing.T) {
			db, err := Open(engine, t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			t.Cleanup(func() { db.Close() })
			fn(t, db)
		})
	}
}

func mustCommit(t *testing.T, db KV, pairs map[string]string) {
	t.Helper()
	b := db.NewBatch()
	defer b.Close()
	for k, v := range pairs {
		if err := b.Set([]byte(k), []byte(v)); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}
}

func TestGetMissing(t *testing.T) {
	withEngines(t, func(t *testing.T, db KV) {
		_, err := db.Get([]byte("nope"))
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
}

func TestBatchCommitVisible(t *testing.T) {
	withEngines(t, func(t *testing.T, db KV) {
		mustCommit(t, db, map[string]string{"a": "1", "b": "2", "c": "3"})

		for k, want := range map[string]string{"a": "1", "b": "2", "c": "3"} {
			got, err := db.Get([]byte(k))
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != want {
				t.Errorf("Get(%q) = %q, want %q", k, got, want)
			}
		}
	})
}

func TestIteratorOrderAndBounds(t *testing.T) {
	withEngines(t, func(t *testing.T, db KV) {
		mustCommit(t, db, map[string]string{"d": "4", "a": "1", "c": "3", "b": "2", "e": "5"})

		it, err := db.NewIterator([]byte("b"), []byte("e"))
		if err != nil {
			t.Fatal(err)
		}
		defer it.Close()

		var keys []string
		for ok := it.First(); ok; ok = it.Next() {
			keys = append(keys, string(it.Key()))
		}
		if it.Error() != nil {
			t.Fatal(it.Error())
		}
		want := []string{"b", "c", "d"}
		if len(keys) != len(want) {
			t.Fatalf("ascending keys = %v, want %v", keys, want)
		}
		for i := range want {
			if keys[i] != want[i] {
				t.Fatalf("ascending keys = %v, want %v", keys, want)
			}
		}

		keys = keys[:0]
		for ok := it.Last(); ok; ok = it.Prev() {
			keys = append(keys, string(it.Key()))
		}
		want = []string{"d", "c", "b"}
		for i := range want {
			if keys[i] != want[i] {
				t.Fatalf("descending keys = %v, want %v", keys, want)
			}
		}
	})
}

func TestIteratorEmptyRange(t *testing.T) {
	withEngines(t, func(t *testing.T, db KV) {
		mustCommit(t, db, map[string]string{"a": "1"})

		it, err := db.NewIterator([]byte("x"), []byte("z"))
		if err != nil {
			t.Fatal(err)
		}
		defer it.Close()
		if it.First() {
			t.Errorf("expected empty range, got key %q", it.Key())
		}
	})
}

func TestReopenKeepsData(t *testing.T) {
	for _, engine := range []string{EnginePebble, EngineLevelDB} {
		t.Run(engine, func(t *testing.T) {
			path := t.TempDir()
			db, err := Open(engine, path)
			if err != nil {
				t.Fatal(err)
			}
			mustCommit(t, db, map[string]string{"k": "v"})
			if err := db.Close(); err != nil {
				t.Fatal(err)
			}

			db, err = Open(engine, path)
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()
			got, err := db.Get([]byte("k"))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, []byte("v")) {
				t.Errorf("after reopen Get = %q", got)
			}
		})
	}
}

func TestOpenUnknownEngine(t *testing.T) {
	if _, err := Open("rocksdb", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}
