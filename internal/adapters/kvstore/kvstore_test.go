package kvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports"
)

type storeFactory func(t *testing.T, quota int64) ports.KVStore

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"file": func(t *testing.T, quota int64) ports.KVStore {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "store"), quota)
			if err != nil {
				t.Fatalf("NewFileStore failed: %v", err)
			}
			return s
		},
		"sqlite": func(t *testing.T, quota int64) ports.KVStore {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "dx.db"), quota)
			if err != nil {
				t.Fatalf("NewSQLiteStore failed: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestKVStore_GetSetDelete(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t, 0)
			ctx := context.Background()

			if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
				t.Errorf("Get(missing) = ok %v, err %v", ok, err)
			}

			if err := store.Set(ctx, "driveFiles_a", `[{"id":"1"}]`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := store.Set(ctx, "driveFiles_a", `[]`); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}

			got, ok, err := store.Get(ctx, "driveFiles_a")
			if err != nil || !ok || got != "[]" {
				t.Errorf("Get = %q, %v, %v; want [] true nil", got, ok, err)
			}

			if err := store.Delete(ctx, "driveFiles_a"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := store.Delete(ctx, "driveFiles_a"); err != nil {
				t.Errorf("deleting a missing key should succeed: %v", err)
			}
			if _, ok, _ := store.Get(ctx, "driveFiles_a"); ok {
				t.Error("key still present after Delete")
			}
		})
	}
}

func TestKVStore_Keys(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t, 0)
			ctx := context.Background()

			want := []string{"driveFiles_a", "driveFiles_b/c", "other key"}
			for _, k := range want {
				if err := store.Set(ctx, k, "v"); err != nil {
					t.Fatalf("Set(%q) failed: %v", k, err)
				}
			}

			keys, err := store.Keys(ctx)
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			sort.Strings(keys)
			if !reflect.DeepEqual(keys, want) {
				t.Errorf("Keys = %v, want %v", keys, want)
			}
		})
	}
}

func TestKVStore_Quota(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t, 20)
			ctx := context.Background()

			// 1 + 9 bytes
			if err := store.Set(ctx, "a", "123456789"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			// 1 + 10 bytes would bring the total to 21
			err := store.Set(ctx, "b", "0123456789")
			if !errors.Is(err, domain.ErrQuotaExceeded) {
				t.Errorf("Set over quota = %v, want ErrQuotaExceeded", err)
			}
			if _, ok, _ := store.Get(ctx, "b"); ok {
				t.Error("rejected write must not be stored")
			}

			// Overwriting a key only counts its new size
			if err := store.Set(ctx, "a", strings.Repeat("x", 19)); err != nil {
				t.Errorf("overwrite within quota failed: %v", err)
			}

			used, err := store.Usage(ctx)
			if err != nil {
				t.Fatalf("Usage failed: %v", err)
			}
			if used != 20 {
				t.Errorf("Usage = %d, want 20", used)
			}
		})
	}
}

func TestKVStore_Persistence(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		first, _ := NewFileStore(dir, 0)
		if err := first.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		second, _ := NewFileStore(dir, 0)
		if got, ok, _ := second.Get(ctx, "k"); !ok || got != "v" {
			t.Errorf("reopened Get = %q, %v", got, ok)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dx.db")
		first, err := NewSQLiteStore(path, 0)
		if err != nil {
			t.Fatalf("NewSQLiteStore failed: %v", err)
		}
		if err := first.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		first.Close()

		second, err := NewSQLiteStore(path, 0)
		if err != nil {
			t.Fatalf("reopen failed: %v", err)
		}
		defer second.Close()
		if got, ok, _ := second.Get(ctx, "k"); !ok || got != "v" {
			t.Errorf("reopened Get = %q, %v", got, ok)
		}
	})
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewFileStore(dir, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Set(ctx, "driveFiles_a", strings.Repeat("x", i)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 file, got %d", len(entries))
	}
}

func TestFileStore_ConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// Two stores on one directory stand in for two dx processes
	first, _ := NewFileStore(dir, 0)
	second, _ := NewFileStore(dir, 0)

	values := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		store := first
		if i%2 == 1 {
			store = second
		}
		value := strings.Repeat(string(rune('a'+i)), 1000+i)
		values[value] = true

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Set(ctx, "driveFiles_a", value); err != nil {
				t.Errorf("Set failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, ok, err := first.Get(ctx, "driveFiles_a")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if !values[got] {
		t.Errorf("stored value is a mix of writes (%d bytes)", len(got))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected 1 file, got %d", len(entries))
	}
}

func TestSQLiteStore_Pragmas(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "dx.db"), 0)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	var mode string
	if err := store.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := store.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("query busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestSQLiteStore_OpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dx.db")
	if _, err := NewSQLiteStore(path, 0); err == nil {
		t.Error("expected an error for a database in a missing directory")
	}
}
