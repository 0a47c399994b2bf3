package kvstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports"
)

const fileSuffix = ".json"

// FileStore keeps one file per key in a directory.
// Writes go temp file -> fsync -> rename so a reader never sees a partial value.
// Capacity counts key and value bytes across all keys.
type FileStore struct {
	dir   string
	quota int64
	mu    sync.RWMutex
}

// NewFileStore creates the directory if needed. A quota of 0 is unlimited.
func NewFileStore(dir string, quota int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, quota: quota}, nil
}

// Ensure it implements the interface
var _ ports.KVStore = (*FileStore)(nil)

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 {
		used, err := s.usage(key)
		if err != nil {
			return err
		}
		if used+entrySize(key, int64(len(value))) > s.quota {
			return fmt.Errorf("%w: %d of %d bytes in use", domain.ErrQuotaExceeded, used, s.quota)
		}
	}

	return writeAtomic(s.path(key), []byte(value))
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if key, ok := keyFromFilename(entry); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *FileStore) Usage(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage("")
}

func (s *FileStore) Close() error {
	return nil
}

// usage sums entry sizes, skipping exclude
func (s *FileStore) usage(exclude string) (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read store directory: %w", err)
	}

	var total int64
	for _, entry := range entries {
		key, ok := keyFromFilename(entry)
		if !ok || key == exclude {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += entrySize(key, info.Size())
	}
	return total, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+fileSuffix)
}

func keyFromFilename(entry os.DirEntry) (string, bool) {
	name := entry.Name()
	if entry.IsDir() || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, fileSuffix))
	if err != nil {
		return "", false
	}
	return key, true
}

func entrySize(key string, valueLen int64) int64 {
	return int64(len(key)) + valueLen
}

// writeAtomic replaces path with data. The temp file is unique per call so
// concurrent writers never share one.
func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename: %w", err)
	}

	return nil
}
