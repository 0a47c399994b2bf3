package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
)

// MockKVStore is an in-memory implementation of the KVStore interface for testing
type MockKVStore struct {
	mu     sync.RWMutex
	data   map[string]string
	quota  int64
	sets   int
	closed bool

	// FailWrites makes every Set return ErrWriteFailed
	FailWrites bool
	// FailReads makes every Get return ErrReadFailed
	FailReads bool
}

var (
	ErrWriteFailed = errors.New("mock write failed")
	ErrReadFailed  = errors.New("mock read failed")
)

// NewMockKVStore creates a new mock store. A quota of 0 is unlimited.
func NewMockKVStore(quota int64) *MockKVStore {
	return &MockKVStore{
		data:  make(map[string]string),
		quota: quota,
	}
}

func (m *MockKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailReads {
		return "", false, ErrReadFailed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MockKVStore) Set(ctx context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return ErrWriteFailed
	}
	if m.quota > 0 {
		var used int64
		for k, v := range m.data {
			if k != key {
				used += int64(len(k) + len(v))
			}
		}
		if used+int64(len(key)+len(value)) > m.quota {
			return domain.ErrQuotaExceeded
		}
	}

	m.data[key] = value
	m.sets++
	return nil
}

func (m *MockKVStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MockKVStore) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MockKVStore) Usage(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var used int64
	for k, v := range m.data {
		used += int64(len(k) + len(v))
	}
	return used, nil
}

func (m *MockKVStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Put stores a raw value, bypassing quota and failure switches
func (m *MockKVStore) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Raw returns the raw stored value
func (m *MockKVStore) Raw(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// SetCount returns the number of successful Set calls
func (m *MockKVStore) SetCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets
}
