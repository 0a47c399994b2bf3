package mocks

import (
	"context"
	"sync"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
)

// MockCatalogStore is an in-memory CatalogStore that keeps copies of saved catalogs
type MockCatalogStore struct {
	mu       sync.RWMutex
	catalogs map[string][]domain.FileRecord
	saves    int

	// SaveErr, when set, is returned by every Save
	SaveErr error
	// LoadErr, when set, is returned by every Load
	LoadErr error
}

func NewMockCatalogStore() *MockCatalogStore {
	return &MockCatalogStore{
		catalogs: make(map[string][]domain.FileRecord),
	}
}

func (m *MockCatalogStore) Load(ctx context.Context, identity domain.Identity) ([]domain.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	records := m.catalogs[identity.UID]
	out := make([]domain.FileRecord, len(records))
	copy(out, records)
	return out, nil
}

func (m *MockCatalogStore) Save(ctx context.Context, identity domain.Identity, records []domain.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	stored := make([]domain.FileRecord, len(records))
	copy(stored, records)
	m.catalogs[identity.UID] = stored
	m.saves++
	return nil
}

// Seed replaces the stored catalog for uid
func (m *MockCatalogStore) Seed(uid string, records []domain.FileRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs[uid] = records
}

// Saved returns the last saved catalog for uid
func (m *MockCatalogStore) Saved(uid string) []domain.FileRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.catalogs[uid]
}

// SaveCount returns the number of successful saves
func (m *MockCatalogStore) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
