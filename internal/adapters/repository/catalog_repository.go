package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports"
)

// CatalogRepository persists each identity's catalog as one JSON document in
// a key-value store. Every Load reads the store; decoded catalogs are cached
// against the payload they came from, so an unchanged payload is not decoded
// twice and a payload written by another process is never shadowed.
type CatalogRepository struct {
	kv        ports.KVStore
	keyPrefix string
	cache     *lru.Cache[string, decodedCatalog]
	logger    *slog.Logger
}

// decodedCatalog pairs a stored payload with its decoded records
type decodedCatalog struct {
	payload string
	records []domain.FileRecord
}

// NewCatalogRepository creates a new catalog repository.
// cacheSize <= 0 uses 16 entries.
func NewCatalogRepository(kv ports.KVStore, keyPrefix string, cacheSize int, logger *slog.Logger) (*CatalogRepository, error) {
	if cacheSize <= 0 {
		cacheSize = 16
	}
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := lru.New[string, decodedCatalog](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}

	return &CatalogRepository{
		kv:        kv,
		keyPrefix: keyPrefix,
		cache:     cache,
		logger:    logger,
	}, nil
}

// Ensure it implements the interface
var _ ports.CatalogStore = (*CatalogRepository)(nil)

// Key returns the storage key for identity
func (r *CatalogRepository) Key(identity domain.Identity) string {
	return identity.StorageKey(r.keyPrefix)
}

// Load returns the persisted catalog. A missing key or an unparseable
// payload yields an empty catalog; only backend failures are returned.
func (r *CatalogRepository) Load(ctx context.Context, identity domain.Identity) ([]domain.FileRecord, error) {
	key := r.Key(identity)

	payload, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", key, err)
	}
	if !ok || payload == "" {
		r.cache.Remove(key)
		return []domain.FileRecord{}, nil
	}

	if cached, ok := r.cache.Get(key); ok && cached.payload == payload {
		return cloneRecords(cached.records), nil
	}

	var records []domain.FileRecord
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		r.logger.Warn("discarding unreadable catalog",
			slog.String("key", key),
			slog.Int("bytes", len(payload)),
			slog.String("error", err.Error()))
		return []domain.FileRecord{}, nil
	}
	if records == nil {
		records = []domain.FileRecord{}
	}

	r.cache.Add(key, decodedCatalog{payload: payload, records: cloneRecords(records)})
	return records, nil
}

// Save overwrites the persisted catalog in a single write
func (r *CatalogRepository) Save(ctx context.Context, identity domain.Identity, records []domain.FileRecord) error {
	key := r.Key(identity)

	if records == nil {
		records = []domain.FileRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	if err := r.kv.Set(ctx, key, string(data)); err != nil {
		r.cache.Remove(key)
		return fmt.Errorf("failed to write catalog %s: %w", key, err)
	}

	r.cache.Add(key, decodedCatalog{payload: string(data), records: cloneRecords(records)})
	return nil
}

// Export returns the raw persisted JSON for identity
func (r *CatalogRepository) Export(ctx context.Context, identity domain.Identity) (string, error) {
	payload, ok, err := r.kv.Get(ctx, r.Key(identity))
	if err != nil {
		return "", err
	}
	if !ok {
		return "[]", nil
	}
	return payload, nil
}

// Forget drops the persisted catalog of identity
func (r *CatalogRepository) Forget(ctx context.Context, identity domain.Identity) error {
	key := r.Key(identity)
	r.cache.Remove(key)
	return r.kv.Delete(ctx, key)
}

func cloneRecords(records []domain.FileRecord) []domain.FileRecord {
	out := make([]domain.FileRecord, len(records))
	copy(out, records)
	return out
}
