package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports"
)

// CatalogService owns the catalog of one identity for the length of a session.
// Every mutation is applied in memory and persisted under a single lock, so
// concurrent ingestion completions never interleave with edits or deletes.
type CatalogService struct {
	store  ports.CatalogStore
	logger *slog.Logger

	mu       sync.Mutex
	identity *domain.Identity
	records  []domain.FileRecord
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store ports.CatalogStore, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		store:  store,
		logger: logger,
	}
}

// UpdateRequest carries the mutable fields of a record. Nil fields are left unchanged.
type UpdateRequest struct {
	Name *string
	Note *string
}

// Open loads the catalog of identity, replacing whatever was held before.
// Backend failures are logged and the session starts with an empty catalog.
func (s *CatalogService) Open(ctx context.Context, identity domain.Identity) error {
	if identity.UID == "" {
		return domain.ErrNotSignedIn
	}

	records, err := s.store.Load(ctx, identity)
	if err != nil {
		s.logger.Error("failed to load catalog",
			slog.String("uid", identity.UID),
			slog.String("error", err.Error()))
		records = nil
	}
	if records == nil {
		records = []domain.FileRecord{}
	}
	domain.SortByUploadDesc(records)
	if n := reassignDuplicateIDs(records); n > 0 {
		s.logger.Warn("catalog had duplicate ids, reassigned",
			slog.String("uid", identity.UID),
			slog.Int("count", n))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := identity
	s.identity = &id
	s.records = records

	s.logger.Debug("catalog opened",
		slog.String("uid", identity.UID),
		slog.Int("records", len(records)))
	return nil
}

// Identity returns the identity of the open session
func (s *CatalogService) Identity() (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return domain.Identity{}, domain.ErrNoSession
	}
	return *s.identity, nil
}

// Records returns a copy of the catalog, newest first
func (s *CatalogService) Records() []domain.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.FileRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Get retrieves a record by id
func (s *CatalogService) Get(id string) (*domain.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		rec := s.records[i]
		return &rec, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
}

// Append adds a record, restores upload order and persists
func (s *CatalogService) Append(ctx context.Context, rec domain.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return domain.ErrNoSession
	}
	if s.indexOf(rec.ID) >= 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateID, rec.ID)
	}

	s.records = append(s.records, rec)
	domain.SortByUploadDesc(s.records)

	return s.persist(ctx, "append")
}

// Update changes the name and/or note of a record and persists
func (s *CatalogService) Update(ctx context.Context, id string, req UpdateRequest) (*domain.FileRecord, error) {
	if req.Name != nil {
		if err := domain.ValidateName(*req.Name); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return nil, domain.ErrNoSession
	}
	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
	}

	if req.Name != nil {
		s.records[i].Name = *req.Name
	}
	if req.Note != nil {
		s.records[i].Note = *req.Note
	}
	updated := s.records[i]

	return &updated, s.persist(ctx, "update")
}

// Delete removes a record and persists. The order of the rest is unchanged.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return domain.ErrNoSession
	}
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
	}

	s.records = append(s.records[:i:i], s.records[i+1:]...)
	return s.persist(ctx, "delete")
}

// Clear removes every record and persists the empty catalog
func (s *CatalogService) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return 0, domain.ErrNoSession
	}
	removed := len(s.records)
	s.records = []domain.FileRecord{}
	return removed, s.persist(ctx, "clear")
}

func (s *CatalogService) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// reassignDuplicateIDs gives every record after the first holding an id a
// fresh "<id>-<n>" id, so each record can be addressed on its own.
// Records must already be in upload order so the result is stable.
func reassignDuplicateIDs(records []domain.FileRecord) int {
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		seen[rec.ID] = false
	}

	reassigned := 0
	for i := range records {
		id := records[i].ID
		if !seen[id] {
			seen[id] = true
			continue
		}
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s-%d", id, n)
			if _, taken := seen[candidate]; !taken {
				records[i].ID = candidate
				seen[candidate] = true
				break
			}
		}
		reassigned++
	}
	return reassigned
}

// persist writes the full catalog. Callers hold s.mu.
// Failures leave memory as is and are returned wrapped in ErrNotPersisted.
func (s *CatalogService) persist(ctx context.Context, op string) error {
	if err := s.store.Save(ctx, *s.identity, s.records); err != nil {
		s.logger.Error("failed to save catalog",
			slog.String("op", op),
			slog.String("uid", s.identity.UID),
			slog.Int("records", len(s.records)),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", domain.ErrNotPersisted, err)
	}
	return nil
}
