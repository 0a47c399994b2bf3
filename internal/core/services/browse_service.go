package services

import (
	"context"
	"time"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports"
)

// BrowseService derives the filtered, date-grouped view of the open catalog
type BrowseService struct {
	catalog    *CatalogService
	clock      ports.Clock
	dateLayout string
}

// NewBrowseService creates a new browse service.
// dateLayout labels buckets older than yesterday; empty uses domain.LongDateLayout.
func NewBrowseService(catalog *CatalogService, clock ports.Clock, dateLayout string) *BrowseService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if dateLayout == "" {
		dateLayout = domain.LongDateLayout
	}
	return &BrowseService{
		catalog:    catalog,
		clock:      clock,
		dateLayout: dateLayout,
	}
}

// BrowseRequest represents the display filters
type BrowseRequest struct {
	Search string
	Type   string // domain.TypeAll when empty
	Date   string // YYYY-MM-DD or empty
}

// BrowseResponse represents the grouped projection
type BrowseResponse struct {
	Buckets []domain.Bucket
	Types   []string // available type filters over the whole catalog
	Matched int      // records passing the filters
	Total   int      // records in the catalog
}

// Execute filters the catalog and groups the matches by upload date
func (s *BrowseService) Execute(ctx context.Context, req BrowseRequest) (*BrowseResponse, error) {
	date, err := domain.ParseDateFilter(req.Date)
	if err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = domain.TypeAll
	}

	now := s.clock.Now()
	records := s.catalog.Records()

	matched := domain.Filter(records, domain.FilterOptions{
		Search:   req.Search,
		Type:     req.Type,
		Date:     date,
		Location: now.Location(),
	})

	return &BrowseResponse{
		Buckets: domain.GroupByDateLayout(matched, now, s.dateLayout),
		Types:   domain.AvailableTypes(records),
		Matched: len(matched),
		Total:   len(records),
	}, nil
}

// Now returns the reference time used for labels
func (s *BrowseService) Now() time.Time {
	return s.clock.Now()
}
