package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports"
)

// StatsService summarises the open catalog and the store's capacity
type StatsService struct {
	catalog *CatalogService
	kv      ports.KVStore
	quota   int64
}

// NewStatsService creates a new stats service. kv may be nil.
func NewStatsService(catalog *CatalogService, kv ports.KVStore, quota int64) *StatsService {
	return &StatsService{
		catalog: catalog,
		kv:      kv,
		quota:   quota,
	}
}

// TypeStat aggregates records of one primary mime category
type TypeStat struct {
	Type  string
	Count int
	Bytes int64
}

// Stats represents catalog statistics
type Stats struct {
	Count        int
	TotalBytes   int64
	PreviewBytes int64 // bytes of inline preview data
	Noted        int   // records with a note
	ByType       []TypeStat
	ByDay        map[string]int // uploads per local calendar day, YYYY-MM-DD
	StoreUsage   int64 // bytes held by the key-value store, -1 if unknown
	StoreQuota   int64 // 0 means unlimited
	StoreKeys    int   // entries sharing the quota, one per stored catalog
}

// Execute computes statistics. Types are sorted by count, then name.
func (s *StatsService) Execute(ctx context.Context) (*Stats, error) {
	records := s.catalog.Records()

	stats := &Stats{
		Count:      len(records),
		StoreUsage: -1,
		StoreQuota: s.quota,
		ByDay:      make(map[string]int),
	}
	byType := make(map[string]*TypeStat)

	for _, rec := range records {
		stats.TotalBytes += rec.SizeBytes
		stats.PreviewBytes += int64(len(rec.PreviewData))
		if rec.Note != "" {
			stats.Noted++
		}

		primary := rec.PrimaryType()
		ts, ok := byType[primary]
		if !ok {
			ts = &TypeStat{Type: primary}
			byType[primary] = ts
		}
		ts.Count++
		ts.Bytes += rec.SizeBytes

		stats.ByDay[rec.GetDisplayDate(domain.DateFilterLayout, nil)]++
	}

	for _, ts := range byType {
		stats.ByType = append(stats.ByType, *ts)
	}
	sort.Slice(stats.ByType, func(i, j int) bool {
		if stats.ByType[i].Count != stats.ByType[j].Count {
			return stats.ByType[i].Count > stats.ByType[j].Count
		}
		return stats.ByType[i].Type < stats.ByType[j].Type
	})

	if s.kv != nil {
		usage, err := s.kv.Usage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read store usage: %w", err)
		}
		stats.StoreUsage = usage

		keys, err := s.kv.Keys(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list store keys: %w", err)
		}
		stats.StoreKeys = len(keys)
	}

	return stats, nil
}

// QuotaPercent returns store usage as a percentage of the quota, or -1
func (s *Stats) QuotaPercent() float64 {
	if s.StoreQuota <= 0 || s.StoreUsage < 0 {
		return -1
	}
	return float64(s.StoreUsage) * 100 / float64(s.StoreQuota)
}
