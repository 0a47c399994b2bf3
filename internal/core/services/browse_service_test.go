package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports/mocks"
)

func TestBrowseService_Execute(t *testing.T) {
	loc := time.FixedZone("test", -5*3600)
	now := time.Date(2024, 9, 10, 18, 0, 0, 0, loc)

	store := mocks.NewMockCatalogStore()
	store.Seed("userA", []domain.FileRecord{
		testRecord("1", "cat.png", "image/png", now.Add(-time.Hour)),
		testRecord("2", "dog.png", "image/png", now.Add(-2*time.Hour)),
		testRecord("3", "tax.pdf", "application/pdf", now.AddDate(0, 0, -3)),
	})
	catalog := openCatalog(t, store, userA)
	svc := NewBrowseService(catalog, mocks.FixedClock{T: now}, "")

	tests := []struct {
		name        string
		request     BrowseRequest
		wantLabels  []string
		wantMatched int
	}{
		{
			name:        "everything",
			request:     BrowseRequest{},
			wantLabels:  []string{domain.LabelToday, "September 7, 2024"},
			wantMatched: 3,
		},
		{
			name:        "images only",
			request:     BrowseRequest{Type: "image"},
			wantLabels:  []string{domain.LabelToday},
			wantMatched: 2,
		},
		{
			name:        "search",
			request:     BrowseRequest{Search: "TAX", Type: domain.TypeAll},
			wantLabels:  []string{"September 7, 2024"},
			wantMatched: 1,
		},
		{
			name:        "date",
			request:     BrowseRequest{Date: "2024-09-07"},
			wantLabels:  []string{"September 7, 2024"},
			wantMatched: 1,
		},
		{
			name:        "no match",
			request:     BrowseRequest{Search: "zzz"},
			wantLabels:  nil,
			wantMatched: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Execute(context.Background(), tt.request)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}

			var labels []string
			for _, b := range resp.Buckets {
				labels = append(labels, b.Label)
			}
			if !reflect.DeepEqual(labels, tt.wantLabels) {
				t.Errorf("labels = %v, want %v", labels, tt.wantLabels)
			}
			if resp.Matched != tt.wantMatched {
				t.Errorf("Matched = %d, want %d", resp.Matched, tt.wantMatched)
			}
			if resp.Total != 3 {
				t.Errorf("Total = %d, want 3", resp.Total)
			}
			if !reflect.DeepEqual(resp.Types, []string{"all", "image", "application"}) {
				t.Errorf("Types = %v", resp.Types)
			}
		})
	}
}

func TestBrowseService_InvalidDate(t *testing.T) {
	catalog := openCatalog(t, mocks.NewMockCatalogStore(), userA)
	svc := NewBrowseService(catalog, mocks.FixedClock{T: t0}, "")

	_, err := svc.Execute(context.Background(), BrowseRequest{Date: "10/09/2024"})
	if !errors.Is(err, domain.ErrInvalidDate) {
		t.Errorf("error = %v, want ErrInvalidDate", err)
	}
}

func TestBrowseService_DoesNotMutateCatalog(t *testing.T) {
	store := mocks.NewMockCatalogStore()
	store.Seed("userA", []domain.FileRecord{
		testRecord("1", "a.txt", "text/plain", t0),
		testRecord("2", "b.png", "image/png", t0.Add(-time.Hour)),
	})
	catalog := openCatalog(t, store, userA)
	svc := NewBrowseService(catalog, mocks.FixedClock{T: t0}, "")

	before := catalog.Records()
	svc.Execute(context.Background(), BrowseRequest{Type: "image"})
	svc.Execute(context.Background(), BrowseRequest{Search: "a"})

	if !reflect.DeepEqual(before, catalog.Records()) {
		t.Error("browsing must not change the catalog")
	}
	if store.SaveCount() != 0 {
		t.Error("browsing must not persist")
	}
}

func TestStatsService_Execute(t *testing.T) {
	store := mocks.NewMockCatalogStore()
	img := testRecord("1", "a.png", "image/png", t0)
	img.SizeBytes = 100
	img.PreviewData = "data:image/png;base64,AAAA"
	doc := testRecord("2", "b.pdf", "application/pdf", t0)
	doc.SizeBytes = 50
	doc.Note = "taxes"
	img2 := testRecord("3", "c.jpg", "image/jpeg", t0)
	img2.SizeBytes = 25
	store.Seed("userA", []domain.FileRecord{img, doc, img2})

	catalog := openCatalog(t, store, userA)
	kv := mocks.NewMockKVStore(0)
	kv.Put("k", "0123456789")

	stats, err := NewStatsService(catalog, kv, 100).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if stats.Count != 3 {
		t.Errorf("Count = %d, want 3", stats.Count)
	}
	if stats.TotalBytes != 175 {
		t.Errorf("TotalBytes = %d, want 175", stats.TotalBytes)
	}
	if stats.PreviewBytes != int64(len(img.PreviewData)) {
		t.Errorf("PreviewBytes = %d", stats.PreviewBytes)
	}
	if stats.Noted != 1 {
		t.Errorf("Noted = %d, want 1", stats.Noted)
	}
	want := []TypeStat{
		{Type: "image", Count: 2, Bytes: 125},
		{Type: "application", Count: 1, Bytes: 50},
	}
	if !reflect.DeepEqual(stats.ByType, want) {
		t.Errorf("ByType = %+v, want %+v", stats.ByType, want)
	}
	day := t0.In(time.Local).Format(domain.DateFilterLayout)
	if stats.ByDay[day] != 3 || len(stats.ByDay) != 1 {
		t.Errorf("ByDay = %v, want 3 uploads on %s", stats.ByDay, day)
	}
	if stats.StoreUsage != 11 {
		t.Errorf("StoreUsage = %d, want 11", stats.StoreUsage)
	}
	if stats.StoreKeys != 1 {
		t.Errorf("StoreKeys = %d, want 1", stats.StoreKeys)
	}
	if p := stats.QuotaPercent(); p != 11 {
		t.Errorf("QuotaPercent = %v, want 11", p)
	}
}
