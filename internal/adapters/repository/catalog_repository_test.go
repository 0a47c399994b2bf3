package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kamal-hamza/dx-cli/internal/adapters/kvstore"
	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports/mocks"
	"github.com/kamal-hamza/dx-cli/internal/core/services"
)

var (
	userA = domain.Identity{UID: "userA", Email: "a@example.com"}
	userB = domain.Identity{UID: "userB"}
)

func newTestRepository(t *testing.T, kv *mocks.MockKVStore) *CatalogRepository {
	t.Helper()
	repo, err := NewCatalogRepository(kv, "", 4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewCatalogRepository failed: %v", err)
	}
	return repo
}

func sampleRecords() []domain.FileRecord {
	at := time.Date(2024, 9, 10, 12, 30, 0, 123000000, time.UTC)
	return []domain.FileRecord{
		{
			ID:          "img",
			Name:        "cat.png",
			MimeType:    "image/png",
			SizeBytes:   2048,
			UploadedAt:  at,
			PreviewData: "data:image/png;base64,AAAA",
			Note:        "the cat",
		},
		{
			ID:         "doc",
			Name:       "tax.pdf",
			MimeType:   "application/pdf",
			SizeBytes:  100,
			UploadedAt: at.Add(-time.Hour),
		},
	}
}

func TestCatalogRepository_RoundTrip(t *testing.T) {
	kv := mocks.NewMockKVStore(0)
	ctx := context.Background()

	want := sampleRecords()
	if err := newTestRepository(t, kv).Save(ctx, userA, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A fresh repository has a cold cache and must decode from the store
	got, err := newTestRepository(t, kv).Load(ctx, userA)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.ID != w.ID || g.Name != w.Name || g.MimeType != w.MimeType ||
			g.SizeBytes != w.SizeBytes || g.PreviewData != w.PreviewData || g.Note != w.Note {
			t.Errorf("record %d = %+v, want %+v", i, g, w)
		}
		if !g.UploadedAt.Equal(w.UploadedAt) {
			t.Errorf("record %d UploadedAt = %v, want %v", i, g.UploadedAt, w.UploadedAt)
		}
	}
}

func TestCatalogRepository_StorageKey(t *testing.T) {
	kv := mocks.NewMockKVStore(0)
	repo := newTestRepository(t, kv)

	if err := repo.Save(context.Background(), userA, sampleRecords()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, ok := kv.Raw("driveFiles_userA")
	if !ok {
		t.Fatal("expected catalog under driveFiles_userA")
	}
	for _, field := range []string{`"id"`, `"name"`, `"type"`, `"size"`, `"uploadDate"`, `"previewUrl"`, `"note"`} {
		if !strings.Contains(raw, field) {
			t.Errorf("payload missing field %s: %s", field, raw)
		}
	}
}

func TestCatalogRepository_IdentityIsolation(t *testing.T) {
	kv := mocks.NewMockKVStore(0)
	repo := newTestRepository(t, kv)
	ctx := context.Background()

	if err := repo.Save(ctx, userA, sampleRecords()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx, userB)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("userB should see an empty catalog, got %d records", len(got))
	}
}

func TestCatalogRepository_MissingAndCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		present bool
	}{
		{name: "missing key"},
		{name: "empty value", payload: "", present: true},
		{name: "not json", payload: "{{{", present: true},
		{name: "wrong shape", payload: `{"id":"x"}`, present: true},
		{name: "null", payload: "null", present: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := mocks.NewMockKVStore(0)
			if tt.present {
				kv.Put("driveFiles_userA", tt.payload)
			}

			got, err := newTestRepository(t, kv).Load(context.Background(), userA)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("expected empty non-nil catalog, got %#v", got)
			}
		})
	}
}

func TestCatalogRepository_LegacyPayload(t *testing.T) {
	kv := mocks.NewMockKVStore(0)
	kv.Put("driveFiles_userA", `[{"id":"1","name":"a.png","type":"image/png","size":5,`+
		`"uploadDate":"2024-09-10T12:00:00.000Z","previewUrl":"data:image/png;base64,AA==","note":""}]`)

	got, err := newTestRepository(t, kv).Load(context.Background(), userA)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	want := time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC)
	if !got[0].UploadedAt.Equal(want) {
		t.Errorf("UploadedAt = %v, want %v", got[0].UploadedAt, want)
	}
	if got[0].MimeType != "image/png" || got[0].SizeBytes != 5 {
		t.Errorf("record = %+v", got[0])
	}
}

func TestCatalogRepository_ReadFailure(t *testing.T) {
	kv := mocks.NewMockKVStore(0)
	kv.FailReads = true

	if _, err := newTestRepository(t, kv).Load(context.Background(), userA); !errors.Is(err, mocks.ErrReadFailed) {
		t.Errorf("Load error = %v, want ErrReadFailed", err)
	}
}

func TestCatalogRepository_QuotaExceeded(t *testing.T) {
	kv := mocks.NewMockKVStore(300)
	repo := newTestRepository(t, kv)
	ctx := context.Background()

	small := sampleRecords()[1:]
	if err := repo.Save(ctx, userA, small); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	big := sampleRecords()
	big[0].PreviewData = "data:image/png;base64," + strings.Repeat("A", 400)
	err := repo.Save(ctx, userA, big)
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("Save error = %v, want ErrQuotaExceeded", err)
	}

	// The cache must not claim the rejected write
	got, err := repo.Load(ctx, userA)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "doc" {
		t.Errorf("expected the previously stored catalog, got %+v", got)
	}
}

func TestCatalogRepository_LoadReturnsCopy(t *testing.T) {
	kv := mocks.NewMockKVStore(0)
	repo := newTestRepository(t, kv)
	ctx := context.Background()

	repo.Save(ctx, userA, sampleRecords())

	first, _ := repo.Load(ctx, userA)
	first[0].Name = "mutated"

	second, _ := repo.Load(ctx, userA)
	if second[0].Name != "cat.png" {
		t.Errorf("cached catalog was mutated through a returned slice")
	}
}

func TestCatalogRepository_ExportAndForget(t *testing.T) {
	kv := mocks.NewMockKVStore(0)
	repo := newTestRepository(t, kv)
	ctx := context.Background()

	empty, err := repo.Export(ctx, userA)
	if err != nil || empty != "[]" {
		t.Errorf("Export of missing catalog = %q, %v", empty, err)
	}

	repo.Save(ctx, userA, sampleRecords())
	payload, err := repo.Export(ctx, userA)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if raw, _ := kv.Raw("driveFiles_userA"); payload != raw {
		t.Errorf("Export = %q, want raw payload", payload)
	}

	if err := repo.Forget(ctx, userA); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}
	if _, ok := kv.Raw("driveFiles_userA"); ok {
		t.Error("expected the key to be deleted")
	}
	got, _ := repo.Load(ctx, userA)
	if len(got) != 0 {
		t.Errorf("expected empty catalog after Forget, got %d records", len(got))
	}
}

func TestCatalogRepository_LoadSeesWritesFromOtherProcesses(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	open := func() (*CatalogRepository, *services.CatalogService) {
		store, err := kvstore.NewFileStore(dir, 0)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		repo, err := NewCatalogRepository(store, "", 4, slog.New(slog.NewTextHandler(io.Discard, nil)))
		if err != nil {
			t.Fatalf("NewCatalogRepository failed: %v", err)
		}
		catalog := services.NewCatalogService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
		if err := catalog.Open(ctx, userA); err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		return repo, catalog
	}

	seed, _ := open()
	if err := seed.Save(ctx, userA, sampleRecords()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A long-running watcher and a one-shot edit share the store
	watcherRepo, watcher := open()
	_, editor := open()

	note := "hello"
	if _, err := editor.Update(ctx, "doc", services.UpdateRequest{Note: &note}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := watcher.Open(ctx, userA); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	added := domain.FileRecord{ID: "new", Name: "new.txt", MimeType: "text/plain", UploadedAt: time.Now().UTC()}
	if err := watcher.Append(ctx, added); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := watcherRepo.Load(ctx, userA)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for _, rec := range got {
		if rec.ID == "doc" && rec.Note != "hello" {
			t.Errorf("doc note = %q, want %q", rec.Note, "hello")
		}
	}
}

func TestCatalogRepository_CacheTracksPayload(t *testing.T) {
	kv := mocks.NewMockKVStore(0)
	repo := newTestRepository(t, kv)
	ctx := context.Background()
	key := repo.Key(userA)

	if err := repo.Save(ctx, userA, sampleRecords()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	stored, _ := kv.Raw(key)
	if cached, ok := repo.cache.Get(key); !ok || cached.payload != stored {
		t.Fatal("expected the saved payload to be cached")
	}

	// Another writer replaces the payload behind the repository's back
	kv.Put(key, `[{"id":"other","name":"other.txt","type":"text/plain","size":1,"uploadDate":"2024-09-10T12:00:00.000Z","previewUrl":"","note":""}]`)

	got, err := repo.Load(ctx, userA)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "other" {
		t.Errorf("expected the replaced catalog, got %+v", got)
	}
	if cached, _ := repo.cache.Get(key); cached.records[0].ID != "other" {
		t.Error("expected the cache to follow the new payload")
	}

	kv.Delete(ctx, key)
	if got, _ := repo.Load(ctx, userA); len(got) != 0 {
		t.Errorf("expected empty catalog after delete, got %d records", len(got))
	}
	if _, ok := repo.cache.Get(key); ok {
		t.Error("expected the cache entry to be dropped with the key")
	}
}
