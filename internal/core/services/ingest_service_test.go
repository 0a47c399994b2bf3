package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports"
	"github.com/kamal-hamza/dx-cli/internal/core/ports/mocks"
)

func newIngestFixture(t *testing.T, opts IngestOptions) (*IngestService, *CatalogService, *mocks.MockCatalogStore) {
	t.Helper()
	store := mocks.NewMockCatalogStore()
	catalog := openCatalog(t, store, userA)
	clock := mocks.NewStepClock(t0, time.Millisecond)
	svc := NewIngestService(catalog, &mocks.SequentialIDs{}, clock, discardLogger(), opts)
	return svc, catalog, store
}

func TestIngestService_NonImage(t *testing.T) {
	svc, catalog, store := newIngestFixture(t, IngestOptions{})

	blob := mocks.NewMockBlob("report.pdf", "application/pdf", bytes.Repeat([]byte("x"), 42))
	results := svc.Ingest(context.Background(), []ports.Blob{blob})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !res.Ingested() {
		t.Fatal("expected the record to be ingested")
	}

	rec := res.Record
	if rec.PreviewData != "" {
		t.Errorf("PreviewData = %q, want empty", rec.PreviewData)
	}
	if rec.MimeType != "application/pdf" {
		t.Errorf("MimeType = %q, want application/pdf", rec.MimeType)
	}
	if rec.SizeBytes != 42 {
		t.Errorf("SizeBytes = %d, want 42", rec.SizeBytes)
	}
	if rec.Note != "" {
		t.Errorf("Note = %q, want empty", rec.Note)
	}

	if n := len(catalog.Records()); n != 1 {
		t.Errorf("catalog has %d records, want 1", n)
	}
	if n := len(store.Saved("userA")); n != 1 {
		t.Errorf("persisted catalog has %d records, want 1", n)
	}
}

func TestIngestService_ImagePreview(t *testing.T) {
	svc, _, _ := newIngestFixture(t, IngestOptions{})

	blob := mocks.NewMockBlob("cat.png", "image/png", []byte("PNGDATA"))
	results := svc.Ingest(context.Background(), []ports.Blob{blob})

	rec := results[0].Record
	if rec == nil {
		t.Fatalf("expected record, got error %v", results[0].Err)
	}
	if !strings.HasPrefix(rec.PreviewData, "data:image/png;base64,") {
		t.Errorf("PreviewData = %q, want a png data URL", rec.PreviewData)
	}
	if !strings.HasPrefix(rec.MimeType, "image/") {
		t.Errorf("MimeType = %q, want image/*", rec.MimeType)
	}

	mime, data, err := DecodeDataURL(rec.PreviewData)
	if err != nil {
		t.Fatalf("DecodeDataURL failed: %v", err)
	}
	if mime != "image/png" || string(data) != "PNGDATA" {
		t.Errorf("decoded = %q %q", mime, data)
	}
}

func TestIngestService_UnreadableImageDropped(t *testing.T) {
	svc, catalog, _ := newIngestFixture(t, IngestOptions{})

	good := mocks.NewMockBlob("a.txt", "text/plain", []byte("a"))
	bad := &mocks.MockBlob{FileName: "broken.jpg", Mime: "image/jpeg", Unreadable: true}
	img := mocks.NewMockBlob("b.gif", "image/gif", []byte("GIF"))

	results := svc.Ingest(context.Background(), []ports.Blob{good, bad, img})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Name != "a.txt" || results[1].Name != "broken.jpg" || results[2].Name != "b.gif" {
		t.Errorf("results not in input order: %q %q %q", results[0].Name, results[1].Name, results[2].Name)
	}
	if results[1].Ingested() {
		t.Error("unreadable blob should not be ingested")
	}
	if !errors.Is(results[1].Err, mocks.ErrUnreadable) {
		t.Errorf("broken.jpg error = %v, want ErrUnreadable", results[1].Err)
	}
	if !results[0].Ingested() || !results[2].Ingested() {
		t.Error("other blobs in the batch should be ingested")
	}
	if n := len(catalog.Records()); n != 2 {
		t.Errorf("catalog has %d records, want 2", n)
	}
}

func TestIngestService_SortedRegardlessOfCompletionOrder(t *testing.T) {
	svc, catalog, store := newIngestFixture(t, IngestOptions{MaxWorkers: 8})

	blobs := []ports.Blob{
		&mocks.MockBlob{FileName: "slow.png", Mime: "image/png", Content: []byte("1"), Delay: 30 * time.Millisecond},
		&mocks.MockBlob{FileName: "fast.png", Mime: "image/png", Content: []byte("2")},
		mocks.NewMockBlob("doc.txt", "text/plain", []byte("3")),
		&mocks.MockBlob{FileName: "mid.png", Mime: "image/png", Content: []byte("4"), Delay: 10 * time.Millisecond},
	}

	results := svc.Ingest(context.Background(), blobs)
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("%s: unexpected error %v", res.Name, res.Err)
		}
	}

	records := catalog.Records()
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if !domain.IsSortedByUploadDesc(records) {
		t.Error("catalog must be sorted newest first")
	}
	if !domain.IsSortedByUploadDesc(store.Saved("userA")) {
		t.Error("persisted catalog must be sorted newest first")
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		if seen[rec.ID] {
			t.Errorf("duplicate id %q", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestIngestService_PreviewLimit(t *testing.T) {
	svc, catalog, _ := newIngestFixture(t, IngestOptions{MaxPreviewBytes: 4})

	small := mocks.NewMockBlob("small.png", "image/png", []byte("1234"))
	large := mocks.NewMockBlob("large.png", "image/png", []byte("12345"))

	results := svc.Ingest(context.Background(), []ports.Blob{small, large})

	if !results[0].Ingested() {
		t.Errorf("small image should be ingested: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, domain.ErrPreviewTooLarge) {
		t.Errorf("large image error = %v, want ErrPreviewTooLarge", results[1].Err)
	}
	if n := len(catalog.Records()); n != 1 {
		t.Errorf("catalog has %d records, want 1", n)
	}
}

func TestIngestService_PersistFailureStillIngested(t *testing.T) {
	svc, catalog, store := newIngestFixture(t, IngestOptions{})
	store.SaveErr = domain.ErrQuotaExceeded

	results := svc.Ingest(context.Background(), []ports.Blob{mocks.NewMockBlob("a.txt", "text/plain", []byte("a"))})

	if !results[0].Ingested() {
		t.Fatal("record should be in the catalog even when persisting failed")
	}
	if !errors.Is(results[0].Err, domain.ErrNotPersisted) {
		t.Errorf("error = %v, want ErrNotPersisted", results[0].Err)
	}
	if n := len(catalog.Records()); n != 1 {
		t.Errorf("catalog has %d records, want 1", n)
	}
}

func TestIngestService_CancelledContext(t *testing.T) {
	svc, catalog, _ := newIngestFixture(t, IngestOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := svc.Ingest(ctx, []ports.Blob{mocks.NewMockBlob("a.png", "image/png", []byte("a"))})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", results[0].Err)
	}
	if n := len(catalog.Records()); n != 0 {
		t.Errorf("catalog has %d records, want 0", n)
	}
}

func TestIngestService_EmptyName(t *testing.T) {
	svc, _, _ := newIngestFixture(t, IngestOptions{})

	results := svc.Ingest(context.Background(), []ports.Blob{mocks.NewMockBlob("", "text/plain", nil)})
	if !errors.Is(results[0].Err, domain.ErrInvalidName) {
		t.Errorf("error = %v, want ErrInvalidName", results[0].Err)
	}
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	tests := []string{
		"",
		"http://example.com/a.png",
		"data:image/png;base64",
		"data:text/plain,hello",
		"data:image/png;base64,!!!",
	}

	for _, input := range tests {
		if _, _, err := DecodeDataURL(input); err == nil {
			t.Errorf("DecodeDataURL(%q) should fail", input)
		}
	}
}

func TestEncodeDataURL(t *testing.T) {
	got, n, err := EncodeDataURL("image/gif", strings.NewReader("hi"))
	if err != nil {
		t.Fatalf("EncodeDataURL failed: %v", err)
	}
	if got != "data:image/gif;base64,aGk=" {
		t.Errorf("EncodeDataURL = %q", got)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}
}
