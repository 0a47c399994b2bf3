package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports"
)

// IngestService converts raw blobs into catalog records
type IngestService struct {
	catalog         *CatalogService
	ids             ports.IDGenerator
	clock           ports.Clock
	logger          *slog.Logger
	maxWorkers      int
	maxPreviewBytes int64
}

// IngestOptions tunes the ingestion worker pool and preview limits
type IngestOptions struct {
	MaxWorkers      int   // concurrent image reads (default 4)
	MaxPreviewBytes int64 // raw image size limit for previews; 0 is unlimited
}

// NewIngestService creates a new ingest service
func NewIngestService(catalog *CatalogService, ids ports.IDGenerator, clock ports.Clock, logger *slog.Logger, opts IngestOptions) *IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 4
	}
	return &IngestService{
		catalog:         catalog,
		ids:             ids,
		clock:           clock,
		logger:          logger,
		maxWorkers:      opts.MaxWorkers,
		maxPreviewBytes: opts.MaxPreviewBytes,
	}
}

// IngestResult is the outcome for one input blob.
// Record is nil when the blob was dropped. When Record is set and Err wraps
// domain.ErrNotPersisted, the record is in the catalog but not yet durable.
type IngestResult struct {
	Name   string
	Record *domain.FileRecord
	Err    error
}

// Ingested reports whether the record made it into the catalog
func (r IngestResult) Ingested() bool {
	return r.Record != nil
}

// Ingest adds every blob to the catalog and returns one result per blob in
// input order. Non-image blobs are recorded immediately; image blobs are read
// concurrently and recorded when their read completes.
func (s *IngestService) Ingest(ctx context.Context, blobs []ports.Blob) []IngestResult {
	results := make([]IngestResult, len(blobs))
	p := pool.New().WithMaxGoroutines(s.maxWorkers)

	for i, blob := range blobs {
		results[i].Name = blob.Name()

		if !domain.IsImage(blob.MimeType()) {
			results[i] = s.record(ctx, blob, "")
			continue
		}

		p.Go(func() {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			preview, err := s.encodePreview(blob)
			if err != nil {
				s.logger.Warn("dropping unreadable file",
					slog.String("name", blob.Name()),
					slog.String("error", err.Error()))
				results[i].Err = err
				return
			}
			results[i] = s.record(ctx, blob, preview)
		})
	}

	p.Wait()
	return results
}

// record builds the record at the current time and appends it
func (s *IngestService) record(ctx context.Context, blob ports.Blob, preview string) IngestResult {
	res := IngestResult{Name: blob.Name()}

	rec, err := domain.NewFileRecord(s.ids.NewID(), blob.Name(), blob.MimeType(), blob.Size(), s.clock.Now(), preview)
	if err != nil {
		res.Err = err
		return res
	}

	if err := s.catalog.Append(ctx, *rec); err != nil {
		res.Err = err
		// not persisted still means appended
		if !errors.Is(err, domain.ErrNotPersisted) {
			return res
		}
	}

	res.Record = rec
	s.logger.Debug("file ingested",
		slog.String("id", rec.ID),
		slog.String("name", rec.Name),
		slog.String("type", rec.MimeType),
		slog.Int64("size", rec.SizeBytes))
	return res
}

func (s *IngestService) encodePreview(blob ports.Blob) (string, error) {
	rc, err := blob.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", blob.Name(), err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if s.maxPreviewBytes > 0 {
		r = io.LimitReader(rc, s.maxPreviewBytes+1)
	}

	preview, n, err := EncodeDataURL(blob.MimeType(), r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", blob.Name(), err)
	}
	if s.maxPreviewBytes > 0 && n > s.maxPreviewBytes {
		return "", fmt.Errorf("%w: %s exceeds %s", domain.ErrPreviewTooLarge,
			blob.Name(), domain.FormatBytes(s.maxPreviewBytes, 2))
	}
	return preview, nil
}

// EncodeDataURL reads r fully and returns it as a base64 data URL along with
// the number of raw bytes read.
func EncodeDataURL(mimeType string, r io.Reader) (string, int64, error) {
	var b strings.Builder
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")

	enc := base64.NewEncoder(base64.StdEncoding, &b)
	n, err := io.Copy(enc, r)
	if err != nil {
		return "", n, err
	}
	if err := enc.Close(); err != nil {
		return "", n, err
	}
	return b.String(), n, nil
}

// DecodeDataURL splits a base64 data URL into its mime type and content
func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return mimeType, data, nil
}
