package ports

import (
	"context"
	"io"
	"time"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
)

// KVStore defines the port for the durable key-value medium backing the
// catalog. Implementations have a finite capacity and return
// domain.ErrQuotaExceeded when a write would exceed it.
type KVStore interface {
	// Get returns the value stored under key and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set overwrites the value stored under key in one atomic write
	Set(ctx context.Context, key string, value string) error

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists all stored keys
	Keys(ctx context.Context) ([]string, error)

	// Usage returns the number of bytes currently stored
	Usage(ctx context.Context) (int64, error)

	// Close releases any underlying resources
	Close() error
}

// CatalogStore defines the port for per-identity catalog persistence
type CatalogStore interface {
	// Load returns the persisted catalog for identity.
	// A missing or unparseable payload yields an empty catalog and no error.
	Load(ctx context.Context, identity domain.Identity) ([]domain.FileRecord, error)

	// Save overwrites the persisted catalog for identity
	Save(ctx context.Context, identity domain.Identity, records []domain.FileRecord) error
}

// Blob is a raw file selected for ingestion
type Blob interface {
	Name() string
	MimeType() string
	Size() int64

	// Open returns a reader over the full content
	Open() (io.ReadCloser, error)
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique record ids
type IDGenerator interface {
	NewID() string
}

// IdentityProvider supplies the signed-in identity
type IdentityProvider interface {
	// Current returns the signed-in identity or domain.ErrNotSignedIn
	Current(ctx context.Context) (*domain.Identity, error)

	// SignIn records identity as the active session
	SignIn(ctx context.Context, identity domain.Identity) error

	// SignOut clears the active session
	SignOut(ctx context.Context) error
}

// SystemClock is the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
