package domain

import "errors"

var (
	// ErrRecordNotFound is returned when no record has the requested id
	ErrRecordNotFound = errors.New("file not found")

	// ErrDuplicateID is returned when an appended record reuses an existing id
	ErrDuplicateID = errors.New("duplicate file id")

	// ErrInvalidName is returned for empty or oversized display names
	ErrInvalidName = errors.New("invalid file name")

	// ErrInvalidDate is returned for date filters that are not YYYY-MM-DD
	ErrInvalidDate = errors.New("invalid date filter")

	// ErrNoSession is returned when the catalog is used before Open
	ErrNoSession = errors.New("no catalog session open")

	// ErrNotSignedIn is returned when no identity is available
	ErrNotSignedIn = errors.New("not signed in")

	// ErrNotPersisted wraps storage write failures. The in-memory catalog
	// still holds the change.
	ErrNotPersisted = errors.New("change not persisted")

	// ErrQuotaExceeded is returned by key-value stores when a write would
	// exceed their capacity
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrPreviewTooLarge is returned when an encoded image preview exceeds
	// the configured limit
	ErrPreviewTooLarge = errors.New("preview too large")
)
