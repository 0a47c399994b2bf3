package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FileRecord represents one cataloged file.
// JSON field names match the payloads written by the browser drive so
// catalogs exported from it load unchanged.
type FileRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MimeType    string    `json:"type"`
	SizeBytes   int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadDate"`
	PreviewData string    `json:"previewUrl"` // base64 data URL, images only
	Note        string    `json:"note"`
}

// NewFileRecord validates and builds a record.
// The upload time is normalised to UTC with millisecond precision.
func NewFileRecord(id, name, mimeType string, size int64, uploadedAt time.Time, preview string) (*FileRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("record id cannot be empty")
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("invalid size %d for %q", size, name)
	}
	if preview != "" && !IsImage(mimeType) {
		return nil, fmt.Errorf("preview data is only allowed for images, got %q", mimeType)
	}

	return &FileRecord{
		ID:          id,
		Name:        name,
		MimeType:    mimeType,
		SizeBytes:   size,
		UploadedAt:  NormalizeTimestamp(uploadedAt),
		PreviewData: preview,
		Note:        "",
	}, nil
}

// NormalizeTimestamp truncates t to milliseconds in UTC
func NormalizeTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if len(name) > 255 {
		return fmt.Errorf("%w: too long (max 255 characters)", ErrInvalidName)
	}
	return nil
}

// PrimaryType returns the part of a mime type before the slash.
// "image/png" -> "image", "" -> "".
func PrimaryType(mimeType string) string {
	primary, _, _ := strings.Cut(mimeType, "/")
	return primary
}

// IsImage reports whether the mime type is an image type
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// HasPreview reports whether the record carries inline preview data
func (r *FileRecord) HasPreview() bool {
	return r.PreviewData != ""
}

// PrimaryType returns the record's primary mime category
func (r *FileRecord) PrimaryType() string {
	return PrimaryType(r.MimeType)
}

// Extension returns the lower-cased extension of the record name without the dot
func (r *FileRecord) Extension() string {
	return Extension(r.Name)
}

// GetDisplayDate returns the upload time in the given layout and location
func (r *FileRecord) GetDisplayDate(layout string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return r.UploadedAt.In(loc).Format(layout)
}

// GetNoteString returns the note or a placeholder
func (r *FileRecord) GetNoteString() string {
	if strings.TrimSpace(r.Note) == "" {
		return "-"
	}
	return r.Note
}

// Extension extracts a lower-cased extension from a file name.
// "Report.PDF" -> "pdf", "README" -> "".
func Extension(name string) string {
	ext := filepath.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// SortByUploadDesc orders records newest first.
// Records with equal timestamps keep their relative order.
func SortByUploadDesc(records []FileRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UploadedAt.After(records[j].UploadedAt)
	})
}

// IsSortedByUploadDesc reports whether records are ordered newest first
func IsSortedByUploadDesc(records []FileRecord) bool {
	for i := 1; i < len(records); i++ {
		if records[i].UploadedAt.After(records[i-1].UploadedAt) {
			return false
		}
	}
	return true
}

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count with binary units.
// 0 -> "0 Bytes", 1536 -> "1.5 KB".
func FormatBytes(bytes int64, decimals int) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}

	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(byteUnits)-1 {
		value /= 1024
		i++
	}

	// FormatFloat with -1 precision after rounding drops trailing zeros
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(value, 'f', decimals, 64), 64)
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[i]
}
