package blob

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamal-hamza/dx-cli/internal/core/ports"
)

// sniffLen is how much content http.DetectContentType looks at
const sniffLen = 512

// LocalBlob is a file on disk selected for ingestion
type LocalBlob struct {
	path     string
	name     string
	mimeType string
	size     int64
}

// Ensure it implements the interface
var _ ports.Blob = (*LocalBlob)(nil)

// NewLocalBlob stats path and determines its mime type.
// The extension decides first; content sniffing is the fallback.
func NewLocalBlob(path string) (*LocalBlob, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mimeType, err := DetectMimeType(path)
	if err != nil {
		return nil, err
	}

	return &LocalBlob{
		path:     path,
		name:     filepath.Base(path),
		mimeType: mimeType,
		size:     info.Size(),
	}, nil
}

func (b *LocalBlob) Name() string     { return b.name }
func (b *LocalBlob) MimeType() string { return b.mimeType }
func (b *LocalBlob) Size() int64      { return b.size }
func (b *LocalBlob) Path() string     { return b.path }

func (b *LocalBlob) Open() (io.ReadCloser, error) {
	return os.Open(b.path)
}

// DetectMimeType returns the media type of the file at path without parameters
func DetectMimeType(path string) (string, error) {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		return stripParams(byExt), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if n == 0 {
		// empty files carry no type, like the browser reports them
		return "", nil
	}
	return stripParams(http.DetectContentType(head[:n])), nil
}

func stripParams(mediaType string) string {
	base, _, _ := strings.Cut(mediaType, ";")
	return strings.TrimSpace(base)
}

// Collect expands paths into blobs. Directories are walked when recursive is
// set and skipped otherwise; hidden entries are ignored while walking.
func Collect(paths []string, recursive bool) ([]ports.Blob, []error) {
	var blobs []ports.Blob
	var errs []error

	add := func(path string) {
		b, err := NewLocalBlob(path)
		if err != nil {
			errs = append(errs, err)
			return
		}
		blobs = append(blobs, b)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to stat %s: %w", p, err))
			continue
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		if !recursive {
			errs = append(errs, fmt.Errorf("%s is a directory (use --recursive)", p))
			continue
		}

		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != p && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to walk %s: %w", p, err))
		}
	}

	return blobs, errs
}
