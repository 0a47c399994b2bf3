package dropfolder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// partial-download and editor suffixes that are never complete files
var ignoredSuffixes = []string{".tmp", ".part", ".crdownload", ".swp", "~"}

// Watcher reports files that appear or change in a directory once they
// have been quiet for the debounce period
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// New creates a watcher for dir. debounce <= 0 uses 500ms.
func New(dir string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]struct{}),
	}
}

// Existing lists the files already in the directory, sorted by name
func (w *Watcher) Existing() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", w.dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || Ignored(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(w.dir, entry.Name()))
	}
	return paths, nil
}

// Run watches until ctx is done. handle receives each settled batch of
// paths, sorted, on the calling goroutine.
func (w *Watcher) Run(ctx context.Context, handle func(paths []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	settled := make(chan struct{}, 1)
	defer w.stopTimer()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if Ignored(filepath.Base(event.Name)) {
				continue
			}
			w.touch(event.Name, settled)

		case <-settled:
			if batch := w.drain(); len(batch) > 0 {
				handle(batch)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.String("error", err.Error()))

		case <-ctx.Done():
			return nil
		}
	}
}

// touch records a change and restarts the quiet period
func (w *Watcher) touch(path string, settled chan<- struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case settled <- struct{}{}:
		default:
		}
	})
}

// drain returns the pending regular files and clears the set
func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	batch := make([]string, 0, len(w.pending))
	for path := range w.pending {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		batch = append(batch, path)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(batch)
	return batch
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Ignored reports whether a file name is hidden or looks incomplete
func Ignored(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") {
		return true
	}
	for _, suffix := range ignoredSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
