// internal/watch/watcher.go
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"duck/internal/logging"
	"duck/internal/workspace"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the tree has to stay quiet before a batch of
// changes is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports batches of changed workspace paths.
type Watcher struct {
	root     string
	ignore   *workspace.Ignore
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger
}

// New creates a watcher over every non-ignored directory under root.
func New(root string, ig *workspace.Ignore, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if ig == nil {
		ig = workspace.NewIgnore(nil)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		root:     absRoot,
		ignore:   ig,
		watcher:  fw,
		debounce: debounce,
		logger:   logging.OrNop(logger),
	}

	if err := w.addTree(absRoot); err != nil {
		fw.Close()
		return nil, err
	}

	return w, nil
}

// addTree adds dir and every non-ignored directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel := w.rel(path); rel != "." && w.ignore.Match(rel) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("adding directory to watcher: %w", err)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// Run processes events until ctx is done or the watcher is closed. Each time
// the tree has been quiet for the debounce period, fn receives the sorted set
// of paths touched since the previous call.
func (w *Watcher) Run(ctx context.Context, fn func(paths []string)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if rel, ok := w.handleEvent(event); ok {
				pending[rel] = struct{}{}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})

			w.logger.Debug("workspace changed", zap.Strings("paths", paths))
			fn(paths)
		}
	}
}

// handleEvent filters one event and returns its workspace path.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}

	rel := w.rel(event.Name)
	if rel == "." || w.ignore.Match(rel) {
		return "", false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Error("adding new directory to watcher", zap.Error(err))
			}
		}
	}

	return rel, true
}

// Close cleans up resources
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
