// Package filewatcher provides the drop-folder adapter.
// Adapter implementing ports.FileWatcher: files landing in the watched
// directory are reported once their writes have gone quiet.
package filewatcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xcro3dile/polit/internal/domain/ports"
	"github.com/0xcro3dile/polit/internal/logging"
)

// DefaultSettle is how long a file must go without writes before it is reported.
const DefaultSettle = 300 * time.Millisecond

// FSNotifyWatcher implements ports.FileWatcher using fsnotify.
type FSNotifyWatcher struct {
	watcher    *fsnotify.Watcher
	extensions []string // empty means every file
	settle     time.Duration
	logger     *logging.Logger
}

// NewFSNotifyWatcher creates a new drop-folder watcher.
func NewFSNotifyWatcher(extensions []string, settle time.Duration, logger *logging.Logger) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &FSNotifyWatcher{
		watcher:    w,
		extensions: extensions,
		settle:     settle,
		logger:     logger,
	}, nil
}

// Watch starts monitoring the directory and emits one FileCreated event per
// dropped file.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan ports.FileEvent, 100)
	ready := make(chan string, 100)

	go func() {
		defer close(events)
		pending := make(map[string]*time.Timer)
		defer func() {
			for _, t := range pending {
				t.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.isWatched(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}

				path := event.Name
				if t, ok := pending[path]; ok {
					t.Reset(w.settle)
					continue
				}
				pending[path] = time.AfterFunc(w.settle, func() {
					select {
					case ready <- path:
					case <-ctx.Done():
					}
				})
			case path := <-ready:
				delete(pending, path)
				w.logger.Debug("file dropped", "path", path)
				select {
				case events <- ports.FileEvent{Path: path, Operation: ports.FileCreated}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("drop folder watcher error", "error", err)
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

// isWatched skips hidden and editor temp files, then filters by extension.
func (w *FSNotifyWatcher) isWatched(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
