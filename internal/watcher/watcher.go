// Package watcher provides file-change notification for corpus files.
//
// Editors often write files as a burst of events (truncate, write, rename),
// so raw fsnotify events are debounced: notifications within the debounce
// window collapse into a single change signal.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceWindow is how long the watcher waits after the last
// event before signaling a change.
const DefaultDebounceWindow = 500 * time.Millisecond

// FileWatcher watches a single file and emits one signal per burst of
// writes to it.
type FileWatcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	window    time.Duration
	changes   chan struct{}
	errors    chan error
	logger    *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounceWindow overrides the debounce window.
func WithDebounceWindow(window time.Duration) Option {
	return func(w *FileWatcher) {
		if window > 0 {
			w.window = window
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *FileWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewFileWatcher creates a watcher for the given file. The parent
// directory is watched rather than the file itself so that rename-based
// saves (write to temp file, rename over target) are still observed.
func NewFileWatcher(path string, opts ...Option) (*FileWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &FileWatcher{
		fsWatcher: fsw,
		path:      absPath,
		window:    DefaultDebounceWindow,
		changes:   make(chan struct{}, 1),
		errors:    make(chan error, 10),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch directory %s: %w", filepath.Dir(absPath), err)
	}

	return w, nil
}

// Changes delivers one signal per debounced burst of writes. The channel
// has capacity one; a change arriving while a signal is pending merges
// into it.
func (w *FileWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Errors delivers watcher errors.
func (w *FileWatcher) Errors() <-chan error {
	return w.errors
}

// Start consumes fsnotify events until the context is canceled or the
// watcher is stopped. It blocks, so callers run it in a goroutine.
func (w *FileWatcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("watcher error channel full, dropping error",
					slog.String("error", err.Error()))
			}
		}
	}
}

func (w *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug("file event",
		slog.String("path", event.Name),
		slog.String("op", event.Op.String()))

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.window, w.signal)
}

func (w *FileWatcher) signal() {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}
	select {
	case w.changes <- struct{}{}:
	default:
		// A signal is already pending; the burst merges into it.
	}
}

// Stop closes the underlying watcher and cancels any pending signal.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	return w.fsWatcher.Close()
}
