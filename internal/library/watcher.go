package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultDebounce is the quiet period after the last change before a reload.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is invoked after the watched files changed.
type ChangeFunc func(ctx context.Context) error

// WatchOptions tune a Watcher.
type WatchOptions struct {
	// Debounce is the quiet period after the last event; DefaultDebounce when zero.
	Debounce time.Duration

	// MinInterval spaces consecutive calls; zero does not limit them.
	MinInterval time.Duration

	Logger *zap.Logger
}

// Watcher calls a ChangeFunc when files under the watched directories change.
// Bursts of events within the debounce period trigger one call.
type Watcher struct {
	paths    []string
	debounce time.Duration
	limiter  *rate.Limiter
	onChange ChangeFunc
	logger   *zap.Logger
	ready    chan struct{}
}

// NewWatcher creates a watcher over paths. Directories that do not exist yet
// are skipped.
func NewWatcher(paths []string, onChange ChangeFunc, opts WatchOptions) *Watcher {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		paths:    paths,
		debounce: debounce,
		limiter:  rate.NewLimiter(limit, 1),
		onChange: onChange,
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once every path is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. Errors returned by the ChangeFunc are
// logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) (err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := fw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	watched := 0
	for _, path := range w.paths {
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			w.logger.Debug("skipping missing watch path", zap.String("path", path))
			continue
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no watchable paths among %v", w.paths)
	}
	close(w.ready)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := fw.Add(event.Name); addErr != nil {
						w.logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(addErr))
					}
				}
			}
			w.logger.Debug("library change", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			fire = time.After(w.debounce)
		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(watchErr))
		case <-fire:
			fire = nil
			if err := w.limiter.Wait(ctx); err != nil {
				return ctx.Err()
			}
			if err := w.onChange(ctx); err != nil {
				w.logger.Warn("library reload failed", zap.Error(err))
			}
		}
	}
}
