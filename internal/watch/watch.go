// Package watch reruns a workspace action whenever posts or thumbnails
// change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/updaun/postkit/internal/logging"
	"github.com/updaun/postkit/internal/matcher"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before running.
const DefaultDebounce = 500 * time.Millisecond

// Action is run after each settled burst of changes.
type Action func(ctx context.Context) error

// Watcher watches directories and runs one Action at a time.
type Watcher struct {
	fs       *fsnotify.Watcher
	action   Action
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logging.WithComponent(logger, "watch") }
}

// New starts watching dirs. Events are buffered by the kernel until Run
// starts reading them.
func New(dirs []string, action Action, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		action:   action,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		w.logger.Info("watching", slog.String("dir", dir))
	}
	return w, nil
}

// Relevant reports whether a change to name should trigger a run: visible
// markdown posts and recognised thumbnail images.
func Relevant(name string) bool {
	base := filepath.Base(name)
	if base == "" || strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".md") || matcher.IsImage(base)
}

// Run processes events until ctx is cancelled. The action runs on this
// goroutine, so runs never overlap; changes made while it runs start one
// more run once they settle.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if !Relevant(ev.Name) || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("change", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			if err := w.action(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Warn("run failed", logging.Error(err))
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			w.logger.Warn("watcher error", logging.Error(err))
		}
	}
}
