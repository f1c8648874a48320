package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reports changes to seed files.
type Watcher struct {
	logger   zerolog.Logger
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	files   map[string]bool // explicitly named seed files
	dirs    map[string]bool // seed directories
}

// NewWatcher creates a watcher that waits debounce after the last change
// before notifying.
func NewWatcher(logger zerolog.Logger, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		logger:   logger.With().Str("component", "seed-watcher").Logger(),
		debounce: debounce,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}
}

// Watch starts watching paths and calls onChange after seed files change.
// Files are watched through their parent directory so that editors which
// replace files by rename are still noticed. Watching stops when ctx is
// cancelled.
func (w *Watcher) Watch(ctx context.Context, paths []string, onChange func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	w.mu.Lock()
	w.watcher = watcher
	w.mu.Unlock()

	watched := 0
	for _, path := range paths {
		clean := filepath.Clean(path)
		info, err := os.Stat(clean)
		if err != nil {
			w.logger.Warn().Err(err).Str("path", clean).Msg("Failed to stat path for watching")
			continue
		}

		dir := clean
		if info.IsDir() {
			w.dirs[clean] = true
		} else {
			w.files[clean] = true
			dir = filepath.Dir(clean)
		}

		if err := watcher.Add(dir); err != nil {
			w.logger.Warn().Err(err).Str("path", dir).Msg("Failed to watch directory")
			continue
		}
		watched++
	}

	if watched == 0 {
		_ = watcher.Close()
		return fmt.Errorf("no seed paths could be watched")
	}

	go w.processEvents(ctx, onChange)

	w.logger.Info().
		Int("paths", watched).
		Dur("debounce", w.debounce).
		Msg("Started watching seed paths")

	return nil
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

// relevant reports whether an event on name concerns a watched seed.
func (w *Watcher) relevant(name string) bool {
	clean := filepath.Clean(name)
	if w.files[clean] {
		return true
	}
	return w.dirs[filepath.Dir(clean)] && IsSeedFile(clean) && filepath.Base(clean)[0] != '.'
}

// processEvents processes file system events and triggers reloads.
func (w *Watcher) processEvents(ctx context.Context, onChange func(context.Context)) {
	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		_ = w.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}

			w.logger.Debug().
				Str("file", event.Name).
				Str("op", event.Op.String()).
				Msg("Seed file changed")

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				if ctx.Err() == nil {
					onChange(ctx)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Seed watcher error")
		}
	}
}
