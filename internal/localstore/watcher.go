package localstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nanofi/nanofi/internal/logging"
)

// DefaultDebounce batches the bursts of events one SQLite commit produces
// (main file, WAL and shared-memory index).
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls onChange after the profile file (or one of its SQLite
// side files) was written, created, removed or renamed. Bursts of events
// within the debounce window result in a single call.
type Watcher struct {
	fw       *fsnotify.Watcher
	dir      string
	base     string
	debounce time.Duration
	logger   logging.Logger
	onChange func(ctx context.Context)
}

// NewWatcher prepares a watcher for the profile at path. Nothing is watched
// until Run is called.
func NewWatcher(path string, debounce time.Duration, logger logging.Logger, onChange func(ctx context.Context)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create storage watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	return &Watcher{
		fw:       fw,
		dir:      filepath.Dir(abs),
		base:     filepath.Base(abs),
		debounce: debounce,
		logger:   logger.With("module", "storage_watcher"),
		onChange: onChange,
	}, nil
}

// Run blocks until ctx is cancelled. The underlying fsnotify watcher is
// closed on return, so a Watcher cannot be run twice.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()

	if err := w.fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Debug(ctx, "watching local storage", "dir", w.dir, "file", w.base)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, "storage watcher error", "error", err)

		case <-fire:
			fire = nil
			w.onChange(ctx)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), w.base)
}
