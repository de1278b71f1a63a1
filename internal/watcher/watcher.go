// Package watcher monitors the external catalog database file and triggers
// re-projection when it changes.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the catalog must stay quiet after a change
// before the callback fires. Catalog managers write the database plus its
// journal in several bursts, so firing on the first event would re-project
// a half-written file.
const DefaultDebounce = 2 * time.Second

// Watcher watches one catalog database file.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(context.Context)
	logger   *slog.Logger

	fsw *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a watcher for the given catalog file. onChange runs on the
// watcher's goroutine after the debounce window closes.
func New(path string, debounce time.Duration, onChange func(context.Context), logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	// Watch the parent directory: catalog managers replace the database
	// file by rename, which drops a watch set on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch catalog directory: %w", err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins processing events until the context is canceled or the
// watcher is stopped.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
}

// Stop shuts the watcher down and waits for the event loop to exit.
// A debounced callback that has not fired yet is dropped.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Catalog changed", "path", event.Name, "op", event.Op.String())
			w.reset(fire)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Catalog watch error", "error", err)
		case <-fire:
			w.logger.Info("Catalog settled, reprojecting")
			w.onChange(ctx)
		}
	}
}

// relevant reports whether the event concerns the catalog database or one
// of its sidecar journal files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == w.path || strings.HasPrefix(name, w.path+"-")
}

// reset restarts the debounce window.
func (w *Watcher) reset(fire chan<- struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}
