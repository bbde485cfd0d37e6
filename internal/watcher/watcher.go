// Package watcher notifies when the on-disk store changes so an open
// session can reload it.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

const meaningfulOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Watcher calls callback once per burst of changes under the watched paths.
type Watcher struct {
	fsw      *fsnotify.Watcher
	callback func()
	names    map[string]bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// OnlyNames restricts notifications to files with the given base names.
// Atomic saves write a temp file and rename it, so callers watch the
// directory and filter here.
func OnlyNames(names ...string) Option {
	return func(w *Watcher) {
		w.names = make(map[string]bool, len(names))
		for _, n := range names {
			w.names[n] = true
		}
	}
}

// New watches every path in paths. It fails if any path cannot be watched.
func New(paths []string, callback func(), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", p, err)
		}
	}
	w := &Watcher{fsw: fsw, callback: callback}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Run delivers debounced change notifications until ctx is done or the
// watcher is closed. errFn, when non-nil, receives watcher errors.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, w.callback)
			mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&meaningfulOps == 0 {
		return false
	}
	return w.names == nil || w.names[filepath.Base(ev.Name)]
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
