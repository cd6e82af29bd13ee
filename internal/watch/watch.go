// Package watch monitors a migrations directory and signals when the
// taxonomy should be rebuilt. Because the store is derived state replayed
// from the migration log, a change to any file means a full rebuild rather
// than an incremental patch.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"taxon/internal/migrate"
)

// debounce coalesces bursts of filesystem events (editors write several
// events per save) into one rebuild signal.
const debounce = 100 * time.Millisecond

// Watcher monitors a migrations directory using fsnotify.
type Watcher struct {
	Dir      string
	Rebuilds <-chan struct{} // Read-only external channel

	rebuilds chan struct{} // Internal write channel
	done     chan struct{}
	watcher  *fsnotify.Watcher
}

// New creates a watcher for the given migrations directory.
func New(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ch := make(chan struct{}, 1)
	return &Watcher{
		Dir:      dir,
		Rebuilds: ch,
		rebuilds: ch,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching the directory for migration file changes.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.rebuilds)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var dirty bool
	var last time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if dirty {
					w.signal()
				}
				return
			}
			if !migrate.IsMigrationName(filepath.Base(event.Name)) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				dirty = true
				last = time.Now()
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			if dirty && time.Since(last) >= debounce {
				dirty = false
				w.signal()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next event still arrives.
		}
	}
}

// signal notifies without blocking; a pending rebuild absorbs new changes.
func (w *Watcher) signal() {
	select {
	case w.rebuilds <- struct{}{}:
	default:
	}
}
