package settings

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a Store whenever the profile database files change.
type Watcher struct {
	store    *Store
	dir      string
	prefix   string
	debounce time.Duration

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	wg      sync.WaitGroup

	mu       sync.Mutex
	timer    *time.Timer
	reloaded func(error)
}

// NewWatcher watches dbPath's directory for writes to the database or its
// journal files.
func NewWatcher(store *Store, dbPath string) *Watcher {
	return &Watcher{
		store:    store,
		dir:      filepath.Dir(dbPath),
		prefix:   filepath.Base(dbPath),
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
	}
}

// SetDebounce changes the quiet period before a reload.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// OnReload registers a callback run after every reload attempt.
func (w *Watcher) OnReload(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reloaded = fn
}

// Start begins watching until ctx ends or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	if w.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return err
	}
	w.watcher = watcher

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Close stops the watcher and any pending reload.
func (w *Watcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	close(w.stopCh)
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	w.watcher = nil
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("warning: settings watcher: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasPrefix(filepath.Base(event.Name), w.prefix) {
		return
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
		w.scheduleReload()
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.stopCh:
			return
		default:
		}
		err := w.store.Reload()
		if err != nil {
			log.Printf("warning: reload settings: %v", err)
		}
		w.mu.Lock()
		fn := w.reloaded
		w.mu.Unlock()
		if fn != nil {
			fn(err)
		}
	})
}
