// Package watcher notifies subscribers when the flag store on disk changes.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/newhook/flagtrack/internal/logging"
)

// ChangeType describes what happened to the store.
type ChangeType string

// StoreChanged is published after writes to the store settle.
const StoreChanged ChangeType = "store_changed"

// Change is the payload published on the broker.
type Change struct {
	Type ChangeType
	Path string
}

// Config configures a Watcher.
type Config struct {
	Path        string        // store file (flags.json or flags.db)
	DebounceDur time.Duration // quiet period before publishing
}

// DefaultConfig returns a config for path with a 100ms debounce.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		DebounceDur: 100 * time.Millisecond,
	}
}

// Watcher watches the directory holding the store file. The directory is
// watched rather than the file because saves replace the file by rename.
type Watcher struct {
	cfg    Config
	fs     *fsnotify.Watcher
	broker *Broker[Change]

	mu      sync.Mutex
	timer   *time.Timer
	started bool
	stopped bool
	done    chan struct{}
}

// New creates a watcher. Call Start to begin watching.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, errors.New("watcher: path is required")
	}
	if cfg.DebounceDur <= 0 {
		cfg.DebounceDur = DefaultConfig(cfg.Path).DebounceDur
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		cfg:    cfg,
		fs:     fsw,
		broker: NewBroker[Change](),
		done:   make(chan struct{}),
	}, nil
}

// Broker returns the broker that change events are published on.
func (w *Watcher) Broker() *Broker[Change] {
	return w.broker
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return errors.New("watcher: already started")
	}
	dir := filepath.Dir(w.cfg.Path)
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.started = true
	go w.loop()
	logging.Debug("watching store", "path", w.cfg.Path)
	return nil
}

// Stop stops watching and closes all subscriptions. Safe to call twice.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fs.Close()
	if started {
		<-w.done
	}
	w.broker.Shutdown()
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logging.Warn("store watcher error", "error", err)
		}
	}
}

// relevant matches the store file and its SQLite side files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	base := filepath.Base(w.cfg.Path)
	name := filepath.Base(event.Name)
	if name == base {
		return true
	}
	return strings.HasPrefix(name, base+"-")
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.DebounceDur, func() {
		logging.Debug("store changed", "path", w.cfg.Path)
		w.broker.Publish(Change{Type: StoreChanged, Path: w.cfg.Path})
	})
}
