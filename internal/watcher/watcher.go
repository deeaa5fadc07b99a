// Package watcher provides file system watching with debouncing for the
// registration data file.
package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"rollcall/internal/pubsub"
)

// WatcherEventType discriminates watcher notifications.
type WatcherEventType string

const (
	// DataChanged reports that the data file was written, created, or
	// atomically replaced.
	DataChanged WatcherEventType = "data_changed"
	// WatcherError reports a file system error. Watching continues.
	WatcherError WatcherEventType = "watcher_error"
)

// WatcherEvent is the payload published on the watcher's broker.
type WatcherEvent struct {
	Type  WatcherEventType
	Error error
}

// Watcher monitors the registration CSV file for changes and publishes
// notifications on its broker.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dataPath  string
	debounce  time.Duration
	broker    *pubsub.Broker[WatcherEvent]
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	DataPath    string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(dataPath string) Config {
	return Config{
		DataPath:    dataPath,
		DebounceDur: 1 * time.Second,
	}
}

// New creates a new data file watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		dataPath:  cfg.DataPath,
		debounce:  cfg.DebounceDur,
		broker:    pubsub.NewBroker[WatcherEvent](),
		done:      make(chan struct{}),
	}, nil
}

// Broker exposes the watcher's event stream. Subscribe before calling
// Start to guarantee the first notification is not missed.
func (w *Watcher) Broker() *pubsub.Broker[WatcherEvent] {
	return w.broker
}

// Start begins watching the directory containing the data file.
// Watching the parent directory instead of the file itself keeps the watch
// alive across editors that save by replacing the file.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.dataPath)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	go w.loop()

	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	w.broker.Close()
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !w.isRelevantEvent(event) {
				continue
			}

			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					// Drain the timer channel if it already fired
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				w.broker.Publish(pubsub.ChangedEvent, WatcherEvent{Type: DataChanged})
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			// Surface the error to subscribers but keep watching
			w.broker.Publish(pubsub.ErrorEvent, WatcherEvent{Type: WatcherError, Error: err})

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent checks if the event should trigger a refresh.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	// Write covers appends; Create covers first use and atomic replaces.
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}

	return filepath.Base(event.Name) == filepath.Base(w.dataPath)
}
