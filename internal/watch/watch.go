// Package watch signals when the content of a folder changes so the owner
// can rescan it. Bursts of filesystem events are debounced into a single
// notification.
package watch

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is the quiet period required before a notification fires.
const DefaultDebounce = 250 * time.Millisecond

// Watcher watches one folder and notifies when a rescan is due.
type Watcher struct {
	watcher  *fsnotify.Watcher
	notify   chan struct{}
	done     chan struct{}
	debounce time.Duration
}

// NewWatcher starts watching folder. A non-positive debounce selects
// DefaultDebounce.
func NewWatcher(folder string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(folder); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch folder %s: %w", folder, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:  fsw,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		debounce: debounce,
	}
	go w.run()
	return w, nil
}

// run processes filesystem events with debouncing.
func (w *Watcher) run() {
	var lastEvent time.Time
	pending := false
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Creates, deletes, renames and writes all change the folder listing.
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Write) {
				lastEvent = time.Now()
				pending = true
				log.Debug().Str("op", event.Op.String()).Str("path", event.Name).Msg("folder event")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("folder watch error")

		case <-ticker.C:
			if pending && time.Since(lastEvent) >= w.debounce {
				select {
				case w.notify <- struct{}{}:
				default:
					// A notification is already waiting; coalesce.
				}
				pending = false
			}
		}
	}
}

// Notify returns the channel that receives change notifications. The channel
// has capacity one, so bursts collapse into a single pending tick.
func (w *Watcher) Notify() <-chan struct{} {
	return w.notify
}

// Close shuts down the watcher and releases the OS watch.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
