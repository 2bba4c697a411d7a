// Package filewatcher provides file system monitoring adapters.
// Clean Architecture: Adapter implementing ports.FileWatcher.
package filewatcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

// DefaultDebounce is how long a path must stay quiet before its event is
// emitted. Editors often write a file several times in a row.
const DefaultDebounce = 200 * time.Millisecond

// FSNotifyWatcher implements ports.FileWatcher using fsnotify.
type FSNotifyWatcher struct {
	watcher  *fsnotify.Watcher
	match    func(path string) bool
	debounce time.Duration
}

// NewFSNotifyWatcher creates a new file watcher. match selects the paths
// worth reporting; nil reports every non-hidden file.
func NewFSNotifyWatcher(match func(path string) bool, debounce time.Duration) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if match == nil {
		match = func(path string) bool {
			return !strings.HasPrefix(filepath.Base(path), ".")
		}
	}
	if debounce < 0 {
		debounce = 0
	}

	return &FSNotifyWatcher{
		watcher:  w,
		match:    match,
		debounce: debounce,
	}, nil
}

// Watch starts monitoring the directory and emits events. The channel
// closes when ctx is done or the watcher is stopped.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}
	logger.Infof("watching %s", dir)

	events := make(chan ports.FileEvent, 100)
	pending := newDebouncer(w.debounce)

	go func() {
		defer close(events)
		defer pending.stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-pending.ready:
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.match(event.Name) {
					continue
				}

				op, ok := operation(event.Op)
				if !ok {
					continue
				}
				logger.Debugf("%s %s", op, event.Name)
				pending.add(ports.FileEvent{Path: event.Name, Operation: op})
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("watcher error: %v", err)
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

func operation(op fsnotify.Op) (ports.FileOperation, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return ports.FileCreated, true
	case op.Has(fsnotify.Write):
		return ports.FileModified, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return ports.FileDeleted, true
	default:
		return 0, false
	}
}

// debouncer holds the latest event per path until the path has been quiet
// for the configured delay. A create followed by writes stays a create.
type debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
	last   map[string]ports.FileEvent
	ready  chan ports.FileEvent
	done   chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		last:   make(map[string]ports.FileEvent),
		ready:  make(chan ports.FileEvent),
		done:   make(chan struct{}),
	}
}

func (d *debouncer) add(ev ports.FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.last[ev.Path]; ok && prev.Operation == ports.FileCreated && ev.Operation == ports.FileModified {
		ev.Operation = ports.FileCreated
	}
	d.last[ev.Path] = ev

	if t, ok := d.timers[ev.Path]; ok {
		t.Stop()
	}
	d.timers[ev.Path] = time.AfterFunc(d.delay, func() { d.fire(ev.Path) })
}

func (d *debouncer) fire(path string) {
	d.mu.Lock()
	ev, ok := d.last[path]
	delete(d.last, path)
	delete(d.timers, path)
	d.mu.Unlock()
	if !ok {
		return
	}
	select {
	case d.ready <- ev:
	case <-d.done:
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.timers {
		t.Stop()
	}
	close(d.done)
}
