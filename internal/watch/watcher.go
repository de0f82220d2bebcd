// Package watch re-runs generation whenever the schema document changes on
// disk. Editors typically write several events per save, so changes are
// debounced before the callback fires.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SchemaWatcher monitors one schema file and invokes a callback after each
// (debounced) change.
type SchemaWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	path      string
	onChange  func() error
	onError   func(error)
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewSchemaWatcher creates a watcher over the given schema file. onChange
// runs after each debounced change; onError receives watcher and callback
// failures.
func NewSchemaWatcher(path string, onChange func() error, onError func(error)) (*SchemaWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	sw := &SchemaWatcher{
		watcher:   watcher,
		debouncer: newDebouncer(200 * time.Millisecond),
		path:      filepath.Clean(path),
		onChange:  onChange,
		onError:   onError,
		stopChan:  make(chan struct{}),
	}
	sw.debouncer.callback = func() {
		if err := sw.onChange(); err != nil {
			sw.onError(err)
		}
	}

	return sw, nil
}

// Start begins watching. Watching the containing directory instead of the
// file itself survives the rename-over-save strategy most editors use.
func (sw *SchemaWatcher) Start() error {
	if err := sw.watcher.Add(filepath.Dir(sw.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(sw.path), err)
	}

	sw.wg.Add(1)
	go sw.loop()
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (sw *SchemaWatcher) Stop() {
	close(sw.stopChan)
	sw.debouncer.stop()
	sw.watcher.Close()
	sw.wg.Wait()
}

func (sw *SchemaWatcher) loop() {
	defer sw.wg.Done()

	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != sw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				sw.debouncer.trigger()
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.onError(err)
		case <-sw.stopChan:
			return
		}
	}
}

// debouncer coalesces a burst of triggers into one callback after a quiet
// period.
type debouncer struct {
	duration time.Duration
	timer    *time.Timer
	mutex    sync.Mutex
	callback func()
}

func newDebouncer(duration time.Duration) *debouncer {
	return &debouncer{duration: duration}
}

func (d *debouncer) trigger() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.callback)
}

func (d *debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
