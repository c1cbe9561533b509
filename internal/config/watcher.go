package config

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// Watcher reloads settings when the settings file changes.
//
// The parent directory is watched so that editors replacing the file
// atomically are still noticed. Callbacks run on the watcher goroutine;
// callers that need UI-loop delivery must post them.
type Watcher struct {
	loader   *Loader
	path     string
	fsw      *fsnotify.Watcher
	onChange func(Settings)
	onError  func(error)

	mu     sync.Mutex
	last   Settings
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts watching the loader's file. current is the settings
// already in effect; reloads producing identical settings are not reported.
func NewWatcher(loader *Loader, current Settings, onChange func(Settings), onError func(error)) (*Watcher, error) {
	abs, err := filepath.Abs(loader.Path())
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		loader:   loader,
		path:     abs,
		fsw:      fsw,
		onChange: onChange,
		onError:  onError,
		last:     current,
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

// reload loads the file and reports changed settings.
func (w *Watcher) reload() {
	s, err := w.loader.Load()
	if err != nil {
		w.reportError(err)
		return
	}

	w.mu.Lock()
	if w.closed || s == w.last {
		w.mu.Unlock()
		return
	}
	w.last = s
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(s)
	}
}

func (w *Watcher) reportError(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}

// Close stops watching. A second call returns ErrWatcherClosed.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// Dispose implements host.Disposable.
func (w *Watcher) Dispose() {
	_ = w.Close()
}
