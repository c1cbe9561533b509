package terminal

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/indentguide/internal/host"
)

// ErrWatcherClosed is returned when closing a watcher twice.
var ErrWatcherClosed = errors.New("document watcher closed")

// FileWatcher reloads open documents when their files change on disk.
// Reloads run through the scheduler, so onChange is called on the UI loop
// and only for documents whose text actually changed.
type FileWatcher struct {
	fsw      *fsnotify.Watcher
	docs     map[string]*Document
	sched    host.Scheduler
	onChange func(*Document)
	onError  func(error)

	mu     sync.Mutex
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
}

// WatchDocuments watches the directories holding docs.
func WatchDocuments(docs []*Document, sched host.Scheduler, onChange func(*Document), onError func(error)) (*FileWatcher, error) {
	if sched == nil {
		sched = host.Immediate
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FileWatcher{
		fsw:      fsw,
		docs:     make(map[string]*Document, len(docs)),
		sched:    sched,
		onChange: onChange,
		onError:  onError,
		done:     make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, d := range docs {
		path := filepath.Clean(d.Path())
		w.docs[path] = d
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
		dirs[dir] = true
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *FileWatcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			doc, tracked := w.docs[filepath.Clean(ev.Name)]
			if !tracked {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.sched.Post(func() { w.reload(doc) })
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

func (w *FileWatcher) reload(doc *Document) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	changed, err := doc.Reload()
	if err != nil {
		w.reportError(err)
		return
	}
	if changed && w.onChange != nil {
		w.onChange(doc)
	}
}

func (w *FileWatcher) reportError(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}

// Close stops watching.
func (w *FileWatcher) Close() error {
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
func (w *FileWatcher) Dispose() {
	_ = w.Close()
}
