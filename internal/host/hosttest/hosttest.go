// Package hosttest provides in-memory host implementations for tests.
package hosttest

import (
	"strings"
	"sync"

	"github.com/dshills/indentguide/internal/guide"
	"github.com/dshills/indentguide/internal/host"
)

// Document is an in-memory document.
type Document struct {
	mu      sync.Mutex
	path    string
	version int
	lines   []string
}

// NewDocument creates a document at version 1 from newline-separated text.
func NewDocument(path, text string) *Document {
	return &Document{path: path, version: 1, lines: strings.Split(text, "\n")}
}

func (d *Document) Path() string { return d.path }

func (d *Document) Version() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

func (d *Document) LineCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lines)
}

func (d *Document) LineAt(i int) guide.Line {
	d.mu.Lock()
	defer d.mu.Unlock()
	return guide.NewLine(i, d.lines[i])
}

// SetText replaces the content and bumps the version.
func (d *Document) SetText(text string) {
	d.mu.Lock()
	d.lines = strings.Split(text, "\n")
	d.version++
	d.mu.Unlock()
}

// Editor is an in-memory editor that records decoration calls.
type Editor struct {
	mu        sync.Mutex
	doc       host.Document
	selection host.Selection
	tabSize   int
	decos     map[host.DecorationStyle][]host.Range
	calls     int
}

// NewEditor creates an editor showing doc.
func NewEditor(doc host.Document, tabSize int) *Editor {
	return &Editor{doc: doc, tabSize: tabSize, decos: make(map[host.DecorationStyle][]host.Range)}
}

func (e *Editor) Document() host.Document { return e.doc }

func (e *Editor) Selection() host.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection
}

// Select sets the selection.
func (e *Editor) Select(sel host.Selection) {
	e.mu.Lock()
	e.selection = sel
	e.mu.Unlock()
}

func (e *Editor) TabSize() int { return e.tabSize }

func (e *Editor) SetDecorations(style host.DecorationStyle, ranges []host.Range) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.decos[style] = append([]host.Range(nil), ranges...)
}

// Decorations returns the ranges last set with style.
func (e *Editor) Decorations(style host.DecorationStyle) []host.Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decos[style]
}

// Calls returns how often SetDecorations was called.
func (e *Editor) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Style is a decoration style that tracks disposal.
type Style struct {
	opts     host.DecorationOptions
	disposed bool
	window   *Window
}

func (s *Style) Options() host.DecorationOptions { return s.opts }

func (s *Style) Dispose() {
	s.window.mu.Lock()
	defer s.window.mu.Unlock()
	if !s.disposed {
		s.disposed = true
		s.window.live--
	}
}

// Disposed reports whether Dispose was called.
func (s *Style) Disposed() bool {
	s.window.mu.Lock()
	defer s.window.mu.Unlock()
	return s.disposed
}

// Window is an in-memory window.
type Window struct {
	mu      sync.Mutex
	active  host.Editor
	visible []host.Editor
	created []*Style
	live    int
}

// NewWindow creates a window whose first editor is active.
func NewWindow(editors ...host.Editor) *Window {
	w := &Window{visible: editors}
	if len(editors) > 0 {
		w.active = editors[0]
	}
	return w
}

func (w *Window) ActiveEditor() host.Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// SetActive changes the active editor.
func (w *Window) SetActive(e host.Editor) {
	w.mu.Lock()
	w.active = e
	w.mu.Unlock()
}

func (w *Window) VisibleEditors() []host.Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]host.Editor(nil), w.visible...)
}

func (w *Window) CreateDecorationStyle(opts host.DecorationOptions) host.DecorationStyle {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := &Style{opts: opts, window: w}
	w.created = append(w.created, s)
	w.live++
	return s
}

// Created returns every style created so far.
func (w *Window) Created() []*Style {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Style(nil), w.created...)
}

// LiveStyles returns the number of styles not yet disposed.
func (w *Window) LiveStyles() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.live
}

// Scheduler queues posted work until Drain is called.
type Scheduler struct {
	mu    sync.Mutex
	queue []func()
	ready chan struct{}
}

// NewScheduler creates an empty queue.
func NewScheduler() *Scheduler {
	return &Scheduler{ready: make(chan struct{}, 1)}
}

// Post implements host.Scheduler.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled after Post.
func (s *Scheduler) Ready() <-chan struct{} {
	return s.ready
}

// Drain runs queued work in order and returns how much ran.
func (s *Scheduler) Drain() int {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}
