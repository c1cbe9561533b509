package terminal

import (
	"sync"
	"unicode/utf8"

	"github.com/dshills/indentguide/internal/host"
)

// Editor shows one document with a cursor, a selection and a scroll offset.
type Editor struct {
	doc     *Document
	tabSize int

	mu        sync.Mutex
	selection host.Selection
	top       int
	decos     map[host.DecorationStyle][]host.Range
}

// NewEditor creates an editor for doc. A tab size below 1 becomes 1.
func NewEditor(doc *Document, tabSize int) *Editor {
	if tabSize < 1 {
		tabSize = 1
	}
	return &Editor{
		doc:     doc,
		tabSize: tabSize,
		decos:   make(map[host.DecorationStyle][]host.Range),
	}
}

// Document implements host.Editor.
func (e *Editor) Document() host.Document { return e.doc }

// File returns the concrete document.
func (e *Editor) File() *Document { return e.doc }

// TabSize implements host.Editor.
func (e *Editor) TabSize() int { return e.tabSize }

// Selection implements host.Editor.
func (e *Editor) Selection() host.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection
}

// SetDecorations implements host.Editor. An empty set removes the style's
// decorations.
func (e *Editor) SetDecorations(style host.DecorationStyle, ranges []host.Range) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(ranges) == 0 {
		delete(e.decos, style)
		return
	}
	e.decos[style] = append([]host.Range(nil), ranges...)
}

// Decorations returns the ranges last set for style.
func (e *Editor) Decorations(style host.DecorationStyle) []host.Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decos[style]
}

// forget drops everything drawn with style.
func (e *Editor) forget(style host.DecorationStyle) {
	e.mu.Lock()
	delete(e.decos, style)
	e.mu.Unlock()
}

// Move moves the cursor by lines and characters and returns the new
// selection. With extend the anchor stays put, otherwise the selection
// collapses onto the cursor. The cursor is clamped to the document.
func (e *Editor) Move(lines, chars int, extend bool) host.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.selection.Active
	cur.Line = clamp(cur.Line+lines, 0, e.doc.LineCount()-1)
	cur.Character = clamp(cur.Character+chars, 0, utf8.RuneCountInString(e.doc.Text(cur.Line)))

	if extend {
		e.selection.Active = cur
	} else {
		e.selection = host.Selection{Anchor: cur, Active: cur}
	}
	return e.selection
}

// Clamp moves both ends of the selection back inside the document and
// returns the result.
func (e *Editor) Clamp() host.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.selection.Anchor = e.clampPosition(e.selection.Anchor)
	e.selection.Active = e.clampPosition(e.selection.Active)
	return e.selection
}

func (e *Editor) clampPosition(p host.Position) host.Position {
	p.Line = clamp(p.Line, 0, e.doc.LineCount()-1)
	p.Character = clamp(p.Character, 0, utf8.RuneCountInString(e.doc.Text(p.Line)))
	return p
}

// Top returns the first line on screen.
func (e *Editor) Top() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.top
}

// Reveal scrolls so the cursor is within a view of height lines.
func (e *Editor) Reveal(height int) {
	if height < 1 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	line := e.selection.Active.Line
	switch {
	case line < e.top:
		e.top = line
	case line >= e.top+height:
		e.top = line - height + 1
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
