// Package host defines the boundary between the indent guide core and the
// editor that displays it.
//
// The core reads documents, selections and tab sizes through these
// interfaces and writes decorations back. It never mutates document text.
package host

import "github.com/dshills/indentguide/internal/guide"

// Position is a zero-based line/character location.
type Position struct {
	Line      int
	Character int
}

// Before reports whether p comes before q.
func (p Position) Before(q Position) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Character < q.Character)
}

// Range is a span between two positions. A range whose ends coincide is
// zero-width.
type Range struct {
	Start Position
	End   Position
}

// ZeroWidth returns the empty range at p.
func ZeroWidth(p Position) Range {
	return Range{Start: p, End: p}
}

// IsEmpty reports whether the range is zero-width.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Selection is the primary selection of an editor. Active is the cursor.
type Selection struct {
	Anchor Position
	Active Position
}

// Cursor returns a collapsed selection at p.
func Cursor(p Position) Selection {
	return Selection{Anchor: p, Active: p}
}

// IsEmpty reports whether the selection selects no text.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Active
}

// Range returns the selected span with Start before End.
func (s Selection) Range() Range {
	if s.Active.Before(s.Anchor) {
		return Range{Start: s.Active, End: s.Anchor}
	}
	return Range{Start: s.Anchor, End: s.Active}
}

// Contains reports whether p lies in [Start, End).
func (r Range) Contains(p Position) bool {
	return !p.Before(r.Start) && p.Before(r.End)
}

// Document is a read-only view of an open text document.
type Document interface {
	// Path identifies the document.
	Path() string

	// Version increases every time the document text changes.
	Version() int

	LineCount() int
	LineAt(index int) guide.Line
}

// Editor shows a document.
type Editor interface {
	Document() Document
	Selection() Selection
	TabSize() int

	// SetDecorations replaces every range previously set with style.
	SetDecorations(style DecorationStyle, ranges []Range)
}

// Window gives access to the editors of the host.
type Window interface {
	// ActiveEditor returns nil when no editor has focus.
	ActiveEditor() Editor
	VisibleEditors() []Editor

	CreateDecorationStyle(opts DecorationOptions) DecorationStyle
}

// Scheduler runs work on the host UI loop.
type Scheduler interface {
	Post(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

// Post implements Scheduler.
func (f SchedulerFunc) Post(fn func()) {
	f(fn)
}

// Immediate runs posted work in the calling goroutine.
var Immediate Scheduler = SchedulerFunc(func(fn func()) { fn() })
