// Package terminal is a read-only tcell host for indent guides.
//
// It implements the host boundary (documents, editors, a window and
// decoration styles) and runs the viewer event loop. Every handler runs on
// the goroutine that polls the screen; timers and file watchers hand work
// back to it with tcell interrupt events.
//
// Guides are drawn in the cell of their character column. Tabs expand to
// the editor's tab size and wide graphemes take two cells.
package terminal
