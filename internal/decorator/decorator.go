// Package decorator turns guide stops into editor decorations.
//
// A Decorator owns exactly one decoration style at a time. The style is
// created with the decorator, replaced by Reconfigure and released by
// Dispose; every replacement disposes the previous style first.
package decorator

import (
	"sync"

	"github.com/dshills/indentguide/internal/guide"
	"github.com/dshills/indentguide/internal/host"
	"github.com/dshills/indentguide/internal/logging"
)

// StopFilter may drop stops of a line before they are drawn.
type StopFilter interface {
	Filter(line guide.Line, tabSize int, stops []guide.Stop) ([]guide.Stop, error)
}

// Option configures a Decorator.
type Option func(*Decorator)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Decorator) {
		if l != nil {
			d.log = l
		}
	}
}

// WithFilter installs a stop filter.
func WithFilter(f StopFilter) Option {
	return func(d *Decorator) {
		d.filter = f
	}
}

// Decorator draws indent guides into the editors of a window.
type Decorator struct {
	mu       sync.Mutex
	window   host.Window
	opts     host.DecorationOptions
	style    host.DecorationStyle
	filter   StopFilter
	log      *logging.Logger
	disposed bool
}

// New creates a decorator and its decoration style.
func New(window host.Window, opts host.DecorationOptions, options ...Option) *Decorator {
	d := &Decorator{
		window: window,
		opts:   opts,
		log:    logging.Null(),
	}
	for _, opt := range options {
		opt(d)
	}
	d.style = window.CreateDecorationStyle(opts)
	return d
}

// Style returns the current decoration style, or nil after Dispose.
func (d *Decorator) Style() host.DecorationStyle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.style
}

// Options returns the options of the current style.
func (d *Decorator) Options() host.DecorationOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opts
}

// SetFilter replaces the stop filter. A nil filter draws every stop.
func (d *Decorator) SetFilter(f StopFilter) {
	d.mu.Lock()
	d.filter = f
	d.mu.Unlock()
}

// Ranges computes the guide ranges for the document shown in e.
func (d *Decorator) Ranges(e host.Editor) []host.Range {
	if e == nil || e.Document() == nil {
		return nil
	}

	d.mu.Lock()
	filter := d.filter
	d.mu.Unlock()

	tabSize := e.TabSize()
	var ranges []host.Range
	failed := 0

	for _, line := range guide.IndentedLines(e.Document()) {
		stops := guide.Stops(line, tabSize)
		if filter != nil && len(stops) > 0 {
			kept, err := filter.Filter(line, tabSize, stops)
			if err != nil {
				if failed == 0 {
					d.log.Warn("stop filter failed, drawing all guides: %v", err)
				}
				failed++
			} else {
				stops = kept
			}
		}

		for _, s := range stops {
			ranges = append(ranges, host.ZeroWidth(host.Position{Line: s.Line, Character: s.Column}))
		}
	}

	if failed > 1 {
		d.log.Warn("stop filter failed on %d lines", failed)
	}
	return ranges
}

// UpdateEditor redraws the guides of e and returns the number drawn.
func (d *Decorator) UpdateEditor(e host.Editor) int {
	if e == nil || e.Document() == nil {
		return 0
	}

	d.mu.Lock()
	style := d.style
	disposed := d.disposed
	d.mu.Unlock()
	if disposed {
		return 0
	}

	ranges := d.Ranges(e)
	e.SetDecorations(style, ranges)

	d.log.Debug("updated %d guides in %s", len(ranges), e.Document().Path())
	return len(ranges)
}

// UpdateActive redraws the active editor. It is a no-op without one.
func (d *Decorator) UpdateActive() int {
	return d.UpdateEditor(d.window.ActiveEditor())
}

// UpdateVisible redraws every visible editor.
func (d *Decorator) UpdateVisible() int {
	total := 0
	for _, e := range d.window.VisibleEditors() {
		total += d.UpdateEditor(e)
	}
	return total
}

// Reconfigure replaces the decoration style and redraws visible editors.
func (d *Decorator) Reconfigure(opts host.DecorationOptions) {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	old := d.style
	d.style = nil
	d.mu.Unlock()

	if old != nil {
		old.Dispose()
	}
	style := d.window.CreateDecorationStyle(opts)

	d.mu.Lock()
	d.style = style
	d.opts = opts
	d.mu.Unlock()

	d.log.Info("decoration style replaced: %s %s", opts.OutlineStyle, colorName(opts.OutlineColor))
	d.UpdateVisible()
}

// Dispose releases the decoration style. Later updates are no-ops.
func (d *Decorator) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	style := d.style
	d.style = nil
	d.mu.Unlock()

	if style != nil {
		style.Dispose()
	}
}

func colorName(c string) string {
	if c == "" {
		return "default"
	}
	return c
}
