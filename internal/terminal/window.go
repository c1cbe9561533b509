package terminal

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/indentguide/internal/host"
)

// DefaultGuideColor is used when a style has no colour or an unknown name.
var DefaultGuideColor = tcell.ColorDarkGray

// Window holds the open editors. Only the active editor is on screen, so it
// is also the only visible one.
type Window struct {
	mu      sync.Mutex
	editors []*Editor
	active  int
	styles  []*Style
}

// NewWindow creates a window whose first editor is active.
func NewWindow(editors ...*Editor) *Window {
	return &Window{editors: editors}
}

// ActiveEditor implements host.Window.
func (w *Window) ActiveEditor() host.Editor {
	if e := w.Active(); e != nil {
		return e
	}
	return nil
}

// Active returns the active editor or nil.
func (w *Window) Active() *Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.editors) == 0 {
		return nil
	}
	return w.editors[w.active]
}

// VisibleEditors implements host.Window.
func (w *Window) VisibleEditors() []host.Editor {
	if e := w.Active(); e != nil {
		return []host.Editor{e}
	}
	return nil
}

// Editors returns all editors in tab order.
func (w *Window) Editors() []*Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Editor(nil), w.editors...)
}

// Index returns the position of the active editor.
func (w *Window) Index() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Cycle activates the editor delta positions away, wrapping around, and
// returns it. It returns nil when the active editor did not change.
func (w *Window) Cycle(delta int) *Editor {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.editors)
	if n < 2 {
		return nil
	}
	next := ((w.active+delta)%n + n) % n
	if next == w.active {
		return nil
	}
	w.active = next
	return w.editors[next]
}

// CreateDecorationStyle implements host.Window.
func (w *Window) CreateDecorationStyle(opts host.DecorationOptions) host.DecorationStyle {
	s := &Style{
		window: w,
		opts:   opts,
		style:  tcell.StyleDefault.Foreground(ParseColor(opts.OutlineColor)),
		glyph:  Glyph(opts.OutlineStyle),
	}

	w.mu.Lock()
	w.styles = append(w.styles, s)
	w.mu.Unlock()
	return s
}

// Styles returns the live decoration styles in creation order.
func (w *Window) Styles() []*Style {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Style(nil), w.styles...)
}

func (w *Window) release(s *Style) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, live := range w.styles {
		if live == s {
			w.styles = append(w.styles[:i], w.styles[i+1:]...)
			return true
		}
	}
	return false
}

// Style is a guide decoration drawn as a box-drawing glyph.
type Style struct {
	window *Window
	opts   host.DecorationOptions
	style  tcell.Style
	glyph  rune
}

// Options implements host.DecorationStyle.
func (s *Style) Options() host.DecorationOptions { return s.opts }

// Cell returns the glyph and tcell style used for a guide.
func (s *Style) Cell() (rune, tcell.Style) { return s.glyph, s.style }

// Dispose removes the style and everything drawn with it.
func (s *Style) Dispose() {
	if !s.window.release(s) {
		return
	}
	for _, e := range s.window.Editors() {
		e.forget(s)
	}
}

// Glyph returns the rune drawn for an outline style.
func Glyph(style string) rune {
	switch style {
	case host.OutlineDashed:
		return '╎'
	case host.OutlineDotted:
		return '┊'
	case host.OutlineDouble:
		return '║'
	default:
		return '│'
	}
}

// ParseColor maps a #rrggbb value or a colour name to a tcell colour.
func ParseColor(c string) tcell.Color {
	c = strings.TrimSpace(c)
	if c == "" {
		return DefaultGuideColor
	}
	if strings.HasPrefix(c, "#") {
		rgb, err := colorful.Hex(c)
		if err != nil {
			return DefaultGuideColor
		}
		r, g, b := rgb.RGB255()
		return tcell.NewRGBColor(int32(r), int32(g), int32(b))
	}
	if tc := tcell.GetColor(strings.ToLower(c)); tc != tcell.ColorDefault {
		return tc
	}
	return DefaultGuideColor
}
