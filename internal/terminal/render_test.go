package terminal

import (
	"slices"
	"testing"

	"github.com/dshills/indentguide/internal/decorator"
	"github.com/dshills/indentguide/internal/host"
)

func TestCells(t *testing.T) {
	tests := []struct {
		name string
		text string
		tab  int
		want []int
	}{
		{"empty", "", 4, []int{0}},
		{"ascii", "ab", 4, []int{0, 1, 2}},
		{"tabs", "\t\tx", 4, []int{0, 4, 8, 9}},
		{"tab after text", "ab\tc", 4, []int{0, 1, 2, 4, 5}},
		{"tab size floor", "\tx", 0, []int{0, 1, 2}},
		{"wide", "日本", 4, []int{0, 2, 4}},
		{"combining", "e\u0301x", 4, []int{0, 0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cells(tt.text, tt.tab); !slices.Equal(got, tt.want) {
				t.Errorf("Cells(%q, %d) = %v, want %v", tt.text, tt.tab, got, tt.want)
			}
		})
	}
}

func TestDraw_Guides(t *testing.T) {
	s := newScreen(t, 20, 5)

	doc := NewDocument("/src/main.go", "func\n        x\n\t\ty")
	ed := NewEditor(doc, 4)
	w := NewWindow(ed)

	d := decorator.New(w, host.DecorationOptions{OutlineStyle: host.OutlineDashed})
	defer d.Dispose()
	if n := d.UpdateActive(); n != 2 {
		t.Fatalf("UpdateActive = %d, want 2", n)
	}

	Draw(s, w, "status")

	glyphAt := func(x, y int) rune {
		r, _, _, _ := s.GetContent(x, y)
		return r
	}

	if glyphAt(4, 1) != '╎' {
		t.Errorf("space-indented line: cell (4,1) = %q, want guide", glyphAt(4, 1))
	}
	if glyphAt(0, 1) != ' ' || glyphAt(8, 1) != 'x' {
		t.Errorf("space-indented line drawn as %q...%q", glyphAt(0, 1), glyphAt(8, 1))
	}
	// The tab-indented line has a stop at character 1, the second tab.
	if glyphAt(4, 2) != '╎' || glyphAt(8, 2) != 'y' {
		t.Errorf("tab-indented line: (4,2)=%q (8,2)=%q", glyphAt(4, 2), glyphAt(8, 2))
	}
	if glyphAt(0, 4) != 's' {
		t.Errorf("status line missing, got %q", glyphAt(0, 4))
	}
}

func TestDraw_DisposedStyleNotDrawn(t *testing.T) {
	s := newScreen(t, 20, 4)

	ed := NewEditor(NewDocument("a", "        x"), 4)
	w := NewWindow(ed)
	d := decorator.New(w, host.DefaultDecorationOptions())
	d.UpdateActive()
	d.Reconfigure(host.DecorationOptions{OutlineStyle: host.OutlineDouble})

	Draw(s, w, "")
	if r, _, _, _ := s.GetContent(4, 0); r != '║' {
		t.Errorf("cell (4,0) = %q, want the reconfigured glyph", r)
	}

	d.Dispose()
	Draw(s, w, "")
	if r, _, _, _ := s.GetContent(4, 0); r != ' ' {
		t.Errorf("cell (4,0) = %q after Dispose, want blank", r)
	}
}

func TestDraw_Selection(t *testing.T) {
	s := newScreen(t, 20, 4)

	ed := NewEditor(NewDocument("a", "abcd"), 4)
	ed.Move(0, 1, false)
	ed.Move(0, 2, true)
	Draw(s, NewWindow(ed), "")

	for x, want := range []bool{false, true, true, false} {
		_, _, style, _ := s.GetContent(x, 0)
		_, _, attrs := style.Decompose()
		if got := attrs != 0; got != want {
			t.Errorf("cell %d selected = %v, want %v", x, got, want)
		}
	}
}
