package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/indentguide/internal/host"
)

var (
	textStyle     = tcell.StyleDefault
	selectedStyle = tcell.StyleDefault.Reverse(true)
	statusStyle   = tcell.StyleDefault.Reverse(true).Bold(true)
)

// Cells maps each character index of text to the screen column it starts
// in. The result has one more entry than text has runes; the last entry is
// the column just past the text. Tabs advance to the next multiple of
// tabSize and every rune of a grapheme cluster maps to the cluster's
// column.
func Cells(text string, tabSize int) []int {
	if tabSize < 1 {
		tabSize = 1
	}

	cols := make([]int, 0, len(text)+1)
	x := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		for range runes {
			cols = append(cols, x)
		}
		if len(runes) == 1 && runes[0] == '\t' {
			x += tabSize - x%tabSize
			continue
		}
		x += g.Width()
	}
	return append(cols, x)
}

// Draw renders the active editor of w above a status line and positions
// the cursor. It does not call Show.
func Draw(s tcell.Screen, w *Window, status string) {
	s.Clear()
	width, height := s.Size()
	if height < 1 {
		return
	}
	view := height - 1

	if ed := w.Active(); ed != nil {
		ed.Reveal(view)
		drawEditor(s, ed, w.Styles(), width, view)
	} else {
		s.HideCursor()
	}
	drawText(s, 0, view, width, status, statusStyle)
}

func drawEditor(s tcell.Screen, ed *Editor, styles []*Style, width, height int) {
	doc := ed.File()
	top := ed.Top()
	sel := ed.Selection()
	selected := sel.Range()

	guides := make(map[host.Position]*Style)
	for _, st := range styles {
		for _, r := range ed.Decorations(st) {
			if r.Start.Line >= top && r.Start.Line < top+height {
				guides[r.Start] = st
			}
		}
	}

	for y := 0; y < height; y++ {
		line := top + y
		if line >= doc.LineCount() {
			break
		}
		text := doc.Text(line)
		cols := Cells(text, ed.TabSize())

		char := 0
		g := uniseg.NewGraphemes(text)
		for g.Next() {
			runes := g.Runes()
			pos := host.Position{Line: line, Character: char}
			x, next := cols[char], cols[char+len(runes)]
			char += len(runes)
			if x >= width {
				break
			}

			inSelection := selected.Contains(pos)
			style := textStyle
			if inSelection {
				style = selectedStyle
			}

			if st, ok := guides[pos]; ok {
				glyph, gs := st.Cell()
				if inSelection {
					gs = gs.Reverse(true)
				}
				s.SetContent(x, y, glyph, nil, gs)
				fill(s, x+1, next, y, width, style)
				continue
			}
			if runes[0] == '\t' {
				fill(s, x, next, y, width, style)
				continue
			}
			s.SetContent(x, y, runes[0], runes[1:], style)
		}
	}

	if cur := sel.Active; cur.Line >= top && cur.Line < top+height {
		cols := Cells(doc.Text(cur.Line), ed.TabSize())
		x := cols[min(cur.Character, len(cols)-1)]
		if x < width {
			s.ShowCursor(x, cur.Line-top)
			return
		}
	}
	s.HideCursor()
}

// fill paints blanks over columns [from, to) of row y.
func fill(s tcell.Screen, from, to, y, width int, style tcell.Style) {
	for x := from; x < to && x < width; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

// drawText writes text from column x and pads the row to width.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	g := uniseg.NewGraphemes(text)
	for g.Next() && x < width {
		runes := g.Runes()
		s.SetContent(x, y, runes[0], runes[1:], style)
		x += max(g.Width(), 1)
	}
	fill(s, x, width, y, width, style)
}
