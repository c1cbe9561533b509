package guide

import "unicode/utf8"

// Line is a snapshot of one document line.
type Line struct {
	// Number is the zero-based line number.
	Number int

	// Text is the line content without the line terminator.
	Text string

	// FirstNonWhitespace is the character index of the first character that
	// is not a space or tab, or the character length of Text when the line
	// is blank or whitespace-only.
	FirstNonWhitespace int
}

// NewLine creates a Line and derives FirstNonWhitespace from text.
func NewLine(number int, text string) Line {
	return Line{
		Number:             number,
		Text:               text,
		FirstNonWhitespace: firstNonWhitespace(text),
	}
}

// Len returns the length of the line in characters.
func (l Line) Len() int {
	return utf8.RuneCountInString(l.Text)
}

// IsEmptyOrWhitespace reports whether the line has no visible characters.
func (l Line) IsEmptyOrWhitespace() bool {
	return l.FirstNonWhitespace >= l.Len()
}

// IndentWidth returns the indentation width of the line in characters.
func (l Line) IndentWidth() int {
	if l.IsEmptyOrWhitespace() {
		return l.Len()
	}
	return l.FirstNonWhitespace
}

// IsIndented reports whether the line has non-zero indentation.
func (l Line) IsIndented() bool {
	return l.FirstNonWhitespace != 0
}

func firstNonWhitespace(text string) int {
	n := 0
	for _, r := range text {
		if r != ' ' && r != '\t' {
			return n
		}
		n++
	}
	return n
}
