package guide

// Stop is a zero-width guide position.
type Stop struct {
	Line   int
	Column int
}

// Source provides the lines of a document.
type Source interface {
	LineCount() int
	LineAt(index int) Line
}

// StopSize returns the column distance between the guide stops of a line.
// Tab-indented lines use one stop per tab.
func StopSize(line Line, tabWidth int) int {
	if len(line.Text) > 0 && line.Text[0] == '\t' {
		return 1
	}
	if tabWidth < 1 {
		return 1
	}
	return tabWidth
}

// Depth returns the number of indentation levels on a line.
func Depth(line Line, tabWidth int) int {
	return line.IndentWidth() / StopSize(line, tabWidth)
}

// Stops returns the guide stops of a line in ascending column order.
// Lines with a depth of one or less have no stops.
func Stops(line Line, tabWidth int) []Stop {
	size := StopSize(line, tabWidth)
	depth := line.IndentWidth() / size
	if depth <= 1 {
		return nil
	}

	stops := make([]Stop, 0, depth-1)
	for step := 1; step < depth; step++ {
		stops = append(stops, Stop{Line: line.Number, Column: step * size})
	}
	return stops
}

// IndentedLines returns the lines of src with non-zero indentation.
func IndentedLines(src Source) []Line {
	if src == nil {
		return nil
	}

	var lines []Line
	for i := 0; i < src.LineCount(); i++ {
		line := src.LineAt(i)
		if line.IsIndented() {
			lines = append(lines, line)
		}
	}
	return lines
}

// DocumentStops returns the guide stops of every indented line in src,
// ordered by line and then by column.
func DocumentStops(src Source, tabWidth int) []Stop {
	var stops []Stop
	for _, line := range IndentedLines(src) {
		stops = append(stops, Stops(line, tabWidth)...)
	}
	return stops
}
