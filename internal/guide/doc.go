// Package guide computes indent guide stops.
//
// A guide stop is a zero-width column on a line at which a vertical guide
// mark is drawn. One stop is produced for every closed indentation level of
// a line except the outermost:
//
//	"        x"  tab width 4  ->  stop at column 4
//	"\t\t\tx"    any width    ->  stops at columns 1 and 2
//
// Blank and whitespace-only lines use their full length as indentation, so
// guides continue through empty lines inside an indented block.
//
// # Limitations
//
// The stop size is chosen from the first character of the line: a leading
// tab selects a stop size of 1 (one stop per tab), anything else selects the
// configured tab width. Lines that mix tabs and spaces in their indentation
// are not handled and produce stops that do not line up with the text.
package guide
