package terminal

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/indentguide/internal/guide"
)

// Document is a file held in memory. Its version starts at 1 and grows by
// one on every reload that changed the text.
type Document struct {
	mu      sync.RWMutex
	path    string
	version int
	lines   []string
}

// OpenDocument reads path.
func OpenDocument(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return NewDocument(abs, string(data)), nil
}

// NewDocument creates a document from text.
func NewDocument(path, text string) *Document {
	return &Document{path: path, version: 1, lines: splitLines(text)}
}

func (d *Document) Path() string { return d.path }

func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

func (d *Document) LineAt(i int) guide.Line {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) {
		return guide.NewLine(i, "")
	}
	return guide.NewLine(i, d.lines[i])
}

// Text returns line i without its line break.
func (d *Document) Text(i int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// Reload rereads the file and reports whether the text changed.
func (d *Document) Reload() (bool, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return false, err
	}
	return d.SetText(string(data)), nil
}

// SetText replaces the text and reports whether it changed.
func (d *Document) SetText(text string) bool {
	lines := splitLines(text)

	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.Equal(d.lines, lines) {
		return false
	}
	d.lines = lines
	d.version++
	return true
}

// splitLines splits on \n and drops the \r of CRLF endings. A trailing line
// break does not start another line.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
