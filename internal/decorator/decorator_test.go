package decorator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/indentguide/internal/guide"
	"github.com/dshills/indentguide/internal/host"
	"github.com/dshills/indentguide/internal/host/hosttest"
	"github.com/dshills/indentguide/internal/logging"
)

const source = "func f() {\n\tif ok {\n\t\treturn\n\t}\n}\n"

func setup(t *testing.T) (*hosttest.Window, *hosttest.Editor, *Decorator) {
	t.Helper()
	doc := hosttest.NewDocument("/src/f.go", source)
	ed := hosttest.NewEditor(doc, 4)
	win := hosttest.NewWindow(ed)
	d := New(win, host.DefaultDecorationOptions())
	return win, ed, d
}

func TestNew_CreatesOneStyle(t *testing.T) {
	win, _, d := setup(t)
	if win.LiveStyles() != 1 {
		t.Errorf("LiveStyles = %d, want 1", win.LiveStyles())
	}
	opts := d.Style().Options()
	if opts.OutlineWidth != "1px" || opts.OutlineStyle != "solid" {
		t.Errorf("style options = %+v", opts)
	}
}

func TestUpdateEditor(t *testing.T) {
	_, ed, d := setup(t)

	if n := d.UpdateActive(); n != 1 {
		t.Fatalf("UpdateActive drew %d guides, want 1", n)
	}

	got := ed.Decorations(d.Style())
	want := host.ZeroWidth(host.Position{Line: 2, Character: 1})
	if len(got) != 1 || got[0] != want {
		t.Errorf("decorations = %v, want [%v]", got, want)
	}
}

func TestUpdateEditor_Idempotent(t *testing.T) {
	_, ed, d := setup(t)

	d.UpdateActive()
	first := ed.Decorations(d.Style())
	d.UpdateActive()
	second := ed.Decorations(d.Style())

	if len(first) != len(second) {
		t.Fatalf("decoration sets differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("range %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestUpdateActive_NoEditor(t *testing.T) {
	win := hosttest.NewWindow()
	d := New(win, host.DefaultDecorationOptions())
	if n := d.UpdateActive(); n != 0 {
		t.Errorf("UpdateActive without editor = %d, want 0", n)
	}
	if d.UpdateEditor(nil) != 0 {
		t.Error("UpdateEditor(nil) should be a no-op")
	}
}

func TestUpdateVisible(t *testing.T) {
	a := hosttest.NewEditor(hosttest.NewDocument("/a", "        x\n"), 4)
	b := hosttest.NewEditor(hosttest.NewDocument("/b", "            y\n"), 4)
	win := hosttest.NewWindow(a, b)
	d := New(win, host.DefaultDecorationOptions())

	if n := d.UpdateVisible(); n != 3 {
		t.Errorf("UpdateVisible = %d, want 3", n)
	}
	if a.Calls() != 1 || b.Calls() != 1 {
		t.Errorf("calls a=%d b=%d, want 1 each", a.Calls(), b.Calls())
	}
}

func TestReconfigure_ReplacesStyle(t *testing.T) {
	win, ed, d := setup(t)
	old := d.Style()

	opts := host.DecorationOptions{OutlineWidth: "1px", OutlineStyle: "dotted", OutlineColor: "#ff0000"}
	d.Reconfigure(opts)

	created := win.Created()
	if len(created) != 2 {
		t.Fatalf("created %d styles, want 2", len(created))
	}
	if !created[0].Disposed() {
		t.Error("old style was not disposed")
	}
	if win.LiveStyles() != 1 {
		t.Errorf("LiveStyles = %d, want 1", win.LiveStyles())
	}
	if d.Style() == old || d.Style().Options() != opts || d.Options() != opts {
		t.Error("decorator did not switch to the new style")
	}
	if len(ed.Decorations(d.Style())) != 1 {
		t.Error("visible editors were not redrawn with the new style")
	}
}

func TestDispose(t *testing.T) {
	win, ed, d := setup(t)

	d.Dispose()
	d.Dispose()

	if win.LiveStyles() != 0 {
		t.Errorf("LiveStyles = %d, want 0", win.LiveStyles())
	}
	if d.Style() != nil {
		t.Error("Style should be nil after Dispose")
	}
	if d.UpdateActive() != 0 || ed.Calls() != 0 {
		t.Error("updates after Dispose should be no-ops")
	}

	d.Reconfigure(host.DefaultDecorationOptions())
	if len(win.Created()) != 1 {
		t.Error("Reconfigure after Dispose must not create a style")
	}
}

type dropFirst struct{}

func (dropFirst) Filter(line guide.Line, tab int, stops []guide.Stop) ([]guide.Stop, error) {
	return stops[1:], nil
}

type failing struct{}

func (failing) Filter(guide.Line, int, []guide.Stop) ([]guide.Stop, error) {
	return nil, errors.New("boom")
}

func TestFilter(t *testing.T) {
	ed := hosttest.NewEditor(hosttest.NewDocument("/a", "            x\n"), 4)
	win := hosttest.NewWindow(ed)

	d := New(win, host.DefaultDecorationOptions(), WithFilter(dropFirst{}))
	ranges := d.Ranges(ed)
	if len(ranges) != 1 || ranges[0].Start.Character != 8 {
		t.Errorf("filtered ranges = %v, want one at column 8", ranges)
	}

	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelWarn, Output: &buf})
	d = New(win, host.DefaultDecorationOptions(), WithFilter(failing{}), WithLogger(log))
	if n := len(d.Ranges(ed)); n != 2 {
		t.Errorf("failing filter drew %d guides, want all 2", n)
	}
	if !strings.Contains(buf.String(), "stop filter failed") {
		t.Errorf("failure not logged: %q", buf.String())
	}

	d.SetFilter(nil)
	if n := len(d.Ranges(ed)); n != 2 {
		t.Errorf("after SetFilter(nil) drew %d, want 2", n)
	}
}
