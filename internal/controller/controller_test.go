package controller

import (
	"context"
	"testing"
	"time"

	"github.com/dshills/indentguide/internal/config"
	"github.com/dshills/indentguide/internal/decorator"
	"github.com/dshills/indentguide/internal/event"
	"github.com/dshills/indentguide/internal/host"
	"github.com/dshills/indentguide/internal/host/hosttest"
	"github.com/dshills/indentguide/internal/policy"
)

const text = "func f() {\n        x := 1\n}"

type fixture struct {
	bus  *event.Bus
	doc  *hosttest.Document
	ed   *hosttest.Editor
	win  *hosttest.Window
	deco *decorator.Decorator
	ctl  *Controller
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{bus: event.NewBus()}
	f.doc = hosttest.NewDocument("/src/f.go", text)
	f.ed = hosttest.NewEditor(f.doc, 4)
	f.win = hosttest.NewWindow(f.ed)
	f.deco = decorator.New(f.win, host.DefaultDecorationOptions())

	ctl, err := New(f.bus, f.win, f.deco, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	f.ctl = ctl
	t.Cleanup(func() {
		ctl.Dispose()
		f.deco.Dispose()
	})
	return f
}

func (f *fixture) publish(t *testing.T, ev any) {
	t.Helper()
	if err := f.bus.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
}

func (f *fixture) moveCursor(line, char int) {
	f.ed.Select(host.Cursor(host.Position{Line: line, Character: char}))
}

func TestNew_DrawsActiveEditor(t *testing.T) {
	f := newFixture(t, Options{})

	if f.ctl.Updates() != 1 {
		t.Errorf("Updates = %d, want 1 initial draw", f.ctl.Updates())
	}
	if len(f.ed.Decorations(f.deco.Style())) != 1 {
		t.Errorf("decorations = %v, want one guide", f.ed.Decorations(f.deco.Style()))
	}
	if f.ctl.Policy().Name() != policy.NameStructural {
		t.Errorf("default policy = %s, want structural", f.ctl.Policy().Name())
	}
	if f.bus.Stats().ActiveSubscribers != 4 {
		t.Errorf("ActiveSubscribers = %d, want 4", f.bus.Stats().ActiveSubscribers)
	}
}

func TestStructural_SkipsCursorMoves(t *testing.T) {
	f := newFixture(t, Options{})

	f.moveCursor(1, 3)
	f.publish(t, event.SelectionChanged{Editor: f.ed, Selection: f.ed.Selection()})

	if f.ctl.Updates() != 1 || f.ctl.Skipped() != 1 {
		t.Errorf("updates=%d skipped=%d, want 1/1", f.ctl.Updates(), f.ctl.Skipped())
	}
}

func TestStructural_TextChanges(t *testing.T) {
	f := newFixture(t, Options{})

	f.moveCursor(1, 12)
	f.doc.SetText("func f() {\n        x := 12\n}")
	f.publish(t, event.DocumentChanged{Document: f.doc})
	if f.ctl.Updates() != 1 {
		t.Errorf("edit after indentation recomputed: updates = %d", f.ctl.Updates())
	}

	f.moveCursor(1, 4)
	f.doc.SetText("func f() {\n            x := 12\n}")
	f.publish(t, event.DocumentChanged{Document: f.doc})
	if f.ctl.Updates() != 2 {
		t.Errorf("edit inside indentation skipped: updates = %d", f.ctl.Updates())
	}
	if n := len(f.ed.Decorations(f.deco.Style())); n != 2 {
		t.Errorf("guides = %d, want 2 after deeper indentation", n)
	}
}

func TestStructural_ReloadRecomputes(t *testing.T) {
	f := newFixture(t, Options{})

	f.moveCursor(0, 9)
	f.doc.SetText("func f() {\n            x := 1\n}")
	f.publish(t, event.DocumentChanged{Document: f.doc, Reloaded: true})

	if f.ctl.Updates() != 2 {
		t.Errorf("reload with cursor past indentation skipped: updates = %d", f.ctl.Updates())
	}
	if n := len(f.ed.Decorations(f.deco.Style())); n != 2 {
		t.Errorf("guides = %d, want 2 after reload", n)
	}
}

func TestReload_SurvivesDebounce(t *testing.T) {
	sched := hosttest.NewScheduler()
	f := newFixture(t, Options{Debounce: time.Hour, Scheduler: sched})

	f.moveCursor(0, 9)
	f.doc.SetText("func f() {\n            x := 1\n}")
	f.publish(t, event.DocumentChanged{Document: f.doc, Reloaded: true})
	f.publish(t, event.DocumentChanged{Document: f.doc})
	f.ctl.Flush()

	if f.ctl.Updates() != 2 {
		t.Errorf("a later edit hid the pending reload: updates = %d", f.ctl.Updates())
	}
}

func TestTextChange_OtherDocumentIgnored(t *testing.T) {
	f := newFixture(t, Options{Policy: policy.Always{}})

	other := hosttest.NewDocument("/src/other.go", "        y")
	f.publish(t, event.DocumentChanged{Document: other})
	f.publish(t, event.DocumentChanged{})

	if f.ctl.Updates() != 1 {
		t.Errorf("Updates = %d, want 1", f.ctl.Updates())
	}
}

func TestTextChange_Debounced(t *testing.T) {
	sched := hosttest.NewScheduler()
	f := newFixture(t, Options{Policy: policy.Always{}, Debounce: 20 * time.Millisecond, Scheduler: sched})

	for i := 0; i < 5; i++ {
		f.publish(t, event.DocumentChanged{Document: f.doc})
	}

	select {
	case <-sched.Ready():
	case <-time.After(time.Second):
		t.Fatal("debounced update never posted")
	}
	time.Sleep(30 * time.Millisecond)
	sched.Drain()

	if f.ctl.Updates() != 2 {
		t.Errorf("Updates = %d, want initial draw plus one coalesced update", f.ctl.Updates())
	}
}

func TestFlush(t *testing.T) {
	f := newFixture(t, Options{Policy: policy.Always{}, Debounce: time.Hour})

	f.publish(t, event.DocumentChanged{Document: f.doc})
	if f.ctl.Updates() != 1 {
		t.Fatal("update ran before the debounce delay")
	}
	f.ctl.Flush()
	if f.ctl.Updates() != 2 {
		t.Errorf("Updates = %d after Flush, want 2", f.ctl.Updates())
	}
}

func TestAlways_SelectionRecomputes(t *testing.T) {
	f := newFixture(t, Options{Policy: policy.Always{}})

	f.publish(t, event.SelectionChanged{Editor: f.ed})
	f.publish(t, event.ActiveEditorChanged{Editor: f.ed})
	f.publish(t, event.ActiveEditorChanged{})

	if f.ctl.Updates() != 3 {
		t.Errorf("Updates = %d, want 3", f.ctl.Updates())
	}
}

func TestFingerprint_SkipsDuplicates(t *testing.T) {
	f := newFixture(t, Options{Policy: policy.NewFingerprint()})

	f.publish(t, event.ActiveEditorChanged{Editor: f.ed})
	f.publish(t, event.SelectionChanged{Editor: f.ed})
	if f.ctl.Updates() != 1 {
		t.Errorf("Updates = %d, want 1 (unchanged version)", f.ctl.Updates())
	}

	f.doc.SetText("        a\n            b")
	f.publish(t, event.DocumentChanged{Document: f.doc})
	f.publish(t, event.DocumentChanged{Document: f.doc})
	if f.ctl.Updates() != 2 {
		t.Errorf("Updates = %d, want 2 after one version bump", f.ctl.Updates())
	}
}

func TestConfigChanged(t *testing.T) {
	f := newFixture(t, Options{})

	s := config.Defaults()
	s.Style = host.OutlineDotted
	s.Color = "#00ff00"
	s.Policy = policy.NameAlways
	s.Debounce = 0
	f.publish(t, event.ConfigChanged{Settings: s})

	created := f.win.Created()
	if len(created) != 2 || !created[0].Disposed() {
		t.Fatalf("style not replaced: created=%d", len(created))
	}
	if f.win.LiveStyles() != 1 {
		t.Errorf("LiveStyles = %d, want 1", f.win.LiveStyles())
	}
	if got := f.deco.Style().Options(); got.OutlineStyle != "dotted" || got.OutlineColor != "#00ff00" {
		t.Errorf("new style options = %+v", got)
	}
	if f.ctl.Policy().Name() != policy.NameAlways {
		t.Errorf("policy = %s, want always", f.ctl.Policy().Name())
	}
	if len(f.ed.Decorations(f.deco.Style())) != 1 {
		t.Error("visible editor not redrawn with the new style")
	}

	f.publish(t, event.ConfigChanged{Settings: s})
	if len(f.win.Created()) != 2 {
		t.Error("unchanged decoration options must not recreate the style")
	}
}

func TestConfigChanged_UnknownPolicyKept(t *testing.T) {
	f := newFixture(t, Options{})

	s := config.Defaults()
	s.Policy = "bogus"
	f.ctl.Apply(s)

	if f.ctl.Policy().Name() != policy.NameStructural {
		t.Errorf("policy = %s, want structural kept", f.ctl.Policy().Name())
	}
}

func TestDispose(t *testing.T) {
	f := newFixture(t, Options{Policy: policy.Always{}, Debounce: 10 * time.Millisecond})

	f.publish(t, event.DocumentChanged{Document: f.doc})
	f.ctl.Dispose()
	time.Sleep(40 * time.Millisecond)

	if f.bus.Stats().ActiveSubscribers != 0 {
		t.Errorf("ActiveSubscribers = %d, want 0", f.bus.Stats().ActiveSubscribers)
	}
	f.publish(t, event.SelectionChanged{Editor: f.ed})
	if f.ctl.Updates() != 1 {
		t.Errorf("Updates = %d, want 1 (pending and later events dropped)", f.ctl.Updates())
	}
}
