package terminal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/indentguide/internal/event"
	"github.com/dshills/indentguide/internal/host"
)

type recorder struct {
	events []any
}

func (r *recorder) subscribe(t *testing.T, bus *event.Bus) {
	t.Helper()
	if _, err := bus.SubscribeFunc("**", func(_ context.Context, ev any) error {
		r.events = append(r.events, ev)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func newApp(t *testing.T, editors ...*Editor) (*App, *Window, *recorder) {
	t.Helper()
	bus := event.NewBus()
	rec := &recorder{}
	rec.subscribe(t, bus)
	w := NewWindow(editors...)
	return NewApp(newScreen(t, 40, 10), w, bus, nil), w, rec
}

func key(k tcell.Key, r rune, mod tcell.ModMask) *tcell.EventKey {
	return tcell.NewEventKey(k, r, mod)
}

func TestApp_MovePublishesSelection(t *testing.T) {
	ed := NewEditor(NewDocument("a", "ab\ncd"), 4)
	app, _, rec := newApp(t, ed)

	app.HandleEvent(key(tcell.KeyRune, 'j', tcell.ModNone))
	app.HandleEvent(key(tcell.KeyRight, 0, tcell.ModShift))
	app.HandleEvent(key(tcell.KeyUp, 0, tcell.ModNone))
	app.HandleEvent(key(tcell.KeyUp, 0, tcell.ModNone))

	if len(rec.events) != 3 {
		t.Fatalf("got %d events, want 3 (moving past the top is not a change)", len(rec.events))
	}
	ev, ok := rec.events[1].(event.SelectionChanged)
	if !ok {
		t.Fatalf("event = %T, want SelectionChanged", rec.events[1])
	}
	if ev.Selection.IsEmpty() || ev.Selection.Active != (host.Position{Line: 1, Character: 1}) {
		t.Errorf("shift+right selection = %+v", ev.Selection)
	}
	if ev.Editor != host.Editor(ed) {
		t.Error("event should carry the active editor")
	}
}

func TestApp_TabSwitchesEditor(t *testing.T) {
	a := NewEditor(NewDocument("a", ""), 4)
	b := NewEditor(NewDocument("b", ""), 4)
	app, w, rec := newApp(t, a, b)

	app.HandleEvent(key(tcell.KeyTab, 0, tcell.ModNone))
	if w.Active() != b {
		t.Error("Tab should activate the next editor")
	}
	app.HandleEvent(key(tcell.KeyBacktab, 0, tcell.ModNone))
	if w.Active() != a {
		t.Error("Shift+Tab should activate the previous editor")
	}

	if len(rec.events) != 2 {
		t.Fatalf("got %d events, want 2", len(rec.events))
	}
	if ev, ok := rec.events[0].(event.ActiveEditorChanged); !ok || ev.Editor != host.Editor(b) {
		t.Errorf("first event = %#v", rec.events[0])
	}
}

func TestApp_QuitKeys(t *testing.T) {
	tests := []*tcell.EventKey{
		key(tcell.KeyRune, 'q', tcell.ModNone),
		key(tcell.KeyEscape, 0, tcell.ModNone),
		key(tcell.KeyCtrlC, 0, tcell.ModCtrl),
	}
	for _, ev := range tests {
		app, _, _ := newApp(t, NewEditor(NewDocument("a", ""), 4))
		app.HandleEvent(ev)
		select {
		case <-app.Done():
		default:
			t.Errorf("key %v did not quit", ev.Name())
		}
	}
}

func TestApp_PostRunsOnLoop(t *testing.T) {
	app, _, _ := newApp(t, NewEditor(NewDocument("a", ""), 4))

	ran := make(chan struct{})
	app.Post(func() { close(ran) })

	errc := make(chan error, 1)
	go func() { errc <- app.Run(context.Background()) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted work did not run")
	}

	app.Quit()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

func TestApp_RunStopsWithContext(t *testing.T) {
	app, _, _ := newApp(t, NewEditor(NewDocument("a", ""), 4))
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- app.Run(ctx) }()
	cancel()

	select {
	case <-errc:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestApp_StatusLine(t *testing.T) {
	ed := NewEditor(NewDocument("/tmp/main.go", "x\ny"), 4)
	app, _, _ := newApp(t, ed, NewEditor(NewDocument("b", ""), 4))
	app.SetStatus(func() string { return "structural" })

	app.HandleEvent(key(tcell.KeyDown, 0, tcell.ModNone))

	got := app.statusLine()
	for _, want := range []string{"main.go", "Ln 2, Col 1", "[1/2]", "structural"} {
		if !strings.Contains(got, want) {
			t.Errorf("status %q missing %q", got, want)
		}
	}
}

func TestApp_DocumentChangedClampsSelection(t *testing.T) {
	doc := NewDocument("a", "one\ntwo\nthree")
	ed := NewEditor(doc, 4)
	app, _, rec := newApp(t, ed)

	ed.Move(2, 5, false)
	doc.SetText("x")
	app.DocumentChanged(doc)

	if sel := ed.Selection(); sel != host.Cursor(host.Position{Line: 0, Character: 1}) {
		t.Errorf("selection after shrinking reload = %+v, want (0,1)", sel)
	}
	if !strings.Contains(app.statusLine(), "Ln 1, Col 2") {
		t.Errorf("status = %q, want the clamped cursor", app.statusLine())
	}
	if len(rec.events) != 1 {
		t.Fatalf("got %d events, want 1", len(rec.events))
	}
	if ev, ok := rec.events[0].(event.DocumentChanged); !ok || !ev.Reloaded {
		t.Errorf("reload event = %#v, want DocumentChanged with Reloaded", rec.events[0])
	}
}

func TestFileWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.txt")
	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := OpenDocument(path)
	if err != nil {
		t.Fatal(err)
	}

	changed := make(chan *Document, 4)
	w, err := WatchDocuments([]*Document{doc}, nil, func(d *Document) { changed <- d }, nil)
	if err != nil {
		t.Fatalf("WatchDocuments failed: %v", err)
	}
	defer w.Dispose()

	other := filepath.Join(filepath.Dir(path), "other.txt")
	if err := os.WriteFile(other, []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("a\n    b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for doc.Text(1) != "    b" {
		select {
		case d := <-changed:
			if d != doc {
				t.Fatalf("reloaded %s, want %s", d.Path(), doc.Path())
			}
		case <-deadline:
			t.Fatalf("timed out waiting for reload, text=%q", doc.Text(1))
		}
	}
	if doc.Version() < 2 {
		t.Errorf("Version = %d after reload, want at least 2", doc.Version())
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
	if err := w.Close(); err != ErrWatcherClosed {
		t.Errorf("second Close = %v, want ErrWatcherClosed", err)
	}
}
