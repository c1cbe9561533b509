package terminal

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/indentguide/internal/event"
	"github.com/dshills/indentguide/internal/logging"
)

// App is the viewer event loop. It translates keys into host events and
// implements host.Scheduler with tcell interrupt events.
type App struct {
	screen tcell.Screen
	window *Window
	bus    *event.Bus
	log    *logging.Logger

	mu     sync.Mutex
	status func() string

	quit     chan struct{}
	quitOnce sync.Once
}

// NewApp creates an event loop for an initialised screen.
func NewApp(screen tcell.Screen, window *Window, bus *event.Bus, log *logging.Logger) *App {
	if log == nil {
		log = logging.Null()
	}
	return &App{
		screen: screen,
		window: window,
		bus:    bus,
		log:    log.WithComponent("terminal"),
		quit:   make(chan struct{}),
	}
}

// SetStatus sets a function whose text is appended to the status line.
func (a *App) SetStatus(fn func() string) {
	a.mu.Lock()
	a.status = fn
	a.mu.Unlock()
}

// Post implements host.Scheduler. fn runs on the goroutine calling Run.
func (a *App) Post(fn func()) {
	if err := a.screen.PostEvent(tcell.NewEventInterrupt(fn)); err != nil {
		a.log.Warn("dropped posted work: %v", err)
	}
}

// Run handles events until Quit is called, a quit key is pressed or ctx
// is done.
func (a *App) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, a.Quit)
	defer stop()

	a.Redraw()
	for {
		select {
		case <-a.quit:
			return nil
		default:
		}

		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		a.HandleEvent(ev)
	}
}

// Quit stops Run.
func (a *App) Quit() {
	a.quitOnce.Do(func() {
		close(a.quit)
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
}

// Done is closed after Quit.
func (a *App) Done() <-chan struct{} {
	return a.quit
}

// HandleEvent processes one screen event and redraws.
func (a *App) HandleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventInterrupt:
		if fn, ok := e.Data().(func()); ok && fn != nil {
			fn()
		}
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		a.handleKey(e)
	}
	a.Redraw()
}

// Redraw draws the window and shows it.
func (a *App) Redraw() {
	Draw(a.screen, a.window, a.statusLine())
	a.screen.Show()
}

// DocumentChanged clamps the selections of editors showing doc and
// announces that its text was reloaded.
func (a *App) DocumentChanged(doc *Document) {
	for _, ed := range a.window.Editors() {
		if ed.File() == doc {
			ed.Clamp()
		}
	}
	a.log.Debug("reloaded %s at version %d", doc.Path(), doc.Version())
	a.publish(event.DocumentChanged{Document: doc, Reloaded: true})
}

func (a *App) handleKey(ev *tcell.EventKey) {
	extend := ev.Modifiers()&tcell.ModShift != 0

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		a.Quit()
	case tcell.KeyTab:
		a.switchEditor(1)
	case tcell.KeyBacktab:
		a.switchEditor(-1)
	case tcell.KeyUp:
		a.move(-1, 0, extend)
	case tcell.KeyDown:
		a.move(1, 0, extend)
	case tcell.KeyLeft:
		a.move(0, -1, extend)
	case tcell.KeyRight:
		a.move(0, 1, extend)
	case tcell.KeyPgUp:
		a.move(-a.page(), 0, extend)
	case tcell.KeyPgDn:
		a.move(a.page(), 0, extend)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			a.Quit()
		case 'h':
			a.move(0, -1, false)
		case 'j':
			a.move(1, 0, false)
		case 'k':
			a.move(-1, 0, false)
		case 'l':
			a.move(0, 1, false)
		}
	}
}

func (a *App) page() int {
	_, h := a.screen.Size()
	return max(h-2, 1)
}

func (a *App) move(lines, chars int, extend bool) {
	ed := a.window.Active()
	if ed == nil {
		return
	}
	before := ed.Selection()
	sel := ed.Move(lines, chars, extend)
	if sel == before {
		return
	}
	a.publish(event.SelectionChanged{Editor: ed, Selection: sel})
}

func (a *App) switchEditor(delta int) {
	ed := a.window.Cycle(delta)
	if ed == nil {
		return
	}
	a.log.Debug("active editor %s", ed.File().Path())
	a.publish(event.ActiveEditorChanged{Editor: ed})
}

func (a *App) publish(ev any) {
	if a.bus == nil {
		return
	}
	if err := a.bus.Publish(context.Background(), ev); err != nil {
		a.log.Error("publishing %T: %v", ev, err)
	}
}

func (a *App) statusLine() string {
	a.mu.Lock()
	extra := a.status
	a.mu.Unlock()

	ed := a.window.Active()
	if ed == nil {
		return " no file"
	}

	cur := ed.Selection().Active
	line := fmt.Sprintf(" %s  Ln %d, Col %d  [%d/%d]",
		filepath.Base(ed.File().Path()), cur.Line+1, cur.Character+1,
		a.window.Index()+1, len(a.window.Editors()))
	if extra != nil {
		if s := extra(); s != "" {
			line += "  " + s
		}
	}
	return line
}
