// Package extension activates and deactivates indent guides for a host.
//
// Activate loads settings, creates the decorator and controller, loads the
// optional stop filter script and, when asked, watches the settings file.
// Everything acquired is registered in one host.Bundle; Deactivate releases
// it in reverse order so the decoration style is disposed last.
package extension

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/indentguide/internal/config"
	"github.com/dshills/indentguide/internal/controller"
	"github.com/dshills/indentguide/internal/decorator"
	"github.com/dshills/indentguide/internal/event"
	"github.com/dshills/indentguide/internal/host"
	"github.com/dshills/indentguide/internal/logging"
	"github.com/dshills/indentguide/internal/policy"
	"github.com/dshills/indentguide/internal/script"
)

// ErrNoWindow is returned when activating without a host window.
var ErrNoWindow = errors.New("extension: no host window")

// Options describe the host an extension runs in.
type Options struct {
	Window    host.Window
	Scheduler host.Scheduler
	Bus       *event.Bus

	// Loader reads settings. Nil uses defaults and the environment.
	Loader *config.Loader

	// Watch reloads settings when the loader's file changes.
	Watch bool

	Logger *logging.Logger
}

// Extension is one activation.
type Extension struct {
	id     string
	bus    *event.Bus
	sched  host.Scheduler
	loader *config.Loader
	log    *logging.Logger

	decorator  *decorator.Decorator
	controller *controller.Controller

	mu       sync.Mutex
	settings config.Settings
	filter   *script.Filter

	disposables *host.Bundle
}

// Activate starts indent guides in opts.Window.
func Activate(opts Options) (*Extension, error) {
	if opts.Window == nil {
		return nil, ErrNoWindow
	}
	if opts.Scheduler == nil {
		opts.Scheduler = host.Immediate
	}
	if opts.Bus == nil {
		opts.Bus = event.NewBus()
	}
	if opts.Loader == nil {
		opts.Loader = config.NewLoader("")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Null()
	}

	settings, err := opts.Loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	id := uuid.NewString()
	log := opts.Logger.WithField("activation", id[:8])
	log.SetLevel(logging.ParseLevel(settings.LogLevel))

	ext := &Extension{
		id:          id,
		bus:         opts.Bus,
		sched:       opts.Scheduler,
		loader:      opts.Loader,
		log:         log,
		settings:    settings,
		disposables: host.From(),
	}

	decoOpts := []decorator.Option{decorator.WithLogger(log.WithComponent("decorator"))}
	if settings.Script != "" {
		if f, err := script.Load(settings.Script); err != nil {
			log.Warn("stop filter disabled: %v", err)
		} else {
			ext.filter = f
			decoOpts = append(decoOpts, decorator.WithFilter(f))
		}
	}

	ext.decorator = decorator.New(opts.Window, settings.DecorationOptions(), decoOpts...)
	ext.disposables.Add(ext.decorator)
	ext.disposables.Add(host.DisposableFunc(ext.closeFilter))

	pol, err := policy.New(settings.Policy)
	if err != nil {
		ext.disposables.Dispose()
		return nil, err
	}

	ext.controller, err = controller.New(opts.Bus, opts.Window, ext.decorator, controller.Options{
		Policy:    pol,
		Debounce:  settings.Debounce,
		Scheduler: opts.Scheduler,
		Logger:    log.WithComponent("controller"),
	})
	if err != nil {
		ext.disposables.Dispose()
		return nil, err
	}
	ext.disposables.Add(ext.controller)

	if opts.Watch && opts.Loader.Path() != "" {
		w, err := config.NewWatcher(opts.Loader, settings,
			func(s config.Settings) {
				opts.Scheduler.Post(func() { ext.Reload(s) })
			},
			func(err error) {
				log.Warn("settings reload failed: %v", err)
			},
		)
		if err != nil {
			log.Warn("settings file not watched: %v", err)
		} else {
			ext.disposables.Add(w)
		}
	}

	log.Info("activated: policy=%s style=%s", pol.Name(), settings.Style)
	return ext, nil
}

// ID returns the activation id.
func (e *Extension) ID() string {
	return e.id
}

// Settings returns the settings in effect.
func (e *Extension) Settings() config.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Decorator returns the guide decorator.
func (e *Extension) Decorator() *decorator.Decorator {
	return e.decorator
}

// Controller returns the event controller.
func (e *Extension) Controller() *controller.Controller {
	return e.controller
}

// Reload applies new settings and announces them on the bus.
func (e *Extension) Reload(s config.Settings) {
	e.mu.Lock()
	prev := e.settings
	e.settings = s
	e.mu.Unlock()

	e.log.SetLevel(logging.ParseLevel(s.LogLevel))

	if s.Script != prev.Script {
		e.closeFilter()
		if s.Script != "" {
			f, err := script.Load(s.Script)
			if err != nil {
				e.log.Warn("stop filter disabled: %v", err)
			} else {
				e.mu.Lock()
				e.filter = f
				e.mu.Unlock()
				e.decorator.SetFilter(f)
			}
		}
	}

	if err := e.bus.Publish(context.Background(), event.ConfigChanged{Settings: s}); err != nil {
		e.log.Error("publishing settings: %v", err)
	}
}

// closeFilter detaches and closes the current stop filter.
func (e *Extension) closeFilter() {
	e.mu.Lock()
	f := e.filter
	e.filter = nil
	e.mu.Unlock()

	if f != nil {
		e.decorator.SetFilter(nil)
		f.Close()
	}
}

// Deactivate releases everything Activate acquired.
func (e *Extension) Deactivate() {
	if e.disposables.IsDisposed() {
		return
	}
	e.disposables.Dispose()
	e.log.Info("deactivated")
}
