// Package controller connects host events to the guide decorator.
//
// The controller subscribes to the four host topics, asks the update policy
// whether an event warrants recomputation and, if so, redraws through the
// decorator. Text changes pass through a debounce gate first; the policy is
// consulted when the gate fires so that it sees the latest cursor.
package controller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/indentguide/internal/config"
	"github.com/dshills/indentguide/internal/decorator"
	"github.com/dshills/indentguide/internal/event"
	"github.com/dshills/indentguide/internal/host"
	"github.com/dshills/indentguide/internal/logging"
	"github.com/dshills/indentguide/internal/policy"
)

// Options configures a Controller.
type Options struct {
	// Policy defaults to the structural policy.
	Policy policy.Policy

	// Debounce delays text-change recomputation.
	Debounce time.Duration

	// Scheduler receives debounced work. Defaults to host.Immediate.
	Scheduler host.Scheduler

	Logger *logging.Logger
}

// Controller drives guide updates from host events.
type Controller struct {
	mu        sync.Mutex
	window    host.Window
	decorator *decorator.Decorator
	policy    policy.Policy
	debounce  *policy.Debouncer
	sched     host.Scheduler
	log       *logging.Logger

	subs    *host.Bundle
	reload  atomic.Bool
	updates atomic.Int64
	skipped atomic.Int64
}

// New subscribes a controller to bus and draws the active editor once.
func New(bus *event.Bus, window host.Window, d *decorator.Decorator, opts Options) (*Controller, error) {
	if opts.Policy == nil {
		opts.Policy = policy.Structural{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = host.Immediate
	}
	if opts.Logger == nil {
		opts.Logger = logging.Null()
	}

	c := &Controller{
		window:    window,
		decorator: d,
		policy:    opts.Policy,
		debounce:  policy.NewDebouncer(opts.Debounce, opts.Scheduler),
		sched:     opts.Scheduler,
		log:       opts.Logger,
		subs:      host.From(),
	}

	handlers := []struct {
		topic event.Topic
		fn    event.HandlerFunc
	}{
		{event.TopicSelectionChanged, c.onSelectionChanged},
		{event.TopicActiveChanged, c.onActiveEditorChanged},
		{event.TopicDocumentChanged, c.onDocumentChanged},
		{event.TopicConfigChanged, c.onConfigChanged},
	}
	for _, h := range handlers {
		sub, err := bus.SubscribeFunc(h.topic, h.fn)
		if err != nil {
			c.subs.Dispose()
			return nil, err
		}
		c.subs.Add(sub)
	}
	c.subs.Add(host.DisposableFunc(func() { c.currentDebouncer().Cancel() }))

	c.update(policy.Event{Trigger: policy.TriggerActivation, Editor: window.ActiveEditor()})
	return c, nil
}

// Policy returns the active update policy.
func (c *Controller) Policy() policy.Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

// Updates returns how many recomputations ran.
func (c *Controller) Updates() int64 {
	return c.updates.Load()
}

// Skipped returns how many events the policy rejected.
func (c *Controller) Skipped() int64 {
	return c.skipped.Load()
}

// Flush runs a pending debounced update immediately.
func (c *Controller) Flush() {
	c.currentDebouncer().Flush()
}

// Dispose unsubscribes from the bus and drops pending work. The decorator
// is not disposed; it belongs to the caller.
func (c *Controller) Dispose() {
	c.subs.Dispose()
}

func (c *Controller) currentDebouncer() *policy.Debouncer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.debounce
}

func (c *Controller) onSelectionChanged(_ context.Context, ev any) error {
	e, ok := ev.(event.SelectionChanged)
	if !ok {
		return nil
	}
	c.update(policy.Event{Trigger: policy.TriggerSelection, Editor: e.Editor})
	return nil
}

func (c *Controller) onActiveEditorChanged(_ context.Context, ev any) error {
	e, ok := ev.(event.ActiveEditorChanged)
	if !ok {
		return nil
	}
	c.update(policy.Event{Trigger: policy.TriggerActivation, Editor: e.Editor})
	return nil
}

func (c *Controller) onDocumentChanged(_ context.Context, ev any) error {
	e, ok := ev.(event.DocumentChanged)
	if !ok || e.Document == nil {
		return nil
	}
	path := e.Document.Path()
	if e.Reloaded {
		c.reload.Store(true)
	}

	c.currentDebouncer().Call(func() {
		trigger := policy.TriggerTextChange
		if c.reload.Swap(false) {
			trigger = policy.TriggerReload
		}
		active := c.window.ActiveEditor()
		if active == nil || active.Document() == nil || active.Document().Path() != path {
			return
		}
		c.update(policy.Event{Trigger: trigger, Editor: active})
	})
	return nil
}

func (c *Controller) onConfigChanged(_ context.Context, ev any) error {
	e, ok := ev.(event.ConfigChanged)
	if !ok {
		return nil
	}
	c.Apply(e.Settings)
	return nil
}

// Apply switches to new settings: policy, debounce delay and decoration
// style. A changed style is recreated and visible editors are redrawn.
func (c *Controller) Apply(s config.Settings) {
	c.mu.Lock()
	if c.policy.Name() != s.Policy {
		if p, err := policy.New(s.Policy); err == nil {
			c.log.Info("update policy changed: %s -> %s", c.policy.Name(), p.Name())
			c.policy = p
		} else {
			c.log.Warn("keeping policy %s: %v", c.policy.Name(), err)
		}
	}
	if c.debounce.Delay() != s.Debounce {
		c.debounce.Cancel()
		c.debounce = policy.NewDebouncer(s.Debounce, c.sched)
	}
	p := c.policy
	c.mu.Unlock()

	p.ShouldUpdate(policy.Event{Trigger: policy.TriggerConfiguration})

	opts := s.DecorationOptions()
	if opts != c.decorator.Options() {
		c.decorator.Reconfigure(opts)
		c.updates.Add(1)
		return
	}
	c.decorator.UpdateVisible()
	c.updates.Add(1)
}

// update consults the policy and redraws the event's editor.
func (c *Controller) update(ev policy.Event) {
	p := c.Policy()
	if !p.ShouldUpdate(ev) {
		c.skipped.Add(1)
		c.log.Debug("skipped %s event (policy %s)", ev.Trigger, p.Name())
		return
	}

	c.updates.Add(1)
	n := c.decorator.UpdateEditor(ev.Editor)
	c.log.Debug("%s event drew %d guides", ev.Trigger, n)
}
