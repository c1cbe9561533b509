package event

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handler processes an event. Handlers type-assert the concrete event.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// PanicHandler is called with the recovered value when a handler panics.
type PanicHandler func(event any, sub *Subscription, recovered any, stack []byte)

// ErrorHandler is called when a handler returns an error.
type ErrorHandler func(err *HandlerError)

// Stats reports bus activity.
type Stats struct {
	EventsPublished   uint64
	HandlersExecuted  uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPanicHandler sets the handler for recovered panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *Bus) {
		b.onPanic = h
	}
}

// WithErrorHandler sets the handler for handler errors.
func WithErrorHandler(h ErrorHandler) BusOption {
	return func(b *Bus) {
		b.onError = h
	}
}

// Bus delivers events to subscribers synchronously.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription
	seq  uint64

	onPanic PanicHandler
	onError ErrorHandler

	eventsPublished  atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerErrors    atomic.Uint64
	handlerPanics    atomic.Uint64
}

// NewBus creates a bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for topics matching pattern.
// Handlers run in subscription order.
func (b *Bus) Subscribe(pattern Topic, handler Handler) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	sub := &Subscription{
		id:      uuid.NewString(),
		topic:   pattern,
		handler: handler,
		order:   b.seq,
		bus:     b,
	}
	b.subs = append(b.subs, sub)
	return sub, nil
}

// SubscribeFunc registers a function handler.
func (b *Bus) SubscribeFunc(pattern Topic, fn HandlerFunc) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn)
}

// Unsubscribe removes sub. Removing an unknown subscription returns
// ErrSubscriptionNotFound.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	sub.cancelled.Store(true)

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers event to every matching subscription and returns once
// all handlers have run. Handler errors and panics are reported to the
// configured handlers and do not stop delivery to later subscribers.
func (b *Bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || tp.EventTopic() == "" {
		return ErrInvalidEvent
	}
	t := tp.EventTopic()

	matched := b.match(t)
	b.eventsPublished.Add(1)

	for _, sub := range matched {
		if sub.cancelled.Load() {
			continue
		}
		b.dispatch(ctx, sub, event)
	}
	return nil
}

// Stats returns a snapshot of bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	active := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		HandlersExecuted:  b.handlersExecuted.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: active,
	}
}

func (b *Bus) match(t Topic) []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matched []*Subscription
	for _, sub := range b.subs {
		if sub.topic.Matches(t) {
			matched = append(matched, sub)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].order < matched[j].order
	})
	return matched
}

func (b *Bus) dispatch(ctx context.Context, sub *Subscription, event any) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			if b.onPanic != nil {
				b.onPanic(event, sub, r, debug.Stack())
			}
		}
	}()

	b.handlersExecuted.Add(1)
	if err := sub.handler.Handle(ctx, event); err != nil {
		b.handlerErrors.Add(1)
		if b.onError != nil {
			b.onError(&HandlerError{SubscriptionID: sub.id, Topic: sub.topic, Err: err})
		}
	}
}

// Subscription is a registered handler. Dispose unsubscribes it.
type Subscription struct {
	id        string
	topic     Topic
	handler   Handler
	order     uint64
	bus       *Bus
	cancelled atomic.Bool
}

// ID returns the unique subscription id.
func (s *Subscription) ID() string {
	return s.id
}

// Topic returns the subscribed pattern.
func (s *Subscription) Topic() Topic {
	return s.topic
}

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool {
	return !s.cancelled.Load()
}

// Dispose unsubscribes. It is safe to call more than once.
func (s *Subscription) Dispose() {
	_ = s.bus.Unsubscribe(s)
}
