package host

import "sync"

// Disposable releases a resource or a registration.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a function to Disposable.
type DisposableFunc func()

// Dispose implements Disposable.
func (f DisposableFunc) Dispose() {
	if f != nil {
		f()
	}
}

// Bundle releases a group of disposables together.
// Members are disposed in reverse order of registration, exactly once.
type Bundle struct {
	mu       sync.Mutex
	items    []Disposable
	disposed bool
}

// From creates a bundle holding items.
func From(items ...Disposable) *Bundle {
	b := &Bundle{}
	for _, item := range items {
		b.Add(item)
	}
	return b
}

// Add registers d. Adding to a disposed bundle disposes d immediately.
func (b *Bundle) Add(d Disposable) {
	if d == nil {
		return
	}

	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		d.Dispose()
		return
	}
	b.items = append(b.items, d)
	b.mu.Unlock()
}

// Len returns the number of registered disposables.
func (b *Bundle) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Dispose disposes every member.
func (b *Bundle) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	items := b.items
	b.items = nil
	b.mu.Unlock()

	for i := len(items) - 1; i >= 0; i-- {
		items[i].Dispose()
	}
}

// IsDisposed reports whether Dispose has been called.
func (b *Bundle) IsDisposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}
