package policy

import (
	"sync"
	"time"

	"github.com/dshills/indentguide/internal/host"
)

// Debouncer is a trailing-edge timer gate with a fixed delay.
//
// Call arms the gate with a function; every further Call within the delay
// restarts the timer and replaces the function. When the delay passes
// without a new Call, the last function runs once, posted through the
// scheduler so that it executes on the host UI loop. A delay of zero or
// less runs the function synchronously.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	sched   host.Scheduler
	timer   *time.Timer
	seq     uint64
	pending func()
}

// NewDebouncer creates a gate with the given delay. A nil scheduler runs
// callbacks on the timer goroutine.
func NewDebouncer(delay time.Duration, sched host.Scheduler) *Debouncer {
	if sched == nil {
		sched = host.Immediate
	}
	return &Debouncer{delay: delay, sched: sched}
}

// Delay returns the gate delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Call schedules fn, superseding any pending call.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if d.delay <= 0 {
		d.mu.Unlock()
		d.fire(seq)
		return
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.sched.Post(func() { d.fire(seq) })
	})
	d.mu.Unlock()
}

// fire runs the pending function if seq is still the latest call.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// Flush runs the pending function now, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel drops the pending function.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = nil
}

// Pending reports whether a function is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Dispose cancels the pending function. It implements host.Disposable.
func (d *Debouncer) Dispose() {
	d.Cancel()
}
