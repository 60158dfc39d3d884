// Package debounce delays a callback until its trigger has been quiet for a
// fixed period.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period the search box waits for.
const DefaultDelay = 300 * time.Millisecond

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock schedules on real time.
var SystemClock Clock = systemClock{}

// Dispatcher runs a fired callback. Owners with their own event loop pass a
// dispatcher that runs f on it, so fired callbacks are serialized with every
// other event.
type Dispatcher func(f func())

// Debouncer holds at most one scheduled callback. Triggering again replaces
// it, so only the last callback of a burst ever runs.
type Debouncer struct {
	delay    time.Duration
	clock    Clock
	dispatch Dispatcher

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithClock replaces the real-time clock.
func WithClock(c Clock) Option {
	return func(d *Debouncer) { d.clock = c }
}

// WithDispatcher routes fired callbacks through dispatch.
func WithDispatcher(dispatch Dispatcher) Option {
	return func(d *Debouncer) { d.dispatch = dispatch }
}

// New returns a debouncer with the given quiet period.
func New(delay time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{
		delay:    delay,
		clock:    SystemClock,
		dispatch: func(f func()) { f() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Delay is the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger drops any pending callback and schedules fn to run once the quiet
// period has elapsed without another Trigger or Cancel.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.dispatch(func() {
			// Re-checked on the dispatcher: a Trigger that ran between the
			// timer firing and now has superseded this callback.
			d.mu.Lock()
			if d.gen != gen {
				d.mu.Unlock()
				return
			}
			d.timer = nil
			d.gen++
			d.mu.Unlock()

			fn()
		})
	})
}

// Cancel drops the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Pending reports whether a callback is scheduled and has not yet run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
