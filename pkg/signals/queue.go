package signals

import (
	"fmt"
	"slices"
	"sync"
)

// Dispatcher holds calls that must run on a specific thread. Nothing drains
// it automatically: the owning goroutine, typically an event loop, calls
// Drain periodically.
type Dispatcher struct {
	mu     sync.Mutex
	queues map[Thread][]func() error
}

var defaultDispatcher = NewDispatcher()

func NewDispatcher() *Dispatcher {
	return &Dispatcher{queues: map[Thread][]func() error{}}
}

// DefaultDispatcher returns the process-wide dispatcher used by instances
// that were not given one with WithDispatcher.
func DefaultDispatcher() *Dispatcher {
	return defaultDispatcher
}

// Enqueue appends fn to t's queue. Safe for concurrent use.
func (d *Dispatcher) Enqueue(t Thread, fn func() error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queues[t] = append(d.queues[t], fn)
}

// Pending returns the number of calls waiting for t.
func (d *Dispatcher) Pending(t Thread) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues[t])
}

// Drain runs, in order, every call queued for t and must be called from t.
// Calls queued while draining wait for the next Drain. If a call fails the
// remaining ones are put back at the front of the queue.
func (d *Dispatcher) Drain(t Thread) error {
	if cur := CurrentThread(); cur != t {
		return fmt.Errorf("%w: %s drained from %s", ErrWrongThread, t, cur)
	}

	d.mu.Lock()
	calls := d.queues[t]
	delete(d.queues, t)
	d.mu.Unlock()

	for i, call := range calls {
		if err := call(); err != nil {
			d.requeue(t, calls[i+1:])
			return err
		}
	}
	return nil
}

func (d *Dispatcher) requeue(t Thread, rest []func() error) {
	if len(rest) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queues[t] = append(slices.Clone(rest), d.queues[t]...)
}

// Drain runs the calls queued for the calling goroutine on the default
// dispatcher.
func Drain() error {
	return defaultDispatcher.Drain(CurrentThread())
}

// Pending reports the calls queued for t on the default dispatcher.
func Pending(t Thread) int {
	return defaultDispatcher.Pending(t)
}
