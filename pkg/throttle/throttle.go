// Package throttle limits how often a slot runs. Throttled and Debounced
// return values that can be connected to any signal.
package throttle

import (
	"fmt"
	"sync"
	"time"
)

// Policy picks the edge of the wait interval the wrapped func runs on.
type Policy uint8

const (
	Leading Policy = iota
	Trailing
)

func (p Policy) String() string {
	switch p {
	case Leading:
		return "leading"
	case Trailing:
		return "trailing"
	default:
		return fmt.Sprintf("Policy(%d)", p)
	}
}

// Limiter wraps a func and rate limits calls to it. The func always receives
// the arguments of the most recent call.
type Limiter struct {
	fn       func(args ...any)
	interval time.Duration
	policy   Policy
	debounce bool

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	running bool
	pending bool
	args    []any
}

// Throttled runs fn at most once per interval.
func Throttled(fn func(args ...any), interval time.Duration, policy Policy) *Limiter {
	return &Limiter{fn: fn, interval: interval, policy: policy}
}

// Debounced runs fn once calls have stopped for interval. With Leading the
// first call of a burst runs immediately.
func Debounced(fn func(args ...any), interval time.Duration, policy Policy) *Limiter {
	return &Limiter{fn: fn, interval: interval, policy: policy, debounce: true}
}

// Invoke makes a Limiter usable as a slot receiving every emitted argument.
func (l *Limiter) Invoke(args ...any) error {
	l.Call(args...)
	return nil
}

func (l *Limiter) Call(args ...any) {
	l.mu.Lock()
	l.pending = true
	l.args = args

	var run []any
	switch {
	case l.debounce:
		if !l.running && l.policy == Leading {
			run = l.take()
		}
		l.startTimer()
	case !l.running:
		if l.policy == Leading {
			run = l.take()
		}
		l.startTimer()
	}
	l.mu.Unlock()

	if run != nil {
		l.fn(run...)
	}
}

// Cancel drops any pending call.
func (l *Limiter) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = false
	l.args = nil
	l.stopTimer()
}

// Flush runs the pending call now, if there is one.
func (l *Limiter) Flush() {
	l.mu.Lock()
	if !l.pending {
		l.mu.Unlock()
		return
	}
	run := l.take()
	l.startTimer()
	l.mu.Unlock()
	l.fn(run...)
}

// Pending reports whether a call is waiting for the timer.
func (l *Limiter) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// take must be called with l.mu held. The result is never nil.
func (l *Limiter) take() []any {
	l.pending = false
	args := l.args
	l.args = nil
	if args == nil {
		args = []any{}
	}
	return args
}

func (l *Limiter) startTimer() {
	l.stopTimer()
	gen := l.gen
	l.running = true
	l.timer = time.AfterFunc(l.interval, func() { l.fire(gen) })
}

func (l *Limiter) stopTimer() {
	if l.timer != nil {
		l.timer.Stop()
	}
	l.gen++
	l.running = false
}

func (l *Limiter) fire(gen uint64) {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.running = false
	if !l.pending {
		l.mu.Unlock()
		return
	}
	run := l.take()
	l.startTimer()
	l.mu.Unlock()
	l.fn(run...)
}
