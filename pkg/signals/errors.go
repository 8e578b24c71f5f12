package signals

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected     = errors.New("slot is not connected")
	ErrAlreadyConnected = errors.New("slot already connected")
	ErrRecursion        = errors.New("recursion limit reached")
	ErrInvalidArgs      = errors.New("invalid emission arguments")
	ErrWrongThread      = errors.New("queue drained from a foreign thread")
	ErrWeakReference    = errors.New("cannot create weak reference")
	ErrNotCallable      = errors.New("slot is not callable")
)

// ConnectionError is returned by Connect when a slot is not compatible with
// the signal it is connected to.
type ConnectionError struct {
	Slot      string
	Signature string
	Accepted  string
	Reason    string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf(
		"cannot connect slot %q with signature %s: %s; accepted signature: %s",
		e.Slot, e.Signature, e.Reason, e.Accepted,
	)
}

// LookupError is returned by Disconnect when the slot is missing and the
// caller asked for it to be present.
type LookupError struct {
	Signal string
	Slot   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("signal %q: %s: %s", e.Signal, ErrNotConnected, e.Slot)
}

func (e *LookupError) Unwrap() error { return ErrNotConnected }

// RecursionError is returned when nested emissions exceed RecursionLimit.
type RecursionError struct {
	Signal string
	Args   []any
	Depth  int
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf(
		"%s (%d) when emitting signal %q with args %v",
		ErrRecursion, e.Depth, e.Signal, e.Args,
	)
}

func (e *RecursionError) Unwrap() error { return ErrRecursion }

// CallbackError wraps a failure (returned error or recovered panic) raised by
// a slot during emission.
type CallbackError struct {
	Signal string
	Slot   string
	Args   []any
	Err    error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf(
		"signal %q: calling %s with args %v caused: %v",
		e.Signal, e.Slot, e.Args, e.Err,
	)
}

func (e *CallbackError) Unwrap() error { return e.Err }

// WeakReferenceError is returned when a callback cannot be referenced weakly
// and the connection asked for RefErrorRaise.
type WeakReferenceError struct {
	Slot   string
	Reason string
}

func (e *WeakReferenceError) Error() string {
	return fmt.Sprintf("%s to %s: %s", ErrWeakReference, e.Slot, e.Reason)
}

func (e *WeakReferenceError) Unwrap() error { return ErrWeakReference }

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
