package signals

import (
	"context"
	"fmt"
	"slices"
)

type slot struct {
	cb       *WeakCallback
	maxArgs  int
	thread   Thread
	priority int
	tag      string
}

// SignalInstance is the runtime side of a signal: it stores the connected
// slots of one owner and performs emission.
//
// The instance lock is held for the whole emission loop and may be taken
// again by the emitting goroutine, so slots can connect, disconnect and emit
// on the instance they are called from. Changes to the slot list made by a
// slot take effect on the next emission.
type SignalInstance struct {
	name                string
	description         string
	shape               Shape
	owner               func() any
	checkNargsOnConnect bool
	checkTypesOnConnect bool
	reemission          ReemissionMode
	dispatcher          *Dispatcher
	groupRelay          bool

	mu            rmutex
	slots         []*slot
	priorityInUse bool
	blocked       bool
	paused        bool
	argsQueue     [][]any
	emitQueue     [][]any
	latest        []any
	hasLatest     bool
	depth         int
}

// NewInstance returns a SignalInstance that is not bound to any owner.
// Invalid options (a non-func WithSignature prototype) panic.
func NewInstance(name string, opts ...Option) *SignalInstance {
	return newInstance(name, newConfig(opts), nil)
}

func newInstance(name string, cfg config, owner func() any) *SignalInstance {
	return &SignalInstance{
		name:                name,
		description:         cfg.description,
		shape:               cfg.shape,
		owner:               owner,
		checkNargsOnConnect: cfg.checkNargsOnConnect,
		checkTypesOnConnect: cfg.checkTypesOnConnect,
		reemission:          cfg.reemission,
		dispatcher:          cfg.dispatcher,
	}
}

func (s *SignalInstance) Name() string                { return s.name }
func (s *SignalInstance) Description() string         { return s.description }
func (s *SignalInstance) Shape() Shape                { return s.shape }
func (s *SignalInstance) Reemission() ReemissionMode { return s.reemission }

// Owner returns the object the instance is bound to, or nil when unbound or
// when the owner has been collected.
func (s *SignalInstance) Owner() any {
	if s.owner == nil {
		return nil
	}
	return s.owner()
}

func (s *SignalInstance) String() string {
	if o := s.Owner(); o != nil {
		return fmt.Sprintf("<SignalInstance %q on %T>", s.name, o)
	}
	return fmt.Sprintf("<SignalInstance %q>", s.name)
}

// Len returns the number of connected slots.
func (s *SignalInstance) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Contains reports whether slot is connected.
func (s *SignalInstance) Contains(fn any) bool {
	cb, err := newWeakCallback(fn, RefErrorIgnore)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slotIndex(cb) >= 0
}

// Connect connects fn to the signal. fn is a function, a *WeakCallback built
// with Method, SetField or SetItem, or an Invoker.
//
// Functions may take fewer positional parameters than the signal emits;
// extra arguments are dropped per slot. A leading context.Context parameter
// receives the emission context. A trailing error result is reported as a
// slot failure.
func (s *SignalInstance) Connect(fn any, opts ...ConnectOption) error {
	cfg := connectConfig{maxArgs: Unbounded}
	for _, opt := range opts {
		opt(&cfg)
	}
	checkNargs, checkTypes := s.checkNargsOnConnect, s.checkTypesOnConnect
	if cfg.checkNargs != nil {
		checkNargs = *cfg.checkNargs
	}
	if cfg.checkTypes != nil {
		checkTypes = *cfg.checkTypes
	}

	cb, err := newWeakCallback(fn, cfg.onRefError)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.unique {
		var idx int
		if cfg.tag != "" {
			idx = slices.IndexFunc(s.slots, func(sl *slot) bool { return sl.tag == cfg.tag })
		} else {
			idx = s.slotIndex(cb)
		}
		if idx >= 0 {
			if cfg.raise {
				return fmt.Errorf("signal %q: %w: %s", s.name, ErrAlreadyConnected, cb)
			}
			return nil
		}
	}

	maxArgs, err := checkCompatibility(cb, s.shape, checkNargs, checkTypes)
	if err != nil {
		logger().Debug("rejected slot", "signal", s.name, "slot", cb.String(), "err", err)
		return err
	}
	if cfg.maxArgs != Unbounded && (maxArgs == Unbounded || cfg.maxArgs < maxArgs) {
		maxArgs = cfg.maxArgs
	}

	s.appendSlot(&slot{
		cb:       cb,
		maxArgs:  maxArgs,
		thread:   cfg.thread,
		priority: cfg.priority,
		tag:      cfg.tag,
	})
	logger().Debug("connected slot", "signal", s.name, "slot", cb.String(), "priority", cfg.priority)
	return nil
}

// Slot connects fn and returns it unchanged. It panics if the connection
// fails, which makes it suitable for package-level wiring.
func Slot[F any](s *SignalInstance, fn F, opts ...ConnectOption) F {
	if err := s.Connect(fn, opts...); err != nil {
		panic(err)
	}
	return fn
}

// ConnectSetField assigns the first emitted argument to owner.field.
func ConnectSetField[T any](s *SignalInstance, owner *T, field string, opts ...ConnectOption) error {
	return s.Connect(SetField(owner, field), opts...)
}

func DisconnectSetField[T any](s *SignalInstance, owner *T, field string, missingOK bool) error {
	return s.Disconnect(SetField(owner, field), missingOK)
}

// ConnectSetItem stores the first emitted argument in owner under key.
func ConnectSetItem[T any](s *SignalInstance, owner *T, key any, opts ...ConnectOption) error {
	return s.Connect(SetItem(owner, key), opts...)
}

func DisconnectSetItem[T any](s *SignalInstance, owner *T, key any, missingOK bool) error {
	return s.Disconnect(SetItem(owner, key), missingOK)
}

// appendSlot inserts sl after every slot with a priority >= its own.
func (s *SignalInstance) appendSlot(sl *slot) {
	switch {
	case !s.priorityInUse && sl.priority == 0:
		s.slots = append(s.slots, sl)
	default:
		s.priorityInUse = true
		i := slices.IndexFunc(s.slots, func(o *slot) bool { return o.priority < sl.priority })
		if i < 0 {
			s.slots = append(s.slots, sl)
		} else {
			s.slots = slices.Insert(s.slots, i, sl)
		}
	}
}

func (s *SignalInstance) removeAt(i int) {
	s.slots = slices.Delete(s.slots, i, i+1)
}

func (s *SignalInstance) removeSlot(sl *slot) {
	if i := slices.Index(s.slots, sl); i >= 0 {
		s.removeAt(i)
	}
}

func (s *SignalInstance) slotIndex(cb *WeakCallback) int {
	return slices.IndexFunc(s.slots, func(sl *slot) bool { return sl.cb.Equal(cb) })
}

// Disconnect removes the first slot equal to fn. A nil fn disconnects
// everything. When fn is not connected Disconnect returns a *LookupError
// unless missingOK is set.
func (s *SignalInstance) Disconnect(fn any, missingOK bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fn == nil {
		s.clear()
		return nil
	}
	cb, err := newWeakCallback(fn, RefErrorIgnore)
	if err != nil {
		return err
	}
	if i := s.slotIndex(cb); i >= 0 {
		s.removeAt(i)
		logger().Debug("disconnected slot", "signal", s.name, "slot", cb.String())
		return nil
	}
	if missingOK {
		return nil
	}
	return &LookupError{Signal: s.name, Slot: cb.String()}
}

// DisconnectAll removes every slot.
func (s *SignalInstance) DisconnectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

func (s *SignalInstance) clear() {
	s.slots = nil
	s.priorityInUse = false
}

func (s *SignalInstance) IsBlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocked
}

// Block stops all emission until Unblock.
func (s *SignalInstance) Block() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked = true
}

func (s *SignalInstance) Unblock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked = false
}

// Blocked runs fn with the signal blocked and then restores the previous
// state, so nested calls only unblock at the outermost level.
func (s *SignalInstance) Blocked(fn func()) {
	s.mu.Lock()
	was := s.blocked
	s.blocked = true
	s.mu.Unlock()

	defer func() {
		if !was {
			s.Unblock()
		}
	}()
	fn()
}

func (s *SignalInstance) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Pause buffers emissions until Resume.
func (s *SignalInstance) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume unpauses the signal and replays what was buffered: each buffered
// emission in order, or a single emission when a reducer is given.
//
// Called from a slot of the emitting instance, the replay follows the
// reemission mode like any nested Emit.
func (s *SignalInstance) Resume(opts ...ResumeOption) error {
	var cfg resumeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.paused = false
	buffered := s.argsQueue
	s.argsQueue = nil
	if len(buffered) == 0 || len(s.slots) == 0 {
		return nil
	}

	ctx := context.Background()
	switch {
	case cfg.reduceAll != nil:
		return s.runEmitLoop(ctx, cfg.reduceAll(buffered))
	case cfg.reducer != nil:
		acc, rest := buffered[0], buffered[1:]
		if cfg.hasInitial {
			acc, rest = cfg.initial, buffered
		}
		for _, args := range rest {
			acc = cfg.reducer(acc, args)
		}
		return s.runEmitLoop(ctx, acc)
	}
	for _, args := range buffered {
		if err := s.runEmitLoop(ctx, args); err != nil {
			return err
		}
	}
	return nil
}

// Paused runs fn with the signal paused. Unless the signal was already
// paused, it is resumed with opts afterwards and the resume error returned.
func (s *SignalInstance) Paused(fn func(), opts ...ResumeOption) (err error) {
	s.mu.Lock()
	was := s.paused
	s.paused = true
	s.mu.Unlock()

	if was {
		fn()
		return nil
	}
	defer func() {
		if rerr := s.Resume(opts...); err == nil {
			err = rerr
		}
	}()
	fn()
	return nil
}
