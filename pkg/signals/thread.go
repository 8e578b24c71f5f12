package signals

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// Thread identifies the goroutine a slot must run on. The zero value means
// "no affinity".
type Thread int64

// CurrentThread returns the Thread of the calling goroutine.
func CurrentThread() Thread {
	return Thread(goid.Get())
}

func (t Thread) String() string {
	if t == 0 {
		return "thread(any)"
	}
	return fmt.Sprintf("thread(%d)", int64(t))
}

// rmutex is a mutex the owning goroutine may lock again. Slots run while the
// instance lock is held and are free to connect, disconnect or emit on the
// same instance.
type rmutex struct {
	mu    sync.Mutex
	owner atomic.Int64
	depth int
}

func (m *rmutex) Lock() {
	id := goid.Get()
	if m.owner.Load() == id {
		m.depth++
		return
	}
	m.mu.Lock()
	m.owner.Store(id)
	m.depth = 1
}

func (m *rmutex) Unlock() {
	if m.owner.Load() != goid.Get() {
		panic("signals: unlock of rmutex not held by this goroutine")
	}
	m.depth--
	if m.depth == 0 {
		m.owner.Store(0)
		m.mu.Unlock()
	}
}

// emitter stacks keyed by goroutine id; each stack is only touched by its
// own goroutine.
var emitters sync.Map

func pushEmitter(s *SignalInstance) (pop func()) {
	id := goid.Get()
	v, _ := emitters.LoadOrStore(id, &[]*SignalInstance{})
	stack := v.(*[]*SignalInstance)
	*stack = append(*stack, s)
	return func() {
		last := len(*stack) - 1
		(*stack)[last] = nil
		*stack = (*stack)[:last]
		if last == 0 {
			emitters.Delete(id)
		}
	}
}

// CurrentEmitter returns the SignalInstance currently emitting on the calling
// goroutine, or nil outside of an emission.
func CurrentEmitter() *SignalInstance {
	v, ok := emitters.Load(goid.Get())
	if !ok {
		return nil
	}
	stack := *v.(*[]*SignalInstance)
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// Sender returns the owner of the current emitter, if any.
func Sender() any {
	if s := CurrentEmitter(); s != nil {
		return s.Owner()
	}
	return nil
}

type emitterKey struct{}

func withEmitter(ctx context.Context, s *SignalInstance) context.Context {
	return context.WithValue(ctx, emitterKey{}, s)
}

// EmitterFromContext returns the SignalInstance that invoked a context-aware
// slot.
func EmitterFromContext(ctx context.Context) *SignalInstance {
	s, _ := ctx.Value(emitterKey{}).(*SignalInstance)
	return s
}
