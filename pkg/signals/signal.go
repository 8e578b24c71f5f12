package signals

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"
)

// Instances stores the signal instances and groups created for one owner.
// Every type used as the owner of a Signal or GroupOf embeds it, so the
// instances are reachable only through their owner and are collected with
// it, even when a connected slot refers back to the owner.
//
//	type Model struct {
//		signals.Instances
//		Name string
//	}
type Instances struct {
	mu sync.Mutex
	m  map[any]any
}

func (in *Instances) signalInstances() *Instances { return in }

func (in *Instances) load(key any) (any, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	v, ok := in.m[key]
	return v, ok
}

// loadOrStore returns the value already stored under key, or stores v.
func (in *Instances) loadOrStore(key, v any) (actual any, stored bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if cur, ok := in.m[key]; ok {
		return cur, false
	}
	if in.m == nil {
		in.m = map[any]any{}
	}
	in.m[key] = v
	return v, true
}

type instanceHolder interface {
	signalInstances() *Instances
}

func mustHoldInstances[O any](what string) {
	t := reflect.TypeFor[O]()
	if !reflect.PointerTo(t).Implements(reflect.TypeFor[instanceHolder]()) {
		panic(fmt.Sprintf("signals: %s: owner type %s does not embed signals.Instances", what, t))
	}
}

func storeOf[O any](owner *O) *Instances {
	return any(owner).(instanceHolder).signalInstances()
}

// Signal declares a signal once for every value of the owner type O. Each
// owner gets its own SignalInstance from Instance, created on first use and
// kept in the owner's embedded Instances.
//
//	var Changed = signals.New[Model]("changed", signals.WithSignature(func(string) {}))
//
//	Changed.Instance(m).Connect(func(s string) { ... })
type Signal[O any] struct {
	name string
	cfg  config
	live atomic.Int64
}

// New declares a signal named name. Invalid options, and an O that does not
// embed Instances, panic.
func New[O any](name string, opts ...Option) *Signal[O] {
	mustHoldInstances[O](fmt.Sprintf("signal %q", name))
	return &Signal[O]{
		name: name,
		cfg:  newConfig(opts),
	}
}

func (sig *Signal[O]) Name() string               { return sig.name }
func (sig *Signal[O]) Description() string        { return sig.cfg.description }
func (sig *Signal[O]) Shape() Shape               { return sig.cfg.shape }
func (sig *Signal[O]) Reemission() ReemissionMode { return sig.cfg.reemission }

func (sig *Signal[O]) String() string {
	var o O
	return fmt.Sprintf("<Signal %q on %T>", sig.name, o)
}

// Instance returns the SignalInstance bound to owner, creating it if needed.
// The instance does not keep owner alive.
func (sig *Signal[O]) Instance(owner *O) *SignalInstance {
	if owner == nil {
		panic(fmt.Sprintf("signals: %s: nil owner", sig))
	}
	store := storeOf(owner)
	if si, ok := store.load(sig); ok {
		return si.(*SignalInstance)
	}

	wp := weak.Make(owner)
	si := newInstance(sig.name, sig.cfg, func() any {
		if p := wp.Value(); p != nil {
			return p
		}
		return nil
	})
	actual, stored := store.loadOrStore(sig, si)
	if stored {
		sig.live.Add(1)
		runtime.AddCleanup(owner, sig.forget, struct{}{})
	}
	return actual.(*SignalInstance)
}

func (sig *Signal[O]) forget(struct{}) { sig.live.Add(-1) }

// Len returns the number of live owners with an instance.
func (sig *Signal[O]) Len() int { return int(sig.live.Load()) }
