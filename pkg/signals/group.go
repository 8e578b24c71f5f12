package signals

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"weak"

	mapset "github.com/deckarep/golang-set/v2"
)

// EmissionInfo is what a Group relays: the member that emitted and its
// arguments.
type EmissionInfo struct {
	Signal *SignalInstance
	Args   []any
}

func (e EmissionInfo) String() string {
	name := "<nil>"
	if e.Signal != nil {
		name = e.Signal.Name()
	}
	return fmt.Sprintf("EmissionInfo(%s, %v)", name, e.Args)
}

// Group aggregates named signal instances. Slots connected to the group
// receive an EmissionInfo for every emission of any member.
type Group struct {
	name    string
	names   []string
	members map[string]*SignalInstance
	relay   *SignalInstance
	relayFn func(ctx context.Context, args ...any) error

	mu         sync.Mutex
	attached   bool
	wasBlocked mapset.Set[string]
}

// NewGroup builds a group over members. opts configure the relay instance;
// its argument shape is always (EmissionInfo).
func NewGroup(name string, members map[string]*SignalInstance, opts ...Option) *Group {
	return newGroup(name, members, nil, opts)
}

func newGroup(name string, members map[string]*SignalInstance, owner func() any, opts []Option) *Group {
	opts = append(slices.Clone(opts), WithArgs(TypeOf[EmissionInfo]()))
	g := &Group{
		name:       name,
		names:      slices.Sorted(maps.Keys(members)),
		members:    maps.Clone(members),
		relay:      newInstance(name, newConfig(opts), owner),
		wasBlocked: mapset.NewSet[string](),
	}
	g.relay.groupRelay = true
	g.relayFn = g.relaySlot
	return g
}

func (g *Group) relaySlot(ctx context.Context, args ...any) error {
	emitter := EmitterFromContext(ctx)
	if emitter == nil {
		return nil
	}
	if emitter.groupRelay && len(args) == 1 {
		// a nested group already describes the original emission
		if info, ok := args[0].(EmissionInfo); ok {
			return g.relay.EmitContext(ctx, info)
		}
	}
	return g.relay.EmitContext(ctx, EmissionInfo{Signal: emitter, Args: slices.Clone(args)})
}

func (g *Group) Name() string { return g.name }

// Len returns the number of member signals.
func (g *Group) Len() int { return len(g.members) }

// Names returns the member names, sorted.
func (g *Group) Names() []string { return slices.Clone(g.names) }

// Signal returns the member named name.
func (g *Group) Signal(name string) (*SignalInstance, bool) {
	si, ok := g.members[name]
	return si, ok
}

// Relay returns the instance group slots are connected to.
func (g *Group) Relay() *SignalInstance { return g.relay }

// IsUniform reports whether every member emits the same argument shape.
func (g *Group) IsUniform() bool {
	var first *Shape
	for _, name := range g.names {
		shape := g.members[name].Shape()
		if first == nil {
			first = &shape
			continue
		}
		if first.Variadic != shape.Variadic || !slices.Equal(first.Types, shape.Types) {
			return false
		}
	}
	return true
}

func (g *Group) String() string {
	return fmt.Sprintf("<Group %q with %d signals>", g.name, len(g.members))
}

// Connect subscribes fn to every member emission. fn receives an
// EmissionInfo. If the relay cannot be attached to the members, fn is left
// unconnected.
func (g *Group) Connect(fn any, opts ...ConnectOption) error {
	before := g.relay.Len()
	if err := g.relay.Connect(fn, opts...); err != nil {
		return err
	}
	if err := g.attach(); err != nil {
		if g.relay.Len() > before {
			_ = g.relay.Disconnect(fn, true)
		}
		return err
	}
	return nil
}

func (g *Group) attach() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.attached {
		return nil
	}
	for i, name := range g.names {
		err := g.members[name].Connect(g.relayFn,
			Unique(), CheckNargs(false), CheckTypes(false), OnRefError(RefErrorIgnore),
		)
		if err != nil {
			for _, done := range g.names[:i] {
				_ = g.members[done].Disconnect(g.relayFn, true)
			}
			return fmt.Errorf("group %q: relaying %q: %w", g.name, name, err)
		}
	}
	g.attached = true
	return nil
}

func (g *Group) detach() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.attached {
		return
	}
	for _, name := range g.names {
		_ = g.members[name].Disconnect(g.relayFn, true)
	}
	g.attached = false
}

// ConnectDirect connects fn to every member, so it receives the member's own
// arguments.
func (g *Group) ConnectDirect(fn any, opts ...ConnectOption) error {
	var errs []error
	for _, name := range g.names {
		if err := g.members[name].Connect(fn, opts...); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Disconnect removes fn from the relay and from every member. A nil fn
// removes everything connected through the group.
func (g *Group) Disconnect(fn any, missingOK bool) error {
	var errs []error
	if fn != nil {
		found := false
		for _, name := range g.names {
			m := g.members[name]
			if m.Contains(fn) {
				found = true
				if err := m.Disconnect(fn, true); err != nil {
					errs = append(errs, err)
				}
			}
		}
		if g.relay.Contains(fn) {
			found = true
			if err := g.relay.Disconnect(fn, true); err != nil {
				errs = append(errs, err)
			}
		}
		if !found && !missingOK {
			errs = append(errs, &LookupError{Signal: g.name, Slot: fmt.Sprint(fn)})
		}
	} else {
		g.relay.DisconnectAll()
	}
	if g.relay.Len() == 0 {
		g.detach()
	}
	return errors.Join(errs...)
}

func (g *Group) IsBlocked() bool { return g.relay.IsBlocked() }

// Block blocks the relay and every member not named in exclude. Unblock
// leaves members that were already blocked alone.
func (g *Group) Block(exclude ...string) {
	skip := mapset.NewSet(exclude...)
	g.relay.Block()

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, name := range g.names {
		if skip.Contains(name) {
			continue
		}
		m := g.members[name]
		if m.IsBlocked() {
			g.wasBlocked.Add(name)
		}
		m.Block()
	}
}

func (g *Group) Unblock() {
	g.relay.Unblock()

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, name := range g.names {
		if g.wasBlocked.Contains(name) {
			continue
		}
		g.members[name].Unblock()
	}
	g.wasBlocked.Clear()
}

// Blocked runs fn with the group blocked.
func (g *Group) Blocked(fn func(), exclude ...string) {
	if g.IsBlocked() {
		fn()
		return
	}
	g.Block(exclude...)
	defer g.Unblock()
	fn()
}

func (g *Group) IsPaused() bool { return g.relay.IsPaused() }

// Pause buffers relayed emissions; members keep emitting to their direct
// slots.
func (g *Group) Pause() { g.relay.Pause() }

func (g *Group) Resume(opts ...ResumeOption) error { return g.relay.Resume(opts...) }

func (g *Group) Paused(fn func(), opts ...ResumeOption) error {
	return g.relay.Paused(fn, opts...)
}

// GroupOf declares a group of signals on owner type O, the group counterpart
// of Signal. O must embed Instances.
type GroupOf[O any] struct {
	name    string
	signals map[string]*Signal[O]
	opts    []Option
}

func NewGroupOf[O any](name string, members map[string]*Signal[O], opts ...Option) *GroupOf[O] {
	mustHoldInstances[O](fmt.Sprintf("group %q", name))
	return &GroupOf[O]{
		name:    name,
		signals: maps.Clone(members),
		opts:    opts,
	}
}

func (d *GroupOf[O]) Name() string { return d.name }

// Instance returns the Group bound to owner, whose members are the
// instances of the declared signals on owner.
func (d *GroupOf[O]) Instance(owner *O) *Group {
	if owner == nil {
		panic(fmt.Sprintf("signals: group %q: nil owner", d.name))
	}
	store := storeOf(owner)
	if g, ok := store.load(d); ok {
		return g.(*Group)
	}

	members := make(map[string]*SignalInstance, len(d.signals))
	for name, sig := range d.signals {
		members[name] = sig.Instance(owner)
	}
	wp := weak.Make(owner)
	g := newGroup(d.name, members, func() any {
		if p := wp.Value(); p != nil {
			return p
		}
		return nil
	}, d.opts)
	actual, _ := store.loadOrStore(d, g)
	return actual.(*Group)
}
