package signals_test

import (
	"fmt"
	"testing"

	"github.com/delaneyj/slotparty/pkg/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroup() (*signals.Group, *signals.SignalInstance, *signals.SignalInstance) {
	size := intSignal("size")
	name := signals.NewInstance("name", signals.WithArgs(signals.TypeOf[string]()))
	g := signals.NewGroup("events", map[string]*signals.SignalInstance{
		"size": size,
		"name": name,
	})
	return g, size, name
}

func describe(info signals.EmissionInfo) string {
	return fmt.Sprintf("%s%v", info.Signal.Name(), info.Args)
}

func TestGroupRelay(t *testing.T) {
	g, size, name := newTestGroup()
	assert.Equal(t, []string{"name", "size"}, g.Names())
	assert.Equal(t, 2, g.Len())
	assert.False(t, g.IsUniform())

	var got []string
	record := func(info signals.EmissionInfo) { got = append(got, describe(info)) }

	assert.Zero(t, size.Len())
	require.NoError(t, g.Connect(record))
	assert.Equal(t, 1, size.Len())
	assert.Equal(t, 1, name.Len())

	require.NoError(t, size.Emit(3))
	require.NoError(t, name.Emit("box"))
	assert.Equal(t, []string{"size[3]", "name[box]"}, got)

	// the relay detaches with its last slot
	require.NoError(t, g.Disconnect(record, false))
	assert.Zero(t, size.Len())
	assert.Zero(t, name.Len())
	require.NoError(t, size.Emit(4))
	assert.Len(t, got, 2)
}

func TestGroupRejectsIncompatibleSlot(t *testing.T) {
	g, size, _ := newTestGroup()
	assert.Error(t, g.Connect(func(int, int) {}))
	assert.Zero(t, size.Len())
}

func TestGroupConnectDirect(t *testing.T) {
	g, size, name := newTestGroup()
	var got [][]any
	slot := func(args ...any) { got = append(got, args) }
	require.NoError(t, g.ConnectDirect(slot))

	require.NoError(t, size.Emit(1))
	require.NoError(t, name.Emit("x"))
	assert.Equal(t, [][]any{{1}, {"x"}}, got)

	assert.Error(t, g.ConnectDirect(func(int) {}, signals.CheckTypes(true)))

	require.NoError(t, g.Disconnect(slot, false))
	assert.Equal(t, 1, size.Len())
	assert.Zero(t, name.Len())
	assert.Error(t, g.Disconnect(slot, false))
}

func TestGroupBlockExclude(t *testing.T) {
	g, size, name := newTestGroup()
	var got []string
	require.NoError(t, g.Connect(func(info signals.EmissionInfo) { got = append(got, describe(info)) }))
	direct := 0
	require.NoError(t, size.Connect(func(int) { direct++ }))

	name.Block()
	g.Block("size")
	assert.True(t, g.IsBlocked())
	assert.False(t, size.IsBlocked())
	require.NoError(t, size.Emit(1))
	assert.Equal(t, 1, direct)
	assert.Empty(t, got)

	g.Unblock()
	assert.False(t, g.IsBlocked())
	// name was blocked before the group block
	assert.True(t, name.IsBlocked())
	name.Unblock()

	g.Blocked(func() {
		require.NoError(t, size.Emit(2))
		require.NoError(t, name.Emit("x"))
	})
	assert.Equal(t, 1, direct)
	assert.Empty(t, got)

	require.NoError(t, name.Emit("y"))
	assert.Equal(t, []string{"name[y]"}, got)
}

func TestGroupPause(t *testing.T) {
	g, size, name := newTestGroup()
	var got []string
	require.NoError(t, g.Connect(func(info signals.EmissionInfo) { got = append(got, describe(info)) }))

	err := g.Paused(func() {
		assert.True(t, g.IsPaused())
		require.NoError(t, size.Emit(1))
		require.NoError(t, name.Emit("a"))
		assert.Empty(t, got)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"size[1]", "name[a]"}, got)

	g.Pause()
	require.NoError(t, size.Emit(2))
	require.NoError(t, size.Emit(3))
	require.NoError(t, g.Resume(signals.WithReduceAll(func(buffered [][]any) []any {
		return buffered[len(buffered)-1]
	})))
	assert.Equal(t, []string{"size[1]", "name[a]", "size[3]"}, got)
}

func TestGroupLookup(t *testing.T) {
	g, size, _ := newTestGroup()
	si, ok := g.Signal("size")
	assert.True(t, ok)
	assert.Same(t, size, si)
	_, ok = g.Signal("missing")
	assert.False(t, ok)
	assert.Equal(t, "events", g.Name())
	assert.Equal(t, `<Group "events" with 2 signals>`, g.String())
	assert.Equal(t, "(signals.EmissionInfo)", g.Relay().Shape().String())
}

func TestNestedGroupsForwardEmissionInfo(t *testing.T) {
	inner, size, _ := newTestGroup()
	outer := signals.NewGroup("outer", map[string]*signals.SignalInstance{
		"inner": inner.Relay(),
	})
	var got []string
	require.NoError(t, outer.Connect(func(info signals.EmissionInfo) { got = append(got, describe(info)) }))
	require.NoError(t, inner.Connect(func(signals.EmissionInfo) {}))

	require.NoError(t, size.Emit(5))
	assert.Equal(t, []string{"size[5]"}, got)
}

func TestGroupMemberEmittingEmissionInfo(t *testing.T) {
	size := intSignal("size")
	info := signals.NewInstance("info", signals.WithArgs(signals.TypeOf[signals.EmissionInfo]()))
	g := signals.NewGroup("events", map[string]*signals.SignalInstance{"info": info})

	var got []signals.EmissionInfo
	require.NoError(t, g.Connect(func(e signals.EmissionInfo) { got = append(got, e) }))

	payload := signals.EmissionInfo{Signal: size, Args: []any{1}}
	require.NoError(t, info.Emit(payload))
	require.Len(t, got, 1)
	assert.Same(t, info, got[0].Signal)
	assert.Equal(t, []any{payload}, got[0].Args)
}

type widget struct {
	signals.Instances
	label *string
	count int
}

var widgetEvents = signals.NewGroupOf[widget]("events", map[string]*signals.Signal[widget]{
	"moved":   signals.New[widget]("moved", signals.WithSignature(func(x, y int) {})),
	"resized": signals.New[widget]("resized", signals.WithSignature(func(w, h int) {})),
})

func TestGroupOf(t *testing.T) {
	w := &widget{}
	g := widgetEvents.Instance(w)
	assert.Same(t, g, widgetEvents.Instance(w))
	assert.NotSame(t, g, widgetEvents.Instance(&widget{}))
	assert.True(t, g.IsUniform())
	assert.Equal(t, "events", widgetEvents.Name())
	assert.Same(t, w, g.Relay().Owner())

	var got []string
	require.NoError(t, g.Connect(func(info signals.EmissionInfo) { got = append(got, describe(info)) }))
	moved, _ := g.Signal("moved")
	require.NoError(t, moved.Emit(1, 2))
	assert.Equal(t, []string{"moved[1 2]"}, got)
}
