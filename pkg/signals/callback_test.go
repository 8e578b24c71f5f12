package signals_test

import (
	"bytes"
	"errors"
	"log/slog"
	"runtime"
	"testing"

	"github.com/delaneyj/slotparty/pkg/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listener struct {
	name  string
	calls *int
	last  *int
}

func (l *listener) OnValue(v int) {
	*l.calls++
	*l.last = v
}

func (l *listener) OnAny(args ...any) {
	*l.calls++
}

func newListener(calls, last *int) *listener {
	return &listener{name: "listener", calls: calls, last: last}
}

func TestMethodEquality(t *testing.T) {
	si := intSignal("value")
	calls, last := 0, 0
	l := newListener(&calls, &last)

	require.NoError(t, si.Connect(signals.Method(l, (*listener).OnValue)))
	require.NoError(t, si.Emit(9))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 9, last)

	assert.True(t, si.Contains(signals.Method(l, (*listener).OnValue)))
	assert.False(t, si.Contains(signals.Method(l, (*listener).OnAny)))
	assert.False(t, si.Contains(signals.Method(newListener(&calls, &last), (*listener).OnValue)))

	require.NoError(t, si.Disconnect(signals.Method(l, (*listener).OnValue), false))
	assert.Zero(t, si.Len())
}

func TestMethodInvalid(t *testing.T) {
	si := intSignal("value")
	calls, last := 0, 0

	assert.ErrorIs(t, si.Connect(signals.Method[listener](nil, (*listener).OnValue)), signals.ErrNotCallable)
	assert.ErrorIs(t, si.Connect(signals.Method(newListener(&calls, &last), "OnValue")), signals.ErrNotCallable)
	assert.ErrorIs(t, si.Connect(signals.Method(newListener(&calls, &last), func(int) {})), signals.ErrNotCallable)
	assert.ErrorIs(t, si.Connect(42), signals.ErrNotCallable)
	assert.ErrorIs(t, si.Connect(nil), signals.ErrNotCallable)
	assert.Zero(t, si.Len())
}

//go:noinline
func connectTemporaryListener(t *testing.T, si *signals.SignalInstance, calls, last *int) {
	l := newListener(calls, last)
	require.NoError(t, si.Connect(signals.Method(l, (*listener).OnValue)))
	require.NoError(t, si.Emit(1))
}

func TestMethodOwnerCollected(t *testing.T) {
	si := intSignal("value")
	calls, last := 0, 0
	require.NoError(t, si.Connect(func(int) {}))
	connectTemporaryListener(t, si, &calls, &last)
	require.Equal(t, 2, si.Len())
	require.Equal(t, 1, calls)

	runtime.GC()
	runtime.GC()

	require.NoError(t, si.Emit(2))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, si.Len())
}

func TestMethodValuePolicies(t *testing.T) {
	var buf bytes.Buffer
	signals.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { signals.SetLogger(nil) })

	si := intSignal("value")
	calls, last := 0, 0
	l := newListener(&calls, &last)

	err := si.Connect(l.OnValue, signals.OnRefError(signals.RefErrorRaise))
	var refErr *signals.WeakReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.ErrorIs(t, err, signals.ErrWeakReference)
	assert.Zero(t, si.Len())

	require.NoError(t, si.Connect(l.OnValue, signals.OnRefError(signals.RefErrorIgnore)))
	assert.Empty(t, buf.String())

	require.NoError(t, si.Connect(l.OnValue))
	assert.Contains(t, buf.String(), "holding method value strongly")

	require.NoError(t, si.Emit(4))
	assert.Equal(t, 2, calls)
}

func TestMethodValueIdentity(t *testing.T) {
	si := intSignal("value")
	calls, last := 0, 0
	a := newListener(&calls, &last)
	b := newListener(&calls, &last)

	require.NoError(t, si.Connect(a.OnValue, signals.OnRefError(signals.RefErrorIgnore)))
	assert.True(t, si.Contains(a.OnValue))
	assert.False(t, si.Contains(b.OnValue))
	assert.False(t, si.Contains(a.OnAny))

	require.NoError(t, si.Connect(a.OnValue, signals.Unique(), signals.OnRefError(signals.RefErrorIgnore)))
	assert.Equal(t, 1, si.Len())

	require.NoError(t, si.Emit(1))
	assert.Equal(t, 1, calls)

	assert.Error(t, si.Disconnect(b.OnValue, false))
	require.NoError(t, si.Disconnect(a.OnValue, false))
	assert.Zero(t, si.Len())

	require.NoError(t, si.Emit(2))
	assert.Equal(t, 1, calls)
}

type settings struct {
	Title string
	Count int
	items map[string]any
}

func (s *settings) SetItem(key, value any) {
	if s.items == nil {
		s.items = map[string]any{}
	}
	s.items[key.(string)] = value
}

func TestSetField(t *testing.T) {
	si := signals.NewInstance("title", signals.WithArgs(signals.TypeOf[string]()))
	s := &settings{}

	require.NoError(t, signals.ConnectSetField(si, s, "Title"))
	require.NoError(t, si.Emit("hello"))
	assert.Equal(t, "hello", s.Title)

	assert.ErrorIs(t, signals.ConnectSetField(si, s, "Missing"), signals.ErrNotCallable)
	assert.ErrorIs(t, signals.ConnectSetField(si, s, "items"), signals.ErrNotCallable)

	err := signals.ConnectSetField(si, s, "Count", signals.CheckTypes(true))
	assert.Error(t, err)

	require.NoError(t, signals.DisconnectSetField(si, s, "Title", false))
	assert.Zero(t, si.Len())
	assert.Error(t, signals.DisconnectSetField(si, s, "Title", false))
}

func TestSetItem(t *testing.T) {
	si := signals.NewInstance("value", signals.WithArgs(signals.TypeOf[int]()))

	m := map[string]int{}
	require.NoError(t, signals.ConnectSetItem(si, &m, "x"))

	s := &settings{}
	require.NoError(t, signals.ConnectSetItem(si, s, "count"))

	require.NoError(t, si.Emit(3))
	assert.Equal(t, map[string]int{"x": 3}, m)
	assert.Equal(t, 3, s.items["count"])

	require.NoError(t, signals.DisconnectSetItem(si, &m, "x", false))
	require.NoError(t, signals.DisconnectSetItem(si, s, "count", false))
	assert.Zero(t, si.Len())

	bad := 0
	assert.ErrorIs(t, signals.ConnectSetItem(si, &bad, "x"), signals.ErrNotCallable)
	assert.ErrorIs(t, signals.ConnectSetItem(si, &m, 1), signals.ErrNotCallable)
}

type counter struct {
	calls int
	args  [][]any
}

func (c *counter) Invoke(args ...any) error {
	c.calls++
	c.args = append(c.args, args)
	if len(args) > 0 && args[0] == "fail" {
		return errors.New("invoker failed")
	}
	return nil
}

func TestInvokerSlot(t *testing.T) {
	si := signals.NewInstance("any", signals.WithSignature(func(string, int) {}))
	c := &counter{}

	require.NoError(t, si.Connect(c, signals.CheckTypes(true)))
	require.NoError(t, si.Emit("ok", 1))
	assert.Equal(t, [][]any{{"ok", 1}}, c.args)

	err := si.Emit("fail", 2)
	var cbErr *signals.CallbackError
	require.ErrorAs(t, err, &cbErr)
	assert.EqualError(t, cbErr.Err, "invoker failed")

	require.NoError(t, si.Disconnect(c, false))
	assert.Zero(t, si.Len())
}
