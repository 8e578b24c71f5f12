package signals_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/delaneyj/slotparty/pkg/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type document struct {
	signals.Instances
	title *string
	body  []byte
}

func (d *document) touch() { d.body = append(d.body, 0) }

var (
	titleChanged = signals.New[document]("title_changed",
		signals.WithDescription("title of a document changed"),
		signals.WithSignature(func(newTitle, oldTitle string) {}),
	)
	saved   = signals.New[document]("saved")
	scratch = signals.New[document]("scratch")
	edited  = signals.New[document]("edited", signals.WithArgs(signals.TypeOf[int]()))
)

func TestSignalDescriptor(t *testing.T) {
	assert.Equal(t, "title_changed", titleChanged.Name())
	assert.Equal(t, "title of a document changed", titleChanged.Description())
	assert.Equal(t, "(string, string)", titleChanged.Shape().String())
	assert.Equal(t, signals.ReemitImmediate, titleChanged.Reemission())
	assert.Equal(t, `<Signal "title_changed" on signals_test.document>`, titleChanged.String())
}

func TestInstancePerOwner(t *testing.T) {
	a, b := &document{}, &document{}

	ia := titleChanged.Instance(a)
	assert.Same(t, ia, titleChanged.Instance(a))
	assert.NotSame(t, ia, titleChanged.Instance(b))
	assert.NotSame(t, ia, saved.Instance(a))

	assert.Same(t, a, ia.Owner())
	assert.Equal(t, "title_changed", ia.Name())
	assert.Equal(t, "title of a document changed", ia.Description())
	assert.Contains(t, ia.String(), "on *signals_test.document")

	var got []string
	require.NoError(t, ia.Connect(func(newTitle string) { got = append(got, newTitle) }))
	require.NoError(t, ia.Emit("new", "old"))
	require.NoError(t, titleChanged.Instance(b).Emit("other", "old"))
	assert.Equal(t, []string{"new"}, got)

	assert.Panics(t, func() { titleChanged.Instance(nil) })
}

type unowned struct{ n int }

func TestNewRequiresInstances(t *testing.T) {
	assert.PanicsWithValue(t,
		`signals: signal "x": owner type signals_test.unowned does not embed signals.Instances`,
		func() { signals.New[unowned]("x") },
	)
	assert.Panics(t, func() { signals.NewGroupOf[unowned]("g", nil) })
}

//go:noinline
func touchScratch() {
	d := &document{body: make([]byte, 64)}
	scratch.Instance(d)
}

func TestInstanceCacheDoesNotKeepOwnerAlive(t *testing.T) {
	keep := &document{}
	scratch.Instance(keep)

	touchScratch()
	require.Equal(t, 2, scratch.Len())

	require.Eventually(t, func() bool {
		runtime.GC()
		return scratch.Len() == 1
	}, 5*time.Second, 10*time.Millisecond)
	runtime.KeepAlive(keep)
}

//go:noinline
func connectSelfReferences(t *testing.T) {
	d := &document{body: make([]byte, 64)}
	si := edited.Instance(d)
	require.NoError(t, si.Connect(func(n int) { d.body = append(d.body, byte(n)) }))
	require.NoError(t, si.Connect(d.touch, signals.OnRefError(signals.RefErrorIgnore)))
	require.NoError(t, si.Emit(1))
}

func TestSlotReferencingOwnerDoesNotKeepItAlive(t *testing.T) {
	keep := &document{}
	edited.Instance(keep)

	connectSelfReferences(t)
	require.Equal(t, 2, edited.Len())

	require.Eventually(t, func() bool {
		runtime.GC()
		return edited.Len() == 1
	}, 5*time.Second, 10*time.Millisecond)
	runtime.KeepAlive(keep)
}
