package signals_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/delaneyj/slotparty/pkg/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPauseResume(t *testing.T) {
	si := signals.NewInstance("letters", signals.WithArgs(signals.TypeOf[string]()))
	var got []string
	require.NoError(t, si.Connect(func(s string) { got = append(got, s) }))

	si.Pause()
	assert.True(t, si.IsPaused())
	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, si.Emit(s))
	}
	assert.Empty(t, got)

	require.NoError(t, si.Resume())
	assert.False(t, si.IsPaused())
	assert.Equal(t, []string{"a", "b", "c"}, got)

	// the buffer was consumed
	require.NoError(t, si.Resume())
	assert.Len(t, got, 3)
}

func sum(acc, next []any) []any {
	return []any{acc[0].(int) + next[0].(int)}
}

func TestResumeWithReducer(t *testing.T) {
	si := intSignal("value")
	var got []int
	require.NoError(t, si.Connect(func(v int) { got = append(got, v) }))

	si.Pause()
	for _, v := range []int{1, 2, 3} {
		require.NoError(t, si.Emit(v))
	}
	require.NoError(t, si.Resume(signals.WithReducer(sum), signals.WithInitial(0)))
	assert.Equal(t, []int{6}, got)

	si.Pause()
	for _, v := range []int{4, 5} {
		require.NoError(t, si.Emit(v))
	}
	require.NoError(t, si.Resume(signals.WithReducer(sum)))
	assert.Equal(t, []int{6, 9}, got)
}

func TestResumeWithReduceAll(t *testing.T) {
	si := intSignal("value")
	var got []int
	require.NoError(t, si.Connect(func(v int) { got = append(got, v) }))

	si.Pause()
	for _, v := range []int{3, 9, 4} {
		require.NoError(t, si.Emit(v))
	}
	require.NoError(t, si.Resume(signals.WithReduceAll(func(buffered [][]any) []any {
		return buffered[len(buffered)-1]
	})))
	assert.Equal(t, []int{4}, got)
}

func TestPausedScope(t *testing.T) {
	si := intSignal("value")
	var got []int
	require.NoError(t, si.Connect(func(v int) { got = append(got, v) }))

	err := si.Paused(func() {
		require.NoError(t, si.Emit(1))
		err := si.Paused(func() {
			require.NoError(t, si.Emit(2))
		})
		require.NoError(t, err)
		// inner scope does not resume
		assert.True(t, si.IsPaused())
		assert.Empty(t, got)
		require.NoError(t, si.Emit(3))
	}, signals.WithReducer(sum))
	require.NoError(t, err)
	assert.False(t, si.IsPaused())
	assert.Equal(t, []int{6}, got)
}

func TestPausedReturnsResumeError(t *testing.T) {
	si := intSignal("value")
	boom := errors.New("boom")
	require.NoError(t, si.Connect(func(int) error { return boom }))

	err := si.Paused(func() {
		require.NoError(t, si.Emit(1))
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, si.IsPaused())
}

func TestBlockedWinsOverPaused(t *testing.T) {
	si := intSignal("value")
	calls := 0
	require.NoError(t, si.Connect(func(int) { calls++ }))

	si.Pause()
	si.Blocked(func() {
		require.NoError(t, si.Emit(1))
	})
	require.NoError(t, si.Emit(2))
	require.NoError(t, si.Resume())
	assert.Equal(t, 1, calls)
}

// resumeInsideSlotLog pauses, buffers 10 and 20 and resumes from inside a
// slot that is handling 0.
func resumeInsideSlotLog(t *testing.T, mode signals.ReemissionMode) []string {
	t.Helper()
	si := intSignal("value", signals.WithReemission(mode))
	var log []string
	require.NoError(t, si.Connect(func(v int) error {
		log = append(log, fmt.Sprintf("a%d", v))
		if v != 0 {
			return nil
		}
		si.Pause()
		for _, buffered := range []int{10, 20} {
			if err := si.Emit(buffered); err != nil {
				return err
			}
		}
		return si.Resume()
	}))
	require.NoError(t, si.Connect(func(v int) {
		log = append(log, fmt.Sprintf("b%d", v))
	}))
	require.NoError(t, si.Emit(0))
	assert.False(t, si.IsPaused())
	return log
}

func TestResumeInsideSlot(t *testing.T) {
	// immediate replays nest inside the running pass
	assert.Equal(t,
		[]string{"a0", "a10", "b10", "a20", "b20", "b0"},
		resumeInsideSlotLog(t, signals.ReemitImmediate),
	)
	// queued replays run after the running pass, in buffer order
	assert.Equal(t,
		[]string{"a0", "b0", "a10", "b10", "a20", "b20"},
		resumeInsideSlotLog(t, signals.ReemitQueued),
	)
	// latest-only keeps the last replay and drops the rest of the pass
	assert.Equal(t,
		[]string{"a0", "a20", "b20"},
		resumeInsideSlotLog(t, signals.ReemitLatestOnly),
	)
}
