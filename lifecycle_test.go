package vstr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFinalizeIndependent(t *testing.T) {
	d := newTestDescriptor(t, WithNA(NA))
	a := d.Arena()

	f, err := d.Finalize()
	require.NoError(t, err)

	assert.Same(t, d, f)
	assert.Same(t, a, f.Arena())
	assert.Equal(t, Owned, f.Ownership())

	t.Run("owned is a no-op", func(t *testing.T) {
		again, err := f.Finalize()
		require.NoError(t, err)
		assert.Same(t, f, again)
		assert.Equal(t, Owned, again.Ownership())
	})
}

func TestFinalizeView(t *testing.T) {
	a, err := NewArena()
	require.NoError(t, err)
	defer a.Close()

	view := newTestDescriptor(t, WithArena(a), WithNA("NA"), WithCoerce(false))

	var shared Packed
	require.NoError(t, view.Set(&shared, strings.Repeat("s", 64)))
	before := a.Stats()

	f, err := view.Finalize()
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.NotSame(t, view, f)
	assert.NotSame(t, a, f.Arena())
	assert.Equal(t, Owned, f.Ownership())
	assert.Equal(t, View, view.Ownership())
	assert.True(t, DescriptorsEqual(view, f))
	assert.Equal(t, view.NA(), f.NA())
	assert.False(t, f.Coerce())

	var own Packed
	require.NoError(t, f.Set(&own, strings.Repeat("o", 64)))
	assert.Equal(t, before, a.Stats())

	got, err := view.Get(&shared)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("s", 64), got)

	require.NoError(t, f.Close())
	assert.True(t, f.Arena().Closed())
	assert.False(t, a.Closed())
}

func TestClose(t *testing.T) {
	t.Run("independent destroys arena", func(t *testing.T) {
		d, err := NewDescriptor()
		require.NoError(t, err)

		require.NoError(t, d.Close())
		assert.True(t, d.Arena().Closed())
		assert.True(t, d.Closed())
	})

	t.Run("view leaves arena", func(t *testing.T) {
		a, err := NewArena()
		require.NoError(t, err)

		v1, err := NewDescriptor(WithArena(a))
		require.NoError(t, err)
		v2, err := NewDescriptor(WithArena(a))
		require.NoError(t, err)

		require.NoError(t, v1.Close())
		require.NoError(t, v2.Close())
		assert.False(t, a.Closed())

		require.NoError(t, a.Close())
		require.ErrorIs(t, a.Close(), ErrArenaClosed)
	})

	t.Run("second close fails", func(t *testing.T) {
		d, err := NewDescriptor()
		require.NoError(t, err)
		require.NoError(t, d.Close())
		require.ErrorIs(t, d.Close(), ErrClosed)
	})
}

func TestLifecycleLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	metrics := &BasicMetricsCollector{}

	a, err := NewArena()
	require.NoError(t, err)
	defer a.Close()

	view, err := NewDescriptor(
		WithArena(a),
		WithLogger(NewLogger(zap.New(core))),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	f, err := view.Finalize()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, view.Close())

	finalized := logs.FilterMessage("descriptor finalized").All()
	require.Len(t, finalized, 1)
	fields := finalized[0].ContextMap()
	assert.Equal(t, a.ID(), fields["arena"])
	assert.Equal(t, "view", fields["from"])
	assert.Equal(t, true, fields["cloned"])

	closed := logs.FilterMessage("descriptor closed").All()
	require.Len(t, closed, 2)
	assert.Equal(t, true, closed[0].ContextMap()["arena_destroyed"])
	assert.Equal(t, false, closed[1].ContextMap()["arena_destroyed"])

	st := metrics.GetStats()
	assert.Equal(t, int64(1), st.FinalizeCount)
	assert.Equal(t, int64(1), st.FinalizeClones)
}
