package vstr

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hupe1980/vstr/resource"
)

func TestLoggerConstructors(t *testing.T) {
	assert.NotNil(t, NoopLogger().Logger)
	assert.NotNil(t, NewLogger(nil).Logger)
	assert.NotNil(t, NewJSONLogger(zapcore.InfoLevel).Logger)
	assert.NotNil(t, NewDevelopmentLogger().Logger)
}

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLogger(zap.New(core)).WithArena(7).WithOwnership(View)

	l.LogFinalize(View, true, nil)
	l.LogFinalize(Independent, false, errors.New("boom"))
	l.LogClose(false, nil)
	l.LogAllocFailure("set", 10, ErrOutOfMemory)

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, uint64(7), entries[0].ContextMap()["arena"])
	assert.Equal(t, "view", entries[0].ContextMap()["ownership"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "finalize failed", entries[1].Message)

	assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
	assert.Equal(t, "set", entries[3].ContextMap()["op"])
	assert.Equal(t, int64(10), entries[3].ContextMap()["size"])
}

func TestWithLoggerNil(t *testing.T) {
	d := newTestDescriptor(t, WithLogger(nil), WithMetricsCollector(nil))
	var slot Packed
	require.NoError(t, d.Set(&slot, "x"))
}

func TestAllocFailureLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 1})

	d := newTestDescriptor(t,
		WithLogger(NewLogger(zap.New(core))),
		WithMemoryController(ctrl),
	)

	var slot Packed
	err := d.Set(&slot, strings.Repeat("x", 64))
	require.ErrorIs(t, err, ErrOutOfMemory)

	failures := logs.FilterMessage("allocation failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, int64(64), failures[0].ContextMap()["size"])

	require.NoError(t, d.Set(&slot, "inline fits"))
}

func TestAllocFailureThrottled(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := NewLogger(zap.New(core))

	for range 50 {
		l.LogAllocFailure("set", 1, ErrOutOfMemory)
	}

	n := logs.Len()
	assert.GreaterOrEqual(t, n, allocLogBurst)
	assert.Less(t, n, 50)

	// Derived loggers share the limiter.
	l.WithArena(1).LogAllocFailure("set", 1, ErrOutOfMemory)
	assert.LessOrEqual(t, logs.Len(), n+1)

	bare := &Logger{Logger: zap.New(core)}
	bare.LogAllocFailure("fill", 2, ErrOutOfMemory)
	assert.Equal(t, "fill", logs.All()[logs.Len()-1].ContextMap()["op"])
}
