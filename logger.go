package vstr

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

// Allocation failures repeat on every Set once a budget is exhausted; at most
// allocLogBurst are logged back to back, then one per second.
const (
	allocLogRate  = rate.Limit(1)
	allocLogBurst = 10
)

// Logger wraps zap.Logger with vstr-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*zap.Logger

	allocLimit *rate.Limiter
	suppressed *atomic.Int64
}

func wrap(zl *zap.Logger) *Logger {
	return &Logger{
		Logger:     zl,
		allocLimit: rate.NewLimiter(allocLogRate, allocLogBurst),
		suppressed: new(atomic.Int64),
	}
}

func (l *Logger) with(fields ...zap.Field) *Logger {
	return &Logger{
		Logger:     l.Logger.With(fields...),
		allocLimit: l.allocLimit,
		suppressed: l.suppressed,
	}
}

// NewLogger wraps an existing zap logger.
// If zl is nil, logging is disabled.
func NewLogger(zl *zap.Logger) *Logger {
	if zl == nil {
		zl = zap.NewNop()
	}
	return wrap(zl)
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to stderr.
// level sets the minimum log level (e.g., zapcore.DebugLevel).
func NewJSONLogger(level zapcore.Level) *Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(level),
	)
	return wrap(zap.New(core).Named("vstr"))
}

// NewDevelopmentLogger creates a Logger that outputs human-readable logs at
// debug level.
func NewDevelopmentLogger() *Logger {
	zl, err := zap.NewDevelopment()
	if err != nil {
		return NoopLogger()
	}
	return wrap(zl.Named("vstr"))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return wrap(zap.NewNop())
}

// WithArena adds the arena id field to the logger.
func (l *Logger) WithArena(id uint64) *Logger {
	return l.with(zap.Uint64("arena", id))
}

// WithOwnership adds the ownership field to the logger.
func (l *Logger) WithOwnership(o Ownership) *Logger {
	return l.with(zap.Stringer("ownership", o))
}

// LogFinalize logs a finalize transition.
func (l *Logger) LogFinalize(from Ownership, cloned bool, err error) {
	if err != nil {
		l.Error("finalize failed",
			zap.Stringer("from", from),
			zap.Error(err),
		)
		return
	}
	l.Debug("descriptor finalized",
		zap.Stringer("from", from),
		zap.Bool("cloned", cloned),
	)
}

// LogClose logs descriptor destruction.
func (l *Logger) LogClose(destroyed bool, err error) {
	if err != nil {
		l.Error("close failed", zap.Error(err))
		return
	}
	l.Debug("descriptor closed", zap.Bool("arena_destroyed", destroyed))
}

// LogAllocFailure logs a payload that could not be placed in the arena.
// Bursts are throttled; the next logged entry reports how many were dropped.
func (l *Logger) LogAllocFailure(op string, size int, err error) {
	var dropped int64
	if l.allocLimit != nil {
		if !l.allocLimit.Allow() {
			l.suppressed.Add(1)
			return
		}
		dropped = l.suppressed.Swap(0)
	}
	l.Warn("allocation failed",
		zap.String("op", op),
		zap.Int("size", size),
		zap.Int64("suppressed", dropped),
		zap.Error(err),
	)
}
