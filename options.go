package vstr

import (
	"github.com/hupe1980/vstr/internal/arena"
	"github.com/hupe1980/vstr/resource"
)

type options struct {
	coerce           bool
	hasNA            bool
	na               any
	arena            *Arena
	chunkSize        int
	controller       *resource.Controller
	logger           *Logger
	metricsCollector MetricsCollector
}

func defaultOptions() options {
	return options{
		coerce:           true,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures descriptor and arena construction.
type Option func(*options)

// WithNA configures the missing-value sentinel. nil is a valid sentinel,
// distinct from configuring none.
//
// Text sentinels make nulls read back as that text and compare as it.
// Sentinels that are not equal to themselves (math.NaN(), NA) make nulls
// sort after every string. Any other sentinel is stored and returned but
// nulls holding it cannot be ordered.
func WithNA(v any) Option {
	return func(o *options) {
		o.hasNA = true
		o.na = v
	}
}

// WithCoerce controls whether non-string values are converted to text on
// Set (the default) or rejected with ErrTypeMismatch.
func WithCoerce(coerce bool) Option {
	return func(o *options) {
		o.coerce = coerce
	}
}

// WithArena makes the descriptor a view on an arena owned elsewhere. The
// descriptor never closes it.
func WithArena(a *Arena) Option {
	return func(o *options) {
		o.arena = a
	}
}

// WithChunkSize sets the chunk size of newly created arenas.
//
// If size is 0, arena.DefaultChunkSize is used.
func WithChunkSize(size int) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// WithMemoryController bounds the memory of newly created arenas. Running
// out of budget surfaces as ErrOutOfMemory.
func WithMemoryController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithLogger sets the logger.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
//
// If nil is passed, metrics are disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

func (o *options) newArena() (*Arena, error) {
	var aopts []arena.Option
	if o.controller != nil {
		aopts = append(aopts, arena.WithMemoryAcquirer(o.controller))
	}
	return arena.New(o.chunkSize, aopts...)
}

// NewArena creates an arena that can be shared by several descriptors via
// WithArena. Only WithChunkSize and WithMemoryController apply. The caller
// closes it.
func NewArena(opts ...Option) (*Arena, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o.newArena()
}
