package vstr

import (
	"encoding/binary"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/hupe1980/vstr/internal/arena"
)

// Arena is the shared heap behind a descriptor's packed records.
type Arena = arena.Arena

// Packed is the 16-byte record a column stores per element. The zero value
// is the empty string.
type Packed = arena.Packed

// Ownership tells whether a descriptor is responsible for its arena.
type Ownership uint8

const (
	// Independent is a freshly constructed descriptor that owns its arena
	// but has not been bound to a column yet.
	Independent Ownership = iota
	// Owned descriptors destroy their arena on Close.
	Owned
	// View descriptors reference an arena owned elsewhere and never
	// destroy it.
	View
)

func (o Ownership) String() string {
	switch o {
	case Independent:
		return "independent"
	case Owned:
		return "owned"
	case View:
		return "view"
	default:
		return "unknown"
	}
}

// Descriptor is the element type of a string column: an arena, the column's
// NA configuration, the coercion policy, and who owns the arena.
//
// A Descriptor is safe for concurrent use. Element operations serialize on
// the arena lock.
type Descriptor struct {
	coerce bool
	na     NAConfig
	arena  *Arena

	mu        sync.Mutex // guards ownership
	ownership Ownership
	closed    atomic.Bool

	opts    options
	logger  *Logger
	metrics MetricsCollector
}

// NewDescriptor creates a descriptor. Without WithArena it allocates a fresh
// arena and starts Independent; with WithArena it is a View.
func NewDescriptor(opts ...Option) (*Descriptor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newDescriptor(o)
}

func newDescriptor(o options) (*Descriptor, error) {
	ownership := View
	a := o.arena
	if a == nil {
		var err error
		if a, err = o.newArena(); err != nil {
			return nil, err
		}
		ownership = Independent
	}

	d := &Descriptor{
		coerce:    o.coerce,
		na:        newNAConfig(o.na, o.hasNA),
		arena:     a,
		ownership: ownership,
		opts:      o,
		metrics:   o.metricsCollector,
	}
	d.logger = o.logger.WithArena(a.ID())

	return d, nil
}

// Coerce reports whether non-string values are converted on Set.
func (d *Descriptor) Coerce() bool { return d.coerce }

// NA returns the NA configuration.
func (d *Descriptor) NA() NAConfig { return d.na }

// Arena returns the backing arena.
func (d *Descriptor) Arena() *Arena { return d.arena }

// Ownership returns the current ownership tag.
func (d *Descriptor) Ownership() Ownership {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ownership
}

// Closed reports whether Close has been called.
func (d *Descriptor) Closed() bool { return d.closed.Load() }

// String returns the canonical textual form, e.g.
// StringDType(na_object=vstr.NA, coerce=false).
func (d *Descriptor) String() string {
	var args []string
	if d.na.HasNull {
		args = append(args, "na_object="+repr(d.na.Sentinel))
	}
	if !d.coerce {
		args = append(args, "coerce=false")
	}
	return "StringDType(" + strings.Join(args, ", ") + ")"
}

// Hash returns a hash consistent with DescriptorsEqual for sentinels whose
// equality does not cross type families.
func (d *Descriptor) Hash() uint64 {
	h := xxhash.New()

	var flags [2]byte
	if d.coerce {
		flags[0] = 1
	}
	if d.na.HasNull {
		flags[1] = 1
	}
	_, _ = h.Write(flags[:])

	if d.na.HasNull {
		hashSentinel(h, d.na.Sentinel)
	}
	return h.Sum64()
}

func hashSentinel(h *xxhash.Digest, v any) {
	if s, ok := v.(string); ok {
		_, _ = h.WriteString("s")
		_, _ = h.WriteString(s)
		return
	}
	if isNaN(v) {
		_, _ = h.WriteString("nan")
		return
	}
	if n, ok := numberOf(v); ok {
		hashNumber(h, n)
		return
	}
	if v == nil {
		_, _ = h.WriteString("nil")
		return
	}
	// Arbitrary objects may define equality any way they like.
	_, _ = h.WriteString("o")
}

// hashNumber hashes integers that a float64 holds exactly as that float, so
// 7 and 7.0 collide, and all other integers by their exact value.
func hashNumber(h *xxhash.Digest, n number) {
	var b [9]byte
	if f, ok := n.exactFloat(); ok {
		if f == 0 {
			f = 0 // -0 == 0
		}
		b[0] = 'f'
		binary.LittleEndian.PutUint64(b[1:], math.Float64bits(f))
	} else {
		bits := n.u
		if n.kind == signedNumber {
			bits = uint64(n.i) //nolint:gosec // two's complement bits
		}
		b[0] = 'i'
		binary.LittleEndian.PutUint64(b[1:], bits)
	}
	_, _ = h.Write(b[:])
}

func (d *Descriptor) checkOpen(op string) error {
	if d.closed.Load() {
		return opError(op, -1, ErrClosed)
	}
	return nil
}
