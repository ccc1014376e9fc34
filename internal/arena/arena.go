package arena

import (
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/vstr/internal/mmap"
)

// MemoryAcquirer bounds the memory an arena may reserve.
type MemoryAcquirer interface {
	TryAcquireMemory(amount int64) bool
	ReleaseMemory(amount int64)
}

const (
	// DefaultChunkSize is the default size of a chunk (1MB).
	DefaultChunkSize = 1024 * 1024
	// MinChunkSize is the smallest chunk an arena will use.
	MinChunkSize = 4096

	// Smallest out-of-line block is 16 bytes.
	minBlockBits = 4
	pageSize     = 4096
)

var nextArenaID atomic.Uint64

// Stats tracks arena memory usage.
//
//   - BytesReserved: memory currently mapped (chunks and large blocks)
//   - BytesUsed: payload bytes currently stored out of line
//   - LiveBlocks: out-of-line allocations currently referenced
//   - LargeBlocks: dedicated mappings currently held
//   - TotalAllocs: cumulative out-of-line allocations (reuse excluded)
type Stats struct {
	ChunksAllocated uint64
	BytesReserved   uint64
	BytesUsed       uint64
	LiveBlocks      uint64
	LargeBlocks     uint64
	TotalAllocs     uint64
}

type chunk struct {
	mapping *mmap.Mapping
	data    []byte
	offset  int
}

// Arena owns the heap behind a set of Packed records.
//
// An Arena may be shared by several descriptors; exactly one of them is
// responsible for calling Close.
type Arena struct {
	id        uint64
	chunkSize int
	chunkBits int
	chunkMask uint64
	largeMin  int // payloads above this size get a dedicated mapping

	mu        sync.Mutex
	al        Allocator
	chunks    []*chunk
	free      [][]uint64 // free block offsets per size class
	large     map[uint64]*mmap.Mapping
	nextLarge uint64
	stats     Stats
	closed    bool
	acquirer  MemoryAcquirer
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer sets the memory budget for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// New creates an Arena. chunkSize is rounded up to a power of two no smaller
// than MinChunkSize; 0 selects DefaultChunkSize. No memory is reserved until
// the first out-of-line payload is stored.
func New(chunkSize int, opts ...Option) (*Arena, error) {
	if chunkSize < 0 {
		return nil, fmt.Errorf("arena: invalid chunk size %d", chunkSize)
	}
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize < MinChunkSize {
		chunkSize = MinChunkSize
	}

	chunkBits := bits.Len(uint(chunkSize - 1)) //nolint:gosec // chunkSize > 0
	chunkSize = 1 << chunkBits

	a := &Arena{
		id:        nextArenaID.Add(1),
		chunkSize: chunkSize,
		chunkBits: chunkBits,
		chunkMask: uint64(chunkSize - 1), //nolint:gosec // chunkSize > 0
		largeMin:  chunkSize / 4,
		large:     make(map[uint64]*mmap.Mapping),
	}
	a.al.a = a
	// Classes cover 16 bytes up to a quarter chunk.
	a.free = make([][]uint64, chunkBits-2-minBlockBits+1)

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// ID returns a process-unique identifier for the arena.
func (a *Arena) ID() uint64 { return a.id }

// ChunkSize returns the effective chunk size.
func (a *Arena) ChunkSize() int { return a.chunkSize }

// Acquire locks the arena and returns the allocator for record operations.
// The allocator must be released exactly once.
func (a *Arena) Acquire() *Allocator {
	a.mu.Lock()
	a.al.held = true
	return &a.al
}

// AcquirePair locks the arenas written (w) and read (r) by a cross-arena
// operation. When both are the same arena a single lock is taken and the same
// allocator is returned twice. Distinct arenas are locked in ascending id
// order so opposite-direction copies cannot deadlock.
func AcquirePair(w, r *Arena) (*Allocator, *Allocator) {
	if w == r {
		al := w.Acquire()
		return al, al
	}
	if w.id < r.id {
		wa := w.Acquire()
		return wa, r.Acquire()
	}
	ra := r.Acquire()
	return w.Acquire(), ra
}

// ReleasePair releases allocators obtained from AcquirePair.
func ReleasePair(w, r *Allocator) {
	w.Release()
	if r != w {
		r.Release()
	}
}

// Close unmaps all memory held by the arena. Records that referenced it
// become invalid. Closing an arena twice returns ErrArenaClosed.
//
// Close must not be called while an Allocator of this arena is held.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrArenaClosed
	}
	a.closed = true

	var firstErr error
	for _, c := range a.chunks {
		if err := c.mapping.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for id, m := range a.large {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(a.large, id)
	}
	if a.acquirer != nil && a.stats.BytesReserved > 0 {
		a.acquirer.ReleaseMemory(int64(a.stats.BytesReserved)) //nolint:gosec // bounded by mapped memory
	}

	a.chunks = nil
	for i := range a.free {
		a.free[i] = nil
	}
	a.stats.BytesReserved = 0
	a.stats.BytesUsed = 0
	a.stats.LiveBlocks = 0
	a.stats.LargeBlocks = 0

	return firstErr
}

// Closed reports whether Close has been called.
func (a *Arena) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// Stats returns the current arena statistics. It takes the arena lock and
// must not be called while holding an Allocator.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf(
		"Arena{id: %d, chunks: %d, reserved: %.2f MB, used: %.2f MB, blocks: %d, large: %d}",
		a.id,
		s.ChunksAllocated,
		float64(s.BytesReserved)/(1024*1024),
		float64(s.BytesUsed)/(1024*1024),
		s.LiveBlocks,
		s.LargeBlocks,
	)
}

// classOf returns the size class for an out-of-line payload of n bytes.
func classOf(n int) int {
	c := bits.Len(uint(n-1)) - minBlockBits //nolint:gosec // n > InlineMax
	if c < 0 {
		return 0
	}
	return c
}

func classSize(c int) int { return 1 << (c + minBlockBits) }

func (a *Arena) reserve(amount int) error {
	if a.acquirer != nil && !a.acquirer.TryAcquireMemory(int64(amount)) {
		return fmt.Errorf("%w: budget exhausted reserving %d bytes", ErrOutOfMemory, amount)
	}
	return nil
}

func (a *Arena) unreserve(amount int) {
	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(int64(amount))
	}
}

func (a *Arena) growLocked() (*chunk, error) {
	if err := a.reserve(a.chunkSize); err != nil {
		return nil, err
	}

	mapping, err := mmap.MapAnon(a.chunkSize)
	if err != nil {
		a.unreserve(a.chunkSize)
		return nil, fmt.Errorf("%w: map chunk: %w", ErrOutOfMemory, err)
	}

	c := &chunk{mapping: mapping, data: mapping.Bytes()}
	a.chunks = append(a.chunks, c)
	a.stats.ChunksAllocated++
	a.stats.BytesReserved += uint64(a.chunkSize) //nolint:gosec // chunkSize > 0

	return c, nil
}

// allocLocked reserves space for n > InlineMax bytes and returns the record
// kind, location and writable block.
func (a *Arena) allocLocked(n int) (byte, uint64, []byte, error) {
	if uint64(n) > MaxLength { //nolint:gosec // n > InlineMax
		return 0, 0, nil, fmt.Errorf("%w: payload of %d bytes exceeds record limit", ErrOutOfMemory, n)
	}
	if n > a.largeMin {
		return a.allocLargeLocked(n)
	}

	class := classOf(n)
	size := classSize(class)

	if fl := a.free[class]; len(fl) > 0 {
		off := fl[len(fl)-1]
		a.free[class] = fl[:len(fl)-1]
		buf, err := a.blockLocked(off, size)
		if err != nil {
			return 0, 0, nil, err
		}
		a.noteAlloc(n)
		return kindArena, off, buf, nil
	}

	var cur *chunk
	if len(a.chunks) > 0 {
		cur = a.chunks[len(a.chunks)-1]
	}
	if cur == nil || cur.offset+size > len(cur.data) {
		var err error
		if cur, err = a.growLocked(); err != nil {
			return 0, 0, nil, err
		}
	}

	start := cur.offset
	cur.offset += size
	off := uint64(len(a.chunks)-1)<<a.chunkBits | uint64(start) //nolint:gosec // bounded by chunk count and size
	a.noteAlloc(n)
	a.stats.TotalAllocs++

	return kindArena, off, cur.data[start : start+size : start+size], nil
}

func (a *Arena) allocLargeLocked(n int) (byte, uint64, []byte, error) {
	size := (n + pageSize - 1) &^ (pageSize - 1)
	if err := a.reserve(size); err != nil {
		return 0, 0, nil, err
	}

	mapping, err := mmap.MapAnon(size)
	if err != nil {
		a.unreserve(size)
		return 0, 0, nil, fmt.Errorf("%w: map %d byte block: %w", ErrOutOfMemory, size, err)
	}

	a.nextLarge++
	id := a.nextLarge
	a.large[id] = mapping
	a.stats.BytesReserved += uint64(size) //nolint:gosec // size > 0
	a.stats.LargeBlocks++
	a.stats.TotalAllocs++
	a.noteAlloc(n)

	return kindLarge, id, mapping.Bytes(), nil
}

func (a *Arena) noteAlloc(n int) {
	a.stats.BytesUsed += uint64(n) //nolint:gosec // n > 0
	a.stats.LiveBlocks++
}

// blockLocked resolves an arena offset to its block.
func (a *Arena) blockLocked(off uint64, size int) ([]byte, error) {
	idx := off >> a.chunkBits
	start := off & a.chunkMask
	if idx >= uint64(len(a.chunks)) {
		return nil, fmt.Errorf("%w: chunk %d out of range", ErrCorruptStorage, idx)
	}
	c := a.chunks[idx]
	if start+uint64(size) > uint64(c.offset) { //nolint:gosec // size > 0
		return nil, fmt.Errorf("%w: block at %d beyond chunk watermark", ErrCorruptStorage, off)
	}
	return c.data[start : start+uint64(size) : start+uint64(size)], nil //nolint:gosec // checked above
}

// resolveLocked returns the full block behind an out-of-line record.
func (a *Arena) resolveLocked(p *Packed) ([]byte, error) {
	n := int(p.length()) //nolint:gosec // bounded by MaxLength
	switch p.kind() {
	case kindArena:
		if n > a.largeMin {
			return nil, fmt.Errorf("%w: arena block length %d exceeds class range", ErrCorruptStorage, n)
		}
		return a.blockLocked(p.loc(), classSize(classOf(n)))
	case kindLarge:
		m, ok := a.large[p.loc()]
		if !ok {
			return nil, fmt.Errorf("%w: unknown large block %d", ErrCorruptStorage, p.loc())
		}
		buf := m.Bytes()
		if n > len(buf) {
			return nil, fmt.Errorf("%w: length %d exceeds large block", ErrCorruptStorage, n)
		}
		return buf, nil
	default:
		return nil, ErrCorruptStorage
	}
}

// releaseLocked returns the storage behind a record to the arena.
func (a *Arena) releaseLocked(p *Packed) error {
	n := int(p.length()) //nolint:gosec // bounded by MaxLength
	switch p.kind() {
	case kindArena:
		a.free[classOf(n)] = append(a.free[classOf(n)], p.loc())
	case kindLarge:
		m := a.large[p.loc()]
		delete(a.large, p.loc())
		size := m.Size()
		if err := m.Close(); err != nil {
			return err
		}
		a.unreserve(size)
		a.stats.BytesReserved -= uint64(size) //nolint:gosec // size > 0
		a.stats.LargeBlocks--
	default:
		return nil
	}
	a.stats.BytesUsed -= uint64(n) //nolint:gosec // n > 0
	a.stats.LiveBlocks--
	return nil
}
