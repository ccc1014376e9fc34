package vstr

import (
	"errors"
	"time"
	"unsafe"

	"github.com/hupe1980/vstr/internal/arena"
)

// Set stores v in slot.
//
// Whether v is the column's missing value is decided before the arena is
// locked, since the sentinel's equality may run arbitrary code. Text is
// stored as is; other values are converted when coercion is enabled and
// rejected with ErrTypeMismatch otherwise. On failure slot keeps its
// previous value.
func (d *Descriptor) Set(slot *Packed, v any) error {
	start := time.Now()
	err := d.set(slot, v)
	d.metrics.RecordSet(slot.Size(), time.Since(start), err)
	return err
}

func (d *Descriptor) set(slot *Packed, v any) error {
	if err := d.checkOpen("set"); err != nil {
		return err
	}

	// Phase one, unlocked.
	if d.na.isNA(v) {
		return opError("set", -1, d.packNull(slot))
	}

	text, err := textOf(v, d.coerce)
	if err != nil {
		return opError("set", -1, err)
	}

	// Phase two, locked.
	err = d.pack(slot, stringBytes(text))
	if errors.Is(err, ErrOutOfMemory) {
		d.logger.LogAllocFailure("set", len(text), err)
	}
	return opError("set", -1, err)
}

// Get loads the value in slot. A null reads as the sentinel when one is
// configured and as "" otherwise. Text is returned as an independent copy.
func (d *Descriptor) Get(slot *Packed) (any, error) {
	start := time.Now()
	v, err := d.get(slot)
	d.metrics.RecordGet(time.Since(start), err)
	return v, err
}

func (d *Descriptor) get(slot *Packed) (any, error) {
	if err := d.checkOpen("get"); err != nil {
		return nil, err
	}

	s, isNull, err := d.load(slot)
	switch {
	case err != nil:
		return nil, opError("get", -1, err)
	case isNull && d.na.HasNull:
		return d.na.Sentinel, nil
	default:
		return s, nil
	}
}

// Fill allocates a zeroed payload of n bytes in slot and hands it to fill,
// which runs with the arena locked and must not retain the buffer or call
// back into the descriptor.
func (d *Descriptor) Fill(slot *Packed, n int, fill func(buf []byte)) error {
	if err := d.checkOpen("fill"); err != nil {
		return err
	}

	err := d.fill(slot, n, fill)
	if errors.Is(err, ErrOutOfMemory) {
		d.logger.LogAllocFailure("fill", n, err)
	}
	return opError("fill", -1, err)
}

func (d *Descriptor) pack(slot *Packed, b []byte) error {
	al := d.arena.Acquire()
	defer al.Release()
	return al.Pack(slot, b)
}

func (d *Descriptor) packNull(slot *Packed) error {
	al := d.arena.Acquire()
	defer al.Release()
	return al.PackNull(slot)
}

// load copies the payload of slot out of the arena.
func (d *Descriptor) load(slot *Packed) (string, bool, error) {
	al := d.arena.Acquire()
	defer al.Release()

	u, isNull, err := al.Unpack(slot)
	if err != nil || isNull {
		return "", isNull, err
	}
	return u.String(), false, nil
}

func (d *Descriptor) fill(slot *Packed, n int, fill func(buf []byte)) error {
	al := d.arena.Acquire()
	defer al.Release()

	buf, err := al.AllocateEmpty(slot, n)
	if err != nil {
		return err
	}
	if fill != nil {
		fill(buf)
	}
	return nil
}

// Nonzero reports whether slot holds a non-empty string. Nulls and empty
// strings are zero. It reads only the record and takes no lock.
func (d *Descriptor) Nonzero(slot *Packed) bool {
	return slot.Size() != 0
}

// IsNull reports whether slot holds the null marker. It takes no lock.
func (d *Descriptor) IsNull(slot *Packed) bool {
	return slot.IsNull()
}

// ClearRange releases every record in slots under a single lock, leaving
// each one as the empty string. It stops at the first malformed record and
// reports its index.
func (d *Descriptor) ClearRange(slots []Packed) error {
	if err := d.checkOpen("clear"); err != nil {
		return err
	}

	n, err := d.freeAll(slots)
	d.metrics.RecordClear(n)
	return err
}

// freeAll frees slots in order and returns how many were released.
func (d *Descriptor) freeAll(slots []Packed) (int, error) {
	al := d.arena.Acquire()
	defer al.Release()

	for i := range slots {
		if err := al.Free(&slots[i]); err != nil {
			return i, opError("clear", i, err)
		}
	}
	return len(slots), nil
}

// CopyRange replaces dst[i] with a copy of from[i], read through src, for
// every i. Nulls stay null. src may be d itself. dst and from must have the
// same length.
func (d *Descriptor) CopyRange(dst []Packed, src *Descriptor, from []Packed) error {
	if err := d.checkOpen("copy"); err != nil {
		return err
	}
	if err := src.checkOpen("copy"); err != nil {
		return err
	}
	if len(dst) != len(from) {
		return opError("copy", -1, errors.New("length mismatch"))
	}

	w, r := arena.AcquirePair(d.arena, src.arena)
	defer arena.ReleasePair(w, r)

	for i := range dst {
		if err := w.Duplicate(&dst[i], &from[i], r); err != nil {
			if errors.Is(err, ErrOutOfMemory) {
				d.logger.LogAllocFailure("copy", from[i].Size(), err)
			}
			return opError("copy", i, err)
		}
	}
	return nil
}

// stringBytes returns the bytes of s without copying. The result must not
// be modified.
func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
