package vstr

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Column is a fixed-length run of packed records bound to one descriptor.
// It is the smallest container that exercises a descriptor the way an
// array library would.
//
// Set and Get on distinct indexes may run concurrently. NullMask,
// NonzeroMask and IsNull read records without the arena lock and must not
// race with writers.
type Column struct {
	d     *Descriptor
	slots []Packed
}

// NewColumn finalizes d and allocates n empty strings. A View descriptor is
// replaced by an Owned one on a fresh arena; the column owns whatever
// descriptor Finalize returns.
func NewColumn(d *Descriptor, n int) (*Column, error) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return nil, fmt.Errorf("vstr: invalid column length %d", n)
	}
	fd, err := d.Finalize()
	if err != nil {
		return nil, err
	}
	return &Column{d: fd, slots: make([]Packed, n)}, nil
}

// Len returns the number of elements.
func (c *Column) Len() int { return len(c.slots) }

// Descriptor returns the finalized descriptor.
func (c *Column) Descriptor() *Descriptor { return c.d }

func (c *Column) slot(op string, i int) (*Packed, error) {
	if i < 0 || i >= len(c.slots) {
		return nil, opError(op, i, fmt.Errorf("index out of range [0:%d]", len(c.slots)))
	}
	return &c.slots[i], nil
}

// Set stores v at index i.
func (c *Column) Set(i int, v any) error {
	p, err := c.slot("set", i)
	if err != nil {
		return err
	}
	return atSlot(c.d.Set(p, v), i)
}

// Get loads the value at index i.
func (c *Column) Get(i int) (any, error) {
	p, err := c.slot("get", i)
	if err != nil {
		return nil, err
	}
	v, err := c.d.Get(p)
	return v, atSlot(err, i)
}

// IsNull reports whether index i holds a null. Out-of-range indexes report
// false.
func (c *Column) IsNull(i int) bool {
	if i < 0 || i >= len(c.slots) {
		return false
	}
	return c.slots[i].IsNull()
}

// Compare orders the values at i and j. An error names the index whose
// value could not be read or ordered.
func (c *Column) Compare(i, j int) (int, error) {
	a, err := c.slot("compare", i)
	if err != nil {
		return 0, err
	}
	b, err := c.slot("compare", j)
	if err != nil {
		return 0, err
	}
	r, bad, err := c.d.compare(a, b)
	switch bad {
	case 0:
		err = atSlot(err, i)
	case 1:
		err = atSlot(err, j)
	}
	return r, err
}

// ArgMin returns the index of the smallest value, -1 when empty.
func (c *Column) ArgMin() (int, error) { return c.d.ArgMin(c.slots) }

// ArgMax returns the index of the largest value, -1 when empty.
func (c *Column) ArgMax() (int, error) { return c.d.ArgMax(c.slots) }

// NullMask returns the indexes holding nulls.
func (c *Column) NullMask() *roaring.Bitmap {
	rb := roaring.New()
	for i := range c.slots {
		if c.slots[i].IsNull() {
			rb.Add(uint32(i)) //nolint:gosec // length checked in NewColumn
		}
	}
	return rb
}

// NonzeroMask returns the indexes holding non-empty strings.
func (c *Column) NonzeroMask() *roaring.Bitmap {
	rb := roaring.New()
	for i := range c.slots {
		if c.d.Nonzero(&c.slots[i]) {
			rb.Add(uint32(i)) //nolint:gosec // length checked in NewColumn
		}
	}
	return rb
}

// CopyFrom replaces every element with a copy of the same element of src.
// Both columns must have equal length and interchangeable descriptors.
func (c *Column) CopyFrom(src *Column) error {
	if len(src.slots) != len(c.slots) {
		return opError("copy", -1, fmt.Errorf("length mismatch: %d != %d", len(src.slots), len(c.slots)))
	}
	if !DescriptorsEqual(c.d, src.d) {
		return opError("copy", -1, ErrIncompatibleDescriptors)
	}
	return c.d.CopyRange(c.slots, src.d, src.slots)
}

// Clear resets every element to the empty string and releases its storage.
func (c *Column) Clear() error {
	return c.d.ClearRange(c.slots)
}

// Close clears the column and destroys its descriptor.
func (c *Column) Close() error {
	if err := c.Clear(); err != nil {
		return err
	}
	return c.d.Close()
}
