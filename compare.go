package vstr

import (
	"bytes"

	"github.com/hupe1980/vstr/internal/arena"
)

// Compare orders the values in a and b, returning -1, 0 or +1.
//
// Text compares by Unicode code point. Nulls follow the NA configuration:
// a text sentinel (or no sentinel at all) stands in as its default string,
// a NaN-like sentinel sorts after every string, and any other sentinel makes
// the comparison fail with ErrIncomparableNull unless a and b are the same
// slot.
func (d *Descriptor) Compare(a, b *Packed) (int, error) {
	c, _, err := d.compare(a, b)
	return c, err
}

// compare is Compare that also reports which operand failed: 0 for a, 1 for
// b, -1 when the failure concerns neither.
func (d *Descriptor) compare(a, b *Packed) (int, int, error) {
	if err := d.checkOpen("compare"); err != nil {
		return 0, -1, err
	}

	c, bad, err := d.compareSlots(a, b)
	d.metrics.RecordCompare(err)
	return c, bad, opError("compare", -1, err)
}

func (d *Descriptor) compareSlots(a, b *Packed) (int, int, error) {
	al := d.arena.Acquire()
	defer al.Release()
	return compareLocked(a, b, &d.na, al, al)
}

// CompareAcross compares a, stored through da, with b, stored through db.
// The descriptors must be equal (see DescriptorsEqual).
func CompareAcross(a *Packed, da *Descriptor, b *Packed, db *Descriptor) (int, error) {
	if err := da.checkOpen("compare"); err != nil {
		return 0, err
	}
	if err := db.checkOpen("compare"); err != nil {
		return 0, err
	}
	if !DescriptorsEqual(da, db) {
		return 0, opError("compare", -1, ErrIncompatibleDescriptors)
	}

	c, err := compareAcross(a, da, b, db)
	da.metrics.RecordCompare(err)
	return c, opError("compare", -1, err)
}

func compareAcross(a *Packed, da *Descriptor, b *Packed, db *Descriptor) (int, error) {
	ala, alb := arena.AcquirePair(da.arena, db.arena)
	defer arena.ReleasePair(ala, alb)

	c, _, err := compareLocked(a, b, &da.na, ala, alb)
	return c, err
}

// compareLocked orders a and b. On failure it also returns the operand at
// fault, 0 for a and 1 for b.
func compareLocked(a, b *Packed, na *NAConfig, ala, alb *arena.Allocator) (int, int, error) {
	ua, aNull, err := ala.Unpack(a)
	if err != nil {
		return 0, 0, err
	}
	ub, bNull, err := alb.Unpack(b)
	if err != nil {
		return 0, 1, err
	}

	if !aNull && !bNull {
		return bytes.Compare(ua.Bytes(), ub.Bytes()), -1, nil
	}

	if na.HasNull && !na.orderedNull() {
		switch {
		case a == b:
			return 0, -1, nil
		case aNull:
			return 0, 0, ErrIncomparableNull
		default:
			return 0, 1, ErrIncomparableNull
		}
	}

	if na.HasNaNLikeNA {
		switch {
		case aNull && bNull:
			return 0, -1, nil
		case aNull:
			return 1, -1, nil
		default:
			return -1, -1, nil
		}
	}

	sa, sb := ua.Bytes(), ub.Bytes()
	if aNull {
		sa = stringBytes(na.DefaultString)
	}
	if bNull {
		sb = stringBytes(na.DefaultString)
	}
	return bytes.Compare(sa, sb), -1, nil
}

// ArgMin returns the index of the smallest value in slots, the first one on
// ties, or -1 for an empty run.
func (d *Descriptor) ArgMin(slots []Packed) (int, error) {
	return d.argReduce("argmin", slots, -1)
}

// ArgMax returns the index of the largest value in slots, the first one on
// ties, or -1 for an empty run.
func (d *Descriptor) ArgMax(slots []Packed) (int, error) {
	return d.argReduce("argmax", slots, 1)
}

func (d *Descriptor) argReduce(op string, slots []Packed, want int) (int, error) {
	if err := d.checkOpen(op); err != nil {
		return -1, err
	}
	if len(slots) == 0 {
		return -1, nil
	}

	al := d.arena.Acquire()
	defer al.Release()

	best := 0
	for i := 1; i < len(slots); i++ {
		c, bad, err := compareLocked(&slots[i], &slots[best], &d.na, al, al)
		if err != nil {
			at := i
			if bad == 1 {
				at = best
			}
			return -1, opError(op, at, err)
		}
		if c == want {
			best = i
		}
	}
	return best, nil
}
