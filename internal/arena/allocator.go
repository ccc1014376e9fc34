package arena

import "fmt"

// Allocator performs record operations on an arena whose lock is held.
// Obtain one with Arena.Acquire; it is invalid after Release.
type Allocator struct {
	a    *Arena
	held bool
}

// Release unlocks the arena.
func (al *Allocator) Release() {
	al.mustHold()
	al.held = false
	al.a.mu.Unlock()
}

// Arena returns the arena this allocator belongs to.
func (al *Allocator) Arena() *Arena { return al.a }

func (al *Allocator) mustHold() {
	if !al.held {
		panic("arena: allocator used without holding the arena lock")
	}
}

func (al *Allocator) begin(p *Packed) error {
	al.mustHold()
	if al.a.closed {
		return ErrArenaClosed
	}
	if err := p.checkShape(); err != nil {
		return err
	}
	if p.kind() == kindArena || p.kind() == kindLarge {
		if _, err := al.a.resolveLocked(p); err != nil {
			return err
		}
	}
	return nil
}

// Pack stores b in dst, replacing its previous value. The previous payload
// is released only after the new one is fully written, so a failed Pack
// leaves dst unchanged. b may alias the current payload of dst.
func (al *Allocator) Pack(dst *Packed, b []byte) error {
	if err := al.begin(dst); err != nil {
		return err
	}
	if len(b) <= InlineMax {
		old := *dst
		dst.setInline(b)
		return al.a.releaseLocked(&old)
	}

	buf, pl, err := al.place(dst, len(b))
	if err != nil {
		return err
	}
	copy(buf, b)
	return al.commit(dst, len(b), pl)
}

// AllocateEmpty replaces dst with a zeroed payload of n bytes and returns
// the writable bytes, valid until Release.
func (al *Allocator) AllocateEmpty(dst *Packed, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("arena: negative allocation size %d", n)
	}
	if err := al.begin(dst); err != nil {
		return nil, err
	}
	if n <= InlineMax {
		var zero [InlineMax]byte
		old := *dst
		dst.setInline(zero[:n])
		if err := al.a.releaseLocked(&old); err != nil {
			return nil, err
		}
		return dst[:n:n], nil
	}

	buf, pl, err := al.place(dst, n)
	if err != nil {
		return nil, err
	}
	clear(buf)
	if err := al.commit(dst, n, pl); err != nil {
		return nil, err
	}
	return buf, nil
}

// placement describes where an out-of-line payload goes.
type placement struct {
	kind   byte
	loc    uint64
	reused bool
}

// place finds room for n > InlineMax bytes on behalf of dst: the record's
// own block when it still fits, otherwise a new allocation. dst is not
// modified.
func (al *Allocator) place(dst *Packed, n int) ([]byte, placement, error) {
	a := al.a
	oldLen := int(dst.length()) //nolint:gosec // bounded by MaxLength

	switch dst.kind() {
	case kindArena:
		if n <= a.largeMin && classOf(n) == classOf(oldLen) {
			buf, err := a.resolveLocked(dst)
			if err != nil {
				return nil, placement{}, err
			}
			return buf[:n:n], placement{kind: kindArena, loc: dst.loc(), reused: true}, nil
		}
	case kindLarge:
		if n > a.largeMin {
			buf, err := a.resolveLocked(dst)
			if err != nil {
				return nil, placement{}, err
			}
			if n <= len(buf) {
				return buf[:n:n], placement{kind: kindLarge, loc: dst.loc(), reused: true}, nil
			}
		}
	}

	kind, loc, buf, err := a.allocLocked(n)
	if err != nil {
		return nil, placement{}, err
	}
	return buf[:n:n], placement{kind: kind, loc: loc}, nil
}

// commit writes the record for a placed payload and releases the previous
// payload of dst unless its block was reused.
func (al *Allocator) commit(dst *Packed, n int, pl placement) error {
	old := *dst
	dst.setOutOfLine(pl.kind, pl.loc, n)
	if pl.reused {
		al.a.stats.BytesUsed = al.a.stats.BytesUsed - old.length() + uint64(n) //nolint:gosec // n > 0
		return nil
	}
	return al.a.releaseLocked(&old)
}

// PackNull stores the null marker in dst.
func (al *Allocator) PackNull(dst *Packed) error {
	if err := al.begin(dst); err != nil {
		return err
	}
	old := *dst
	dst.setNull()
	return al.a.releaseLocked(&old)
}

// Unpack resolves p. The returned bool is true for the null marker; a
// non-null empty string is a valid, distinct result.
func (al *Allocator) Unpack(p *Packed) (Unpacked, bool, error) {
	if err := al.begin(p); err != nil {
		return Unpacked{}, false, err
	}
	switch p.kind() {
	case kindNull:
		return Unpacked{}, true, nil
	case kindInline:
		n := p.inlineLen()
		return Unpacked{buf: p[:n:n]}, false, nil
	default:
		buf, err := al.a.resolveLocked(p)
		if err != nil {
			return Unpacked{}, false, err
		}
		n := int(p.length()) //nolint:gosec // checked by resolveLocked
		return Unpacked{buf: buf[:n:n]}, false, nil
	}
}

// Free releases the payload of p and resets it to the empty string.
// Freeing an already-freed record is a no-op.
func (al *Allocator) Free(p *Packed) error {
	if err := al.begin(p); err != nil {
		return err
	}
	old := *p
	*p = Packed{}
	return al.a.releaseLocked(&old)
}

// Duplicate copies src, resolved through from, into dst in this allocator's
// arena. from may be al itself. Null is preserved.
func (al *Allocator) Duplicate(dst, src *Packed, from *Allocator) error {
	if from == al && dst == src {
		al.mustHold()
		return nil
	}
	u, isNull, err := from.Unpack(src)
	if err != nil {
		return err
	}
	if isNull {
		return al.PackNull(dst)
	}
	return al.Pack(dst, u.Bytes())
}
