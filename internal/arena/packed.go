package arena

import "encoding/binary"

// PackedSize is the width of a Packed record in bytes.
const PackedSize = 16

// InlineMax is the longest payload stored inside the record itself.
const InlineMax = PackedSize - 1

// MaxLength is the longest payload a record can describe (7-byte length field).
const MaxLength = 1<<56 - 1

// Record kinds, stored in the high nibble of the last byte.
const (
	kindInline byte = 0x0
	kindLarge  byte = 0x2
	kindArena  byte = 0x4
	kindNull   byte = 0x8
)

const flagIndex = PackedSize - 1

// Packed is the fixed-width record stored in column storage.
//
// Layout (little endian):
//
//	inline:  [0..14] payload              [15] 0x0<<4 | len
//	null:    [0..14] zero                 [15] 0x8<<4
//	arena:   [0..7] offset [8..14] len    [15] 0x4<<4
//	large:   [0..7] block  [8..14] len    [15] 0x2<<4
//
// The zero value is the empty string.
type Packed [PackedSize]byte

func (p *Packed) kind() byte { return p[flagIndex] >> 4 }

func (p *Packed) inlineLen() int { return int(p[flagIndex] & 0x0f) }

func (p *Packed) loc() uint64 { return binary.LittleEndian.Uint64(p[0:8]) }

func (p *Packed) length() uint64 {
	var b [8]byte
	copy(b[:7], p[8:flagIndex])
	return binary.LittleEndian.Uint64(b[:])
}

// IsNull reports whether the record holds the null marker. It does not need
// the arena lock.
func (p *Packed) IsNull() bool { return p.kind() == kindNull }

// Size returns the payload length in bytes without touching the arena.
// Null and malformed records report 0.
func (p *Packed) Size() int {
	switch p.kind() {
	case kindInline:
		return p.inlineLen()
	case kindArena, kindLarge:
		return int(p.length()) //nolint:gosec // bounded by MaxLength
	default:
		return 0
	}
}

func (p *Packed) setInline(b []byte) {
	var q Packed
	copy(q[:InlineMax], b)
	q[flagIndex] = byte(len(b))
	*p = q
}

func (p *Packed) setNull() {
	var q Packed
	q[flagIndex] = kindNull << 4
	*p = q
}

func (p *Packed) setOutOfLine(kind byte, loc uint64, n int) {
	var q Packed
	binary.LittleEndian.PutUint64(q[0:8], loc)
	var l [8]byte
	binary.LittleEndian.PutUint64(l[:], uint64(n)) //nolint:gosec // n <= MaxLength
	copy(q[8:flagIndex], l[:7])
	q[flagIndex] = kind << 4
	*p = q
}

// checkShape validates the parts of a record that do not depend on arena state.
func (p *Packed) checkShape() error {
	switch p.kind() {
	case kindInline:
		if p.inlineLen() > InlineMax {
			return ErrCorruptStorage
		}
		return nil
	case kindNull:
		if p[flagIndex]&0x0f != 0 {
			return ErrCorruptStorage
		}
		for _, b := range p[:flagIndex] {
			if b != 0 {
				return ErrCorruptStorage
			}
		}
		return nil
	case kindArena, kindLarge:
		if p[flagIndex]&0x0f != 0 || p.length() <= InlineMax {
			return ErrCorruptStorage
		}
		return nil
	default:
		return ErrCorruptStorage
	}
}

// Unpacked is a transient view of a payload. Its bytes alias arena memory (or
// the record itself) and are valid only while the producing Allocator is held.
type Unpacked struct {
	buf []byte
}

// Bytes returns the aliased payload.
func (u Unpacked) Bytes() []byte { return u.buf }

// Len returns the payload length.
func (u Unpacked) Len() int { return len(u.buf) }

// String returns an independent copy of the payload.
func (u Unpacked) String() string { return string(u.buf) }
