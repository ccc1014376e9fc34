package vstr

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Equaler lets a sentinel define equality against arbitrary values. A
// non-nil error means the comparison is undefined for that pair.
type Equaler interface {
	Equal(other any) (bool, error)
}

var errAmbiguousNA = errors.New("boolean value of NA is ambiguous")

// Missing is the type of NA.
type Missing struct{ _ byte }

// NA is a missing-value marker that propagates instead of comparing: it is
// not even equal to itself, so columns using it sort nulls last.
var NA = &Missing{}

// Equal always fails; comparing NA is undefined.
func (*Missing) Equal(any) (bool, error) { return false, errAmbiguousNA }

func (*Missing) String() string { return "<NA>" }

// GoString implements fmt.GoStringer.
func (*Missing) GoString() string { return "vstr.NA" }

// NAEqual reports whether a and b denote the same missing value.
//
// Identical values are equal; two floating-point NaNs are equal; otherwise an
// Equaler on either side decides. Numbers compare by value across types.
// A failing or panicking comparison counts as "not equal": classifying a
// value as missing must always terminate.
func NAEqual(a, b any) bool {
	if identical(a, b) {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if isNaN(a) && isNaN(b) {
		return true
	}
	if e, ok := a.(Equaler); ok {
		eq, err := safeEqual(e, b)
		return err == nil && eq
	}
	if e, ok := b.(Equaler); ok {
		eq, err := safeEqual(e, a)
		return err == nil && eq
	}
	if na, ok := numberOf(a); ok {
		if nb, ok := numberOf(b); ok {
			return na.equal(nb)
		}
	}
	return false
}

// identical is == that tolerates values of non-comparable types.
func identical(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

func safeEqual(e Equaler, other any) (eq bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			eq, err = false, fmt.Errorf("equal panicked: %v", r)
		}
	}()
	return e.Equal(other)
}

// notSelfEqual reports whether v fails v == v, the test that makes a sentinel
// NaN-like. A comparison that errors counts as unequal.
func notSelfEqual(v any) bool {
	if isNaN(v) {
		return true
	}
	if e, ok := v.(Equaler); ok {
		eq, err := safeEqual(e, v)
		return err != nil || !eq
	}
	return false
}

// isNaN reports whether v is a floating-point or complex value unequal to
// itself.
func isNaN(v any) bool {
	switch x := v.(type) {
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case complex128:
		return math.IsNaN(real(x)) || math.IsNaN(imag(x))
	case complex64:
		return math.IsNaN(float64(real(x))) || math.IsNaN(float64(imag(x)))
	default:
		return false
	}
}

type numberKind uint8

const (
	signedNumber numberKind = iota
	unsignedNumber
	floatNumber
)

// number holds a real scalar in its own family so integers compare exactly.
type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func numberOf(v any) (number, bool) {
	switch x := v.(type) {
	case int:
		return number{kind: signedNumber, i: int64(x)}, true
	case int8:
		return number{kind: signedNumber, i: int64(x)}, true
	case int16:
		return number{kind: signedNumber, i: int64(x)}, true
	case int32:
		return number{kind: signedNumber, i: int64(x)}, true
	case int64:
		return number{kind: signedNumber, i: x}, true
	case uint:
		return number{kind: unsignedNumber, u: uint64(x)}, true
	case uint8:
		return number{kind: unsignedNumber, u: uint64(x)}, true
	case uint16:
		return number{kind: unsignedNumber, u: uint64(x)}, true
	case uint32:
		return number{kind: unsignedNumber, u: uint64(x)}, true
	case uint64:
		return number{kind: unsignedNumber, u: x}, true
	case uintptr:
		return number{kind: unsignedNumber, u: uint64(x)}, true
	case float32:
		return number{kind: floatNumber, f: float64(x)}, true
	case float64:
		return number{kind: floatNumber, f: x}, true
	default:
		return number{}, false
	}
}

// equal compares by value. Integers of either signedness compare exactly;
// an integer equals a float only when the float holds exactly that integer.
func (n number) equal(o number) bool {
	if n.kind > o.kind {
		n, o = o, n
	}
	switch {
	case n.kind == signedNumber && o.kind == signedNumber:
		return n.i == o.i
	case n.kind == signedNumber && o.kind == unsignedNumber:
		return n.i >= 0 && uint64(n.i) == o.u
	case n.kind == unsignedNumber && o.kind == unsignedNumber:
		return n.u == o.u
	case o.kind == floatNumber && n.kind != floatNumber:
		f, ok := n.exactFloat()
		return ok && f == o.f
	default:
		return n.f == o.f
	}
}

// exactFloat returns the integer as a float64 when the conversion loses
// nothing.
func (n number) exactFloat() (float64, bool) {
	switch n.kind {
	case signedNumber:
		f := float64(n.i)
		// float64(MaxInt64) rounds up to 2^63, which has no int64.
		if f >= 0x1p63 {
			return 0, false
		}
		return f, int64(f) == n.i
	case unsignedNumber:
		f := float64(n.u)
		if f >= 0x1p64 {
			return 0, false
		}
		return f, uint64(f) == n.u
	default:
		return n.f, true
	}
}

// textOf resolves v to the text stored for it.
func textOf(v any, coerce bool) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	if !coerce {
		return "", fmt.Errorf("%w: got %T", ErrTypeMismatch, v)
	}
	return coerceText(v)
}

// coerceText converts any value to text: TextMarshaler, then Stringer, then
// the natural formatting of Go scalars (3.5 becomes "3.5").
func coerceText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return "", fmt.Errorf("coerce %T to text: %w", v, err)
		}
		return string(b), nil
	case fmt.Stringer:
		return fmt.Sprint(x), nil
	case []byte:
		return string(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case complex128:
		return strconv.FormatComplex(x, 'g', -1, 128), nil
	case complex64:
		return strconv.FormatComplex(complex128(x), 'g', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// repr renders a sentinel for String().
func repr(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case fmt.GoStringer:
		return x.GoString()
	default:
		return fmt.Sprintf("%#v", v)
	}
}

// Kind is an element kind in the promotion lattice.
type Kind uint8

const (
	// KindObject is any value with no dedicated kind.
	KindObject Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindComplex
	KindBytes
	// KindUnicode is fixed-width text.
	KindUnicode
	KindDatetime
	KindTimedelta
	// KindString is variable-length text stored by this package.
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindComplex:
		return "complex"
	case KindBytes:
		return "bytes"
	case KindUnicode:
		return "unicode"
	case KindDatetime:
		return "datetime"
	case KindTimedelta:
		return "timedelta"
	case KindString:
		return "string"
	default:
		return "object"
	}
}

// KindOf returns the kind of a Go scalar value.
func KindOf(v any) Kind {
	switch v.(type) {
	case string:
		return KindUnicode
	case []byte:
		return KindBytes
	case bool:
		return KindBool
	case int, int8, int16, int32, int64:
		return KindInt
	case uint, uint8, uint16, uint32, uint64, uintptr:
		return KindUint
	case float32, float64:
		return KindFloat
	case complex64, complex128:
		return KindComplex
	case time.Time:
		return KindDatetime
	case time.Duration:
		return KindTimedelta
	default:
		return KindObject
	}
}

// IsKnownScalar reports whether v is a scalar type that can be stored in a
// string column without being treated as an arbitrary object.
func IsKnownScalar(v any) bool {
	return KindOf(v) != KindObject
}
