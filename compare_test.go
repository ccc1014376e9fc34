package vstr

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setAll(t *testing.T, d *Descriptor, values ...any) []Packed {
	t.Helper()
	slots := make([]Packed, len(values))
	for i, v := range values {
		require.NoError(t, d.Set(&slots[i], v))
	}
	return slots
}

func TestCompareText(t *testing.T) {
	d := newTestDescriptor(t)

	long := strings.Repeat("a", 100)
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "a", -1},
		{"a", "", 1},
		{"abc", "abd", -1},
		{"abc", "ab", 1},
		{long, long, 0},
		{long, long + "b", -1},
		{long + "b", long + "a", 1},
		{"Z", "a", -1},
		{"z", "é", -1},
		{"é", "日", -1},
		{"日", "🙂", -1},
	}

	for _, tt := range tests {
		slots := setAll(t, d, tt.a, tt.b)
		got, err := d.Compare(&slots[0], &slots[1])
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "compare(%q, %q)", tt.a, tt.b)
	}
}

func TestCompareNaNLikeNulls(t *testing.T) {
	for _, sentinel := range []any{NA, math.NaN(), complex(math.NaN(), 0)} {
		d := newTestDescriptor(t, WithNA(sentinel))
		s := setAll(t, d, sentinel, "x", sentinel, strings.Repeat("~", 40), "")

		for _, i := range []int{1, 3, 4} {
			got, err := d.Compare(&s[0], &s[i])
			require.NoError(t, err)
			assert.Equal(t, 1, got)

			got, err = d.Compare(&s[i], &s[0])
			require.NoError(t, err)
			assert.Equal(t, -1, got)
		}

		got, err := d.Compare(&s[0], &s[2])
		require.NoError(t, err)
		assert.Zero(t, got)
	}
}

func TestCompareUnorderedNulls(t *testing.T) {
	for _, sentinel := range []any{nil, 0} {
		d := newTestDescriptor(t, WithNA(sentinel))
		s := setAll(t, d, sentinel, "x", sentinel)

		_, err := d.Compare(&s[0], &s[1])
		require.ErrorIs(t, err, ErrIncomparableNull)

		_, err = d.Compare(&s[1], &s[0])
		require.ErrorIs(t, err, ErrIncomparableNull)

		_, err = d.Compare(&s[0], &s[2])
		require.ErrorIs(t, err, ErrIncomparableNull)

		got, err := d.Compare(&s[0], &s[0])
		require.NoError(t, err)
		assert.Zero(t, got)
	}
}

func TestCompareStringNA(t *testing.T) {
	d := newTestDescriptor(t, WithNA("NA"))

	s := setAll(t, d, "NA", "NB", "A")
	require.True(t, s[0].IsNull())

	var text Packed
	require.NoError(t, d.Fill(&text, 2, func(buf []byte) { copy(buf, "NA") }))
	require.False(t, text.IsNull())

	got, err := d.Compare(&s[0], &text)
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = d.Compare(&s[0], &s[1])
	require.NoError(t, err)
	assert.Equal(t, -1, got)

	got, err = d.Compare(&s[0], &s[2])
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestCompareNullWithoutNA(t *testing.T) {
	d := newTestDescriptor(t)

	var null Packed
	al := d.arena.Acquire()
	require.NoError(t, al.PackNull(&null))
	al.Release()

	s := setAll(t, d, "", "a")

	got, err := d.Compare(&null, &s[0])
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = d.Compare(&null, &s[1])
	require.NoError(t, err)
	assert.Equal(t, -1, got)
}

func TestCompareAcross(t *testing.T) {
	d1 := newTestDescriptor(t, WithNA(NA))
	d2 := newTestDescriptor(t, WithNA(NA))

	a := setAll(t, d1, "apple", NA)
	b := setAll(t, d2, "banana")

	got, err := CompareAcross(&a[0], d1, &b[0], d2)
	require.NoError(t, err)
	assert.Equal(t, -1, got)

	got, err = CompareAcross(&a[1], d1, &b[0], d2)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	other := newTestDescriptor(t, WithNA("NA"))
	_, err = CompareAcross(&a[0], d1, &b[0], other)
	require.ErrorIs(t, err, ErrIncompatibleDescriptors)
}

func TestArgMinMax(t *testing.T) {
	d := newTestDescriptor(t, WithNA(NA))

	tests := []struct {
		name     string
		values   []any
		min, max int
	}{
		{"empty", nil, -1, -1},
		{"single", []any{"x"}, 0, 0},
		{"first wins ties", []any{"b", "a", "a", "c", "c"}, 1, 3},
		{"all equal", []any{"q", "q", "q"}, 0, 0},
		{"nulls sort last", []any{"m", NA, "a", NA}, 2, 1},
		{"long strings", []any{strings.Repeat("b", 50), strings.Repeat("b", 49), strings.Repeat("b", 51)}, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setAll(t, d, tt.values...)

			i, err := d.ArgMin(s)
			require.NoError(t, err)
			assert.Equal(t, tt.min, i)

			i, err = d.ArgMax(s)
			require.NoError(t, err)
			assert.Equal(t, tt.max, i)
		})
	}

	t.Run("unordered null", func(t *testing.T) {
		dn := newTestDescriptor(t, WithNA(nil))
		s := setAll(t, dn, "a", "b", nil)

		_, err := dn.ArgMax(s)
		require.ErrorIs(t, err, ErrIncomparableNull)

		var oe *OpError
		require.ErrorAs(t, err, &oe)
		assert.Equal(t, "argmax", oe.Op)
		assert.Equal(t, 2, oe.Slot)
	})

	t.Run("unordered null first", func(t *testing.T) {
		dn := newTestDescriptor(t, WithNA(nil))
		s := setAll(t, dn, nil, "a", "b")

		_, err := dn.ArgMin(s)
		require.ErrorIs(t, err, ErrIncomparableNull)

		var oe *OpError
		require.ErrorAs(t, err, &oe)
		assert.Equal(t, 0, oe.Slot)
	})
}
