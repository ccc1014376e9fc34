package testutil

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestASCII(t *testing.T) {
	rng := NewRNG(4711)

	s := rng.ASCII(40)

	assert.Len(t, s, 40)
	for i := 0; i < len(s); i++ {
		assert.Less(t, s[i], byte(utf8.RuneSelf))
	}
}

func TestMultibyte(t *testing.T) {
	rng := NewRNG(4711)

	s := rng.Multibyte(10)

	assert.True(t, utf8.ValidString(s))
	assert.Equal(t, 10, utf8.RuneCountInString(s))
	assert.Greater(t, len(s), 10)
}

func TestText(t *testing.T) {
	rng := NewRNG(4711)

	for _, s := range rng.Texts(200, 300) {
		assert.True(t, utf8.ValidString(s))
		assert.LessOrEqual(t, len(s), 300)
	}

	assert.Empty(t, rng.Text(0))
}

func TestReset(t *testing.T) {
	rng := NewRNG(42)
	a := rng.Texts(5, 64)
	rng.Reset()
	b := rng.Texts(5, 64)

	assert.Equal(t, a, b)
	assert.Equal(t, int64(42), rng.Seed())
}

func TestSparseNulls(t *testing.T) {
	rng := NewRNG(4711)

	assert.NotContains(t, rng.SparseNulls(50, 0), true)
	assert.NotContains(t, rng.SparseNulls(50, 1), false)
}
