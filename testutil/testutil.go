package testutil

import (
	"math/rand"
	"strings"
	"sync"
)

// Alphabets used by the generators.
var (
	asciiRunes     = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 _-.")
	multibyteRunes = []rune("äöüßéñçøå€Ωλπж日本語中文한글🙂🚀")
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// ASCII returns a random ASCII string of exactly n bytes.
func (r *RNG) ASCII(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fromLocked(asciiRunes, n)
}

// Multibyte returns a random string of n code points drawn from non-ASCII
// characters of 2 to 4 bytes each.
func (r *RNG) Multibyte(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fromLocked(multibyteRunes, n)
}

func (r *RNG) fromLocked(alphabet []rune, n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for range n {
		sb.WriteRune(alphabet[r.rand.Intn(len(alphabet))])
	}
	return sb.String()
}

// Text returns a random mixed-alphabet string whose byte length is drawn
// from [0, maxBytes]. Short and inline-sized strings are as likely as long
// ones.
func (r *RNG) Text(maxBytes int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	target := 0
	if maxBytes > 0 {
		switch r.rand.Intn(3) {
		case 0:
			target = r.rand.Intn(min(maxBytes, 16) + 1)
		default:
			target = r.rand.Intn(maxBytes + 1)
		}
	}

	var sb strings.Builder
	for sb.Len() < target {
		alphabet := asciiRunes
		if r.rand.Intn(4) == 0 {
			alphabet = multibyteRunes
		}
		c := alphabet[r.rand.Intn(len(alphabet))]
		if sb.Len()+len(string(c)) > target {
			c = asciiRunes[r.rand.Intn(len(asciiRunes))]
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// Texts returns num strings generated by Text.
func (r *RNG) Texts(num, maxBytes int) []string {
	out := make([]string, num)
	for i := range out {
		out[i] = r.Text(maxBytes)
	}
	return out
}

// SparseNulls returns a mask where each entry is true with probability
// rate.
func (r *RNG) SparseNulls(n int, rate float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	mask := make([]bool, n)
	for i := range mask {
		mask[i] = r.rand.Float64() < rate
	}
	return mask
}
