package vstr

import "fmt"

// NAConfig is the missing-value behavior derived from a descriptor's
// sentinel. It is computed once at construction and never changes.
type NAConfig struct {
	// HasNull is true when a sentinel is configured.
	HasNull bool
	// HasStringNA is true when the sentinel is itself text; nulls then
	// behave as DefaultString in comparisons.
	HasStringNA bool
	// HasNaNLikeNA is true when the sentinel is not equal to itself; nulls
	// then sort after every string.
	HasNaNLikeNA bool
	// DefaultString substitutes for a null wherever a string is required.
	DefaultString string
	// Name is the sentinel's textual form.
	Name string
	// Sentinel is the configured missing value, nil when none.
	Sentinel any
}

func newNAConfig(sentinel any, hasNull bool) NAConfig {
	if !hasNull {
		return NAConfig{}
	}

	cfg := NAConfig{
		HasNull:  true,
		Sentinel: sentinel,
		Name:     fmt.Sprint(sentinel),
	}

	if s, ok := sentinel.(string); ok {
		cfg.HasStringNA = true
		cfg.DefaultString = s
		return cfg
	}

	cfg.HasNaNLikeNA = notSelfEqual(sentinel)
	return cfg
}

// orderedNull reports whether nulls have a defined position in the ordering.
func (c NAConfig) orderedNull() bool {
	return c.HasStringNA || c.HasNaNLikeNA
}

// isNA reports whether v should be stored as null.
func (c NAConfig) isNA(v any) bool {
	return c.HasNull && NAEqual(v, c.Sentinel)
}
