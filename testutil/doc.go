// Package testutil provides testing utilities for vstr.
//
// This package is intended for use in tests and benchmarks only.
// It generates deterministic random text covering the interesting storage
// shapes: empty, inline-sized, out-of-line and multi-byte strings.
//
//	rng := testutil.NewRNG(seed)
//	s := rng.Text(4096)        // mixed ASCII and multi-byte, up to 4096 bytes
//	u := rng.Multibyte(8)      // 8 non-ASCII code points
//	nulls := rng.SparseNulls(100, 0.1)
package testutil
