// Package vstr provides variable-length string storage for columnar
// containers.
//
// A column stores one fixed-width Packed record (16 bytes) per element.
// Short strings live inside the record; longer ones live in an off-heap
// Arena shared by every column that uses the same Descriptor. The
// Descriptor also carries the column's missing-value (NA) semantics and its
// coercion policy.
//
// # Quick Start
//
//	d, _ := vstr.NewDescriptor(vstr.WithNA(vstr.NA))
//	col, _ := vstr.NewColumn(d, 3)
//	defer col.Close()
//
//	_ = col.Set(0, "hello")
//	_ = col.Set(1, vstr.NA)   // stored as null
//	_ = col.Set(2, 3.5)       // coerced to "3.5"
//
//	v, _ := col.Get(1)        // vstr.NA
//	i, _ := col.ArgMax()      // 1: NaN-like nulls sort last
//
// # Missing Values
//
// WithNA configures the sentinel. Its kind decides how nulls behave:
//
//   - text ("NA"): nulls compare as that text
//   - not equal to itself (math.NaN(), NA): nulls sort after every string
//   - anything else (nil, 0): nulls cannot be ordered; Compare returns
//     ErrIncomparableNull
//
// Values are classified with NAEqual before the arena is locked, since a
// sentinel's equality may run arbitrary code.
//
// # Ownership
//
// NewDescriptor without WithArena allocates an arena and starts
// Independent. WithArena produces a View of an arena owned elsewhere.
// Finalize runs when a descriptor is bound to a column: Independent becomes
// Owned, and a View is replaced by a new Owned descriptor on a fresh arena.
// Only Owned and Independent descriptors destroy their arena on Close, so
// every arena is destroyed exactly once.
//
// # Errors
//
// Element and comparison failures are returned as *OpError wrapping one of
// the package's sentinel errors:
//
//	if errors.Is(err, vstr.ErrTypeMismatch) { ... }
//
//	var oe *vstr.OpError
//	if errors.As(err, &oe) {
//	    fmt.Println(oe.Op, oe.Slot)
//	}
package vstr
