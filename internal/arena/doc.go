// Package arena provides the shared heap behind variable-length string
// storage.
//
// An Arena hands out 16-byte Packed records that live in column storage.
// Short strings (up to InlineMax bytes) are stored inside the record itself;
// longer payloads are placed in power-of-two blocks carved from off-heap
// chunks, and very large payloads get a dedicated mapping.
//
// # Locking
//
// Every record operation runs through an *Allocator, which exists only while
// the arena's single mutex is held:
//
//	al := a.Acquire()
//	err := al.Pack(&slot, []byte("hello"))
//	al.Release()
//
// Bytes returned by Unpack or AllocateEmpty alias arena memory and are valid
// only until Release. Two arenas are locked together with AcquirePair.
//
// # Safety
//
// Malformed records are reported as ErrCorruptStorage rather than panicking.
// Using an Allocator after Release panics, since it is always a caller bug.
package arena
