// Package mmap provides anonymous memory mappings used as off-heap backing
// for string arenas.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT
//
// Memory obtained here is invisible to the Go garbage collector. Only plain
// bytes may be stored in it, never Go pointers.
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure no
// goroutine touches Bytes() after Close returns.
package mmap
