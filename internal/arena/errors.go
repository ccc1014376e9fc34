package arena

import "errors"

var (
	// ErrOutOfMemory is returned when the arena cannot reserve memory for a payload.
	ErrOutOfMemory = errors.New("arena: out of memory")
	// ErrCorruptStorage is returned when a Packed record is malformed or points
	// outside the arena.
	ErrCorruptStorage = errors.New("arena: corrupt packed string")
	// ErrArenaClosed is returned for operations on a destroyed arena.
	ErrArenaClosed = errors.New("arena: closed")
)
