package vstr

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vstr/internal/arena"
)

var (
	// ErrOutOfMemory is returned when the arena cannot reserve memory for a
	// payload. The target slot keeps its previous value.
	ErrOutOfMemory = arena.ErrOutOfMemory

	// ErrCorruptStorage is returned when a slot holds a malformed record.
	ErrCorruptStorage = arena.ErrCorruptStorage

	// ErrArenaClosed is returned when the arena behind a descriptor has been
	// destroyed, or when an arena is destroyed twice.
	ErrArenaClosed = arena.ErrArenaClosed

	// ErrTypeMismatch is returned when a non-string value is stored while
	// coercion is disabled.
	ErrTypeMismatch = errors.New("only string data is allowed when coercion is disabled")

	// ErrIncomparableNull is returned when ordering involves a null whose
	// NA configuration defines no order.
	ErrIncomparableNull = errors.New("cannot compare null that is not a nan-like value")

	// ErrIncompatibleDescriptors is returned when combining descriptors that
	// differ in coercion or NA sentinel.
	ErrIncompatibleDescriptors = errors.New("cannot find common instance for unequal descriptors")

	// ErrClosed is returned for operations on a closed descriptor or column.
	ErrClosed = errors.New("descriptor is closed")

	// ErrUnsupportedSentinel is returned when a recipe sentinel has no
	// portable encoding.
	ErrUnsupportedSentinel = errors.New("sentinel cannot be encoded")
)

// OpError records the operation and slot that failed.
//
// The underlying error can be matched with errors.Is / errors.As.
type OpError struct {
	Op   string // "set", "get", "compare", ...
	Slot int    // column index, -1 when the caller passed a bare slot
	Err  error
}

func (e *OpError) Error() string {
	if e.Slot >= 0 {
		return fmt.Sprintf("vstr: %s slot %d: %v", e.Op, e.Slot, e.Err)
	}
	return fmt.Sprintf("vstr: %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opError(op string, slot int, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Slot: slot, Err: err}
}

// atSlot re-tags an error from a bare-slot call with the column index.
func atSlot(err error, slot int) error {
	if err == nil {
		return nil
	}
	var oe *OpError
	if errors.As(err, &oe) && oe.Slot < 0 {
		return &OpError{Op: oe.Op, Slot: slot, Err: oe.Err}
	}
	return err
}
