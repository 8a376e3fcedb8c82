package mixer

import "errors"

// Sentinel error kinds returned by mixer operations. Check with errors.Is.
var (
	// ErrBadArgument means an input violated a documented precondition.
	// Returned before any state mutation.
	ErrBadArgument = errors.New("mixer: bad argument")

	// ErrNoSlot means all layers are non-FREE; the play request was dropped.
	ErrNoSlot = errors.New("mixer: no free layer slot")

	// ErrInvalidHandle means the addressed slot's id or flag no longer
	// matches the handle. May also occur due to races with the mix thread.
	ErrInvalidHandle = errors.New("mixer: invalid handle")

	// ErrAllocFailure means the configured zero-initializing allocator
	// returned nil.
	ErrAllocFailure = errors.New("mixer: allocation failure")
)
