package reclaim

import "sync/atomic"

// cacheLineSize is a reasonable default for most modern CPUs. The runtime
// package tracks the true value internally but does not export it; 64
// works well in practice and matches the alignas(64) used by the original
// C++ Entry/TPtr types.
const cacheLineSize = 64

// counterSlot is one SCP stripe: a reference count padded to occupy a
// full cache line so that two goroutines incrementing/decrementing
// different slots never contend on the same cache line.
type counterSlot struct {
	count atomic.Int64
	_     [cacheLineSize - 8]byte
}

// hazardSlot is one HSG hazard cell: the snapshot pointer a single
// goroutine is currently dereferencing, padded to a cache line for the
// same reason as counterSlot.
type hazardSlot[T any] struct {
	ptr atomic.Pointer[T]
	_   [cacheLineSize - 8]byte
}
