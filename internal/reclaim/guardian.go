package reclaim

import (
	"sync"
	"sync/atomic"
	"time"
)

// Guardian is the Hazard-Snapshot Guardian (HSG): a self-contained
// publisher for a single atomically-swapped snapshot pointer. Unlike
// Protector it owns the pointer itself, serves leases, and retires old
// snapshots safely once no hazard slot still references them.
//
// Guardian is safe for concurrent use by many reader goroutines and a
// single publisher at a time; Publish enforces publisher mutual exclusion
// internally.
type Guardian[T any] struct {
	slots   [2]atomic.Pointer[T]
	version atomic.Uint32 // 0 or 1; which slots[] entry is live
	hazards []hazardSlot[T]

	destroy func(*T)

	mu sync.Mutex
}

// NewGuardian builds a Guardian with n hazard slots (the maximum number of
// concurrent reader goroutines) and a destructor invoked on every retired
// snapshot, including the final live one at teardown. destroy may be nil,
// in which case retired snapshots are simply dropped for the garbage
// collector — idiomatic in Go where explicit destruction is optional,
// unlike the original C++'s `delete p`.
func NewGuardian[T any](n int, destroy func(*T)) *Guardian[T] {
	if n <= 0 {
		panic("reclaim: NewGuardian requires n > 0")
	}
	return &Guardian[T]{
		hazards: make([]hazardSlot[T], n),
		destroy: destroy,
	}
}

// Lease returns the current live snapshot and records it in t's hazard
// slot so that a concurrent Publish will not destroy it out from under
// the caller. The result may be nil if no snapshot has ever been
// published, or if the writer's most recent Publish call retired the
// snapshot with a nil replacement (see Publish).
//
// The lease is valid until the matching Unlease call. Every Lease MUST be
// paired with exactly one Unlease from the same goroutine, ideally via
// defer, on every exit path.
//
// Lease panics if t's slot index is out of range for this Guardian's
// hazard table: unlike SCP's optional slot-sharing fallback, Guardian
// fails fast on an out-of-range thread id rather than silently folding it
// into range, since a folded hazard slot shared between two hazard-unaware
// goroutines defeats the exactness Guardian promises.
func (g *Guardian[T]) Lease(t *Ticket) *T {
	slot := g.checkedSlot(t)
	for {
		v := g.version.Load()
		p := g.slots[v&1].Load()
		g.hazards[slot].ptr.Store(p)
		if g.version.Load() != v {
			g.hazards[slot].ptr.Store(nil)
			continue
		}
		return p
	}
}

// Unlease clears t's hazard slot, ending the lease obtained from Lease.
func (g *Guardian[T]) Unlease(t *Ticket) {
	slot := g.checkedSlot(t)
	g.hazards[slot].ptr.Store(nil)
}

func (g *Guardian[T]) checkedSlot(t *Ticket) int {
	slot := t.Slot()
	if slot < 0 || slot >= len(g.hazards) {
		panic("reclaim: thread id out of range for Guardian")
	}
	return slot
}

// Publish makes replacement the live snapshot and retires whatever was
// live before it. Publish is mutually exclusive with other Publish calls
// on the same Guardian (an internal mutex serializes them); it blocks
// until every hazard slot that referenced the retired snapshot at the
// moment of the flip has cleared, then invokes the destructor on the
// retired snapshot. replacement may be nil, which simply retires the
// prior snapshot and leaves the Guardian with no live snapshot.
//
// Publish has no timeout: under an adversarial or buggy reader that never
// calls Unlease, it blocks forever. That is a liveness violation in the
// caller, not something Guardian can recover from.
func (g *Guardian[T]) Publish(replacement *T) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := g.version.Load()
	next := (v + 1) & 1
	g.slots[next].Store(replacement)
	g.version.Store(next)

	retired := g.slots[v].Load()
	g.waitUntilNotHazard(retired)
	g.destroyOne(retired)
	g.slots[v].Store(nil)
}

// Close waits for hazards on the currently live snapshot to drain and
// then destroys it. It must be called after the last Publish and only
// once no more Lease calls will be issued; calling it while a reader
// still holds a lease blocks until that lease is released.
func (g *Guardian[T]) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := g.version.Load()
	live := g.slots[v].Load()
	g.waitUntilNotHazard(live)
	g.destroyOne(live)
	g.slots[v].Store(nil)
}

func (g *Guardian[T]) waitUntilNotHazard(p *T) {
	for g.isHazard(p) {
		time.Sleep(drainBackoff)
	}
}

func (g *Guardian[T]) isHazard(p *T) bool {
	if p == nil {
		return false
	}
	for i := range g.hazards {
		if g.hazards[i].ptr.Load() == p {
			return true
		}
	}
	return false
}

func (g *Guardian[T]) destroyOne(p *T) {
	if p == nil || g.destroy == nil {
		return
	}
	g.destroy(p)
}
