package reclaim

import "time"

// drainBackoff is how long Drain sleeps between rescans of a slot that
// has not yet been observed at zero. It matches the original DataProtector's
// usleep(250).
const drainBackoff = 250 * time.Microsecond

// Protector is the Slot-Counter Protector (SCP): a fixed-size table of
// cache-line-padded reference counters that let readers mark themselves
// active with no coordination between each other, and let a writer detect
// quiescence.
//
// Protector does not itself hold the protected pointer. The writer swaps
// the pointer externally (a single sequentially consistent store or
// exchange) and then calls Drain; see TestProtectorPublishDrainConcurrent
// in protector_test.go for the full publish protocol.
type Protector struct {
	slots []counterSlot
}

// NewProtector builds a Protector with n slots. n should be sized to the
// expected maximum number of concurrent reader goroutines; the original
// default is 64. Goroutines beyond n share slots — this degrades
// contention but never breaks correctness (see Acquire).
func NewProtector(n int) *Protector {
	if n <= 0 {
		panic("reclaim: NewProtector requires n > 0")
	}
	return &Protector{slots: make([]counterSlot, n)}
}

// Guard is a scope-bound token representing one outstanding Acquire. It
// must be released exactly once, normally via a deferred call to
// Release. A Guard is move-only in spirit: Go has no destructors, so
// callers MUST defer Release() themselves; there is no finalizer safety
// net, so callers must release on every exit path including panics.
type Guard struct {
	p        *Protector
	slot     int
	released bool
}

// Acquire marks the calling goroutine (identified by t) as an active
// reader. It increments t's slot counter with sequentially consistent
// ordering and returns a Guard whose Release decrements the same counter,
// also sequentially consistent. Acquire cannot fail and never blocks.
//
// If t was bound against a larger slot count than this Protector's, its
// slot index is folded into range with a modulo rather than indexing out
// of bounds, trading contention for safety when readers outnumber slots.
func (p *Protector) Acquire(t *Ticket) Guard {
	slot := t.Slot() % len(p.slots)
	p.slots[slot].count.Add(1)
	return Guard{p: p, slot: slot}
}

// Release ends the lease represented by g. Calling Release more than once
// on the same Guard, or on the zero Guard, panics: a double-release would
// under-count the slot and could make Drain return while the goroutine
// still believes it holds a lease.
func (g *Guard) Release() {
	if g.released {
		panic("reclaim: Guard released twice")
	}
	if g.p == nil {
		panic("reclaim: release of zero-value Guard")
	}
	g.released = true
	g.p.slots[g.slot].count.Add(-1)
}

// Drain blocks until every slot has been observed at zero at least once
// during the call. Slots need not be simultaneously zero — the caller has
// already committed the pointer swap that makes new readers invisible to
// the retired snapshot, so a slot passing through zero once is sufficient.
//
// Drain is intended to run after the writer has already swapped the
// protected pointer with sequentially consistent ordering. Calling it
// before the swap is a liveness bug in the caller's publish protocol, not
// something Protector can detect.
func (p *Protector) Drain() {
	for i := range p.slots {
		for p.slots[i].count.Load() > 0 {
			time.Sleep(drainBackoff)
		}
	}
}
