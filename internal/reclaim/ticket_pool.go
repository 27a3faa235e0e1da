package reclaim

import "sync"

// TicketPool recycles Tickets for call sites that do not have a
// long-lived worker goroutine to bind one to permanently — for example a
// gRPC handler, where each request runs on a fresh goroutine. Get/Put
// pairs still respect Ticket's single-goroutine-at-a-time contract:
// borrow a Ticket, use it for exactly one Acquire/Release or Lease/
// Unlease pair, then return it.
//
// This trades the cache-locality benefit of one fixed slot per thread for
// a bounded slot table under workloads with no stable thread identity to
// pin to, which is the common case for goroutine-based servers. It never
// affects correctness: every Ticket returned by Get was produced by Bind
// and is a valid slot index for n.
type TicketPool struct {
	n int
	p sync.Pool
}

// NewTicketPool builds a pool that binds new Tickets against n slots.
func NewTicketPool(n int) *TicketPool {
	tp := &TicketPool{n: n}
	tp.p.New = func() any { return Bind(tp.n) }
	return tp
}

// Get returns a Ticket, allocating a fresh one via Bind if the pool is
// empty.
func (tp *TicketPool) Get() *Ticket {
	return tp.p.Get().(*Ticket)
}

// Put returns t to the pool for reuse by a later Get.
func (tp *TicketPool) Put(t *Ticket) {
	tp.p.Put(t)
}
