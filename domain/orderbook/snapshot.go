package orderbook

import "time"

// Level is one price level of a frozen book, copied out of the live
// red-black tree so a reader can walk it without touching mutable domain
// state.
type Level struct {
	Price      int64
	TotalQty   int64
	OrderCount int
}

// BookSnapshot is an immutable, point-in-time view of the order book. It
// is the payload published through internal/reclaim: many readers
// dereference a *BookSnapshot on their hot path while the single writer
// goroutine keeps mutating the live OrderBook underneath.
//
// A BookSnapshot must never be mutated after Freeze returns it; every
// field is a copy, not an alias into the live book.
type BookSnapshot struct {
	Seq     uint64
	Created time.Time
	Bids    []Level
	Asks    []Level
}

// Freeze builds an immutable BookSnapshot from the current state of b.
// The caller (normally service.OrderService, the single writer) still
// needs to hand the result to a reclaim.Guardian to publish it safely;
// Freeze itself does no synchronization beyond what walking the live
// single-writer tree requires.
func (b *OrderBook) Freeze(seq uint64) *BookSnapshot {
	s := &BookSnapshot{
		Seq:     seq,
		Created: time.Now(),
		Bids:    make([]Level, 0, 16),
		Asks:    make([]Level, 0, 16),
	}

	b.BidsWalk(func(lvl *PriceLevel) {
		s.Bids = append(s.Bids, Level{
			Price:      lvl.Price,
			TotalQty:   lvl.TotalQty,
			OrderCount: lvl.OrderCount,
		})
	})
	b.AsksWalk(func(lvl *PriceLevel) {
		s.Asks = append(s.Asks, Level{
			Price:      lvl.Price,
			TotalQty:   lvl.TotalQty,
			OrderCount: lvl.OrderCount,
		})
	})

	return s
}
