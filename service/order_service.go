package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"matchengine/domain/orderbook"
	"matchengine/infra/memory"
	"matchengine/infra/sequence"
	"matchengine/infra/snapshotstore"
	entrywal "matchengine/infra/wal/entry"
	exitwal "matchengine/infra/wal/exit"
	"matchengine/internal/reclaim"
)

// MaxSnapshotReaders bounds the reclaim.Guardian hazard table and the
// ticket pool backing it. gRPC handlers run on fresh goroutines per
// request, so they borrow tickets from a pool (see reclaim.TicketPool)
// rather than binding one for a goroutine's lifetime; this cap is the
// number of snapshot reads that may be concurrently in flight before
// they start sharing hazard slots.
const MaxSnapshotReaders = reclaim.MaxSlots

// FillEvent is the payload broadcast to Kafka for every order that
// finishes (fully filled) during matching.
type FillEvent struct {
	OrderID uint64 `json:"order_id"`
	Seq     uint64 `json:"seq"`
	Side    int    `json:"side"`
	Price   int64  `json:"price"`
	Qty     int64  `json:"qty"`
}

// OrderService is the only write entry point into the system. It wires
// together the domain order book, WAL durability, sequencing, and the
// reclaim.Guardian that publishes consistent book snapshots to readers.
type OrderService struct {
	book     *orderbook.OrderBook
	pool     *memory.Pool[orderbook.Order]
	guardian *reclaim.Guardian[orderbook.BookSnapshot]
	tickets  *reclaim.TicketPool
	seqGen   *sequence.Sequencer
	entryWAL *entrywal.WAL
	exitWAL  *exitwal.ExitWAL
	store    *snapshotstore.Store

	mu sync.Mutex // single-writer discipline for book mutation and publish
}

// NewOrderService wires all dependencies. store may be nil to disable
// durable snapshot persistence (used by benchmarks and tests).
func NewOrderService(
	book *orderbook.OrderBook,
	pool *memory.Pool[orderbook.Order],
	seqGen *sequence.Sequencer,
	entryWAL *entrywal.WAL,
	exitWAL *exitwal.ExitWAL,
	store *snapshotstore.Store,
) *OrderService {
	guardian := reclaim.NewGuardian[orderbook.BookSnapshot](MaxSnapshotReaders, func(s *orderbook.BookSnapshot) {
		log.Printf("[reclaim] snapshot seq=%d reclaimed", s.Seq)
	})

	return &OrderService{
		book:     book,
		pool:     pool,
		guardian: guardian,
		tickets:  reclaim.NewTicketPool(MaxSnapshotReaders),
		seqGen:   seqGen,
		entryWAL: entryWAL,
		exitWAL:  exitWAL,
		store:    store,
	}
}

// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────

// PlaceOrder submits a new order into the engine and returns the assigned
// sequence number. It does not itself publish a new snapshot; call
// PublishSnapshot (directly or via StartSnapshotJob) to make the effects
// of PlaceOrder visible to Snapshot readers.
func (s *OrderService) PlaceOrder(
	side orderbook.Side,
	otype orderbook.OrderType,
	price int64,
	qty int64,
	userID uint64,
) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seqGen.Next()

	o := s.pool.Get()
	*o = orderbook.Order{
		ID:     userID,
		Side:   side,
		Type:   otype,
		Price:  price,
		Qty:    qty,
		Filled: 0,
		SeqID:  seq,
		Status: orderbook.Active,
	}

	_ = s.entryWAL.Append(entrywal.NewRecord(
		entrywal.RecordPlace,
		seq,
		[]byte(fmt.Sprintf("%d|%d|%d|%d|%d", userID, side, otype, price, qty)),
	))

	s.book.Place(o)

	if o.Remaining() == 0 {
		s.retire(o, seq)
	}

	return seq
}

func (s *OrderService) retire(o *orderbook.Order, seq uint64) {
	o.Status = orderbook.Inactive

	payload, err := json.Marshal(FillEvent{
		OrderID: o.ID,
		Seq:     seq,
		Side:    int(o.Side),
		Price:   o.Price,
		Qty:     o.Qty,
	})
	if err == nil {
		if err := s.exitWAL.PutNew(o.ID, payload); err != nil {
			log.Printf("[service] failed to enqueue exit record for order %d: %v", o.ID, err)
		}
	}

	s.pool.Put(o)
}

// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────

// Snapshot returns the most recently published, immutable view of the
// book, or nil if no snapshot has ever been published. It never blocks
// on the writer and never observes a partially-updated book.
func (s *OrderService) Snapshot() *orderbook.BookSnapshot {
	tk := s.tickets.Get()
	defer s.tickets.Put(tk)

	snap := s.guardian.Lease(tk)
	defer s.guardian.Unlease(tk)
	return snap
}

// ──────────────────────────────────────────────────────────
// Publication
// ──────────────────────────────────────────────────────────

// PublishSnapshot freezes the current book state and publishes it through
// the reclaim.Guardian, then persists it durably if a snapshotstore was
// configured. It is safe to call concurrently with PlaceOrder.
func (s *OrderService) PublishSnapshot() {
	s.mu.Lock()
	seq := s.seqGen.Current()
	snap := s.book.Freeze(seq)
	s.mu.Unlock()

	s.guardian.Publish(snap)

	if s.store != nil {
		if err := s.store.Persist(context.Background(), snap); err != nil {
			log.Printf("[service] failed to persist snapshot seq=%d: %v", seq, err)
		}
	}
}

// Close waits for outstanding Snapshot leases to drain and reclaims the
// last published snapshot. It should be called once during shutdown,
// after the write path has stopped accepting new orders.
func (s *OrderService) Close() {
	s.guardian.Close()
}
