package service

import (
	"testing"

	"matchengine/domain/orderbook"
	"matchengine/infra/memory"
	"matchengine/infra/sequence"
	entrywal "matchengine/infra/wal/entry"
	exitwal "matchengine/infra/wal/exit"
)

func BenchmarkPlaceOrder_Core(b *testing.B) {
	book := orderbook.NewOrderBook()

	pool := memory.NewPool(func() *orderbook.Order {
		return &orderbook.Order{}
	})

	seq := sequence.New(0)

	entryWAL, _ := entrywal.Open(entrywal.Config{
		Dir:         b.TempDir(),
		SegmentSize: 64 << 20,
	})
	exitWAL, _ := exitwal.Open(b.TempDir())

	svc := NewOrderService(
		book,
		pool,
		seq,
		entryWAL,
		exitWAL,
		nil,
	)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			svc.PlaceOrder(
				orderbook.Bid,
				orderbook.Limit,
				100,
				1,
				1,
			)
		}
	})
}

func BenchmarkSnapshot(b *testing.B) {
	book := orderbook.NewOrderBook()
	pool := memory.NewPool(func() *orderbook.Order {
		return &orderbook.Order{}
	})
	seq := sequence.New(0)

	entryWAL, _ := entrywal.Open(entrywal.Config{
		Dir:         b.TempDir(),
		SegmentSize: 64 << 20,
	})
	exitWAL, _ := exitwal.Open(b.TempDir())

	svc := NewOrderService(book, pool, seq, entryWAL, exitWAL, nil)
	svc.PlaceOrder(orderbook.Bid, orderbook.Limit, 100, 1, 1)
	svc.PublishSnapshot()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = svc.Snapshot()
		}
	})
}
