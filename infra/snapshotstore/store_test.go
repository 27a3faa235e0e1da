package snapshotstore

import (
	"context"
	"testing"
	"time"

	"matchengine/domain/orderbook"
)

func TestStorePersistAndLoadRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir(), nil, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	snap := &orderbook.BookSnapshot{
		Seq:     7,
		Created: time.Now(),
		Bids:    []orderbook.Level{{Price: 100, TotalQty: 5, OrderCount: 1}},
		Asks:    []orderbook.Level{{Price: 105, TotalQty: 3, OrderCount: 1}},
	}

	if err := store.Persist(context.Background(), snap); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	got, err := store.Load(7)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Seq != 7 || len(got.Bids) != 1 || got.Bids[0].Price != 100 {
		t.Fatalf("unexpected round-tripped snapshot: %+v", got)
	}
}

func TestStoreLatestReturnsHighestSeq(t *testing.T) {
	store, err := Open(t.TempDir(), nil, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for seq := uint64(1); seq <= 3; seq++ {
		if err := store.Persist(ctx, &orderbook.BookSnapshot{Seq: seq}); err != nil {
			t.Fatalf("Persist seq %d: %v", seq, err)
		}
	}

	latest, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == nil || latest.Seq != 3 {
		t.Fatalf("expected latest seq 3, got %+v", latest)
	}
}

func TestStoreLatestEmpty(t *testing.T) {
	store, err := Open(t.TempDir(), nil, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	latest, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil latest on empty store, got %+v", latest)
	}
}
