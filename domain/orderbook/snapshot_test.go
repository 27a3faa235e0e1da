package orderbook

import "testing"

func TestFreezeCopiesLevels(t *testing.T) {
	b := NewOrderBook()
	b.Place(&Order{ID: 1, Side: Bid, Type: Limit, Price: 100, Qty: 5, SeqID: 1, Status: Active})
	b.Place(&Order{ID: 2, Side: Ask, Type: Limit, Price: 105, Qty: 3, SeqID: 2, Status: Active})

	snap := b.Freeze(2)
	if snap.Seq != 2 {
		t.Fatalf("expected seq 2, got %d", snap.Seq)
	}
	if len(snap.Bids) != 1 || snap.Bids[0].Price != 100 || snap.Bids[0].TotalQty != 5 {
		t.Fatalf("unexpected bids: %+v", snap.Bids)
	}
	if len(snap.Asks) != 1 || snap.Asks[0].Price != 105 || snap.Asks[0].TotalQty != 3 {
		t.Fatalf("unexpected asks: %+v", snap.Asks)
	}

	// Mutating the live book afterward must not affect the frozen copy.
	b.Place(&Order{ID: 3, Side: Bid, Type: Limit, Price: 100, Qty: 7, SeqID: 3, Status: Active})
	if snap.Bids[0].TotalQty != 5 {
		t.Fatalf("snapshot mutated after Freeze: %+v", snap.Bids[0])
	}
}
