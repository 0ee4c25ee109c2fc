package orderbook

import "testing"

func TestRestingOrderNoMatch(t *testing.T) {
	b := New()
	res := b.Place(Order{ID: 1, Side: Bid, Type: Limit, Price: 100, Qty: 10})
	if !res.Resting || res.Remaining != 10 || len(res.Trades) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	price, lvl, ok := b.Bids.Max()
	if !ok || price != 100 || lvl.OrderCount != 1 {
		t.Fatalf("expected a resting bid at 100, got ok=%v price=%d lvl=%+v", ok, price, lvl)
	}
}

func TestCrossingOrdersFullyMatch(t *testing.T) {
	b := New()
	b.Place(Order{ID: 1, Side: Ask, Type: Limit, Price: 100, Qty: 10})

	res := b.Place(Order{ID: 2, Side: Bid, Type: Limit, Price: 100, Qty: 10})
	if res.Resting || res.Remaining != 0 {
		t.Fatalf("expected taker fully filled, got %+v", res)
	}
	if len(res.Trades) != 1 || res.Trades[0].Qty != 10 || res.Trades[0].MakerID != 1 {
		t.Fatalf("unexpected trades: %+v", res.Trades)
	}
	if _, _, ok := b.Asks.Min(); ok {
		t.Fatal("expected the ask level to be fully drained and removed")
	}
}

func TestPartialFillLeavesRemainderResting(t *testing.T) {
	b := New()
	b.Place(Order{ID: 1, Side: Ask, Type: Limit, Price: 100, Qty: 4})

	res := b.Place(Order{ID: 2, Side: Bid, Type: Limit, Price: 100, Qty: 10})
	if !res.Resting || res.Remaining != 6 {
		t.Fatalf("expected 6 remaining resting, got %+v", res)
	}
	if len(res.Trades) != 1 || res.Trades[0].Qty != 4 {
		t.Fatalf("unexpected trades: %+v", res.Trades)
	}
}

func TestPriceTimePriority(t *testing.T) {
	b := New()
	b.Place(Order{ID: 1, Side: Ask, Type: Limit, Price: 100, Qty: 5})
	b.Place(Order{ID: 2, Side: Ask, Type: Limit, Price: 100, Qty: 5})

	res := b.Place(Order{ID: 3, Side: Bid, Type: Limit, Price: 100, Qty: 5})
	if len(res.Trades) != 1 || res.Trades[0].MakerID != 1 {
		t.Fatalf("expected order 1 (first in, first matched), got %+v", res.Trades)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := New()
	b.Place(Order{ID: 1, Side: Bid, Type: Limit, Price: 100, Qty: 10})

	clone := b.Clone()
	b.Place(Order{ID: 2, Side: Ask, Type: Limit, Price: 100, Qty: 10})

	if _, _, ok := b.Bids.Max(); ok {
		t.Fatal("expected original book's bid to be consumed by the match")
	}
	if _, lvl, ok := clone.Bids.Max(); !ok || lvl.OrderCount != 1 {
		t.Fatalf("expected clone's bid level untouched, got ok=%v lvl=%+v", ok, lvl)
	}
}
