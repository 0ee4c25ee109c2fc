package service

import (
	"testing"

	"cx/domain/orderbook"
	"cx/infra/sequence"
	"cx/outbox"
	"cx/snapshot"
	"cx/uc"
	"cx/walaudit"
)

func BenchmarkPlaceOrder_Core(b *testing.B) {
	book := uc.NewUC[orderbook.OrderBook, orderbook.PlaceResult](orderbook.New(), 8)
	seq := sequence.New(0)

	wal, err := walaudit.Open(walaudit.Config{Dir: b.TempDir(), SegmentSize: 64 << 20})
	if err != nil {
		b.Fatal(err)
	}
	defer wal.Close()

	box, err := outbox.Open(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	defer box.Close()

	snap := &snapshot.Writer{Dir: b.TempDir()}
	svc := NewOrderService(book, seq, wal, box, snap, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		svc.PlaceOrder(orderbook.Bid, orderbook.Limit, 100, 1, 1)
	}
}
