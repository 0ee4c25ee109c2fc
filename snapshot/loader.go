package snapshot

import (
	"encoding/gob"
	"os"

	"cx/domain/orderbook"
)

// Load reads a snapshot at path and replays its resting orders into book,
// returning the ticket the snapshot was taken at (0 if no snapshot file
// exists yet — an empty book is a valid starting state).
func Load(path string, book *orderbook.OrderBook) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, err
	}

	for _, e := range s.Orders {
		book.RestOrder(orderbook.Order{
			ID:     e.ID,
			Side:   orderbook.Side(e.Side),
			Type:   orderbook.OrderType(e.Type),
			Price:  e.Price,
			Qty:    e.Qty,
			Filled: e.Filled,
			SeqID:  e.SeqID,
			Status: orderbook.Active,
		})
	}

	return s.Ticket, nil
}
