package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"cx/domain/orderbook"
)

// Writer persists OrderBook checkpoints under Dir.
type Writer struct {
	Dir string
}

// Write captures every active resting order in book and persists it,
// tagged with ticket (the service sequencer's ticket of the last order
// placed into book when this snapshot was taken).
func (w *Writer) Write(ticket uint64, book *orderbook.OrderBook) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(w.Dir, "snapshot.bin")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s := Snapshot{
		Ticket:  ticket,
		Created: time.Now(),
		Orders:  make([]OrderEntry, 0, 1024),
	}

	collect := func(lvl orderbook.PriceLevel) bool {
		lvl.Orders(func(o orderbook.Order) bool {
			if o.Status == orderbook.Active {
				s.Orders = append(s.Orders, OrderEntry{
					ID: o.ID, Side: int(o.Side), Type: int(o.Type),
					Price: o.Price, Qty: o.Qty, Filled: o.Filled, SeqID: o.SeqID,
				})
			}
			return true
		})
		return true
	}
	book.BidsWalk(collect)
	book.AsksWalk(collect)

	return gob.NewEncoder(f).Encode(&s)
}
