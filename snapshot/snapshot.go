// Package snapshot periodically checkpoints a uc-wrapped orderbook.OrderBook
// to disk via encoding/gob, so a restarted process can seed its in-memory
// state without replaying the entire audit log from ticket zero.
package snapshot

import "time"

// Snapshot is the on-disk checkpoint format.
type Snapshot struct {
	Ticket  uint64
	Created time.Time
	Orders  []OrderEntry
}

// OrderEntry is one resting order captured by a snapshot.
type OrderEntry struct {
	ID     uint64
	Side   int
	Type   int
	Price  int64
	Qty    int64
	Filled int64
	SeqID  uint64
}
