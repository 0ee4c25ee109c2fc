package service

import (
	"fmt"
	"log"

	"cx/domain/orderbook"
	"cx/infra/memory"
	"cx/infra/sequence"
	"cx/outbox"
	"cx/snapshot"
	"cx/uc"
	"cx/walaudit"
)

// OrderService is the write entry point into the matching engine: it
// coordinates the wait-free order book (uc.UC[orderbook.OrderBook, ...]),
// the audit log, the outbox, and periodic checkpointing. The direct
// analogue of the teacher's OrderService, generalized from a single mutex-
// guarded book to one driven through the CX construct.
type OrderService struct {
	book *uc.UC[orderbook.OrderBook, orderbook.PlaceResult]
	seq  *sequence.Sequencer
	wal  *walaudit.WAL
	box  *outbox.Outbox
	snap *snapshot.Writer
	tid  int

	// scratch is a pool of Order structs reused across PlaceOrder calls:
	// the value handed to the construct is a copy of *scratch, so the
	// pooled pointer is free to reuse the instant it's filled in.
	scratch *memory.Pool[orderbook.Order]
}

// NewOrderService wires an OrderService around book.
func NewOrderService(book *uc.UC[orderbook.OrderBook, orderbook.PlaceResult], seq *sequence.Sequencer, wal *walaudit.WAL, box *outbox.Outbox, snap *snapshot.Writer, tid int) *OrderService {
	return &OrderService{
		book: book, seq: seq, wal: wal, box: box, snap: snap, tid: tid,
		scratch: memory.NewPool(func() *orderbook.Order { return &orderbook.Order{} }),
	}
}

// PlaceOrder submits a new order into the engine, logging intent before
// applying it and queuing the applied mutation for broadcast. It returns
// the ticket assigned to the operation.
func (s *OrderService) PlaceOrder(side orderbook.Side, otype orderbook.OrderType, price, qty int64, userID uint64) (uint64, orderbook.PlaceResult, error) {
	ticket := s.seq.Next()

	args, err := walaudit.EncodeArgs(map[string]any{
		"op":     "place",
		"userID": float64(userID),
		"side":   float64(side),
		"type":   float64(otype),
		"price":  float64(price),
		"qty":    float64(qty),
	})
	if err != nil {
		return 0, orderbook.PlaceResult{}, fmt.Errorf("service: encode args: %w", err)
	}
	if err := s.wal.Append(walaudit.NewRecord(walaudit.KindUpdate, ticket, args)); err != nil {
		return 0, orderbook.PlaceResult{}, fmt.Errorf("service: append wal: %w", err)
	}

	draft := s.scratch.Get()
	*draft = orderbook.Order{
		ID: userID, Side: side, Type: otype, Price: price, Qty: qty,
		SeqID: ticket, Status: orderbook.Active,
	}
	o := *draft
	s.scratch.Put(draft)

	res := s.book.ApplyUpdate(func(b *orderbook.OrderBook) orderbook.PlaceResult {
		return b.Place(o)
	}, s.tid)

	if err := s.box.PutNew(ticket); err != nil {
		log.Printf("service: outbox PutNew(%d) failed: %v", ticket, err)
	}
	return ticket, res, nil
}

// Checkpoint takes a consistent snapshot of the book (via a wait-free
// read replica) and persists it, then truncates the audit log of
// everything at or below that ticket.
func (s *OrderService) Checkpoint() error {
	var ticket uint64
	var book orderbook.OrderBook
	s.book.ApplyRead(func(b *orderbook.OrderBook) orderbook.PlaceResult {
		ticket = b.LastSeq
		book = b.Clone()
		return orderbook.PlaceResult{}
	}, s.tid)

	if err := s.snap.Write(ticket, &book); err != nil {
		return fmt.Errorf("service: write snapshot: %w", err)
	}
	return s.wal.TruncateBefore(ticket)
}

// Close releases the underlying construct.
func (s *OrderService) Close() { s.book.Close() }
