package service

import (
	"fmt"

	"cx/domain/orderbook"
	"cx/infra/sequence"
	"cx/walaudit"
)

// ReplayFromWAL rebuilds an order book's resting state from the audit log
// in walDir. This must run before the book is handed to uc.NewUC and
// traffic is accepted; the outbox is never replayed here — it only tracks
// broadcast delivery of mutations already reflected in the log.
func ReplayFromWAL(walDir string, book *orderbook.OrderBook, seqGen *sequence.Sequencer) error {
	lastTicket, err := walaudit.Replay(walDir, func(rec *walaudit.Record) error {
		if rec.Kind != walaudit.KindUpdate {
			return nil
		}

		fields, err := walaudit.DecodeArgs(rec.Args)
		if err != nil {
			return fmt.Errorf("service: decode args at ticket %d: %w", rec.Ticket, err)
		}
		if fields["op"] != "place" {
			return nil
		}

		side, ok1 := fields["side"].(float64)
		otype, ok2 := fields["type"].(float64)
		price, ok3 := fields["price"].(float64)
		qty, ok4 := fields["qty"].(float64)
		userID, ok5 := fields["userID"].(float64)
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			return fmt.Errorf("service: malformed place args at ticket %d", rec.Ticket)
		}

		book.Place(orderbook.Order{
			ID:     uint64(userID),
			Side:   orderbook.Side(int(side)),
			Type:   orderbook.OrderType(int(otype)),
			Price:  int64(price),
			Qty:    int64(qty),
			SeqID:  rec.Ticket,
			Status: orderbook.Active,
		})
		return nil
	})
	if err != nil {
		return err
	}

	seqGen.Reset(lastTicket)
	return nil
}
