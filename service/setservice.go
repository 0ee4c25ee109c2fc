package service

import (
	"fmt"
	"log"

	"cx/containers/intset"
	"cx/infra/sequence"
	"cx/outbox"
	"cx/uc"
	"cx/walaudit"
)

// SetService is the write/read entry point for a wait-free int64 set.
// Every mutation is durably logged before being applied, and every applied
// mutation is durably queued in the outbox for downstream broadcast.
type SetService struct {
	set  *uc.UCSet[intset.Set, *intset.Set, int64]
	seq  *sequence.Sequencer
	wal  *walaudit.WAL
	box  *outbox.Outbox
	tid  int
}

// NewSetService wires a fresh SetService around set, durably logging to
// wal and tracking delivery in box. tid identifies this service's calling
// thread/goroutine slot in the underlying construct (see uc.NewUC).
func NewSetService(set *uc.UCSet[intset.Set, *intset.Set, int64], seq *sequence.Sequencer, wal *walaudit.WAL, box *outbox.Outbox, tid int) *SetService {
	return &SetService{set: set, seq: seq, wal: wal, box: box, tid: tid}
}

// Add inserts key, logging the intent before applying it and recording the
// applied mutation's ticket in the outbox for broadcast.
func (s *SetService) Add(key int64) (bool, error) {
	ticket := s.seq.Next()
	if err := s.logIntent(walaudit.KindUpdate, ticket, map[string]any{"op": "add", "key": float64(key)}); err != nil {
		return false, err
	}

	added := s.set.Add(key, s.tid)

	if err := s.box.PutNew(ticket); err != nil {
		log.Printf("service: outbox PutNew(%d) failed: %v", ticket, err)
	}
	return added, nil
}

// Remove deletes key, with the same log-then-apply-then-outbox sequencing
// as Add.
func (s *SetService) Remove(key int64) (bool, error) {
	ticket := s.seq.Next()
	if err := s.logIntent(walaudit.KindUpdate, ticket, map[string]any{"op": "remove", "key": float64(key)}); err != nil {
		return false, err
	}

	removed := s.set.Remove(key, s.tid)

	if err := s.box.PutNew(ticket); err != nil {
		log.Printf("service: outbox PutNew(%d) failed: %v", ticket, err)
	}
	return removed, nil
}

// Contains is a pure read; it bypasses the audit log and outbox entirely
// since it can never be replayed into a divergent state.
func (s *SetService) Contains(key int64) bool {
	return s.set.Contains(key, s.tid)
}

func (s *SetService) logIntent(kind walaudit.Kind, ticket uint64, fields map[string]any) error {
	args, err := walaudit.EncodeArgs(fields)
	if err != nil {
		return fmt.Errorf("service: encode args: %w", err)
	}
	return s.wal.Append(walaudit.NewRecord(kind, ticket, args))
}

// Close releases the underlying construct.
func (s *SetService) Close() { s.set.Close() }
