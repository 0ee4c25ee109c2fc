// Package outbox is a durable, pebble-backed record of mutations that have
// been applied to a uc.UC instance and are pending broadcast to external
// subscribers (see jobs/broadcaster). Decoupling "applied" from
// "broadcast" lets the construct stay wait-free on the hot path while a
// background drain handles delivery. The drain picks up only NEW entries:
// an entry whose send failed is left in FAILED state and is not retried.
package outbox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// State is where an entry sits in the broadcast lifecycle.
type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Entry is one outbox record: the mutation's ticket and its current
// delivery state.
type Entry struct {
	State       State
	Retries     uint32
	LastAttempt int64
}

// binary encoding: [state:1][retries:4][lastAttempt:8]
func encodeEntry(e Entry) []byte {
	buf := make([]byte, 1+4+8)
	buf[0] = byte(e.State)
	binary.BigEndian.PutUint32(buf[1:5], e.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(e.LastAttempt))
	return buf
}

func decodeEntry(b []byte) (Entry, error) {
	if len(b) != 13 {
		return Entry{}, errors.New("outbox: invalid entry length")
	}
	return Entry{
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
	}, nil
}

// Outbox is a durable queue of pending broadcast entries keyed by ticket.
type Outbox struct {
	db *pebble.DB
}

// Open opens (or creates) the outbox database at dir.
func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // durability across crashes is the whole point
	})
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

// Close closes the underlying database.
func (o *Outbox) Close() error {
	return o.db.Close()
}

// PutNew records a freshly applied mutation as pending broadcast.
func (o *Outbox) PutNew(ticket uint64) error {
	return o.db.Set(keyFor(ticket), encodeEntry(Entry{State: StateNew}), pebble.Sync)
}

// UpdateState transitions ticket's entry, recording the attempt time.
func (o *Outbox) UpdateState(ticket uint64, state State, retries uint32) error {
	e := Entry{State: state, Retries: retries, LastAttempt: time.Now().UnixNano()}
	return o.db.Set(keyFor(ticket), encodeEntry(e), pebble.Sync)
}

// Delete removes a fully acknowledged entry.
func (o *Outbox) Delete(ticket uint64) error {
	return o.db.Delete(keyFor(ticket), pebble.Sync)
}

// Get returns the current entry for ticket.
func (o *Outbox) Get(ticket uint64) (Entry, error) {
	val, closer, err := o.db.Get(keyFor(ticket))
	if err != nil {
		return Entry{}, err
	}
	defer closer.Close()
	return decodeEntry(val)
}

// ScanByState iterates every entry in the given state, in ticket order.
// The broadcaster uses this to find work to drain.
func (o *Outbox) ScanByState(state State, fn func(ticket uint64, e Entry) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("ticket/"),
		UpperBound: []byte("ticket/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		e, err := decodeEntry(iter.Value())
		if err != nil {
			return err
		}
		if e.State != state {
			continue
		}
		ticket, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		if err := fn(ticket, e); err != nil {
			return err
		}
	}
	return iter.Error()
}

func keyFor(ticket uint64) []byte {
	return []byte(fmt.Sprintf("ticket/%020d", ticket))
}

func parseKey(b []byte) (uint64, error) {
	var ticket uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte("ticket/"))), "%d", &ticket)
	return ticket, err
}
