// Package walaudit is the durable, append-only log of operations submitted
// to a uc.UC instance. It exists so a process can be restarted and rebuild
// its wrapped state by replaying every record in sequence order, instead of
// trusting the in-memory construct alone to survive a crash.
package walaudit

import "time"

// Kind distinguishes an update from a read-only operation recorded for
// audit purposes (reads never need replaying, but some deployments want
// them logged for traceability).
type Kind uint8

const (
	KindUpdate Kind = iota
	KindRead
)

// Record is one durable audit-log entry: the ticket the operation was
// assigned by the service's sequence.Sequencer, when it was submitted, and its
// protobuf-encoded arguments (see codec.go).
type Record struct {
	Kind   Kind
	Ticket uint64
	Time   int64
	Args   []byte
}

// NewRecord stamps a record with the current time.
func NewRecord(kind Kind, ticket uint64, args []byte) *Record {
	return &Record{Kind: kind, Ticket: ticket, Time: time.Now().UnixNano(), Args: args}
}
