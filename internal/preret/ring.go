// Package preret implements the bounded pre-retired ring (§4.B): a
// thread-local ring of mutation nodes that have been superseded as a
// replica's head but might still be mid-walk under some other thread's
// hazard pointer.
//
// Retiring a superseded node straight to the hazard-pointer reclaimer
// would be unsafe: an applier walking the mutation list towards a higher
// ticket can still be one step behind, holding a hazard pointer on a node
// whose `next` this ring is about to self-link and hand off. The ring
// delays that hand-off until the node's ticket is old enough (outside the
// compaction window) that no walker could plausibly still be on it.
package preret

import "cx/internal/hazard"

// DefaultCapacity and DefaultThreshold match §6's configuration constants.
const (
	DefaultCapacity  = 2000
	DefaultThreshold = 1000
)

// Ring is a fixed-capacity, thread-local ring of pre-retired nodes of type
// T, keyed by a monotonically increasing ticket.
type Ring[T any] struct {
	cap     int
	minSize int
	tid     int

	buf   []*T
	begin int
	size  int

	hp *hazard.Table[T]

	ticket func(*T) uint64
	next   func(*T) *T
	setSelf func(*T)
}

// New creates a pre-retired ring for thread tid, backed by reclaimer hp.
// ticket reads a node's ticket; next reads its current successor pointer;
// setSelf self-links a node's next pointer (the retirement tombstone).
func New[T any](hp *hazard.Table[T], tid int, ticket func(*T) uint64, next func(*T) *T, setSelf func(*T)) *Ring[T] {
	return &Ring[T]{
		cap:     DefaultCapacity,
		minSize: DefaultThreshold,
		tid:     tid,
		buf:     make([]*T, DefaultCapacity),
		hp:      hp,
		ticket:  ticket,
		next:    next,
		setSelf: setSelf,
	}
}

// Add appends node to the ring, compacting first if the ring is full.
// Compaction self-links and hands off every entry whose ticket is older
// than the newest entry's ticket minus minSize — old enough that no
// walker's hazard pointer could still be protecting its successor.
func (r *Ring[T]) Add(node *T) {
	if r.size == r.cap {
		r.clean(node)
	}
	pos := (r.begin + r.size) % r.cap
	r.buf[pos] = node
	r.size++
}

func (r *Ring[T]) clean(newest *T) {
	pos := r.begin
	initialSize := r.size
	newestTicket := r.ticket(newest)
	for i := 0; i < initialSize; i++ {
		if pos == r.cap {
			pos = 0
		}
		mn := r.buf[pos]
		if r.ticket(mn) > newestTicket-uint64(r.minSize) {
			r.begin = pos
			return
		}
		ln := r.next(mn)
		r.setSelf(mn)
		r.hp.Retire(ln, r.tid)
		pos++
		r.size--
	}
}

// Len reports the number of nodes currently held in the ring.
func (r *Ring[T]) Len() int { return r.size }

// Cap reports the ring's fixed capacity.
func (r *Ring[T]) Cap() int { return r.cap }

// Drain retires every remaining entry unconditionally; used when the
// owning UC instance is being torn down.
func (r *Ring[T]) Drain() {
	pos := r.begin
	for i := 0; i < r.size; i++ {
		if pos == r.cap {
			pos = 0
		}
		mn := r.buf[pos]
		ln := r.next(mn)
		r.setSelf(mn)
		r.hp.Retire(ln, r.tid)
		pos++
	}
	r.size = 0
}
