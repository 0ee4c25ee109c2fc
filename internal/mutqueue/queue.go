package mutqueue

import (
	"sync/atomic"

	"cx/internal/hazard"
)

// Queue is the wait-free ticketed mutation queue. It shares its caller's
// hazard-pointer table (the CX construct uses the same table for the
// enqueue protocol's two slots and its own walk slots) rather than owning
// one, so hpTailSlot/hpTailNextSlot index into that shared table.
type Queue[S, R any] struct {
	maxThreads int
	tail       atomic.Pointer[Node[S, R]]
	announce   []atomic.Pointer[Node[S, R]]

	hp            *hazard.Table[Node[S, R]]
	hpTailSlot    int
	hpTailNextSlot int
}

// New creates a queue seeded with sentinel as both the head and tail of
// the list. sentinel's ticket must already be 0 (its linearization point
// precedes every real mutation).
func New[S, R any](hp *hazard.Table[Node[S, R]], hpTailSlot, hpTailNextSlot, maxThreads int, sentinel *Node[S, R]) *Queue[S, R] {
	q := &Queue[S, R]{
		maxThreads:     maxThreads,
		hp:             hp,
		hpTailSlot:     hpTailSlot,
		hpTailNextSlot: hpTailNextSlot,
		announce:       make([]atomic.Pointer[Node[S, R]], maxThreads),
	}
	q.tail.Store(sentinel)
	return q
}

// Enqueue links myNode into the mutation list and assigns it a ticket,
// helping other announced threads along the way. Progress: wait-free
// bounded by O(maxThreads) — see §4.D.
func (q *Queue[S, R]) Enqueue(myNode *Node[S, R], tid int) {
	q.announce[tid].Store(myNode)
	for i := 0; i < q.maxThreads; i++ {
		if q.announce[tid].Load() == nil {
			return // some thread completed every step on our behalf
		}
		ltail := q.tail.Load()
		q.hp.ProtectPtr(q.hpTailSlot, ltail, tid)
		if ltail != q.tail.Load() {
			continue // tail moved; re-read
		}

		// Help a thread finish its own step 4 (clearing its announcement).
		if helpee := q.announce[ltail.EnqTid()].Load(); helpee == ltail {
			q.announce[ltail.EnqTid()].CompareAndSwap(ltail, nil)
		}

		// Help a thread do step 2: link the first pending announcement,
		// scanning round-robin starting just after the tail's owner.
		for j := 1; j < q.maxThreads+1; j++ {
			idx := (j + ltail.EnqTid()) % q.maxThreads
			nodeToHelp := q.announce[idx].Load()
			if nodeToHelp == nil {
				continue
			}
			ltail.CASNext(nodeToHelp)
			break
		}

		if lnext := ltail.Next(); lnext != nil {
			q.hp.ProtectPtr(q.hpTailNextSlot, lnext, tid)
			if ltail != q.tail.Load() {
				continue
			}
			lnext.SetTicket(ltail.Ticket() + 1)
			q.tail.CompareAndSwap(ltail, lnext) // step 3, helped by anyone
		}
	}
	q.announce[tid].Store(nil) // step 4, in case nobody helped
}

// Tail returns the current tail of the mutation list, hazard-protecting
// it first so the caller may safely dereference it.
func (q *Queue[S, R]) Tail(tid int) *Node[S, R] {
	return q.hp.Protect(q.hpTailSlot, &q.tail, tid)
}
