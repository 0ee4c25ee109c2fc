// Package mutqueue implements the append-only, wait-free, ticketed
// mutation queue (§4.D) the CX construct uses to order every submitted
// operation. Enqueue is wait-free by helping: a thread that cannot make
// progress on its own node instead helps whichever thread's node is
// blocking the tail, so no thread can be starved past O(maxThreads) of
// its own steps. There is no dequeue — nodes are retired separately, once
// no replica head and no walker still needs them (see package preret).
package mutqueue

import "sync/atomic"

// Node is one entry in the mutation list: an opaque update closure plus
// the bookkeeping the queue, the CX walk, and the reclaimer all need.
//
// next doubles as the retirement tombstone: once next points back to the
// node itself, the node is fully retired (§3, invariant 5) and no
// Combined.head may reference it.
type Node[S, R any] struct {
	op     func(*S) R
	result atomic.Pointer[R]
	next   atomic.Pointer[Node[S, R]]
	ticket atomic.Uint64
	orc    atomic.Int32
	done   atomic.Bool
	enqTid int
}

// NewNode allocates an unlinked node (ticket == 0) for the given closure.
func NewNode[S, R any](op func(*S) R, enqTid int) *Node[S, R] {
	return &Node[S, R]{op: op, enqTid: enqTid}
}

// Apply runs the node's closure against obj and stores the result,
// returning it. Only the thread currently walking the mutation list with
// an exclusive lock on some replica may call this for a given node.
func (n *Node[S, R]) Apply(obj *S) R {
	v := n.op(obj)
	n.result.Store(&v)
	return v
}

// Result returns the last value stored by Apply, or the zero value of R
// if the node has not been applied yet (always the case for the sentinel,
// which is never applied, and for a just-enqueued node nobody has reached).
func (n *Node[S, R]) Result() R {
	if p := n.result.Load(); p != nil {
		return *p
	}
	var zero R
	return zero
}

// Ticket returns the node's assigned sequence number, or 0 if it has not
// been linked into the list yet (§3, invariant 2).
func (n *Node[S, R]) Ticket() uint64 { return n.ticket.Load() }

// SetTicket assigns a node's ticket. Only the thread that CAS'd this node
// into the list (or a helper doing the same step) may call this.
func (n *Node[S, R]) SetTicket(t uint64) { n.ticket.Store(t) }

// Next returns the node's current successor, or nil if none has been
// linked yet. A self-referencing Next means the node is fully retired.
func (n *Node[S, R]) Next() *Node[S, R] { return n.next.Load() }

// CASNext links next as n's successor, but only if n currently has none.
func (n *Node[S, R]) CASNext(next *Node[S, R]) bool {
	return n.next.CompareAndSwap(nil, next)
}

// SelfLink tombstones the node: next now points at itself, signalling to
// the reclaimer that every logical link through this node has been
// finalized.
func (n *Node[S, R]) SelfLink() { n.next.Store(n) }

// SelfLinked reports whether SelfLink has been called.
func (n *Node[S, R]) SelfLinked() bool { return n.next.Load() == n }

// EnqTid returns the thread slot that submitted this node, used for
// enqueue helping.
func (n *Node[S, R]) EnqTid() int { return n.enqTid }

// ORC returns the node's ownership-reference count: the number of replica
// head pointers currently referencing it (§3, invariant 6).
func (n *Node[S, R]) ORC() int32 { return n.orc.Load() }

// AddORC adjusts the ORC by delta and returns the new value.
func (n *Node[S, R]) AddORC(delta int32) int32 { return n.orc.Add(delta) }

// MarkDone flags a node as retired past the current replica's head, used
// only by the timed variant's bounded getNewComb spin to bail out early.
func (n *Node[S, R]) MarkDone() { n.done.Store(true) }

// Done reports whether MarkDone has been called.
func (n *Node[S, R]) Done() bool { return n.done.Load() }
