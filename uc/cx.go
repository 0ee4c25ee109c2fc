// Package uc implements the CX universal construct (§1–§4): a wait-free
// wrapper that turns any cloneable sequential object into a linearizable
// concurrent one. Updates are funneled through the mutation queue in
// internal/mutqueue, applied to a spare replica, then published by
// advancing a single atomic pointer to the current "combined" replica.
// Reads either take a shared lock on the current replica directly or, after
// enough failed attempts, fall back to going through the mutation queue
// like an update whose function has no side effect on the object.
package uc

import (
	"fmt"
	"sync/atomic"

	"cx/internal/hazard"
	"cx/internal/mutqueue"
	"cx/internal/preret"
	"cx/internal/rwlock"
)

// maxReadTries bounds how many times ApplyRead will spin trying to read
// the current replica directly before enqueuing itself as a mutation.
const maxReadTries = 10

// Cloneable is the requirement the wrapped state type must satisfy: a deep
// enough copy that mutating one clone never observably affects another.
// Containers in package containers implement this with value receivers.
type Cloneable[S any] interface {
	Clone() S
}

// combined pairs one replica of the wrapped object with the mutation-list
// node it reflects and the lock that arbitrates access to it.
type combined[S Cloneable[S], R any] struct {
	head *mutqueue.Node[S, R]
	obj  S
	lock *rwlock.RWLock
}

// updateHead swaps in mn as the replica's head, adjusting the ownership
// reference counts of the old and new head nodes. mn must already be
// protected by a hazard pointer in the caller's slot.
func (c *combined[S, R]) updateHead(mn *mutqueue.Node[S, R]) {
	mn.AddORC(1)
	if c.head != nil {
		c.head.AddORC(-1)
	}
	c.head = mn
}

// UC is one instance of the CX universal construct wrapping state type S
// with update/read results of type R.
type UC[S Cloneable[S], R any] struct {
	maxThreads int

	curComb atomic.Pointer[combined[S, R]]
	combs   []combined[S, R]

	sentinel *mutqueue.Node[S, R]
	queue    *mutqueue.Queue[S, R]

	hp         *hazard.Table[mutqueue.Node[S, R]]
	preRetired []*preret.Ring[mutqueue.Node[S, R]]
}

const (
	hpTail     = 0
	hpTailNext = 1
	hpHead     = 2
	hpNext     = 3
	hpMyNode   = 4
	hpSlots    = 5
)

// NewUC builds a construct seeded from inst, with maxThreads the number of
// threads (goroutines) that will ever concurrently call ApplyUpdate or
// ApplyRead on it. A thread's slot index (0..maxThreads-1) must be supplied
// by the caller on every call — this package does not allocate thread IDs.
func NewUC[S Cloneable[S], R any](inst S, maxThreads int) *UC[S, R] {
	sentinel := mutqueue.NewNode[S, R](func(*S) R { var zero R; return zero }, 0)

	selfLinked := func(n *mutqueue.Node[S, R]) bool { return n.SelfLinked() }
	refCount := func(n *mutqueue.Node[S, R]) int32 { return n.ORC() }
	hp := hazard.New[mutqueue.Node[S, R]](hpSlots, maxThreads, maxThreads, selfLinked, refCount)

	u := &UC[S, R]{
		maxThreads: maxThreads,
		sentinel:   sentinel,
		hp:         hp,
		combs:      make([]combined[S, R], 2*maxThreads),
		preRetired: make([]*preret.Ring[mutqueue.Node[S, R]], maxThreads),
	}
	u.queue = mutqueue.New[S, R](hp, hpTail, hpTailNext, maxThreads, sentinel)

	for i := range u.combs {
		u.combs[i].lock = rwlock.New(maxThreads)
	}
	u.combs[0].head = sentinel
	u.combs[0].obj = inst
	u.combs[1].head = sentinel
	u.combs[1].obj = inst.Clone()
	refs := int32(2)
	if maxThreads >= 2 {
		u.combs[2].head = sentinel
		u.combs[2].obj = inst.Clone()
		u.combs[3].head = sentinel
		u.combs[3].obj = inst.Clone()
		refs = 4
	}
	sentinel.AddORC(refs)
	u.combs[0].lock.SetReadLock()
	u.curComb.Store(&u.combs[0])

	for i := 0; i < maxThreads; i++ {
		u.preRetired[i] = preret.New[mutqueue.Node[S, R]](hp, i,
			func(n *mutqueue.Node[S, R]) uint64 { return n.Ticket() },
			func(n *mutqueue.Node[S, R]) *mutqueue.Node[S, R] { return n.Next() },
			func(n *mutqueue.Node[S, R]) { n.SelfLink() },
		)
	}
	return u
}

// getCombined looks for a replica whose head is strictly behind myTicket,
// locking it in shared mode on the caller's behalf. Returns nil if no such
// replica can currently be found; the caller then stops its walk and
// returns its node's result.
func (u *UC[S, R]) getCombined(myTicket uint64, tid int) *combined[S, R] {
	for i := 0; i < u.maxThreads; i++ {
		lcomb := u.curComb.Load()
		if !lcomb.lock.SharedTryLock(tid) {
			continue
		}
		lhead := lcomb.head
		lticket := lhead.Ticket()
		if lticket < myTicket && lhead != lhead.Next() {
			return lcomb
		}
		lcomb.lock.SharedUnlock(tid)
		if lticket >= myTicket && lcomb == u.curComb.Load() {
			return nil
		}
	}
	return nil
}

// ApplyUpdate enqueues mutate and applies every mutation up to and
// including it, returning its result. Progress: wait-free, bounded by
// O(maxThreads).
func (u *UC[S, R]) ApplyUpdate(mutate func(*S) R, tid int) R {
	myNode := mutqueue.NewNode[S, R](mutate, tid)
	u.hp.ProtectPtr(hpMyNode, myNode, tid)
	u.queue.Enqueue(myNode, tid)
	myTicket := myNode.Ticket()

	var newComb *combined[S, R]
	for i := range u.combs {
		if u.combs[i].lock.ExclusiveTryLock(tid) {
			newComb = &u.combs[i]
			break
		}
	}
	if newComb == nil {
		panic(fmt.Sprintf("cx: no free Combined instance for tid %d", tid))
	}

	mn := newComb.head
	if mn != nil && mn.Ticket() >= myTicket {
		newComb.lock.ExclusiveUnlock()
		return myNode.Result()
	}

	var lcomb *combined[S, R]
	for mn != myNode {
		if mn == nil || mn == mn.Next() {
			// lcomb is deliberately never reset to nil after a successful
			// getCombined: a second failure here within the same call
			// fails out immediately rather than retrying (§4.E bound).
			retried := lcomb != nil
			if !retried {
				lcomb = u.getCombined(myTicket, tid)
			}
			if retried || lcomb == nil {
				if mn != nil {
					newComb.updateHead(mn)
				}
				newComb.lock.ExclusiveUnlock()
				return myNode.Result()
			}
			mn = lcomb.head
			newComb.updateHead(mn)
			newComb.obj = lcomb.obj.Clone()
			lcomb.lock.SharedUnlock(tid)
			continue
		}
		ln := mn.Next()
		u.hp.ProtectPtr(hpHead, ln, tid)
		if mn == mn.Next() {
			continue
		}
		ln.Apply(&newComb.obj)
		u.hp.ProtectPtr(hpNext, ln, tid)
		mn = ln
	}
	newComb.updateHead(mn)
	newComb.lock.Downgrade()

	for i := 0; i < u.maxThreads; i++ {
		lcomb = u.curComb.Load()
		if !lcomb.lock.SharedTryLock(tid) {
			continue
		}
		if lcomb.head.Ticket() >= myTicket {
			lcomb.lock.SharedUnlock(tid)
			if lcomb != u.curComb.Load() {
				continue
			}
			break
		}
		if u.curComb.CompareAndSwap(lcomb, newComb) {
			lcomb.lock.SetReadUnlock()
			node := lcomb.head
			lcomb.lock.SharedUnlock(tid)
			for node != mn {
				lnext := node.Next()
				u.preRetired[tid].Add(node)
				node = lnext
			}
			return myNode.Result()
		}
		lcomb.lock.SharedUnlock(tid)
	}
	newComb.lock.SetReadUnlock()
	return myNode.Result()
}

// ApplyRead returns the result of readFn applied to the current replica's
// state without mutating it. After maxReadTries failed attempts to take the
// shared lock on a stable current replica, the read is enqueued as if it
// were a mutation, guaranteeing it eventually completes.
func (u *UC[S, R]) ApplyRead(readFn func(*S) R, tid int) R {
	var myNode *mutqueue.Node[S, R]
	for i := 0; i < maxReadTries+u.maxThreads; i++ {
		lcomb := u.curComb.Load()
		if i == maxReadTries {
			myNode = mutqueue.NewNode[S, R](readFn, tid)
			u.hp.ProtectPtr(hpMyNode, myNode, tid)
			u.queue.Enqueue(myNode, tid)
		}
		if lcomb.lock.SharedTryLock(tid) {
			if lcomb == u.curComb.Load() {
				ret := readFn(&lcomb.obj)
				lcomb.lock.SharedUnlock(tid)
				return ret
			}
			lcomb.lock.SharedUnlock(tid)
		}
	}
	return myNode.Result()
}

// Close drains every thread's pre-retired ring. Callers must ensure no
// other goroutine is still calling ApplyUpdate/ApplyRead on this instance.
func (u *UC[S, R]) Close() {
	for _, r := range u.preRetired {
		r.Drain()
	}
}
