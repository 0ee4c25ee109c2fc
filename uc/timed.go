package uc

import (
	"fmt"
	"sync/atomic"
	"time"

	"cx/internal/hazard"
	"cx/internal/mutqueue"
	"cx/internal/preret"
	"cx/internal/rwlock"
)

// maxSpinCombs bounds how many of the low replica indices getNewComb spins
// on before falling back to the elapsed-time heuristic.
const maxSpinCombs = 4

// TimedUC is the same construct as UC, but getNewComb (the search for a
// spare replica to mutate into) uses a running estimate of how long a
// Clone() takes to decide how long to keep spinning on the first few
// replicas before scanning the rest of the array. On a workload where
// clones are expensive, this avoids burning CPU re-scanning combs that
// are all still busy; on a workload where clones are cheap, it gives up
// on the fast path quickly.
type TimedUC[S Cloneable[S], R any] struct {
	maxThreads int
	maxCombs   int

	curComb   atomic.Pointer[combined[S, R]]
	combs     []combined[S, R]
	numCopies atomic.Uint64
	copyTime  atomic.Int64 // nanoseconds, last observed Clone() duration

	sentinel *mutqueue.Node[S, R]
	queue    *mutqueue.Queue[S, R]

	hp         *hazard.Table[mutqueue.Node[S, R]]
	preRetired []*preret.Ring[mutqueue.Node[S, R]]
}

// NewTimedUC builds a timed construct seeded from inst. See NewUC for the
// meaning of maxThreads.
func NewTimedUC[S Cloneable[S], R any](inst S, maxThreads int) *TimedUC[S, R] {
	sentinel := mutqueue.NewNode[S, R](func(*S) R { var zero R; return zero }, 0)

	selfLinked := func(n *mutqueue.Node[S, R]) bool { return n.SelfLinked() }
	refCount := func(n *mutqueue.Node[S, R]) int32 { return n.ORC() }
	hp := hazard.New[mutqueue.Node[S, R]](hpSlots, maxThreads, maxThreads, selfLinked, refCount)

	maxCombs := maxSpinCombs
	if 2*maxThreads < maxCombs {
		maxCombs = 2 * maxThreads
	}

	u := &TimedUC[S, R]{
		maxThreads: maxThreads,
		maxCombs:   maxCombs,
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

// NumCopies reports how many full Clone() calls this instance has made so
// far, for observability (grounded on the original's own copy counter).
func (u *TimedUC[S, R]) NumCopies() uint64 { return u.numCopies.Load() }

// CopyTime reports the most recently observed Clone() duration, the same
// running estimate getNewComb uses to decide how long to spin before
// widening its replica search.
func (u *TimedUC[S, R]) CopyTime() time.Duration { return time.Duration(u.copyTime.Load()) }

func (u *TimedUC[S, R]) getCombined(myTicket uint64, tid int) *combined[S, R] {
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

// getNewComb finds a spare replica to mutate into. It first spins briefly
// on the first maxCombs replicas (cheap when clones are fast), then, once
// the elapsed time exceeds twice the last observed clone duration, widens
// the search to every replica. myNode.Done() aborts the search early if
// another thread's walk has already reached past this node.
func (u *TimedUC[S, R]) getNewComb(myNode *mutqueue.Node[S, R], tid int) *combined[S, R] {
	startTime := time.Now()
	for ispin := 0; ispin < 10; ispin++ {
		for j := 0; j < u.maxCombs; j++ {
			if myNode.Done() {
				return nil
			}
			if u.combs[j].lock.ExclusiveTryLock(tid) {
				return &u.combs[j]
			}
		}
	}

	for {
		elapsed := time.Since(startTime)
		last := time.Duration(u.copyTime.Load())
		if elapsed >= last*2 {
			break
		}
		for i := 0; i < u.maxCombs; i++ {
			if myNode.Done() {
				return nil
			}
			if u.combs[i].lock.ExclusiveTryLock(tid) {
				return &u.combs[i]
			}
		}
	}

	for i := range u.combs {
		if myNode.Done() {
			return nil
		}
		if u.combs[i].lock.ExclusiveTryLock(tid) {
			return &u.combs[i]
		}
	}
	return nil
}

// copyDS clones from into newComb.obj, recording how long the clone took
// so future getNewComb calls can size their spin window.
func (u *TimedUC[S, R]) copyDS(newComb, from *combined[S, R]) {
	start := time.Now()
	newComb.obj = from.obj.Clone()
	u.copyTime.Store(int64(time.Since(start)))
}

// ApplyUpdate is identical in structure to UC.ApplyUpdate, differing only
// in how a spare replica is obtained (getNewComb's timed heuristic) and in
// marking retired nodes Done so a concurrent getNewComb can bail out early.
func (u *TimedUC[S, R]) ApplyUpdate(mutate func(*S) R, tid int) R {
	myNode := mutqueue.NewNode[S, R](mutate, tid)
	u.hp.ProtectPtr(hpMyNode, myNode, tid)
	u.queue.Enqueue(myNode, tid)
	myTicket := myNode.Ticket()

	newComb := u.getNewComb(myNode, tid)
	if newComb == nil {
		if myNode.Done() {
			return myNode.Result()
		}
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
			retried := lcomb != nil
			if !retried && !myNode.Done() {
				lcomb = u.getCombined(myTicket, tid)
			}
			if retried || lcomb == nil {
				if mn != nil {
					newComb.updateHead(mn)
				}
				newComb.lock.ExclusiveUnlock()
				return myNode.Result()
			}
			u.numCopies.Add(1)
			mn = lcomb.head
			newComb.updateHead(mn)
			u.copyDS(newComb, lcomb)
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
				node.MarkDone()
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

// ApplyRead is identical to UC.ApplyRead.
func (u *TimedUC[S, R]) ApplyRead(readFn func(*S) R, tid int) R {
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

// Close drains every thread's pre-retired ring.
func (u *TimedUC[S, R]) Close() {
	for _, r := range u.preRetired {
		r.Drain()
	}
}
