// Package rwlock implements the strong try-lock reader-writer lock used to
// hand a Combined replica off between a writer and the readers that observe
// its just-published state.
//
// Unlike a plain sync.RWMutex, TryLock here never fails spuriously: a false
// return from SharedTryLock or ExclusiveTryLock is a durable signal that the
// caller should look elsewhere (try another replica), not retry the same
// one. That property is what lets the CX construct treat a failed try-lock
// as "move on" instead of "spin here".
package rwlock

import (
	"runtime"
	"sync/atomic"
)

func yield() { runtime.Gosched() }

// state values for the writer side of the lock.
const (
	noLock = uint64(0)
	hLock  = uint64(1)
	rLock  = uint64(2)
	wLock  = uint64(3)
)

const stateBits = 2
const stateMask = uint64(1)<<stateBits - 1

func pack(seq, state uint64) uint64 {
	return seq<<stateBits | state
}

func unpack(v uint64) (seq, state uint64) {
	return v >> stateBits, v & stateMask
}

// reader-indicator states, one slot per thread.
const (
	notReading = uint64(0)
	reading    = uint64(1)
)

// RWLock is the strong try-RW-lock with reader indicator from §4.C.
// All methods are safe for concurrent use; tid must be a stable slot in
// [0, maxThreads).
type RWLock struct {
	maxThreads int
	wstate     atomic.Uint64
	ri         []atomic.Uint64 // reader indicator, one entry per thread slot
}

// New creates a lock that starts in NOLOCK state.
func New(maxThreads int) *RWLock {
	return &RWLock{
		maxThreads: maxThreads,
		ri:         make([]atomic.Uint64, maxThreads),
	}
}

func (l *RWLock) riArrive(tid int)  { l.ri[tid].Store(reading) }
func (l *RWLock) riDepart(tid int)  { l.ri[tid].Store(notReading) }

// riRollbackArrive attempts to undo an arrive() that turned out to race
// with a writer. Returns true if the rollback was clean; false means a
// writer already observed this arrival and bumped it past "reading", so
// the caller's shared acquisition is still valid.
func (l *RWLock) riRollbackArrive(tid int) bool {
	// Go's Add returns the post-add value; the original's fetch_add(-1)
	// returns the pre-add value and compares it to READING. Pre == reading
	// iff post == notReading, so we compare the post-add value instead.
	return l.ri[tid].Add(^uint64(0)) == notReading
}

// riAbortRollback is the writer-side half of the handover: every reader
// currently mid-arrival is bumped so its own rollbackArrive sees it was
// already claimed, and must treat its shared lock as granted.
func (l *RWLock) riAbortRollback() {
	for i := range l.ri {
		l.ri[i].CompareAndSwap(reading, reading+1)
	}
}

func (l *RWLock) riIsEmpty() bool {
	for i := range l.ri {
		if l.ri[i].Load() != notReading {
			return false
		}
	}
	return true
}

// SharedTryLock attempts to acquire the lock in shared (reader) mode.
// Never fails spuriously: false means a writer genuinely holds WLOCK.
func (l *RWLock) SharedTryLock(tid int) bool {
	if _, state := unpack(l.wstate.Load()); state == wLock {
		return false
	}
	l.riArrive(tid)
	cur := l.wstate.Load()
	seq, state := unpack(cur)
	if state == hLock {
		if l.wstate.CompareAndSwap(cur, pack(seq, noLock)) {
			return true
		}
		cur = l.wstate.Load()
		_, state = unpack(cur)
	}
	if state != wLock {
		return true
	}
	return !l.riRollbackArrive(tid)
}

// SharedLock spins until SharedTryLock succeeds.
func (l *RWLock) SharedLock(tid int) {
	for !l.SharedTryLock(tid) {
		yield()
	}
}

// SharedUnlock releases a shared acquisition.
func (l *RWLock) SharedUnlock(tid int) {
	l.riDepart(tid)
}

// ExclusiveTryLock attempts to acquire the lock in exclusive (writer) mode.
// All failure paths are deterministic — no caller-side retry is needed to
// rule out a spurious failure.
func (l *RWLock) ExclusiveTryLock(tid int) bool {
	cur := l.wstate.Load()
	seq, state := unpack(cur)
	if state == wLock || state == rLock {
		return false
	}
	if !l.riIsEmpty() {
		return false
	}
	if state == hLock {
		if cur != l.wstate.Load() {
			return false
		}
		return l.wstate.CompareAndSwap(cur, pack(seq, wLock))
	}
	next := pack(seq+1, hLock)
	if !l.wstate.CompareAndSwap(cur, next) {
		return false
	}
	if !l.riIsEmpty() {
		return false
	}
	if l.wstate.Load() != next {
		return false
	}
	nseq, _ := unpack(next)
	return l.wstate.CompareAndSwap(next, pack(nseq, wLock))
}

// ExclusiveLock spins until ExclusiveTryLock succeeds.
func (l *RWLock) ExclusiveLock(tid int) {
	for !l.ExclusiveTryLock(tid) {
		yield()
	}
}

// ExclusiveUnlock fully releases an exclusive acquisition, performing the
// handover (RLOCK) step internally before returning to NOLOCK.
func (l *RWLock) ExclusiveUnlock() {
	seq, _ := unpack(l.wstate.Load())
	l.wstate.Store(pack(seq, rLock))
	l.riAbortRollback()
	l.wstate.Store(pack(seq, noLock))
}

// Downgrade moves an exclusive holder to the handover (RLOCK) state,
// invalidating any shared acquisition that is still mid-flight, without
// yet releasing to NOLOCK. The holder must call SetReadUnlock (or
// ExclusiveUnlock's tail half, via SetReadUnlock) to finish releasing.
func (l *RWLock) Downgrade() {
	seq, _ := unpack(l.wstate.Load())
	l.wstate.Store(pack(seq, rLock))
	l.riAbortRollback()
}

// SetReadLock forces the lock directly into the handover (RLOCK) state.
// Used only at construction time, to seed a replica that starts out
// "current" without ever having been exclusively acquired.
func (l *RWLock) SetReadLock() {
	seq, _ := unpack(l.wstate.Load())
	l.wstate.Store(pack(seq, rLock))
}

// SetReadUnlock moves the lock from RLOCK back to NOLOCK.
func (l *RWLock) SetReadUnlock() {
	seq, _ := unpack(l.wstate.Load())
	l.wstate.Store(pack(seq, noLock))
}

// SharedGuard is a scoped shared-lock acquisition: Release is idempotent
// and safe to call from a defer, resolving the "exactly once, on every
// exit path" requirement the original get_combined relied on informally.
type SharedGuard struct {
	lock *RWLock
	tid  int
	held bool
}

// AcquireShared returns a released guard if the try-lock failed, or a held
// guard on success. Callers should always defer Release.
func AcquireShared(l *RWLock, tid int) (SharedGuard, bool) {
	ok := l.SharedTryLock(tid)
	return SharedGuard{lock: l, tid: tid, held: ok}, ok
}

// Release unlocks at most once, regardless of how many times it is called.
func (g *SharedGuard) Release() {
	if !g.held {
		return
	}
	g.held = false
	g.lock.SharedUnlock(g.tid)
}
