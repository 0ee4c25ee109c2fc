// Package hazard implements the hazard-pointer reclamation scheme used by
// the CX construct, extended with ownership-reference counts (ORCs) so that
// a node can be safely self-linked and reclaimed even while a replica head
// still points at it.
//
// A plain Michael-style hazard-pointer table is not enough here: a retired
// mutation node can still be the `head` of a Combined replica that nobody
// is currently walking. The extension in Retire adds two extra conditions
// (ORC == 0 and self-linked) on top of the usual "no hazard slot points at
// it" check — see §4.A of the design notes this package implements.
package hazard

import "sync/atomic"

// DefaultSlotsPerThread mirrors the core's K=5 from the design (one slot
// each for ltail, ltailNext, head, next, and the submitter's own node).
// Collaborator containers that only need Michael-style HP reclamation use
// fewer slots; callers pick maxHPs at construction time.
const DefaultSlotsPerThread = 5

// Table is a hazard-pointer + ORC reclaimer over nodes of type T.
// selfLinked and refCount let Table inspect the two extra retirement
// preconditions without needing T to satisfy an exported interface (T is
// typically an internal node type with unexported fields).
type Table[T any] struct {
	maxThreads int
	maxHPs     int
	threshold  int

	slots   []atomic.Pointer[T] // maxThreads*maxHPs, row-major by thread
	retired [][]*T              // per-thread retire lists, thread-local

	selfLinked func(*T) bool
	refCount   func(*T) int32
}

// New creates a reclaimer for maxThreads threads with maxHPs hazard slots
// each. selfLinked reports whether a node's next pointer has been set to
// itself (fully retired from the mutation list's point of view); refCount
// reports its current ORC. threshold is the retire-list size at which a
// thread's Retire call scans for reclaimable nodes (0 scans every call).
func New[T any](maxHPs, maxThreads, threshold int, selfLinked func(*T) bool, refCount func(*T) int32) *Table[T] {
	return &Table[T]{
		maxThreads: maxThreads,
		maxHPs:     maxHPs,
		threshold:  threshold,
		slots:      make([]atomic.Pointer[T], maxThreads*maxHPs),
		retired:    make([][]*T, maxThreads),
		selfLinked: selfLinked,
		refCount:   refCount,
	}
}

func (t *Table[T]) slot(tid, index int) *atomic.Pointer[T] {
	return &t.slots[tid*t.maxHPs+index]
}

// Protect repeatedly loads atom and republishes it into hazard slot index
// until a stable value is observed, so the returned pointer is guaranteed
// protected at the moment it's handed back. Progress: lock-free.
func (t *Table[T]) Protect(index int, atom *atomic.Pointer[T], tid int) *T {
	s := t.slot(tid, index)
	var n *T
	for {
		ret := atom.Load()
		if ret == n {
			return ret
		}
		s.Store(ret)
		n = ret
	}
}

// ProtectPtr unconditionally publishes ptr into hazard slot index.
// Progress: wait-free population-oblivious.
func (t *Table[T]) ProtectPtr(index int, ptr *T, tid int) *T {
	t.slot(tid, index).Store(ptr)
	return ptr
}

// Clear nulls every hazard slot owned by tid. Progress: wait-free bounded
// by maxHPs.
func (t *Table[T]) Clear(tid int) {
	for i := 0; i < t.maxHPs; i++ {
		t.slot(tid, i).Store(nil)
	}
}

// ClearOne nulls a single hazard slot owned by tid.
func (t *Table[T]) ClearOne(index, tid int) {
	t.slot(tid, index).Store(nil)
}

// Retire appends ptr to tid's thread-local retire list and, once the list
// reaches threshold, scans it for nodes that are safe to physically free:
// no thread's hazard slot points at the node, its ORC is zero, and it has
// been self-linked. Nodes failing any check are left for a future pass.
// Progress: wait-free bounded in maxThreads*maxHPs.
func (t *Table[T]) Retire(ptr *T, tid int) {
	list := append(t.retired[tid], ptr)
	t.retired[tid] = list
	if len(list) < t.threshold {
		return
	}
	t.scan(tid)
}

func (t *Table[T]) scan(tid int) {
	list := t.retired[tid]
	out := list[:0]
	for _, obj := range list {
		if !t.selfLinked(obj) {
			out = append(out, obj)
			continue
		}
		if t.refCount(obj) != 0 || t.isHazarded(obj) {
			out = append(out, obj)
			continue
		}
		// eligible: drop from the list, let the GC reclaim it.
	}
	t.retired[tid] = out
}

func (t *Table[T]) isHazarded(obj *T) bool {
	for it := 0; it < t.maxThreads; it++ {
		for ihp := 0; ihp < t.maxHPs; ihp++ {
			if t.slot(it, ihp).Load() == obj {
				return true
			}
		}
	}
	return false
}
