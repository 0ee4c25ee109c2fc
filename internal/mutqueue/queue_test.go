package mutqueue

import (
	"sort"
	"sync"
	"testing"

	"cx/internal/hazard"
)

func newTestQueue(maxThreads int) (*Queue[int, bool], *hazard.Table[Node[int, bool]]) {
	hp := hazard.New[Node[int, bool]](5, maxThreads, 1,
		func(n *Node[int, bool]) bool { return n.SelfLinked() },
		func(n *Node[int, bool]) int32 { return n.ORC() },
	)
	sentinel := NewNode[int, bool](func(*int) bool { return false }, 0)
	q := New[int, bool](hp, 0, 1, maxThreads, sentinel)
	return q, hp
}

func TestEnqueueSingleThreadTicketsIncrease(t *testing.T) {
	q, _ := newTestQueue(4)
	for i := 0; i < 10; i++ {
		n := NewNode[int, bool](func(*int) bool { return true }, 0)
		q.Enqueue(n, 0)
		if n.Ticket() != uint64(i+1) {
			t.Fatalf("expected ticket %d, got %d", i+1, n.Ticket())
		}
	}
}

func TestEnqueueConcurrentTicketsAreUniqueAndDense(t *testing.T) {
	const threads = 8
	const perThread = 500
	q, _ := newTestQueue(threads)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var tickets []uint64

	for tid := 0; tid < threads; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			for i := 0; i < perThread; i++ {
				n := NewNode[int, bool](func(*int) bool { return true }, tid)
				q.Enqueue(n, tid)
				mu.Lock()
				tickets = append(tickets, n.Ticket())
				mu.Unlock()
			}
		}(tid)
	}
	wg.Wait()

	sort.Slice(tickets, func(i, j int) bool { return tickets[i] < tickets[j] })
	for i, tk := range tickets {
		if tk != uint64(i+1) {
			t.Fatalf("tickets must be a dense 1..N sequence; at index %d got %d", i, tk)
		}
	}
}
