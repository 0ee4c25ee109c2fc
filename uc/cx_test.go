package uc

import (
	"sort"
	"sync"
	"testing"

	"cx/containers/intset"
)

func TestApplyUpdateSingleThreadSequential(t *testing.T) {
	u := NewUC[intset.Set, bool](intset.New(), 4)
	for _, v := range []int64{3, 1, 2} {
		v := v
		ok := u.ApplyUpdate(func(s *intset.Set) bool { return s.Add(v) }, 0)
		if !ok {
			t.Fatalf("Add(%d) should return true on first insert", v)
		}
	}
	contains := u.ApplyRead(func(s *intset.Set) bool { return s.Contains(2) }, 0)
	if !contains {
		t.Fatal("expected set to contain 2 after three adds")
	}
}

func TestApplyUpdateConcurrentAddsAllVisible(t *testing.T) {
	const threads = 8
	const perThread = 200
	u := NewUC[intset.Set, bool](intset.New(), threads)

	var wg sync.WaitGroup
	for tid := 0; tid < threads; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			for i := 0; i < perThread; i++ {
				key := int64(tid*perThread + i)
				u.ApplyUpdate(func(s *intset.Set) bool { return s.Add(key) }, tid)
			}
		}(tid)
	}
	wg.Wait()

	var seen []int64
	u.ApplyRead(func(s *intset.Set) bool {
		s.Ascend(func(v int64) bool {
			seen = append(seen, v)
			return true
		})
		return true
	}, 0)

	if len(seen) != threads*perThread {
		t.Fatalf("expected %d keys, got %d", threads*perThread, len(seen))
	}
	sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })
	for i, v := range seen {
		if v != int64(i) {
			t.Fatalf("expected dense 0..N-1 key sequence, got %d at index %d", v, i)
		}
	}
}

func TestApplyReadNeverObservesPartialMutation(t *testing.T) {
	const threads = 4
	const pairs = 200
	u := NewUC[intset.Set, bool](intset.New(), threads)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for i := 0; i < pairs; i++ {
			lo, hi := int64(2*i), int64(2*i+1)
			u.ApplyUpdate(func(s *intset.Set) bool {
				s.Add(lo)
				s.Add(hi)
				return true
			}, 0)
		}
	}()

	var badReads int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-writerDone:
				return
			default:
			}
			u.ApplyRead(func(s *intset.Set) bool {
				count := 0
				s.Ascend(func(int64) bool { count++; return true })
				if count%2 != 0 {
					badReads++
				}
				return true
			}, 1)
		}
	}()
	wg.Wait()

	if badReads != 0 {
		t.Fatalf("observed %d reads with an odd element count (torn mutation)", badReads)
	}
}

func TestUCSetFacade(t *testing.T) {
	s := NewUCSet[intset.Set, *intset.Set, int64](intset.New(), 4)
	if s.Contains(1, 0) {
		t.Fatal("empty set must not contain 1")
	}
	if !s.Add(1, 0) {
		t.Fatal("first add must return true")
	}
	if s.Add(1, 0) {
		t.Fatal("second add must return false")
	}
	if !s.Contains(1, 0) {
		t.Fatal("set must contain 1 after add")
	}
	if !s.Remove(1, 0) {
		t.Fatal("remove of present key must return true")
	}
	if s.Contains(1, 0) {
		t.Fatal("set must not contain 1 after remove")
	}
}

func TestTimedUCConcurrentAdds(t *testing.T) {
	const threads = 6
	const perThread = 150
	u := NewTimedUC[intset.Set, bool](intset.New(), threads)

	var wg sync.WaitGroup
	for tid := 0; tid < threads; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			for i := 0; i < perThread; i++ {
				key := int64(tid*perThread + i)
				u.ApplyUpdate(func(s *intset.Set) bool { return s.Add(key) }, tid)
			}
		}(tid)
	}
	wg.Wait()

	count := 0
	u.ApplyRead(func(s *intset.Set) bool {
		s.Ascend(func(int64) bool { count++; return true })
		return true
	}, 0)
	if count != threads*perThread {
		t.Fatalf("expected %d keys, got %d", threads*perThread, count)
	}
}
