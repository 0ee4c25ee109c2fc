package intset

import (
	"math/rand"
	"sort"
	"testing"
)

func TestAddContainsRemove(t *testing.T) {
	s := New()
	if s.Contains(5) {
		t.Fatal("empty set must not contain 5")
	}
	if !s.Add(5) {
		t.Fatal("first add of 5 must return true")
	}
	if s.Add(5) {
		t.Fatal("second add of 5 must return false")
	}
	if !s.Contains(5) {
		t.Fatal("set must contain 5 after add")
	}
	if !s.Remove(5) {
		t.Fatal("first remove of 5 must return true")
	}
	if s.Remove(5) {
		t.Fatal("second remove of 5 must return false")
	}
	if s.Contains(5) {
		t.Fatal("set must not contain 5 after remove")
	}
}

func TestAscendOrder(t *testing.T) {
	s := New()
	values := []int64{9, 3, 7, 1, 8, 2, 6, 4, 5}
	for _, v := range values {
		s.Add(v)
	}
	var got []int64
	s.Ascend(func(v int64) bool {
		got = append(got, v)
		return true
	})
	want := append([]int64(nil), values...)
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("at index %d expected %d got %d", i, want[i], got[i])
		}
	}
}

func TestMinMax(t *testing.T) {
	s := New()
	if _, ok := s.Min(); ok {
		t.Fatal("empty set must have no min")
	}
	for _, v := range []int64{30, 10, 20} {
		s.Add(v)
	}
	if v, ok := s.Min(); !ok || v != 10 {
		t.Fatalf("expected min 10, got %d (%v)", v, ok)
	}
	if v, ok := s.Max(); !ok || v != 30 {
		t.Fatalf("expected max 30, got %d (%v)", v, ok)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := New()
	for _, v := range []int64{1, 2, 3} {
		s.Add(v)
	}
	clone := s.Clone()
	clone.Add(4)
	if s.Contains(4) {
		t.Fatal("mutating the clone must not affect the original")
	}
	if !clone.Contains(4) {
		t.Fatal("clone must contain its own addition")
	}
	if s.Len() != 3 || clone.Len() != 4 {
		t.Fatalf("unexpected lengths: original=%d clone=%d", s.Len(), clone.Len())
	}
}

func TestRandomizedAgainstReferenceSet(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	reference := map[int64]bool{}
	s := New()
	for i := 0; i < 5000; i++ {
		key := int64(rng.Intn(200))
		if rng.Intn(2) == 0 {
			want := !reference[key]
			reference[key] = true
			if got := s.Add(key); got != want {
				t.Fatalf("Add(%d) = %v, want %v", key, got, want)
			}
		} else {
			want := reference[key]
			delete(reference, key)
			if got := s.Remove(key); got != want {
				t.Fatalf("Remove(%d) = %v, want %v", key, got, want)
			}
		}
	}
	for key, present := range reference {
		if present && !s.Contains(key) {
			t.Fatalf("expected set to contain %d", key)
		}
	}
	if s.Len() != len(reference) {
		t.Fatalf("expected len %d, got %d", len(reference), s.Len())
	}
}
