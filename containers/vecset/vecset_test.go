package vecset

import "testing"

func TestAddContainsRemove(t *testing.T) {
	s := New[int]()
	if s.Contains(5) {
		t.Fatal("empty set must not contain 5")
	}
	if !s.Add(5) {
		t.Fatal("first add of 5 must return true")
	}
	if s.Add(5) {
		t.Fatal("second add of 5 must return false")
	}
	if !s.Remove(5) {
		t.Fatal("first remove of 5 must return true")
	}
	if s.Remove(5) {
		t.Fatal("second remove of 5 must return false")
	}
}

func TestAscendStaysSorted(t *testing.T) {
	s := New[int]()
	for _, v := range []int{9, 3, 7, 1, 8} {
		s.Add(v)
	}
	var got []int
	s.Ascend(func(v int) bool {
		got = append(got, v)
		return true
	})
	want := []int{1, 3, 7, 8, 9}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := New[int]()
	s.Add(1)
	s.Add(2)
	clone := s.Clone()
	clone.Add(3)
	if s.Contains(3) {
		t.Fatal("mutating the clone must not affect the original")
	}
	if s.Len() != 2 || clone.Len() != 3 {
		t.Fatalf("unexpected lengths: original=%d clone=%d", s.Len(), clone.Len())
	}
}
