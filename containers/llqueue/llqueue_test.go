package llqueue

import "testing"

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := New[int]()
	for _, v := range []int{1, 2, 3} {
		q.Enqueue(v)
	}
	for _, want := range []int{1, 2, 3} {
		got, ok := q.Dequeue()
		if !ok || got != want {
			t.Fatalf("expected (%d, true), got (%d, %v)", want, got, ok)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("dequeue on empty queue must return false")
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	q := New[string]()
	q.Enqueue("a")
	if v, ok := q.Peek(); !ok || v != "a" {
		t.Fatalf("expected (a, true), got (%s, %v)", v, ok)
	}
	if q.Len() != 1 {
		t.Fatalf("peek must not change length, got %d", q.Len())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	q := New[int]()
	q.Enqueue(1)
	q.Enqueue(2)
	clone := q.Clone()
	clone.Enqueue(3)
	if q.Len() != 2 {
		t.Fatalf("mutating the clone must not affect the original, got len %d", q.Len())
	}
	if clone.Len() != 3 {
		t.Fatalf("expected clone len 3, got %d", clone.Len())
	}
}
