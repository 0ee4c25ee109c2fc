package llrbmap

import "testing"

type intVal int

func (v intVal) Clone() intVal { return v }

func TestPutGetDelete(t *testing.T) {
	m := New[intVal]()
	m.Put(5, 50)
	m.Put(2, 20)
	m.Put(8, 80)

	if v, ok := m.Get(5); !ok || *v != 50 {
		t.Fatalf("expected 50, got %v ok=%v", v, ok)
	}
	if !m.Delete(2) {
		t.Fatal("expected Delete(2) to succeed")
	}
	if _, ok := m.Get(2); ok {
		t.Fatal("expected key 2 to be gone")
	}
	if m.Len() != 2 {
		t.Fatalf("expected len 2, got %d", m.Len())
	}
}

func TestMinMax(t *testing.T) {
	m := New[intVal]()
	for _, k := range []int64{5, 2, 8, 1, 9} {
		m.Put(k, intVal(k*10))
	}
	if k, _, ok := m.Min(); !ok || k != 1 {
		t.Fatalf("expected min key 1, got %d ok=%v", k, ok)
	}
	if k, _, ok := m.Max(); !ok || k != 9 {
		t.Fatalf("expected max key 9, got %d ok=%v", k, ok)
	}
}

func TestAscendOrder(t *testing.T) {
	m := New[intVal]()
	for _, k := range []int64{5, 2, 8, 1, 9, 3} {
		m.Put(k, intVal(k))
	}
	var got []int64
	m.AscendFromMin(func(k int64, v *intVal) bool {
		got = append(got, k)
		return true
	})
	want := []int64{1, 2, 3, 5, 8, 9}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestGetOrInsert(t *testing.T) {
	m := New[intVal]()
	v := m.GetOrInsert(4, func() intVal { return 40 })
	if *v != 40 {
		t.Fatalf("expected 40, got %v", *v)
	}
	*v = 41
	v2, _ := m.Get(4)
	if *v2 != 41 {
		t.Fatalf("expected mutation through pointer to persist, got %v", *v2)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := New[intVal]()
	m.Put(1, 10)
	clone := m.Clone()
	m.Put(1, 99)
	if v, _ := clone.Get(1); *v != 10 {
		t.Fatalf("expected clone unaffected by mutation, got %v", *v)
	}
}
