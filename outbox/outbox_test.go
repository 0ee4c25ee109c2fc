package outbox

import "testing"

func TestPutUpdateDelete(t *testing.T) {
	o, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer o.Close()

	if err := o.PutNew(42); err != nil {
		t.Fatalf("PutNew: %v", err)
	}
	e, err := o.Get(42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.State != StateNew {
		t.Fatalf("expected StateNew, got %v", e.State)
	}

	if err := o.UpdateState(42, StateSent, 1); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	e, err = o.Get(42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.State != StateSent || e.Retries != 1 {
		t.Fatalf("expected Sent/1 retries, got %v/%d", e.State, e.Retries)
	}

	if err := o.Delete(42); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := o.Get(42); err == nil {
		t.Fatal("expected an error getting a deleted entry")
	}
}

func TestScanByState(t *testing.T) {
	o, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer o.Close()

	for _, ticket := range []uint64{1, 2, 3} {
		if err := o.PutNew(ticket); err != nil {
			t.Fatalf("PutNew(%d): %v", ticket, err)
		}
	}
	if err := o.UpdateState(2, StateSent, 0); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}

	var pending []uint64
	err = o.ScanByState(StateNew, func(ticket uint64, e Entry) error {
		pending = append(pending, ticket)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanByState: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending entries, got %d: %v", len(pending), pending)
	}
}
