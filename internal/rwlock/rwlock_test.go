package rwlock

import (
	"sync"
	"testing"
)

func TestExclusiveExcludesExclusive(t *testing.T) {
	l := New(4)
	if !l.ExclusiveTryLock(0) {
		t.Fatal("expected first exclusive try-lock to succeed")
	}
	if l.ExclusiveTryLock(1) {
		t.Fatal("expected second exclusive try-lock to fail while held")
	}
	l.ExclusiveUnlock()
	if !l.ExclusiveTryLock(1) {
		t.Fatal("expected exclusive try-lock to succeed after unlock")
	}
}

func TestSharedBlockedByExclusive(t *testing.T) {
	l := New(4)
	if !l.ExclusiveTryLock(0) {
		t.Fatal("expected exclusive lock")
	}
	if l.SharedTryLock(1) {
		t.Fatal("shared try-lock must fail while WLOCK is held")
	}
	l.ExclusiveUnlock()
	if !l.SharedTryLock(1) {
		t.Fatal("shared try-lock should succeed once the writer released")
	}
	l.SharedUnlock(1)
}

func TestDowngradeAllowsReaders(t *testing.T) {
	l := New(4)
	if !l.ExclusiveTryLock(0) {
		t.Fatal("expected exclusive lock")
	}
	l.Downgrade()
	if !l.SharedTryLock(1) {
		t.Fatal("readers should be let in after downgrade")
	}
	l.SharedUnlock(1)
	l.SetReadUnlock()
	if !l.ExclusiveTryLock(0) {
		t.Fatal("exclusive lock should be re-acquirable after handover ends")
	}
}

func TestExclusiveRequiresEmptyReaderIndicator(t *testing.T) {
	l := New(4)
	if !l.SharedTryLock(1) {
		t.Fatal("expected shared lock")
	}
	if l.ExclusiveTryLock(0) {
		t.Fatal("exclusive try-lock must fail while a reader is present")
	}
	l.SharedUnlock(1)
	if !l.ExclusiveTryLock(0) {
		t.Fatal("exclusive try-lock should succeed once readers depart")
	}
}

func TestConcurrentExclusiveMutualExclusion(t *testing.T) {
	l := New(8)
	var counter int64
	var wg sync.WaitGroup
	for tid := 0; tid < 8; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				l.ExclusiveLock(tid)
				counter++
				l.ExclusiveUnlock()
			}
		}(tid)
	}
	wg.Wait()
	if counter != 8*2000 {
		t.Fatalf("lost updates under exclusive lock: got %d", counter)
	}
}
