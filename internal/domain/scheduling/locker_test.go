package scheduling

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestApptLocker_SerializesSameID(t *testing.T) {
	l := newApptLocker()
	id := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.lock(id)
			counter++
			l.unlock(id)
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}

func TestApptLocker_IndependentIDsDoNotBlock(t *testing.T) {
	l := newApptLocker()
	a, b := uuid.New(), uuid.New()

	l.lock(a)
	done := make(chan struct{})
	go func() {
		l.lock(b)
		l.unlock(b)
		close(done)
	}()
	<-done
	l.unlock(a)
}

func TestApptLocker_EntriesAreReclaimed(t *testing.T) {
	l := newApptLocker()
	id := uuid.New()

	l.lock(id)
	l.unlock(id)

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.locks) != 0 {
		t.Errorf("lock map holds %d entries after release, want 0", len(l.locks))
	}
}
