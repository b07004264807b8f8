package scheduling

import (
	"sync"

	"github.com/google/uuid"
)

// apptLocker serializes mutating operations per appointment. Contention is
// scoped to a single appointment; entries are dropped once the last holder
// releases so the map does not grow with appointment history.
type apptLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newApptLocker() *apptLocker {
	return &apptLocker{locks: make(map[uuid.UUID]*lockEntry)}
}

func (l *apptLocker) lock(id uuid.UUID) {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

func (l *apptLocker) unlock(id uuid.UUID) {
	l.mu.Lock()
	e := l.locks[id]
	e.refs--
	if e.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()

	e.mu.Unlock()
}
