package monitor

import (
	"sync"

	"github.com/kolkov/monitor/internal/goid"
)

// waiter represents one blocked goroutine: either a contender for the lock
// or a goroutine suspended in a Cond wait. The releasing side assigns
// ownership (owner + depth) and then closes ready, so a woken goroutine
// resumes already holding the lock at its recorded depth.
type waiter struct {
	gid   int64
	depth int           // re-entry depth to restore on handoff
	ready chan struct{} // closed exactly once, on handoff
}

// Mutex is a re-entrant mutual-exclusion lock keyed on goroutine identity.
//
// The owning goroutine may call Lock repeatedly; each Lock must be balanced
// by an Unlock. The final Unlock hands the lock directly to the
// longest-waiting contender (strict FIFO, no barging).
//
// The zero value is an unlocked Mutex. A Mutex must not be copied after
// first use.
//
// Invariants (all guarded by mu):
//   - depth > 0 iff owner != 0
//   - owner == 0 implies queue is empty (release always hands off)
type Mutex struct {
	mu    sync.Mutex // guards the fields below and every bound Cond's queue
	owner int64      // owning goroutine ID, 0 = unowned
	depth int        // re-entry depth
	queue []*waiter  // blocked contenders, FIFO
}

// Lock acquires the lock, blocking until it is available.
//
// If the calling goroutine already owns the lock, Lock increments the
// re-entry depth and returns immediately.
func (m *Mutex) Lock() {
	gid := goid.ID()

	m.mu.Lock()
	if m.owner == gid {
		m.depth++
		m.mu.Unlock()
		return
	}
	if m.owner == 0 {
		m.owner = gid
		m.depth = 1
		m.mu.Unlock()
		return
	}
	w := &waiter{gid: gid, depth: 1, ready: make(chan struct{})}
	m.queue = append(m.queue, w)
	m.mu.Unlock()

	// Ownership and depth are assigned by the releasing goroutine before
	// ready is closed; nothing more to do here.
	<-w.ready
}

// TryLock attempts to acquire the lock without blocking. It returns true if
// the lock was acquired (including re-entry by the current owner) and false
// if another goroutine holds it.
func (m *Mutex) TryLock() bool {
	gid := goid.ID()

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.owner == gid:
		m.depth++
		return true
	case m.owner == 0:
		m.owner = gid
		m.depth = 1
		return true
	default:
		return false
	}
}

// Unlock releases one level of re-entry. When the depth reaches zero the
// lock is handed to the longest-waiting contender, if any.
//
// Unlock panics with a *NotOwnerError if the calling goroutine does not own
// the lock.
func (m *Mutex) Unlock() {
	gid := goid.ID()

	m.mu.Lock()
	if m.owner != gid {
		err := &NotOwnerError{Op: "Unlock", Goroutine: gid, Owner: m.owner}
		m.mu.Unlock()
		panic(err)
	}
	m.depth--
	if m.depth == 0 {
		m.handoff()
	}
	m.mu.Unlock()
}

// Do runs body while holding the lock, releasing it on every exit path:
// normal return, error return, or panic. It returns body's error unchanged.
func (m *Mutex) Do(body func() error) error {
	m.Lock()
	defer m.Unlock()
	return body()
}

// Locked reports whether any goroutine currently owns the lock.
func (m *Mutex) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner != 0
}

// Owned reports whether the calling goroutine owns the lock.
func (m *Mutex) Owned() bool {
	gid := goid.ID()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner == gid
}

// handoff transfers ownership to the head contender, or marks the lock
// unowned when no one is waiting. The caller must hold m.mu with depth
// already at zero.
func (m *Mutex) handoff() {
	if len(m.queue) == 0 {
		m.owner = 0
		return
	}
	w := m.queue[0]
	m.queue = m.queue[1:]
	m.owner = w.gid
	m.depth = w.depth
	close(w.ready)
}

// ownerCheck panics with a *NotOwnerError if gid does not own the lock.
// The caller must hold m.mu; the internal mutex is released before the
// panic propagates.
func (m *Mutex) ownerCheck(op string, gid int64) {
	if m.owner != gid {
		err := &NotOwnerError{Op: op, Goroutine: gid, Owner: m.owner}
		m.mu.Unlock()
		panic(err)
	}
}
