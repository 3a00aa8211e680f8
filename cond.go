package monitor

import (
	"time"

	"github.com/kolkov/monitor/internal/goid"
)

// Cond is a condition variable bound to exactly one Mutex. Goroutines
// holding the Mutex may suspend on the Cond until another lock holder
// signals or broadcasts, or until a timeout elapses.
//
// A wait releases the full re-entry depth of the Mutex while suspended and
// restores it before returning, so a wait-family call always returns (or
// panics) with the caller holding the lock exactly as it did before.
//
// Waiters are woken in FIFO order. A woken goroutine does not resume until
// it has reacquired the Mutex, so Signal and Broadcast are safe to call
// while still holding the lock.
//
// All Cond state is guarded by the bound Mutex's internal mutex; a Cond
// must not be used with any Mutex other than the one it was created for.
type Cond struct {
	m     *Mutex
	queue []*waiter // suspended waiters, FIFO; guarded by m.mu
}

// NewCond returns a new Cond bound to m.
func NewCond(m *Mutex) *Cond {
	return &Cond{m: m}
}

// Wait atomically releases the Mutex (all re-entry levels), suspends the
// calling goroutine, and reacquires the Mutex at the saved depth once woken
// by Signal or Broadcast.
//
// Wait panics with a *NotOwnerError if the caller does not own the Mutex.
// Wakeups say nothing about the caller's predicate; re-check it in a loop
// or use WaitWhile / WaitUntil.
func (c *Cond) Wait() {
	c.await(nil)
}

// WaitTimeout is Wait with an upper bound on the suspension. It returns
// false iff the timeout elapsed before a Signal or Broadcast arrived.
//
// A timeout is a normal return, not an error: the Mutex is reacquired at
// the saved depth either way, and the caller re-checks its predicate. A
// timeout that races with a Signal consumes the signal and reports a normal
// wakeup. Non-positive timeouts behave like an immediate timeout.
func (c *Cond) WaitTimeout(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	return c.await(t.C)
}

// WaitWhile waits repeatedly while pred returns true, re-evaluating it
// after every wakeup. pred is always evaluated with the Mutex held.
//
// WaitWhile panics with a *NotOwnerError if the caller does not own the
// Mutex, even when pred is already false.
func (c *Cond) WaitWhile(pred func() bool) {
	c.ownedCheck("WaitWhile")
	for pred() {
		c.Wait()
	}
}

// WaitUntil waits repeatedly until pred returns true. It is the dual of
// WaitWhile and carries the same ownership requirement.
func (c *Cond) WaitUntil(pred func() bool) {
	c.ownedCheck("WaitUntil")
	for !pred() {
		c.Wait()
	}
}

// Signal wakes the earliest-enqueued waiter, if any. The woken goroutine
// resumes only after reacquiring the Mutex. Calling Signal with no waiters
// is a no-op.
//
// Signal panics with a *NotOwnerError if the caller does not own the Mutex.
func (c *Cond) Signal() {
	gid := goid.ID()
	m := c.m

	m.mu.Lock()
	m.ownerCheck("Signal", gid)
	if len(c.queue) > 0 {
		w := c.queue[0]
		c.queue = c.queue[1:]
		m.queue = append(m.queue, w)
	}
	m.mu.Unlock()
}

// Broadcast wakes all current waiters. Each reacquires the Mutex serially,
// in the order it originally began waiting. Calling Broadcast with no
// waiters is a no-op.
//
// Broadcast panics with a *NotOwnerError if the caller does not own the
// Mutex.
func (c *Cond) Broadcast() {
	gid := goid.ID()
	m := c.m

	m.mu.Lock()
	m.ownerCheck("Broadcast", gid)
	if len(c.queue) > 0 {
		m.queue = append(m.queue, c.queue...)
		c.queue = nil
	}
	m.mu.Unlock()
}

// await implements the wait family. A nil timeout channel means wait
// indefinitely. It returns false iff the wait timed out.
func (c *Cond) await(timeout <-chan time.Time) bool {
	gid := goid.ID()
	m := c.m

	m.mu.Lock()
	m.ownerCheck("Wait", gid)
	w := &waiter{gid: gid, depth: m.depth, ready: make(chan struct{})}
	m.depth = 0
	m.handoff() // release: next lock contender may proceed
	c.queue = append(c.queue, w)
	m.mu.Unlock()

	select {
	case <-w.ready:
		return true
	case <-timeout:
	}

	// Timed out. If the waiter is still queued on the Cond, pull it off and
	// reacquire the lock ourselves. If a Signal or Broadcast dequeued it
	// first, the handoff is already in flight: consume it and report a
	// normal wakeup.
	m.mu.Lock()
	if !c.remove(w) {
		m.mu.Unlock()
		<-w.ready
		return true
	}
	if m.owner == 0 {
		m.owner = w.gid
		m.depth = w.depth
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, w)
	m.mu.Unlock()
	<-w.ready
	return false
}

// ownedCheck panics with a *NotOwnerError if the caller does not own the
// bound Mutex.
func (c *Cond) ownedCheck(op string) {
	gid := goid.ID()
	c.m.mu.Lock()
	c.m.ownerCheck(op, gid)
	c.m.mu.Unlock()
}

// remove unlinks w from the wait queue, reporting whether it was present.
// The caller must hold m.mu.
func (c *Cond) remove(w *waiter) bool {
	for i, q := range c.queue {
		if q == w {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return true
		}
	}
	return false
}
