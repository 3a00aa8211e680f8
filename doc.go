// Package monitor provides a re-entrant monitor lock with condition variables.
//
// A Monitor pairs an object-level mutual-exclusion lock with any number of
// condition variables, in the classic monitor style: the goroutine holding
// the lock may wait for a predicate while atomically releasing the lock, and
// other goroutines may signal it once the predicate could have changed.
//
// Unlike sync.Mutex, the lock is re-entrant: the owning goroutine may call
// Lock again without deadlocking itself, and must balance every Lock with an
// Unlock. Unlike sync.Cond, waits support timeouts, and the full re-entry
// depth is released during a wait and restored before the wait returns.
//
// # Quick Start
//
// Embed a Monitor into any type to give it monitor behaviour:
//
//	type queue struct {
//		monitor.Monitor
//		items []int
//	}
//
//	func (q *queue) pop(nonEmpty *monitor.Cond) int {
//		q.Enter()
//		defer q.Exit()
//		nonEmpty.WaitWhile(func() bool { return len(q.items) == 0 })
//		item := q.items[0]
//		q.items = q.items[1:]
//		return item
//	}
//
// Or use a Mutex and Cond directly:
//
//	var mu monitor.Mutex
//	cond := monitor.NewCond(&mu)
//
// # Ownership
//
// Every Mutex tracks its owning goroutine and re-entry depth. Operations
// that require ownership (Unlock, Signal, Broadcast, the wait family) panic
// with a *NotOwnerError when invoked by a goroutine that does not hold the
// lock, matching the runtime's own misuse panics for sync primitives. A
// timed-out wait is a normal return, not an error: the caller re-checks its
// predicate, which WaitWhile and WaitUntil do automatically.
//
// # Fairness
//
// Blocked lock contenders and condition waiters are queued and released in
// strict FIFO order. Release is a direct handoff: when the owner fully
// unlocks, ownership transfers to the head of the queue before any other
// goroutine can barge in.
//
// # Goroutine Identity
//
// Ownership is keyed on goroutine IDs obtained from internal/goid, which
// uses an assembly fast path on amd64/arm64 (~1-2ns) and falls back to
// runtime.Stack parsing elsewhere. See cmd/monitorctl's doctor command to
// verify fast-path support on a given toolchain.
package monitor
