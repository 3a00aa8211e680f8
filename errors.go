package monitor

import "fmt"

// NotOwnerError reports an ownership violation: an operation that requires
// holding the lock (Unlock, Signal, Broadcast, Wait and friends) was invoked
// by a goroutine that is not the current owner.
//
// The error is delivered by panic, never by silent corruption. It carries
// enough context to identify both sides of the violation:
//
//	monitor: Unlock by goroutine 42: lock owned by goroutine 7
//
// Fields:
//   - Op: Operation that required ownership ("Unlock", "Signal", ...)
//   - Goroutine: ID of the violating goroutine
//   - Owner: ID of the current owner, 0 if the lock is unowned
//
// Thread Safety: Immutable after creation, safe for concurrent use.
type NotOwnerError struct {
	Op        string // operation that required ownership
	Goroutine int64  // calling goroutine ID
	Owner     int64  // current owner ID, 0 if unowned
}

// Error implements the error interface.
func (e *NotOwnerError) Error() string {
	if e.Owner == 0 {
		return fmt.Sprintf("monitor: %s by goroutine %d: lock is not held", e.Op, e.Goroutine)
	}
	return fmt.Sprintf("monitor: %s by goroutine %d: lock owned by goroutine %d", e.Op, e.Goroutine, e.Owner)
}
