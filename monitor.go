package monitor

// Monitor grants monitor behaviour to any type that embeds it: a single
// re-entrant lock plus a factory for condition variables that share its
// mutual-exclusion domain.
//
//	type account struct {
//		monitor.Monitor
//		balance int
//	}
//
// The zero value is ready to use; no constructor or explicit initialization
// is required, and every Cond created through NewCond is bound to the same
// embedded lock. A Monitor must not be copied after first use.
type Monitor struct {
	mu Mutex
}

// Enter acquires the monitor lock, blocking until it is available.
// Re-entry by the owning goroutine increments the re-entry depth.
func (mon *Monitor) Enter() {
	mon.mu.Lock()
}

// Exit releases one level of re-entry. It panics with a *NotOwnerError if
// the calling goroutine does not own the monitor.
func (mon *Monitor) Exit() {
	mon.mu.Unlock()
}

// TryEnter attempts to acquire the monitor lock without blocking.
func (mon *Monitor) TryEnter() bool {
	return mon.mu.TryLock()
}

// Do runs body inside the monitor, releasing the lock on every exit path
// and returning body's error unchanged.
func (mon *Monitor) Do(body func() error) error {
	return mon.mu.Do(body)
}

// Locked reports whether any goroutine currently holds the monitor.
func (mon *Monitor) Locked() bool {
	return mon.mu.Locked()
}

// Owned reports whether the calling goroutine holds the monitor.
func (mon *Monitor) Owned() bool {
	return mon.mu.Owned()
}

// NewCond returns a new condition variable bound to this monitor's lock.
func (mon *Monitor) NewCond() *Cond {
	return NewCond(&mon.mu)
}
