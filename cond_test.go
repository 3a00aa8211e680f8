package monitor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/kolkov/monitor"
)

// TestCondProducerConsumer is the canonical two-goroutine scenario: a
// consumer waits while the buffer is empty, a producer pushes an item and
// signals. The consumer must never observe an empty buffer after WaitWhile
// returns.
func TestCondProducerConsumer(t *testing.T) {
	var mu monitor.Mutex
	cond := monitor.NewCond(&mu)

	var buffer []int
	got := make(chan int, 1)

	go func() {
		mu.Lock()
		cond.WaitWhile(func() bool { return len(buffer) == 0 })
		v := buffer[0]
		buffer = buffer[1:]
		mu.Unlock()
		got <- v
	}()

	mu.Lock()
	buffer = append(buffer, 42)
	cond.Signal()
	mu.Unlock()

	select {
	case v := <-got:
		assert.Equal(t, 42, v)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer never woke up")
	}
}

// TestCondWaitRestoresDepth verifies that a wait releases the full re-entry
// depth and restores it before returning.
func TestCondWaitRestoresDepth(t *testing.T) {
	var mu monitor.Mutex
	cond := monitor.NewCond(&mu)

	ready := false

	mu.Lock()
	mu.Lock() // depth 2

	// The signaler cannot acquire the lock until the wait below releases
	// both re-entry levels, so the wait is guaranteed to actually suspend.
	go func() {
		mu.Lock()
		ready = true
		cond.Signal()
		mu.Unlock()
	}()

	cond.WaitUntil(func() bool { return ready })

	require.True(t, mu.Owned(), "wait returned without the lock")
	mu.Unlock()
	require.True(t, mu.Owned(), "re-entry depth not restored after wait")
	mu.Unlock()
	assert.False(t, mu.Locked())
}

// startWaiters launches n goroutines that wait on cond and reports their
// wakeups on the returned channel. It returns once all n are suspended in
// Wait (they enqueue while holding the lock, so observing started == n
// through the lock means every waiter has released it inside Wait).
func startWaiters(t *testing.T, mu *monitor.Mutex, cond *monitor.Cond, n int) <-chan int {
	t.Helper()

	woken := make(chan int, n)
	started := 0

	for i := 0; i < n; i++ {
		i := i
		go func() {
			mu.Lock()
			started++
			cond.Wait()
			mu.Unlock()
			woken <- i
		}()
	}

	for {
		mu.Lock()
		n2 := started
		mu.Unlock()
		if n2 == n {
			return woken
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCondSignalWakesExactlyOne(t *testing.T) {
	var mu monitor.Mutex
	cond := monitor.NewCond(&mu)

	woken := startWaiters(t, &mu, cond, 3)

	mu.Lock()
	cond.Signal()
	mu.Unlock()

	select {
	case <-woken:
	case <-time.After(5 * time.Second):
		t.Fatal("signal woke no waiter")
	}

	select {
	case i := <-woken:
		t.Fatalf("signal woke a second waiter (%d)", i)
	case <-time.After(100 * time.Millisecond):
	}

	// Release the rest so the test leaves no suspended goroutines.
	mu.Lock()
	cond.Broadcast()
	mu.Unlock()
	for i := 0; i < 2; i++ {
		select {
		case <-woken:
		case <-time.After(5 * time.Second):
			t.Fatal("broadcast left a waiter suspended")
		}
	}
}

func TestCondBroadcastWakesAll(t *testing.T) {
	var mu monitor.Mutex
	cond := monitor.NewCond(&mu)

	const n = 5
	woken := startWaiters(t, &mu, cond, n)

	mu.Lock()
	cond.Broadcast()
	mu.Unlock()

	for i := 0; i < n; i++ {
		select {
		case <-woken:
		case <-time.After(5 * time.Second):
			t.Fatalf("broadcast woke only %d of %d waiters", i, n)
		}
	}
}

func TestCondSignalFIFO(t *testing.T) {
	var mu monitor.Mutex
	cond := monitor.NewCond(&mu)

	const n = 3
	order := make(chan int, n)

	started := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			mu.Lock()
			started <- struct{}{}
			cond.Wait()
			order <- i
			mu.Unlock()
		}()
		// Serialize enqueue order: waiter i suspends before i+1 starts.
		<-started
		for {
			if !mu.Locked() {
				break
			}
			time.Sleep(time.Millisecond)
		}
	}

	for want := 0; want < n; want++ {
		mu.Lock()
		cond.Signal()
		mu.Unlock()

		select {
		case got := <-order:
			assert.Equal(t, want, got, "waiters woken out of FIFO order")
		case <-time.After(5 * time.Second):
			t.Fatal("signal woke no waiter")
		}
	}
}

func TestCondSignalBroadcastNoWaiters(t *testing.T) {
	var mu monitor.Mutex
	cond := monitor.NewCond(&mu)

	mu.Lock()
	defer mu.Unlock()

	assert.NotPanics(t, cond.Signal)
	assert.NotPanics(t, cond.Broadcast)
}

func TestCondNotOwner(t *testing.T) {
	var mu monitor.Mutex
	cond := monitor.NewCond(&mu)

	requireNotOwnerPanic(t, "Wait", cond.Wait)
	requireNotOwnerPanic(t, "Wait", func() { cond.WaitTimeout(time.Millisecond) })
	requireNotOwnerPanic(t, "Signal", cond.Signal)
	requireNotOwnerPanic(t, "Broadcast", cond.Broadcast)

	// The predicate helpers check ownership even when the predicate is
	// already satisfied.
	requireNotOwnerPanic(t, "WaitWhile", func() { cond.WaitWhile(func() bool { return false }) })
	requireNotOwnerPanic(t, "WaitUntil", func() { cond.WaitUntil(func() bool { return true }) })
}

func TestCondWaitTimeout(t *testing.T) {
	var mu monitor.Mutex
	cond := monitor.NewCond(&mu)

	mu.Lock()

	start := time.Now()
	ok := cond.WaitTimeout(50 * time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, ok, "WaitTimeout reported a wakeup with no signaler")
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	require.True(t, mu.Owned(), "timed-out wait returned without the lock")

	mu.Unlock()
	assert.False(t, mu.Locked())
}

// TestCondWaitTimeoutReacquiresHeldLock verifies the invariant that a
// timed-out wait still reacquires the lock, even when another goroutine
// holds it at the moment the timeout fires.
func TestCondWaitTimeoutReacquiresHeldLock(t *testing.T) {
	var mu monitor.Mutex
	cond := monitor.NewCond(&mu)

	const (
		waitTimeout = 30 * time.Millisecond
		holdTime    = 150 * time.Millisecond
	)

	mu.Lock()

	// The holder blocks on Lock until the wait below releases, then keeps
	// the lock well past the wait's timeout.
	holderDone := make(chan struct{})
	go func() {
		defer close(holderDone)
		mu.Lock()
		time.Sleep(holdTime)
		mu.Unlock()
	}()

	start := time.Now()
	ok := cond.WaitTimeout(waitTimeout)
	elapsed := time.Since(start)

	assert.False(t, ok)
	require.True(t, mu.Owned(), "timed-out wait returned without the lock")
	assert.GreaterOrEqual(t, elapsed, holdTime, "wait returned before the holder released")
	mu.Unlock()

	<-holderDone
}

func TestCondWaitTimeoutWokenBySignal(t *testing.T) {
	var mu monitor.Mutex
	cond := monitor.NewCond(&mu)

	ready := false

	mu.Lock()
	go func() {
		mu.Lock()
		ready = true
		cond.Signal()
		mu.Unlock()
	}()

	// Generous timeout: the signal must arrive long before it.
	for !ready {
		ok := cond.WaitTimeout(10 * time.Second)
		require.True(t, ok, "signaled wait reported a timeout")
	}
	require.True(t, mu.Owned())
	mu.Unlock()
}

// TestCondBoundedBufferStress hammers a bounded buffer with concurrent
// producers and consumers. Consumers must never observe an empty buffer
// after WaitWhile returns, and every produced item must be consumed.
func TestCondBoundedBufferStress(t *testing.T) {
	var mu monitor.Mutex
	notEmpty := monitor.NewCond(&mu)
	notFull := monitor.NewCond(&mu)

	const (
		producers    = 4
		consumers    = 4
		itemsPerProd = 250
		capacity     = 8
	)

	var buffer []int
	consumed := make(chan int, producers*itemsPerProd)

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		g.Go(func() error {
			for i := 0; i < itemsPerProd; i++ {
				mu.Lock()
				notFull.WaitWhile(func() bool { return len(buffer) == capacity })
				buffer = append(buffer, i)
				notEmpty.Signal()
				mu.Unlock()
			}
			return nil
		})
	}
	for c := 0; c < consumers; c++ {
		g.Go(func() error {
			for i := 0; i < itemsPerProd; i++ {
				mu.Lock()
				notEmpty.WaitWhile(func() bool { return len(buffer) == 0 })
				if len(buffer) == 0 {
					mu.Unlock()
					return assert.AnError
				}
				v := buffer[0]
				buffer = buffer[1:]
				notFull.Signal()
				mu.Unlock()
				consumed <- v
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
	close(consumed)

	total := 0
	for range consumed {
		total++
	}
	assert.Equal(t, producers*itemsPerProd, total)
	assert.Empty(t, buffer)
	assert.False(t, mu.Locked())
}
