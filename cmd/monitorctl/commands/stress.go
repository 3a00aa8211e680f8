package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kolkov/monitor"
)

// stressConfig carries the knobs shared by every scenario.
type stressConfig struct {
	goroutines int
	iterations int
	timeout    time.Duration
}

// scenario is one named stress workload. Scenarios return an error on any
// invariant violation; a timeout is treated as a suspected deadlock.
type scenario struct {
	name string
	run  func(stressConfig) error
}

// scenarios in execution order. "all" runs every one of them.
var scenarios = []scenario{
	{"mutex", stressMutex},
	{"buffer", stressBuffer},
	{"broadcast", stressBroadcast},
}

// NewStressCmd returns the stress command.
func NewStressCmd() *cobra.Command {
	cfg := stressConfig{}
	var which string

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run contention scenarios against the monitor primitives",
		Long: `Run contention scenarios against the monitor primitives.

Each scenario hammers one aspect of the library: "mutex" checks mutual
exclusion and re-entry under contention, "buffer" drives a bounded
producer/consumer queue through its condition variables, and "broadcast"
cycles a barrier built on Broadcast. Any invariant violation or suspected
deadlock is reported and reflected in the exit code.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStress(cfg, which)
		},
	}

	cmd.Flags().IntVar(&cfg.goroutines, "goroutines", 8, "Concurrent goroutines per scenario")
	cmd.Flags().IntVar(&cfg.iterations, "iterations", 1000, "Iterations per goroutine")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 60*time.Second, "Per-scenario deadline before a deadlock is suspected")
	cmd.Flags().StringVar(&which, "scenario", "all", `Scenario to run (mutex, buffer, broadcast, all)`)

	return cmd
}

func runStress(cfg stressConfig, which string) error {
	if cfg.goroutines < 1 || cfg.iterations < 1 {
		return errors.New("goroutines and iterations must be positive")
	}

	selected := make([]scenario, 0, len(scenarios))
	for _, s := range scenarios {
		if which == "all" || which == s.name {
			selected = append(selected, s)
		}
	}
	if len(selected) == 0 {
		return fmt.Errorf("unknown scenario %q", which)
	}

	var result *multierror.Error
	for _, s := range selected {
		log.Info("running scenario",
			"scenario", s.name,
			"goroutines", cfg.goroutines,
			"iterations", cfg.iterations)

		start := time.Now()
		if err := s.run(cfg); err != nil {
			log.Error("scenario failed", "scenario", s.name, "err", err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		log.Info("scenario passed", "scenario", s.name, "elapsed", time.Since(start))
	}

	return result.ErrorOrNil()
}

// await waits for the group with a deadline. Exceeding the deadline means
// some goroutine is stuck on the lock or a condition and is reported as a
// suspected deadlock.
func await(g *errgroup.Group, d time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(d):
		return errors.New("suspected deadlock: scenario deadline exceeded")
	}
}

// stressMutex checks mutual exclusion and re-entry: every increment happens
// inside a doubly-entered critical section, and no two goroutines may be
// inside at once.
func stressMutex(cfg stressConfig) error {
	var mu monitor.Mutex

	var (
		counter int
		inside  int
	)

	var g errgroup.Group
	for i := 0; i < cfg.goroutines; i++ {
		g.Go(func() error {
			for j := 0; j < cfg.iterations; j++ {
				mu.Lock()
				mu.Lock() // re-entry must not self-deadlock
				inside++
				if inside != 1 {
					mu.Unlock()
					mu.Unlock()
					return errors.New("mutual exclusion violated")
				}
				counter++
				inside--
				mu.Unlock()
				mu.Unlock()
			}
			return nil
		})
	}
	if err := await(&g, cfg.timeout); err != nil {
		return err
	}

	if want := cfg.goroutines * cfg.iterations; counter != want {
		return fmt.Errorf("lost updates: counter = %d, want %d", counter, want)
	}
	if mu.Locked() {
		return errors.New("lock still held after all goroutines finished")
	}
	return nil
}

// stressBuffer drives a bounded producer/consumer queue through two
// condition variables sharing one lock.
func stressBuffer(cfg stressConfig) error {
	const capacity = 8

	var mu monitor.Mutex
	notEmpty := monitor.NewCond(&mu)
	notFull := monitor.NewCond(&mu)

	var buffer []int
	pairs := cfg.goroutines / 2
	if pairs == 0 {
		pairs = 1
	}

	var (
		produced int
		consumed int
	)

	var g errgroup.Group
	for p := 0; p < pairs; p++ {
		g.Go(func() error {
			for i := 0; i < cfg.iterations; i++ {
				mu.Lock()
				notFull.WaitWhile(func() bool { return len(buffer) == capacity })
				buffer = append(buffer, i)
				produced++
				notEmpty.Signal()
				mu.Unlock()
			}
			return nil
		})
		g.Go(func() error {
			for i := 0; i < cfg.iterations; i++ {
				mu.Lock()
				notEmpty.WaitWhile(func() bool { return len(buffer) == 0 })
				if len(buffer) == 0 {
					mu.Unlock()
					return errors.New("woke with an empty buffer")
				}
				buffer = buffer[1:]
				consumed++
				notFull.Signal()
				mu.Unlock()
			}
			return nil
		})
	}
	if err := await(&g, cfg.timeout); err != nil {
		return err
	}

	if produced != consumed {
		return fmt.Errorf("produced %d but consumed %d", produced, consumed)
	}
	if len(buffer) != 0 {
		return fmt.Errorf("%d items left in the buffer", len(buffer))
	}
	return nil
}

// stressBroadcast cycles a barrier built on Broadcast: every round, the
// last arriving goroutine advances the generation and wakes the rest.
func stressBroadcast(cfg stressConfig) error {
	var mu monitor.Mutex
	arrived := monitor.NewCond(&mu)

	var (
		gen     int
		waiting int
	)

	// Broadcast rounds are much heavier than counter increments.
	rounds := cfg.iterations / 10
	if rounds == 0 {
		rounds = 1
	}

	n := cfg.goroutines
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			for r := 0; r < rounds; r++ {
				mu.Lock()
				g0 := gen
				waiting++
				if waiting == n {
					waiting = 0
					gen++
					arrived.Broadcast()
				} else {
					arrived.WaitWhile(func() bool { return gen == g0 })
				}
				if gen <= g0 {
					mu.Unlock()
					return errors.New("left the barrier before the generation advanced")
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := await(&g, cfg.timeout); err != nil {
		return err
	}

	if gen != rounds {
		return fmt.Errorf("barrier cycled %d times, want %d", gen, rounds)
	}
	return nil
}
