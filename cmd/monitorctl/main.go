// Package main implements the monitorctl CLI tool.
//
// monitorctl is the stress and diagnostic harness for the monitor library.
// It exercises the re-entrant lock and condition variables under real
// contention and validates the goroutine-identity machinery the library
// depends on:
//
//	monitorctl stress              # run contention scenarios
//	monitorctl doctor              # check goid fast-path support
//	monitorctl version             # show version information
//
// The stress command fails with a non-zero exit code if any invariant of
// the primitive (mutual exclusion, wakeup delivery, depth restoration) is
// violated, making it suitable for CI soak jobs on new platforms.
package main

import (
	"fmt"
	"os"

	"github.com/kolkov/monitor/cmd/monitorctl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
