// Package goid extracts the current goroutine's ID for ownership tracking.
//
// The monitor lock keys ownership and re-entry on goroutine identity, so ID
// extraction sits on the hot path of every Lock, Unlock, and wait. Two
// implementations are provided:
//
//   - Fast path (~1-2ns): assembly reads the runtime g pointer and loads the
//     goid field at a known offset. Enabled on amd64/arm64 for Go versions
//     whose runtime.g layout has been verified (see goid_fast.go build tags).
//   - Fallback (~1500ns): parses the header line of runtime.Stack output.
//     Always available, used on unverified toolchains and architectures.
//
// FromStack is exported alongside ID so callers (and tests) can cross-check
// the fast path against the parser on any platform. The FastPath constant
// reports which implementation was compiled in; cmd/monitorctl's doctor
// command surfaces it to users.
//
// When the runtime.g layout changes in a new Go release, run
// tools/calc_goid_offset.go to derive the new offset and extend the build
// tags after verifying it.
package goid
