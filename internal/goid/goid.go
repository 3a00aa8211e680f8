// Copyright 2025 The monitor Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goid

import "runtime"

// ID returns the current goroutine's ID.
//
// IDs are positive and unique for the lifetime of the goroutine; they are
// never reused while the goroutine is alive. ID delegates to the best
// implementation compiled in for this platform (see FastPath).
func ID() int64 {
	return fastID()
}

// FromStack extracts the goroutine ID by parsing runtime.Stack output.
//
// This is the universal slow path (~1500ns per call, dominated by
// runtime.Stack). It works on every Go version and architecture and is used
// to cross-validate the assembly fast path.
func FromStack() int64 {
	// Only the header line is needed.
	// Format: "goroutine 123 [running]:\n..."
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID extracts the numeric goroutine ID from stack trace bytes.
//
// Expected format: "goroutine 123 [running]:...". Returns 0 if the buffer
// does not match, which callers treat as a fatal runtime incompatibility.
// Direct byte parsing, no allocations.
func parseGID(buf []byte) int64 {
	const prefix = "goroutine "

	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var gid int64
	for i := len(prefix); i < len(buf); i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		gid = gid*10 + int64(c-'0')
	}
	return gid
}
