// Copyright 2025 The monitor Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build go1.23 && !go1.26 && (amd64 || arm64)

// Assembly fast path for goroutine ID extraction.
//
// Reads the runtime g pointer (TLS on amd64, the g register R28 on arm64)
// and loads the goid field at a fixed offset. The offset is derived from the
// runtime.g struct layout:
//
//	Field          Size    Cumulative Offset
//	-----          ----    -----------------
//	stack          16      0
//	stackguard0    8       16
//	stackguard1    8       24
//	_panic         8       32
//	_defer         8       40
//	m              8       48
//	sched (gobuf)  48      56  (sp, pc, g, ctxt, ret, bp = 6×8)
//	syscallsp      8       104
//	syscallpc      8       112
//	syscallbp      8       120
//	stktopsp       8       128
//	param          8       136
//	atomicstatus   4       144
//	stackLock      4       148
//	goid           8       152 ← TARGET
//
// The offset is verified identical for Go 1.23, 1.24, and 1.25 on both
// amd64 and arm64. The !go1.26 build tag keeps unverified layouts off this
// path; run tools/calc_goid_offset.go when extending it.

package goid

import "unsafe"

// FastPath reports that the assembly implementation is compiled in.
const FastPath = true

// goidOffset is the byte offset of the goid field within runtime.g.
// Verified for Go 1.23-1.25 on amd64 and arm64.
const goidOffset = 152

// getg returns the current goroutine's g struct pointer.
// Implemented in assembly (goid_amd64.s, goid_arm64.s).
//
//go:noescape
func getg() uintptr

// fastID reads the goid field directly from the runtime.g struct.
//
// Safe despite the uintptr arithmetic: g structs are never moved by the GC,
// the pointer comes straight from assembly, and only a read is performed.
// The same pattern is used by petermattis/goid and similar libraries.
//
//go:nosplit
//go:nocheckptr
func fastID() int64 {
	gptr := getg()
	if gptr == 0 {
		// A nil g pointer indicates a serious runtime problem; fall back to
		// stack parsing rather than fault.
		return FromStack()
	}

	//nolint:gosec // G103: intentional unsafe pointer arithmetic for runtime access
	gid := *(*uint64)(unsafe.Pointer(gptr + goidOffset))

	//nolint:gosec // G115: goid values never exceed int64 max
	return int64(gid)
}
