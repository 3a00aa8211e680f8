// Copyright 2025 The monitor Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !go1.23 || go1.26 || !(amd64 || arm64)

// Fallback goroutine ID extraction for platforms without the assembly fast
// path: architectures other than amd64/arm64, and Go versions whose
// runtime.g layout has not been verified (< 1.23 or >= 1.26).

package goid

// FastPath reports that only the stack-parsing implementation is available.
const FastPath = false

// fastID delegates to the stack parser. The name is kept for symmetry with
// the assembly build configuration.
func fastID() int64 {
	return FromStack()
}
