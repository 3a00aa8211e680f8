//go:build ignore
// +build ignore

// This tool calculates the offset of the goid field in runtime.g.
// Run with: go run tools/calc_goid_offset.go
//
// When a new Go release changes the runtime.g layout, update the field list
// below to match runtime/runtime2.go, run the tool, and carry the printed
// offset into internal/goid/goid_fast.go (plus its build tags).
package main

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Mirror of runtime.g field order up to goid. This MUST match the actual
// runtime.g struct for the Go version being verified (1.23-1.25 layout).
type g struct {
	stack        stack          // offset 0
	stackguard0  uintptr        // offset 16
	stackguard1  uintptr        // offset 24
	_panic       *int           // offset 32
	_defer       *int           // offset 40
	m            *int           // offset 48
	sched        gobuf          // offset 56
	syscallsp    uintptr        // offset 104
	syscallpc    uintptr        // offset 112
	syscallbp    uintptr        // offset 120
	stktopsp     uintptr        // offset 128
	param        unsafe.Pointer // offset 136
	atomicstatus struct {
		v uint32
	} // offset 144
	stackLock uint32 // offset 148
	goid      uint64 // offset 152 <- TARGET
}

type stack struct {
	lo uintptr
	hi uintptr
}

type gobuf struct {
	sp   uintptr
	pc   uintptr
	g    uintptr
	ctxt unsafe.Pointer
	ret  uintptr
	bp   uintptr
}

func main() {
	var gg g

	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("Architecture: %s\n", runtime.GOARCH)
	fmt.Printf("goid offset: %d bytes\n", unsafe.Offsetof(gg.goid))
	fmt.Printf("\nUse this in internal/goid/goid_fast.go: const goidOffset = %d\n", unsafe.Offsetof(gg.goid))
}
