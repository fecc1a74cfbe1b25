// Package assert provides fail-fast checks for programmer errors —
// schema mismatches between a serialization routine and its caller,
// out-of-window buffer access, and similar invariant violations that
// are never meant to be recovered from at runtime.
package assert

import "fmt"

// True panics with a formatted message if cond is false.
func True(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
