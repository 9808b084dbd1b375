//go:build amd64

package callback

import "reflect"

// trampolineEntry is implemented in entry_amd64.s. It has no Go body: its
// sole purpose is to exist as addressable machine code that accepts the
// Microsoft x64 calling convention on entry and bridges into dispatch.
func trampolineEntry()

// EntryPointAddr returns the address generated trampolines must call.
// Grounded on nova's internal/jit bridge_amd64.go / call_amd64.go split
// (a bodyless Go declaration backed by a hand-written .s file), used here
// in the opposite calling direction: native code calling back into Go
// rather than Go calling into native code.
func EntryPointAddr() uintptr {
	return reflect.ValueOf(trampolineEntry).Pointer()
}
