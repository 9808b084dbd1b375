// Package callback bridges generated machine code back into the registry.
//
// Trampolines emitted by internal/materializer call a single, stable entry
// point using the Microsoft x64 calling convention on all host platforms
// (spec requirement: the emitted sequence must be identical regardless of
// host, so the convention is fixed rather than chosen per-OS the way
// nova's internal/jit/bridge_amd64.go / bridge_windows.go pick a
// convention per platform). This package is that entry point.
//
// A real `this`-pointer bake-in (as the original C++ ClassRegistry does)
// is not safe here: Go values are subject to a moving garbage collector
// and have no stable address a foreign calling convention can hold onto
// across a call. Instead, Register hands out an opaque, stable integer
// token that indexes into a process-global table; that token, not a raw
// pointer, is what gets baked into generated code as "registry_ptr".
package callback

import (
	"sync"
	"unsafe"
)

// NativeMethodHandle is returned to generated code by the registry
// callback. CodePtr MUST remain the struct's first field at offset 0:
// emitted trampolines dereference it directly as `call [rax+PCodeOffset]`
// without any knowledge of Go's type system.
type NativeMethodHandle struct {
	CodePtr uintptr
}

// PCodeOffset is the byte offset of CodePtr within NativeMethodHandle.
// It is always 0 by construction, which fits in a signed 8-bit
// displacement, so the materializer always emits the 77-byte trampoline
// form rather than the 80-byte one (spec.md §4.5 permits either; nothing
// in this system needs a handle layout wide enough to require the 80-byte
// form).
const PCodeOffset = 0

// Resolver is implemented by the class registry. ResolveOrPanic must
// raise a fatal (non-recoverable) error if className or descriptor cannot
// be resolved to a loaded method, per spec.md §7.
type Resolver interface {
	ResolveOrPanic(className, methodDescriptor string) *NativeMethodHandle
}

var (
	mu        sync.Mutex
	resolvers []Resolver
)

// Register installs r in the global handle table and returns a non-zero
// token identifying it. The token is what callers bake into generated
// trampolines as the registry_ptr immediate.
func Register(r Resolver) uintptr {
	mu.Lock()
	defer mu.Unlock()
	resolvers = append(resolvers, r)
	return uintptr(len(resolvers)) // 1-based; 0 is reserved as "invalid"
}

// Unregister removes the resolver installed under token, releasing its
// slot. Safe to call once the owning registry is discarded.
func Unregister(token uintptr) {
	mu.Lock()
	defer mu.Unlock()
	if token == 0 || int(token) > len(resolvers) {
		return
	}
	resolvers[token-1] = nil
}

func resolverFor(token uintptr) Resolver {
	mu.Lock()
	defer mu.Unlock()
	if token == 0 || int(token) > len(resolvers) {
		return nil
	}
	return resolvers[token-1]
}

// dispatch is invoked by the assembly stub (trampolineEntry) after it has
// spilled the incoming Microsoft x64 register arguments onto the stack,
// where dispatch's ABI0 wrapper reads them. It never runs on an arbitrary OS thread: generated
// code only ever executes on a goroutine that itself called into the
// materialized buffer, consistent with the single-threaded, cooperative
// model of spec.md §5.
func dispatch(token uintptr, classNamePtr, descriptorPtr *byte) uintptr {
	r := resolverFor(token)
	if r == nil {
		panic("lava: callback: invalid registry token")
	}
	className := cString(classNamePtr)
	descriptor := cString(descriptorPtr)
	handle := r.ResolveOrPanic(className, descriptor)
	return uintptr(unsafe.Pointer(handle))
}

// cString reads a NUL-terminated byte string starting at p. Generated
// trampolines only ever point this at the string table materializer lays
// out immediately after a method's code, so the scan is bounded in
// practice even though it has no explicit length here.
func cString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for {
		b := *(*byte)(unsafe.Add(unsafe.Pointer(p), n))
		if b == 0 {
			break
		}
		n++
	}
	return string(unsafe.Slice(p, n))
}
