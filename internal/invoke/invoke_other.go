//go:build !amd64

package invoke

// Call3 is unavailable on unsupported platforms: this system assumes
// materialized method code is x86-64 machine code (spec.md §1
// Non-goals).
func Call3(codePtr uintptr, a, b, c uint64) uint64 {
	panic("lava: invoke: Call3 requires amd64")
}
