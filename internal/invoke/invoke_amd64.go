//go:build amd64

package invoke

// Call3 is implemented in invoke_amd64.s. It loads codePtr into rax and
// a/b/c into rcx/rdx/r8 (Microsoft x64) before calling it, returning rax.
func Call3(codePtr uintptr, a, b, c uint64) uint64
