//go:build !amd64

package callback

// EntryPointAddr 在不支持的平台上不可用：本系统假设方法 code 属性内嵌的
// 是 x86-64 机器码（spec.md §1 Non-goals）。
func EntryPointAddr() uintptr {
	panic("lava: callback: native trampoline entry point requires amd64")
}
