// Package execmem 提供平台无关的可执行内存原语：分配一段页对齐的 RW
// 区域、在 RW 与 RX 之间切换同一块区域的保护属性、以及释放。
//
// W^X 是强制不变量：同一区域永远不会同时可写又可执行。失败被视为致命
// 错误（对应 spec 的 "out of memory" 信号）——调用方应当 panic 或向上
// 传播为不可恢复错误，而不是试图降级运行。
package execmem

import "fmt"

// Region 是一段由分配器管理的内存区域。
type Region struct {
	addr []byte // 底层字节切片；长度即已提交的区域大小
}

// Addr 返回区域起始地址对应的字节切片视图。
func (r *Region) Addr() []byte {
	return r.addr
}

// Len 返回区域大小（字节）。
func (r *Region) Len() int {
	return len(r.addr)
}

// AllocateRW 分配一段至少 n 字节、页对齐、可读写不可执行的区域。
func AllocateRW(n int) (*Region, error) {
	if n <= 0 {
		n = 1
	}
	mem, err := allocateRW(n)
	if err != nil {
		return nil, fmt.Errorf("execmem: allocate %d bytes: %w", n, err)
	}
	return &Region{addr: mem}, nil
}

// MakeExecutable 将区域从 RW 切换为 RX（可读可执行，不可写）。
func (r *Region) MakeExecutable() error {
	if err := protectRX(r.addr); err != nil {
		return fmt.Errorf("execmem: make executable: %w", err)
	}
	return nil
}

// MakeWritable 将区域从 RX 切换回 RW（可读可写，不可执行）。
func (r *Region) MakeWritable() error {
	if err := protectRW(r.addr); err != nil {
		return fmt.Errorf("execmem: make writable: %w", err)
	}
	return nil
}

// Free 释放区域。释放后不得再访问 Addr() 返回的切片。
func (r *Region) Free() error {
	if r.addr == nil {
		return nil
	}
	err := free(r.addr)
	r.addr = nil
	if err != nil {
		return fmt.Errorf("execmem: free: %w", err)
	}
	return nil
}
