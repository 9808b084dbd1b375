//go:build linux || darwin

package execmem

import "golang.org/x/sys/unix"

// allocateRW 使用 mmap 分配一段匿名私有、可读写的区域。
func allocateRW(n int) ([]byte, error) {
	return unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

// protectRX 通过 mprotect 把区域切换为可读可执行、不可写。
func protectRX(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	return unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC)
}

// protectRW 通过 mprotect 把区域切换回可读可写、不可执行。
func protectRW(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	return unix.Mprotect(mem, unix.PROT_READ|unix.PROT_WRITE)
}

// free 通过 munmap 释放区域。
func free(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	return unix.Munmap(mem)
}
