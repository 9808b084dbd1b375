//go:build windows

package execmem

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// allocateRW 使用 VirtualAlloc 分配一段已提交、可读写的区域。
func allocateRW(n int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(n), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n), nil
}

// protectRX 通过 VirtualProtect 把区域切换为可读可执行、不可写。
func protectRX(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	var old uint32
	addr := uintptr(unsafe.Pointer(&mem[0]))
	return windows.VirtualProtect(addr, uintptr(len(mem)), windows.PAGE_EXECUTE_READ, &old)
}

// protectRW 通过 VirtualProtect 把区域切换回可读可写、不可执行。
func protectRW(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	var old uint32
	addr := uintptr(unsafe.Pointer(&mem[0]))
	return windows.VirtualProtect(addr, uintptr(len(mem)), windows.PAGE_READWRITE, &old)
}

// free 通过 VirtualFree 释放区域。
func free(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mem[0]))
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}
