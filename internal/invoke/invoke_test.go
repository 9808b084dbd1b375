package invoke

import (
	"testing"
	"unsafe"

	"github.com/tangzhangming/lava/internal/execmem"
)

// makeExecutable copies code into a fresh executable region and returns
// its address, freeing the region when the test completes.
func makeExecutable(t *testing.T, code []byte) uintptr {
	t.Helper()
	region, err := execmem.AllocateRW(len(code))
	if err != nil {
		t.Fatalf("AllocateRW: %v", err)
	}
	copy(region.Addr(), code)
	if err := region.MakeExecutable(); err != nil {
		t.Fatalf("MakeExecutable: %v", err)
	}
	t.Cleanup(func() { region.Free() })
	return uintptr(unsafe.Pointer(&region.Addr()[0]))
}

// TestCall3 exercises the Go -> native call bridge directly against a
// tiny hand-assembled function, independent of anything in
// internal/materializer or internal/registry.
func TestCall3(t *testing.T) {
	// rax = rcx + rdx*2 + r8*2; ret
	code := []byte{
		0x48, 0x89, 0xC8, // mov rax, rcx
		0x48, 0x01, 0xD2, // add rdx, rdx
		0x48, 0x01, 0xD0, // add rax, rdx
		0x4C, 0x01, 0xC0, // add rax, r8
		0x4C, 0x01, 0xC0, // add rax, r8
		0xC3, // ret
	}
	fn := makeExecutable(t, code)

	got := Call3(fn, 10, 3, 1)
	want := uint64(10 + 3*2 + 1*2)
	if got != want {
		t.Fatalf("Call3 = %d, want %d", got, want)
	}
}
