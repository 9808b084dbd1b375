package materializer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tangzhangming/lava/internal/callback"
)

// Sizes of the two call-site sequences (spec.md §4.5).
const (
	directCallSize        = 12
	trampolineSizeSmall    = 77 // pCode offset fits in a signed 8-bit displacement
	trampolineSizeLarge    = 80 // pCode offset needs a 32-bit displacement
	ripInstrLen            = 7  // length of "lea reg, [rip+disp32]"
)

// buildDirectCall emits the 12-byte direct-call sequence:
//
//	48 B8 <abs_u64>   mov rax, imm64  (target method code pointer)
//	FF D0             call rax
func buildDirectCall(targetCodePtr uint64) []byte {
	buf := make([]byte, directCallSize)
	buf[0], buf[1] = 0x48, 0xB8
	binary.LittleEndian.PutUint64(buf[2:10], targetCodePtr)
	buf[10], buf[11] = 0xFF, 0xD0
	return buf
}

// trampolineSkeleton is a fully-built trampoline sequence except for the
// two RIP-relative `lea` displacements, which depend on the final
// executable region's base address and are patched in a second pass once
// that address is known (see materializer.go).
type trampolineSkeleton struct {
	buf          []byte
	leaRdxOffset int // offset within buf where "48 8D 15 <disp32>" begins
	leaR8Offset  int // offset within buf where "4C 8D 05 <disp32>" begins
}

// buildTrampolineSkeleton emits the 77- or 80-byte trampoline template
// (spec.md §4.5), with everything filled in except the two RIP-relative
// lea displacements (left zeroed).
func buildTrampolineSkeleton(callbackAddr uint64, registryToken uint64) trampolineSkeleton {
	small := fitsInt8(callback.PCodeOffset)
	size := trampolineSizeLarge
	if small {
		size = trampolineSizeSmall
	}
	buf := make([]byte, size)
	i := 0

	put := func(b ...byte) {
		copy(buf[i:], b)
		i += len(b)
	}

	put(0x48, 0x83, 0xEC, 0x38)             // sub rsp, 0x38
	put(0x48, 0x89, 0x4C, 0x24, 0x20)       // mov [rsp+0x20], rcx
	put(0x48, 0x89, 0x54, 0x24, 0x28)       // mov [rsp+0x28], rdx
	put(0x4C, 0x89, 0x44, 0x24, 0x30)       // mov [rsp+0x30], r8

	put(0x48, 0xB8) // mov rax, imm64
	binary.LittleEndian.PutUint64(buf[i:i+8], callbackAddr)
	i += 8

	put(0x48, 0xB9) // mov rcx, imm64
	binary.LittleEndian.PutUint64(buf[i:i+8], registryToken)
	i += 8

	leaRdxOffset := i
	put(0x48, 0x8D, 0x15, 0, 0, 0, 0) // lea rdx, [rip+disp32] (placeholder)

	leaR8Offset := i
	put(0x4C, 0x8D, 0x05, 0, 0, 0, 0) // lea r8, [rip+disp32] (placeholder)

	put(0xFF, 0xD0) // call rax

	put(0x48, 0x8B, 0x4C, 0x24, 0x20) // mov rcx, [rsp+0x20]
	put(0x48, 0x8B, 0x54, 0x24, 0x28) // mov rdx, [rsp+0x28]
	put(0x4C, 0x8B, 0x44, 0x24, 0x30) // mov r8, [rsp+0x30]
	put(0x48, 0x83, 0xC4, 0x38)       // add rsp, 0x38

	if small {
		put(0xFF, 0x50, byte(int8(callback.PCodeOffset))) // call [rax+off8]
	} else {
		put(0xFF, 0x90) // call [rax+off32]
		binary.LittleEndian.PutUint32(buf[i:i+4], uint32(int32(callback.PCodeOffset)))
		i += 4
	}

	if i != size {
		panic(fmt.Sprintf("lava: materializer: trampoline skeleton size mismatch: wrote %d, want %d", i, size))
	}

	return trampolineSkeleton{buf: buf, leaRdxOffset: leaRdxOffset, leaR8Offset: leaR8Offset}
}

func fitsInt8(off int) bool {
	return off >= math.MinInt8 && off <= math.MaxInt8
}

// patchRipDisplacement writes the 32-bit RIP-relative displacement for a
// 7-byte `lea` instruction located at instrAddr (absolute) so that it
// resolves to targetAddr. Returns an error if the displacement overflows
// an int32 (spec.md §4.5 invariant).
func patchRipDisplacement(buf []byte, instrOffsetInBuf int, instrAddr, targetAddr uintptr) error {
	disp := int64(targetAddr) - int64(instrAddr) - int64(ripInstrLen)
	if disp < math.MinInt32 || disp > math.MaxInt32 {
		return fmt.Errorf("lava: materializer: rip-relative displacement %d overflows int32", disp)
	}
	binary.LittleEndian.PutUint32(buf[instrOffsetInBuf+3:instrOffsetInBuf+7], uint32(int32(disp)))
	return nil
}
