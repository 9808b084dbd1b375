package materializer

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/tangzhangming/lava/internal/class"
	"github.com/tangzhangming/lava/internal/classfile"
)

// fakeResolver simulates the registry's already-loaded-method lookup
// without pulling in the registry package (would be an import cycle:
// registry depends on materializer).
type fakeResolver map[string]map[string]uintptr

func (r fakeResolver) LookupMethod(className, descriptor string) (ptr uintptr, classLoaded bool, methodFound bool) {
	methods, classLoaded := r[className]
	if !classLoaded {
		return 0, false, false
	}
	ptr, methodFound = methods[descriptor]
	return ptr, true, methodFound
}

func methodBytes(m *class.Method) []byte {
	if m.CodePtr == 0 || m.CodeLength == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(m.CodePtr)), m.CodeLength)
}

// buildRef returns a constant pool with a class-name Utf8+ClassRef pair at
// indices 1/2 and a descriptor Utf8 at index 3, plus the draft method and
// methodref matching spec.md scenarios 4/5 ("B"'s method "n" referencing
// "A"."m" at byte_offset=1 in code [0x90, 0x00, 0xC3]).
func buildRef() (*classfile.ConstantPool, *classfile.DraftMethod) {
	pool := classfile.NewConstantPool(3)
	pool.Set(1, classfile.ConstantPoolEntry{Tag: classfile.TagUtf8, Utf8: "A"})
	pool.Set(2, classfile.ConstantPoolEntry{Tag: classfile.TagClassRef, NameIndex: 1})
	pool.Set(3, classfile.ConstantPoolEntry{Tag: classfile.TagUtf8, Utf8: "m"})

	draft := &classfile.DraftMethod{
		Attributes: []classfile.AttributeEntry{
			{Kind: classfile.AttrCode, Bytes: []byte{0x90, 0x00, 0xC3}},
			{Kind: classfile.AttrMethodRef, MethodRef: classfile.MethodRefInfo{
				ClassNameIndex:        2,
				MethodDescriptorIndex: 3,
				ByteOffset:            1,
			}},
		},
	}
	return pool, draft
}

func TestMaterializeDirectCall(t *testing.T) {
	const targetPtr = uintptr(0x1122334455667788)
	resolver := fakeResolver{"A": {"m": targetPtr}}
	mz := New(resolver, 1)

	pool, draft := buildRef()
	method := &class.Method{}
	if err := mz.Materialize(method, draft, pool); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	defer method.Release()

	if method.CodeLength != 14 {
		t.Fatalf("code length = %d, want 14", method.CodeLength)
	}
	got := methodBytes(method)
	if got[0] != 0x90 {
		t.Fatalf("byte 0 = %#x, want nop", got[0])
	}
	want := buildDirectCall(uint64(targetPtr))
	for i, b := range want {
		if got[1+i] != b {
			t.Fatalf("direct call byte %d = %#x, want %#x", i, got[1+i], b)
		}
	}
	if got[13] != 0xC3 {
		t.Fatalf("trailing byte = %#x, want ret", got[13])
	}
}

func TestMaterializeLoadedClassMissingMethodIsFatal(t *testing.T) {
	// "A" is loaded (present in the resolver's class map) but has no
	// method matching descriptor "m": spec.md §4.5 treats this as fatal
	// rather than deferrable to a trampoline.
	resolver := fakeResolver{"A": {}}
	mz := New(resolver, 1)
	pool, draft := buildRef()
	method := &class.Method{}
	if err := mz.Materialize(method, draft, pool); err == nil {
		t.Fatal("Materialize: expected error for loaded class with missing method, got nil")
	}
}

func TestMaterializeUnloadedClassDefersToTrampoline(t *testing.T) {
	resolver := fakeResolver{} // "A" not present at all: not yet loaded
	mz := New(resolver, 1)
	pool, draft := buildRef()
	method := &class.Method{}
	if err := mz.Materialize(method, draft, pool); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	defer method.Release()
	if method.CodeLength != 83 {
		t.Fatalf("code length = %d, want 83 (trampoline form)", method.CodeLength)
	}
}

func TestMaterializeTrampoline(t *testing.T) {
	resolver := fakeResolver{} // A is not loaded when B is materialized
	mz := New(resolver, 7)

	pool, draft := buildRef()
	method := &class.Method{}
	if err := mz.Materialize(method, draft, pool); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	defer method.Release()

	wantLen := 1 + 77 + 1 + (len("A") + 1) + (len("m") + 1)
	if method.CodeLength != wantLen {
		t.Fatalf("code length = %d, want %d", method.CodeLength, wantLen)
	}

	got := methodBytes(method)
	if got[0] != 0x90 {
		t.Fatalf("byte 0 = %#x, want nop", got[0])
	}
	if got[78] != 0xC3 {
		t.Fatalf("byte 78 = %#x, want ret", got[78])
	}

	trailer := got[79:]
	want := []byte("A\x00m\x00")
	if string(trailer) != string(want) {
		t.Fatalf("trailing strings = %q, want %q", trailer, want)
	}

	seq := got[1:78] // the 77-byte trampoline sequence
	base := uintptr(unsafe.Pointer(&got[0]))
	stringBase := base + 79

	checkLea := func(instrOffsetInSeq int, wantTarget uintptr) {
		t.Helper()
		instrAddr := base + 1 + uintptr(instrOffsetInSeq)
		disp := int32(binary.LittleEndian.Uint32(seq[instrOffsetInSeq+3 : instrOffsetInSeq+7]))
		gotTarget := instrAddr + 7 + uintptr(disp)
		if gotTarget != wantTarget {
			t.Fatalf("lea at seq offset %d resolves to %#x, want %#x", instrOffsetInSeq, gotTarget, wantTarget)
		}
	}

	// Sequence layout from buildTrampolineSkeleton: sub rsp(4) + 3 saves
	// (5 each) + mov rax,imm64(10) + mov rcx,imm64(10) = 39 bytes before
	// the first lea.
	checkLea(39, stringBase+0)      // lea rdx -> "A"
	checkLea(39+7, stringBase+2)    // lea r8  -> "m" (after "A\0")

	if seq[74] != 0xFF || seq[75] != 0x50 {
		t.Fatalf("pCode call opcode = %02x %02x, want FF 50", seq[74], seq[75])
	}
}
