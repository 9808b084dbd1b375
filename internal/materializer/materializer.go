// Package materializer 实现方法物化（spec.md §4.5）：把草稿方法的 code
// 属性搬进一段新分配的可执行内存，并把其中每个 methodref 调用点原地
// 替换成一段真正可执行的调用序列——已加载目标用 12 字节直接调用，未加载
// 目标用 77/80 字节的延迟 trampoline（经 internal/callback 回调注册表）。
//
// 与 nova 的 internal/jit/x64_asm.go、codegen_emit.go 对应：那边是把已有
// 字节码编译成机器码，这里是把已经是机器码的方法体中的调用点打补丁。
// function_table.go 里"已解析直接跳转 vs 延迟 PLT 桩"的区分被沿用为这里
// "direct vs trampoline"的分类。
package materializer

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/tangzhangming/lava/internal/callback"
	"github.com/tangzhangming/lava/internal/class"
	"github.com/tangzhangming/lava/internal/classfile"
	"github.com/tangzhangming/lava/internal/execmem"
)

// Resolver is consulted at layout time to classify each call site. It
// never triggers a load: triggering one here would risk the same load
// cycles the registry already guards against elsewhere. classLoaded and
// methodFound are reported separately so the materializer can tell "not
// loaded yet, defer to a trampoline" apart from "loaded but the method
// doesn't exist", which spec.md §4.5 treats as fatal rather than
// deferrable.
type Resolver interface {
	LookupMethod(className, descriptor string) (codePtr uintptr, classLoaded bool, methodFound bool)
}

// Materializer turns draft method bodies into executable code.
type Materializer struct {
	resolver      Resolver
	callbackAddr  uint64
	registryToken uintptr
}

// New builds a Materializer. registryToken is the token the owning
// registry obtained from callback.Register; it gets baked into every
// trampoline this Materializer emits as the registry_ptr immediate.
func New(resolver Resolver, registryToken uintptr) *Materializer {
	return &Materializer{
		resolver:      resolver,
		callbackAddr:  uint64(callback.EntryPointAddr()),
		registryToken: registryToken,
	}
}

// pendingTrampoline tracks the bookkeeping needed to patch a trampoline's
// two RIP-relative `lea` instructions once the final region address and
// string table layout are known.
type pendingTrampoline struct {
	seqOffset    int // offset of the sequence's first byte within finalCode
	leaRdxOffset int // offset of "lea rdx" within the sequence
	leaR8Offset  int // offset of "lea r8" within the sequence
	classNameOff int // offset of the class name C-string within the string table
	descriptorOff int // offset of the descriptor C-string within the string table
}

// Materialize allocates executable memory for method's code attribute (if
// any) and patches every methodref call site in place. If the draft has
// no "code" attribute, method is left unbound (CodePtr stays 0) and this
// is not an error: not every method needs a body (spec.md allows native
// stub declarations with no code).
//
// A non-nil error here is always fatal per spec.md §7: materialization
// failures are not part of the LoadStatus enum and callers must treat
// them as non-recoverable.
func (mz *Materializer) Materialize(method *class.Method, draft *classfile.DraftMethod, pool *classfile.ConstantPool) error {
	code, ok := draft.Code()
	if !ok {
		return nil
	}

	refs := append([]classfile.MethodRefInfo(nil), draft.MethodRefs()...)
	sort.Slice(refs, func(i, j int) bool { return refs[i].ByteOffset < refs[j].ByteOffset })

	for _, r := range refs {
		if int(r.ByteOffset) >= len(code) {
			return fmt.Errorf("lava: materializer: methodref byte_offset %d out of range (code length %d)", r.ByteOffset, len(code))
		}
	}

	finalCode := make([]byte, 0, len(code)+len(refs)*trampolineSizeLarge)
	stringTable := make([]byte, 0, 64)
	stringOffsets := make(map[string]int)

	internString := func(s string) int {
		if off, ok := stringOffsets[s]; ok {
			return off
		}
		off := len(stringTable)
		stringTable = append(stringTable, s...)
		stringTable = append(stringTable, 0)
		stringOffsets[s] = off
		return off
	}

	var pending []pendingTrampoline
	cursor := 0
	for _, r := range refs {
		finalCode = append(finalCode, code[cursor:r.ByteOffset]...)

		className, ok := pool.ClassNameAt(r.ClassNameIndex)
		if !ok {
			return fmt.Errorf("lava: materializer: methodref class_name_index %d is not a resolvable class reference", r.ClassNameIndex)
		}
		descriptor, ok := pool.Utf8At(r.MethodDescriptorIndex)
		if !ok {
			return fmt.Errorf("lava: materializer: methodref method_descriptor_index %d is not a resolvable utf8 entry", r.MethodDescriptorIndex)
		}

		seqOffset := len(finalCode)
		targetPtr, classLoaded, methodFound := mz.resolver.LookupMethod(className, descriptor)
		switch {
		case classLoaded && methodFound:
			finalCode = append(finalCode, buildDirectCall(uint64(targetPtr))...)
		case classLoaded && !methodFound:
			return fmt.Errorf("lava: materializer: class %q is loaded but has no method with descriptor %q", className, descriptor)
		default:
			skel := buildTrampolineSkeleton(mz.callbackAddr, uint64(mz.registryToken))
			finalCode = append(finalCode, skel.buf...)
			pending = append(pending, pendingTrampoline{
				seqOffset:     seqOffset,
				leaRdxOffset:  skel.leaRdxOffset,
				leaR8Offset:   skel.leaR8Offset,
				classNameOff:  internString(className),
				descriptorOff: internString(descriptor),
			})
		}

		cursor = int(r.ByteOffset) + 1
	}
	finalCode = append(finalCode, code[cursor:]...)

	total := len(finalCode) + len(stringTable)
	region, err := execmem.AllocateRW(total)
	if err != nil {
		return fmt.Errorf("lava: materializer: %w", err)
	}

	buf := region.Addr()
	copy(buf[:len(finalCode)], finalCode)
	copy(buf[len(finalCode):], stringTable)

	if len(buf) > 0 {
		base := uintptr(unsafe.Pointer(&buf[0]))
		stringBase := base + uintptr(len(finalCode))

		for _, p := range pending {
			rdxInstrAddr := base + uintptr(p.seqOffset+p.leaRdxOffset)
			if err := patchRipDisplacement(buf, p.seqOffset+p.leaRdxOffset, rdxInstrAddr, stringBase+uintptr(p.classNameOff)); err != nil {
				region.Free()
				return err
			}
			r8InstrAddr := base + uintptr(p.seqOffset+p.leaR8Offset)
			if err := patchRipDisplacement(buf, p.seqOffset+p.leaR8Offset, r8InstrAddr, stringBase+uintptr(p.descriptorOff)); err != nil {
				region.Free()
				return err
			}
		}
	}

	if err := region.MakeExecutable(); err != nil {
		region.Free()
		return fmt.Errorf("lava: materializer: %w", err)
	}

	method.SetOwnedCode(region, total)
	return nil
}
