// Package registry 实现类注册表（spec.md §4.4）：按类路径惰性加载并
// memoize .lclass 文件，解析 super 链（带环检测），并把每个已加载方法
// 交给 internal/materializer 物化为可执行代码。
//
// 注册表自身实现 internal/callback.Resolver：生成的 trampoline 在运行期
// 通过 callback 包回调到 ResolveOrPanic，效果等价于原始实现中
// get_method_from_descriptor_error 这个"稳定调用约定的入口点"。
package registry

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tangzhangming/lava/internal/accessflags"
	"github.com/tangzhangming/lava/internal/callback"
	"github.com/tangzhangming/lava/internal/class"
	"github.com/tangzhangming/lava/internal/lclass"
	"github.com/tangzhangming/lava/internal/materializer"
	"github.com/tangzhangming/lava/internal/status"
)

// ClassRegistry is the single owner of every loaded class and of the
// executable memory backing their methods. Per spec.md §5 it is not safe
// for concurrent mutation: load_class may recurse into itself for super
// resolution, but two load_class calls never run concurrently.
type ClassRegistry struct {
	classPaths []string
	classes    map[string]*class.Class

	// inProgress is the per-call-chain set used for super-cycle detection
	// (spec.md §4.4: "the rewrite must" detect cycles; the source does
	// not).
	inProgress map[string]bool

	token uintptr
	mz    *materializer.Materializer
}

// New creates an empty registry and registers it as a callback resolver,
// ready to hand its token to the materializer for baking into
// trampolines.
func New() *ClassRegistry {
	reg := &ClassRegistry{classes: make(map[string]*class.Class)}
	reg.token = callback.Register(reg)
	reg.mz = materializer.New(reg, reg.token)
	return reg
}

// AddClassPath appends dir to the search order. Duplicates are allowed;
// class paths are searched in insertion order.
func (reg *ClassRegistry) AddClassPath(dir string) {
	reg.classPaths = append(reg.classPaths, dir)
}

// NewClass inserts an empty class named name. Fails if name already
// exists.
func (reg *ClassRegistry) NewClass(name string) (*class.Class, error) {
	if _, ok := reg.classes[name]; ok {
		return nil, fmt.Errorf("lava: registry: class %q already exists", name)
	}
	c := &class.Class{Name: name}
	reg.classes[name] = c
	return c, nil
}

// GetClass looks up an already-loaded class by name. It never loads.
func (reg *ClassRegistry) GetClass(name string) (*class.Class, bool) {
	c, ok := reg.classes[name]
	return c, ok
}

// LoadClass returns the class named name, loading it from the class path
// if it is not already present. Idempotent: a second call for the same
// name performs no file I/O (spec.md §8).
func (reg *ClassRegistry) LoadClass(name string) (*class.Class, status.LoadStatus) {
	if c, ok := reg.classes[name]; ok {
		return c, status.Success
	}
	return reg.loadClass(name)
}

// MustLoadClass loads name, panicking with a *status.Error on failure.
func (reg *ClassRegistry) MustLoadClass(name string) *class.Class {
	c, st := reg.LoadClass(name)
	if st != status.Success {
		panic(status.AsError(st))
	}
	return c
}

func (reg *ClassRegistry) loadClass(name string) (*class.Class, status.LoadStatus) {
	if c, ok := reg.classes[name]; ok {
		return c, status.Success
	}
	if reg.inProgress[name] {
		return nil, status.InvalidSuperClassEntry
	}

	path := reg.findClass(name)
	if path == "" {
		return nil, status.FileNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, status.FileNotFound
	}

	draft, st := lclass.Decode(data)
	if st != status.Success {
		return nil, st
	}
	log.Printf("lava: registry: loaded %s (digest %s)", path, lclass.Digest(data))
	if draft.Warnings != nil {
		log.Printf("lava: registry: %s: %v", path, draft.Warnings)
	}

	thisName, ok := draft.ConstantPool.ClassNameAt(draft.ThisClassIndex)
	if !ok {
		return nil, status.InvalidThisClassEntry
	}

	if reg.inProgress == nil {
		reg.inProgress = make(map[string]bool)
	}
	reg.inProgress[name] = true
	defer delete(reg.inProgress, name)

	c := &class.Class{
		Name:        thisName,
		AccessFlags: accessflags.AccessFlags(draft.AccessFlags),
	}

	for _, idx := range draft.SuperIndices {
		superName, _ := draft.ConstantPool.ClassNameAt(idx) // validated during decode
		super, st := reg.loadClass(superName)
		if st != status.Success {
			return nil, st
		}
		c.Supers = append(c.Supers, super)
	}

	for _, f := range draft.Fields {
		fieldName, _ := draft.ConstantPool.Utf8At(f.NameIndex)
		fieldDesc, _ := draft.ConstantPool.Utf8At(f.DescriptorIndex)
		c.Fields = append(c.Fields, class.Field{
			Name:        fieldName,
			Descriptor:  fieldDesc,
			AccessFlags: accessflags.AccessFlags(f.AccessFlags),
		})
	}

	c.Methods = make([]class.Method, len(draft.Methods))
	for i, dm := range draft.Methods {
		methodName, _ := draft.ConstantPool.Utf8At(dm.NameIndex)
		methodDesc, _ := draft.ConstantPool.Utf8At(dm.DescriptorIndex)
		c.Methods[i] = class.Method{
			Name:        methodName,
			Descriptor:  methodDesc,
			AccessFlags: accessflags.AccessFlags(dm.AccessFlags),
		}
	}

	for i := range c.Methods {
		if err := reg.mz.Materialize(&c.Methods[i], &draft.Methods[i], draft.ConstantPool); err != nil {
			// Materialization failures are fatal per spec.md §7: they
			// originate from an already-decoded, structurally valid
			// class that simply cannot be linked.
			panic(err)
		}
	}

	reg.classes[name] = c
	return c, status.Success
}

// LookupMethod implements materializer.Resolver without loading
// anything: it only ever consults classes already present in the map.
func (reg *ClassRegistry) LookupMethod(className, descriptor string) (ptr uintptr, classLoaded bool, methodFound bool) {
	c, ok := reg.classes[className]
	if !ok {
		return 0, false, false
	}
	m, found := c.GetMethodByDescriptor(descriptor)
	if !found {
		return 0, true, false
	}
	return m.CodePtr, true, true
}

// ResolveOrPanic implements callback.Resolver: the stable entry point
// generated trampolines call back into. It loads className if necessary
// and raises a fatal error if the class or the method cannot be found.
func (reg *ClassRegistry) ResolveOrPanic(className, methodDescriptor string) *callback.NativeMethodHandle {
	c, st := reg.LoadClass(className)
	if st != status.Success {
		panic(status.AsError(st))
	}
	m, ok := c.GetMethodByDescriptor(methodDescriptor)
	if !ok {
		panic(fmt.Errorf("lava: registry: class %q has no method with descriptor %q", className, methodDescriptor))
	}
	return &callback.NativeMethodHandle{CodePtr: m.CodePtr}
}

// findClass searches class paths in insertion order for <dir>/<name>
// with its extension (if any) replaced by ".lclass", returning the first
// path that exists or "" if none do.
func (reg *ClassRegistry) findClass(name string) string {
	file := withLclassExt(name)
	for _, dir := range reg.classPaths {
		candidate := filepath.Join(dir, file)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func withLclassExt(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + ".lclass"
}

// Close releases every owned executable code buffer and unregisters the
// registry's callback token. Call once the registry itself is discarded.
func (reg *ClassRegistry) Close() error {
	callback.Unregister(reg.token)
	var firstErr error
	for _, c := range reg.classes {
		if err := c.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
