// Package class 实现已加载类的内存表示：Field、Method 与 Class 本身。
//
// Class.Supers 中的元素是指向注册表拥有的其它 Class 的非拥有反向指针。
// 它们之所以始终有效，是因为注册表从不驱逐已加载的类，并且注册表的
// 底层容器在插入新类时不会使已取出的指针失效（见 internal/registry）。
package class

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/tangzhangming/lava/internal/accessflags"
	"github.com/tangzhangming/lava/internal/execmem"
)

// Field 是一个已解析的字段：名字、描述符与访问标志都已从常量池中
// 解出为具体字符串，构造之后不再变化。
type Field struct {
	Name        string
	Descriptor  string
	AccessFlags accessflags.AccessFlags
}

// Method 是一个已解析的方法。CodePtr 要么指向外部提供的本机函数
// （Allocated == false，不被本类拥有），要么指向执行内存分配器返回的
// 缓冲区（Allocated == true）。当 Allocated 为真时，该缓冲区在物化期间
// 为 RW，物化完成后翻转为 RX；二者永不同时成立。
type Method struct {
	Name        string
	Descriptor  string
	AccessFlags accessflags.AccessFlags

	CodeLength int
	CodePtr    uintptr // 代码入口地址；未物化时为 0
	Allocated  bool

	region *execmem.Region // 仅当 Allocated 时非 nil；类销毁时释放
}

// SetExternalCode 把方法指向一段外部提供、不被本类拥有的本机函数。
// 用于把已经是机器码的函数预先注册到某个类中（例如测试里的"已加载"
// 直接调用目标）。
func (m *Method) SetExternalCode(ptr uintptr, length int) {
	m.CodePtr = ptr
	m.CodeLength = length
	m.Allocated = false
	m.region = nil
}

// SetOwnedCode 把方法指向物化器分配的可执行区域，类型标记为拥有。
func (m *Method) SetOwnedCode(region *execmem.Region, length int) {
	m.region = region
	m.CodePtr = firstByteAddr(region)
	m.CodeLength = length
	m.Allocated = true
}

func firstByteAddr(r *execmem.Region) uintptr {
	addr := r.Addr()
	if len(addr) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&addr[0]))
}

// Release 释放方法拥有的可执行缓冲区（若有）。
func (m *Method) Release() error {
	if !m.Allocated || m.region == nil {
		return nil
	}
	err := m.region.Free()
	m.region = nil
	m.CodePtr = 0
	m.Allocated = false
	return err
}

// Class 是一个已加载类的完整内存表示。
type Class struct {
	Name        string
	AccessFlags accessflags.AccessFlags

	// Supers 是非拥有的反向指针，顺序与 .lclass 中的 super 表一致。
	Supers []*Class

	Fields  []Field
	Methods []Method
}

// GetMethod 按名字（可选精确匹配描述符）查找方法。descriptor 为空时
// 只按名字匹配第一个命中项。
func (c *Class) GetMethod(name, descriptor string) (*Method, bool) {
	for i := range c.Methods {
		m := &c.Methods[i]
		if m.Name != name {
			continue
		}
		if descriptor == "" || m.Descriptor == descriptor {
			return m, true
		}
	}
	return nil, false
}

// GetMethodByDescriptor 按描述符查找方法，忽略名字。methodref 常量项只
// 携带目标描述符（没有单独的方法名字段），解析调用点时靠这个定位目标。
func (c *Class) GetMethodByDescriptor(descriptor string) (*Method, bool) {
	for i := range c.Methods {
		m := &c.Methods[i]
		if m.Descriptor == descriptor {
			return m, true
		}
	}
	return nil, false
}

// Release 释放该类所有拥有的方法代码缓冲区。在类从注册表中移除（通常
// 仅发生在注册表自身销毁）时调用。
func (c *Class) Release() error {
	var firstErr error
	for i := range c.Methods {
		if err := c.Methods[i].Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Dump 把类的文本化表示写入 w：名字、访问标志、supers、fields、methods。
// 这不是 THE CORE 的一部分（对应原始实现中的 hexdump/dump 调试打印器），
// 没有其它核心组件依赖它。
func (c *Class) Dump(w io.Writer) {
	fmt.Fprintf(w, "class %s (%s)\n", c.Name, c.AccessFlags)
	if len(c.Supers) > 0 {
		fmt.Fprint(w, "  supers:")
		for _, s := range c.Supers {
			fmt.Fprintf(w, " %s", s.Name)
		}
		fmt.Fprintln(w)
	}
	for _, f := range c.Fields {
		fmt.Fprintf(w, "  field %s %s (%s)\n", f.Descriptor, f.Name, f.AccessFlags)
	}
	for _, m := range c.Methods {
		state := "unbound"
		if m.CodePtr != 0 {
			state = fmt.Sprintf("code@%#x len=%d", m.CodePtr, m.CodeLength)
		}
		fmt.Fprintf(w, "  method %s %s (%s) %s\n", m.Descriptor, m.Name, m.AccessFlags, state)
	}
}
