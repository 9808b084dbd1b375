// Package classfile 定义 .lclass 解码期间使用的中间形状：常量池条目、
// 属性条目、以及草稿阶段的字段/方法。这些类型只在解码阶段存在；解码
// 完成后，internal/lclass 把它们交给 internal/class 构造运行期表示。
//
// 与 nova 的 internal/jvmgen/classfile.go（写侧）相对偶：那里的
// ConstantPoolEntry 是一个 Write(io.Writer) 接口，这里是读侧的手写标签
// 联合——新增 tag 不会破坏既有校验（未知 tag 统一映射为
// InvalidConstantPoolEntry）。
package classfile

// ConstantTag 标识常量池条目的种类。
type ConstantTag uint8

const (
	TagClassRef ConstantTag = 1
	TagUtf8     ConstantTag = 2
)

// ConstantPoolEntry 是常量池中的一个条目。按 1-based 索引存储在
// ConstantPool 中，索引 0 保留表示“无”。
//
// 只有两种合法形状：tag=1 的 ClassRef（持有到某个 Utf8 条目的索引）和
// tag=2 的 Utf8（持有原始字节）。解码完成后的不变量：每个
// ClassRef.NameIndex 都指向一个 Utf8 条目。
type ConstantPoolEntry struct {
	Tag ConstantTag

	// NameIndex 仅在 Tag == TagClassRef 时有意义。
	NameIndex uint16

	// Utf8 仅在 Tag == TagUtf8 时有意义。
	Utf8 string
}

// ConstantPool 是 1-based 索引的常量池条目表；索引 0 未使用。
// 逻辑大小等于解码时读到的 constant_pool_count - 1。
type ConstantPool struct {
	// entries[0] 是占位符（索引 0 保留），entries[i] 对应 1-based 索引 i。
	entries []ConstantPoolEntry
}

// NewConstantPool 创建一个能容纳 logicalSize 个条目（1..logicalSize）的
// 常量池。
func NewConstantPool(logicalSize int) *ConstantPool {
	return &ConstantPool{entries: make([]ConstantPoolEntry, logicalSize+1)}
}

// Size 返回逻辑大小（不含索引 0 的占位符）。
func (p *ConstantPool) Size() int {
	if p == nil || len(p.entries) == 0 {
		return 0
	}
	return len(p.entries) - 1
}

// Set 在 1-based 索引 idx 处写入一个条目。
func (p *ConstantPool) Set(idx uint16, e ConstantPoolEntry) {
	if int(idx) < len(p.entries) {
		p.entries[idx] = e
	}
}

// Get 返回 1-based 索引 idx 处的条目与其是否存在（idx 落在 [1, Size()]
// 内）。索引 0 或越界均视为不存在。
func (p *ConstantPool) Get(idx uint16) (ConstantPoolEntry, bool) {
	if idx == 0 || int(idx) >= len(p.entries) {
		return ConstantPoolEntry{}, false
	}
	return p.entries[idx], true
}

// Utf8At 返回 idx 处条目的 UTF-8 字符串，要求该条目确实是 Utf8。
func (p *ConstantPool) Utf8At(idx uint16) (string, bool) {
	e, ok := p.Get(idx)
	if !ok || e.Tag != TagUtf8 {
		return "", false
	}
	return e.Utf8, true
}

// ClassNameAt 解析 idx 处的 ClassRef 条目，返回其指向的类名字符串。
func (p *ConstantPool) ClassNameAt(idx uint16) (string, bool) {
	e, ok := p.Get(idx)
	if !ok || e.Tag != TagClassRef {
		return "", false
	}
	return p.Utf8At(e.NameIndex)
}

// AttributeKind 区分解码期间结构化解析的两种属性与其余的不透明属性。
type AttributeKind int

const (
	AttrOpaque AttributeKind = iota
	AttrCode
	AttrMethodRef
)

// AttributeEntry 是一个名字加载荷的属性记录。"code" 与 "methodref" 会
// 被结构化解析；其余名字原样保留为 {Name, Bytes}，以便向前兼容。
type AttributeEntry struct {
	Name string
	Kind AttributeKind

	// Bytes 对 AttrOpaque 是完整的原始 info 载荷；对 AttrCode 是方法的
	// 机器码；对 AttrMethodRef 未使用。
	Bytes []byte

	// MethodRef 仅在 Kind == AttrMethodRef 时有效。
	MethodRef MethodRefInfo
}

// MethodRefInfo 描述方法代码中一个调用点的外部目标。
type MethodRefInfo struct {
	ClassNameIndex        uint16
	MethodDescriptorIndex uint16
	ByteOffset            uint32
}

// DraftField 是解码阶段的字段记录，尚未解析常量池引用为字符串。
type DraftField struct {
	NameIndex       uint16
	DescriptorIndex uint16
	AccessFlags     uint16
	Attributes      []AttributeEntry
}

// DraftMethod 是解码阶段的方法记录。
type DraftMethod struct {
	NameIndex       uint16
	DescriptorIndex uint16
	AccessFlags     uint16
	Attributes      []AttributeEntry
}

// Code 返回该方法唯一的 "code" 属性（若存在）。调用方（解码器）负责
// 保证至多一个 code 属性存在；此处只返回第一个匹配项。
func (m *DraftMethod) Code() ([]byte, bool) {
	for _, a := range m.Attributes {
		if a.Kind == AttrCode {
			return a.Bytes, true
		}
	}
	return nil, false
}

// MethodRefs 返回该方法全部 "methodref" 属性，顺序与解码时出现的顺序一致。
func (m *DraftMethod) MethodRefs() []MethodRefInfo {
	var refs []MethodRefInfo
	for _, a := range m.Attributes {
		if a.Kind == AttrMethodRef {
			refs = append(refs, a.MethodRef)
		}
	}
	return refs
}

// CodeAttributeCount 返回该方法 "code" 属性的个数，供解码器强制“至多一个”
// 的约束。
func (m *DraftMethod) CodeAttributeCount() int {
	n := 0
	for _, a := range m.Attributes {
		if a.Kind == AttrCode {
			n++
		}
	}
	return n
}

// DraftClass 是解码阶段产出的完整类草稿：常量池加已解析（但尚未链接到
// 注册表）的结构。
type DraftClass struct {
	ConstantPool *ConstantPool

	AccessFlags     uint16
	ThisClassIndex  uint16
	SuperIndices    []uint16
	Fields          []DraftField
	Methods         []DraftMethod
	Attributes      []AttributeEntry

	// Warnings 聚合解码过程中遇到的非致命情况（目前只有「未识别的属性
	// 名字」），用 multierr 合并成一个 error；nil 表示没有警告。这些
	// 不影响解码是否成功——只有 LoadStatus 才能让 load_class 失败。
	Warnings error
}
