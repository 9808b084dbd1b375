package lclass

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/tangzhangming/lava/internal/bytereader"
	"github.com/tangzhangming/lava/internal/classfile"
	"github.com/tangzhangming/lava/internal/status"
)

const (
	attrNameCode      = "code"
	attrNameMethodRef = "methodref"
)

// decodeV1 解析版本 1 的 .lclass 主体。r 的游标必须恰好位于版本字段
// 之后。出错时返回第一个观察到的 LoadStatus，短路后续解析。
func decodeV1(r *bytereader.ByteReader) (*classfile.DraftClass, status.LoadStatus) {
	pool, st := readConstantPool(r)
	if st != status.Success {
		return nil, st
	}

	draft := &classfile.DraftClass{ConstantPool: pool}
	var warnings error

	draft.AccessFlags = r.U16()
	draft.ThisClassIndex = r.U16()
	if !isClassRef(pool, draft.ThisClassIndex) {
		return nil, status.InvalidThisClassEntry
	}

	superCount := r.U16()
	draft.SuperIndices = r.U16SliceAt(r.Cursor(), int(superCount))
	r.SeekTo(r.Cursor() + int(superCount)*2)
	for _, idx := range draft.SuperIndices {
		if !isClassRef(pool, idx) {
			return nil, status.InvalidSuperClassEntry
		}
	}

	fieldCount := r.U16()
	for i := uint16(0); i < fieldCount; i++ {
		field, st := readField(r, pool, &warnings)
		if st != status.Success {
			return nil, st
		}
		draft.Fields = append(draft.Fields, field)
	}

	methodCount := r.U16()
	for i := uint16(0); i < methodCount; i++ {
		method, st := readMethod(r, pool, &warnings)
		if st != status.Success {
			return nil, st
		}
		draft.Methods = append(draft.Methods, method)
	}

	attrCount := r.U16()
	for i := uint16(0); i < attrCount; i++ {
		attr, st := readAttribute(r, pool, &warnings)
		if st != status.Success {
			return nil, st
		}
		draft.Attributes = append(draft.Attributes, attr)
	}

	draft.Warnings = warnings
	return draft, status.Success
}

// readConstantPool 读取常量池并校验每个 ClassRef 的交叉引用。
func readConstantPool(r *bytereader.ByteReader) (*classfile.ConstantPool, status.LoadStatus) {
	count := r.U16()
	logicalSize := 0
	if count > 0 {
		logicalSize = int(count) - 1
	}
	pool := classfile.NewConstantPool(logicalSize)

	for i := 1; i <= logicalSize; i++ {
		tag := classfile.ConstantTag(r.U8())
		switch tag {
		case classfile.TagClassRef:
			pool.Set(uint16(i), classfile.ConstantPoolEntry{
				Tag:       classfile.TagClassRef,
				NameIndex: r.U16(),
			})
		case classfile.TagUtf8:
			length := r.U32()
			bytes := r.Bytes(int(length))
			pool.Set(uint16(i), classfile.ConstantPoolEntry{
				Tag:  classfile.TagUtf8,
				Utf8: string(bytes),
			})
		default:
			return nil, status.InvalidConstantPoolEntry
		}
	}

	// 交叉引用校验：每个 ClassRef.NameIndex 必须指向一个 Utf8 条目。
	for i := 1; i <= logicalSize; i++ {
		e, _ := pool.Get(uint16(i))
		if e.Tag == classfile.TagClassRef {
			if _, ok := pool.Utf8At(e.NameIndex); !ok {
				return nil, status.InvalidConstantPool
			}
		}
	}

	return pool, status.Success
}

// isClassRef 报告 idx 是否指向常量池中的一个 tag=1 (ClassRef) 条目。
func isClassRef(pool *classfile.ConstantPool, idx uint16) bool {
	e, ok := pool.Get(idx)
	return ok && e.Tag == classfile.TagClassRef
}

// isUtf8 报告 idx 是否指向常量池中的一个 tag=2 (Utf8) 条目。
func isUtf8(pool *classfile.ConstantPool, idx uint16) bool {
	_, ok := pool.Utf8At(idx)
	return ok
}

func readField(r *bytereader.ByteReader, pool *classfile.ConstantPool, warnings *error) (classfile.DraftField, status.LoadStatus) {
	f := classfile.DraftField{
		AccessFlags:     r.U16(),
		NameIndex:       r.U16(),
		DescriptorIndex: r.U16(),
	}
	if !isUtf8(pool, f.NameIndex) {
		return classfile.DraftField{}, status.InvalidFieldName
	}
	if !isUtf8(pool, f.DescriptorIndex) {
		return classfile.DraftField{}, status.InvalidFieldDescriptor
	}

	attrCount := r.U16()
	for i := uint16(0); i < attrCount; i++ {
		attr, st := readAttribute(r, pool, warnings)
		if st != status.Success {
			return classfile.DraftField{}, st
		}
		f.Attributes = append(f.Attributes, attr)
	}
	return f, status.Success
}

func readMethod(r *bytereader.ByteReader, pool *classfile.ConstantPool, warnings *error) (classfile.DraftMethod, status.LoadStatus) {
	m := classfile.DraftMethod{
		AccessFlags:     r.U16(),
		NameIndex:       r.U16(),
		DescriptorIndex: r.U16(),
	}
	if !isUtf8(pool, m.NameIndex) {
		return classfile.DraftMethod{}, status.InvalidMethodName
	}
	if !isUtf8(pool, m.DescriptorIndex) {
		return classfile.DraftMethod{}, status.InvalidMethodDescriptor
	}

	attrCount := r.U16()
	for i := uint16(0); i < attrCount; i++ {
		attr, st := readAttribute(r, pool, warnings)
		if st != status.Success {
			return classfile.DraftMethod{}, st
		}
		m.Attributes = append(m.Attributes, attr)
	}

	if m.CodeAttributeCount() > 1 {
		return classfile.DraftMethod{}, status.InvalidAttributeName
	}

	return m, status.Success
}

// readAttribute 读取一个 {name_index, length, info} 属性记录，并在名字
// 匹配 "code" 或 "methodref" 时结构化解析其载荷。不认识的属性名字不是
// 致命错误：原样保留为 opaque，同时把情况记进 warnings 供调用方日志。
func readAttribute(r *bytereader.ByteReader, pool *classfile.ConstantPool, warnings *error) (classfile.AttributeEntry, status.LoadStatus) {
	nameIndex := r.U16()
	length := r.U32()
	info := r.Bytes(int(length))

	name, ok := pool.Utf8At(nameIndex)
	if !ok {
		return classfile.AttributeEntry{}, status.InvalidAttributeName
	}

	switch name {
	case attrNameCode:
		return classfile.AttributeEntry{Name: name, Kind: classfile.AttrCode, Bytes: info}, status.Success
	case attrNameMethodRef:
		if len(info) != 8 {
			return classfile.AttributeEntry{}, status.InvalidAttributeName
		}
		ir := bytereader.New(info)
		classNameIndex := ir.U16()
		methodDescriptorIndex := ir.U16()
		byteOffset := ir.U32()

		if !isClassRef(pool, classNameIndex) {
			return classfile.AttributeEntry{}, status.InvalidMethodRefClassName
		}
		if !isUtf8(pool, methodDescriptorIndex) {
			return classfile.AttributeEntry{}, status.InvalidMethodRefMethodDescriptor
		}

		return classfile.AttributeEntry{
			Name: name,
			Kind: classfile.AttrMethodRef,
			MethodRef: classfile.MethodRefInfo{
				ClassNameIndex:        classNameIndex,
				MethodDescriptorIndex: methodDescriptorIndex,
				ByteOffset:            byteOffset,
			},
		}, status.Success
	default:
		*warnings = multierr.Append(*warnings, fmt.Errorf("lava: unrecognized attribute %q (%d bytes), keeping opaque", name, len(info)))
		return classfile.AttributeEntry{Name: name, Kind: classfile.AttrOpaque, Bytes: info}, status.Success
	}
}
