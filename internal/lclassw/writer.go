// Package lclassw is the write-side counterpart of internal/lclass: it
// builds a well-formed .lclass byte stream from a class description.
//
// Grounded on nova's internal/jvmgen/classfile.go (the Sola-to-JVM
// class-file encoder): same shape (an in-memory builder plus a
// Write(io.Writer)/ToBytes() pair, constant pool entries appended in
// declaration order), adapted to the flatter two-tag (ClassRef/Utf8)
// .lclass constant pool instead of the JVM's many-tag one, and with a
// deduplicating interner added (the compiler utility's prompts re-enter
// the same class/descriptor strings across many method refs).
package lclassw

import (
	"bytes"
	"encoding/binary"
)

const (
	magic   uint32 = 0x484F544C
	version uint16 = 1

	tagClassRef uint8 = 1
	tagUtf8     uint8 = 2
)

// FieldSpec describes one field to be written.
type FieldSpec struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
}

// MethodRefSpec describes one methodref call-site attribute.
type MethodRefSpec struct {
	ClassName  string
	Descriptor string
	ByteOffset uint32
}

// MethodSpec describes one method to be written. Code may be empty (a
// native-only declaration with no body).
type MethodSpec struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Code        []byte
	Refs        []MethodRefSpec
}

// poolEntry is an already-resolved constant pool entry awaiting
// serialization in insertion order.
type poolEntry struct {
	tag       uint8
	nameIndex uint16 // valid only for tagClassRef
	utf8      string // valid only for tagUtf8
}

// ClassWriter accumulates a class description and serializes it to a
// well-formed .lclass stream.
type ClassWriter struct {
	AccessFlags uint16
	ClassName   string
	SuperNames  []string
	Fields      []FieldSpec
	Methods     []MethodSpec

	pool     []poolEntry
	utf8Ix   map[string]uint16
	classIx  map[string]uint16
}

// NewClassWriter creates a writer for a class named className with
// default public access.
func NewClassWriter(className string) *ClassWriter {
	return &ClassWriter{
		AccessFlags: 0x0001,
		ClassName:   className,
		utf8Ix:      make(map[string]uint16),
		classIx:     make(map[string]uint16),
	}
}

func (w *ClassWriter) internUtf8(s string) uint16 {
	if idx, ok := w.utf8Ix[s]; ok {
		return idx
	}
	w.pool = append(w.pool, poolEntry{tag: tagUtf8, utf8: s})
	idx := uint16(len(w.pool))
	w.utf8Ix[s] = idx
	return idx
}

func (w *ClassWriter) internClassRef(name string) uint16 {
	if idx, ok := w.classIx[name]; ok {
		return idx
	}
	nameIdx := w.internUtf8(name)
	w.pool = append(w.pool, poolEntry{tag: tagClassRef, nameIndex: nameIdx})
	idx := uint16(len(w.pool))
	w.classIx[name] = idx
	return idx
}

// ToBytes serializes the accumulated class to a .lclass byte stream.
func (w *ClassWriter) ToBytes() ([]byte, error) {
	// Pre-intern every string the body will reference so the pool is
	// fully built before we know its final size, mirroring jvmgen's
	// build-pool-then-emit-header order.
	thisClassIdx := w.internClassRef(w.ClassName)
	superIdx := make([]uint16, len(w.SuperNames))
	for i, s := range w.SuperNames {
		superIdx[i] = w.internClassRef(s)
	}

	const attrNameCode = "code"
	const attrNameMethodRef = "methodref"
	var codeNameIdx, methodRefNameIdx uint16
	needsCode, needsMethodRef := false, false
	for _, m := range w.Methods {
		if len(m.Code) > 0 {
			needsCode = true
		}
		if len(m.Refs) > 0 {
			needsMethodRef = true
		}
	}
	if needsCode {
		codeNameIdx = w.internUtf8(attrNameCode)
	}
	if needsMethodRef {
		methodRefNameIdx = w.internUtf8(attrNameMethodRef)
	}

	fieldIdx := make([][2]uint16, len(w.Fields))
	for i, f := range w.Fields {
		fieldIdx[i] = [2]uint16{w.internUtf8(f.Name), w.internUtf8(f.Descriptor)}
	}

	type resolvedRef struct {
		classRefIdx uint16
		descIdx     uint16
		byteOffset  uint32
	}
	methodIdx := make([][2]uint16, len(w.Methods))
	methodRefs := make([][]resolvedRef, len(w.Methods))
	for i, m := range w.Methods {
		methodIdx[i] = [2]uint16{w.internUtf8(m.Name), w.internUtf8(m.Descriptor)}
		refs := make([]resolvedRef, len(m.Refs))
		for j, r := range m.Refs {
			refs[j] = resolvedRef{
				classRefIdx: w.internClassRef(r.ClassName),
				descIdx:     w.internUtf8(r.Descriptor),
				byteOffset:  r.ByteOffset,
			}
		}
		methodRefs[i] = refs
	}

	var buf bytes.Buffer
	be := binary.BigEndian
	write := func(v any) {
		binary.Write(&buf, be, v)
	}

	write(magic)
	write(version)

	write(uint16(len(w.pool) + 1))
	for _, e := range w.pool {
		switch e.tag {
		case tagClassRef:
			write(tagClassRef)
			write(e.nameIndex)
		case tagUtf8:
			write(tagUtf8)
			write(uint32(len(e.utf8)))
			buf.WriteString(e.utf8)
		}
	}

	write(w.AccessFlags)
	write(thisClassIdx)

	write(uint16(len(superIdx)))
	for _, idx := range superIdx {
		write(idx)
	}

	write(uint16(len(w.Fields)))
	for i, f := range w.Fields {
		write(f.AccessFlags)
		write(fieldIdx[i][0])
		write(fieldIdx[i][1])
		write(uint16(0)) // attribute_count
	}

	write(uint16(len(w.Methods)))
	for i, m := range w.Methods {
		write(m.AccessFlags)
		write(methodIdx[i][0])
		write(methodIdx[i][1])

		attrCount := uint16(len(methodRefs[i]))
		if len(m.Code) > 0 {
			attrCount++
		}
		write(attrCount)

		if len(m.Code) > 0 {
			write(codeNameIdx)
			write(uint32(len(m.Code)))
			buf.Write(m.Code)
		}
		for _, r := range methodRefs[i] {
			write(methodRefNameIdx)
			write(uint32(8))
			write(r.classRefIdx)
			write(r.descIdx)
			write(r.byteOffset)
		}
	}

	write(uint16(0)) // class attribute_count

	return buf.Bytes(), nil
}
