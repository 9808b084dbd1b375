// Package bytereader 提供大端序的定长字节解码器。
//
// 设计上不返回错误：越界的单值读取返回全零结果，越界的批量读取
// 截断到剩余长度。结构性校验由调用方（解码器）基于声明的计数完成，
// 而不是依赖读取失败。
package bytereader

import "encoding/binary"

// ByteReader 是对内存中字节序列的带游标包装。
type ByteReader struct {
	buf    []byte
	cursor int
}

// New 从给定字节序列创建一个 ByteReader，游标位于 0。
func New(buf []byte) *ByteReader {
	return &ByteReader{buf: buf}
}

// Len 返回底层字节序列的长度。
func (r *ByteReader) Len() int {
	return len(r.buf)
}

// Cursor 返回当前游标位置。
func (r *ByteReader) Cursor() int {
	return r.cursor
}

// SeekTo 将游标移动到 pos（不做边界裁剪，允许等于 Len）。
func (r *ByteReader) SeekTo(pos int) {
	r.cursor = pos
}

// Remaining 返回游标之后剩余的字节数，越界时为 0。
func (r *ByteReader) Remaining() int {
	if r.cursor >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.cursor
}

// ----------------------------------------------------------------------
// 定位读取：不推进游标，越界返回全零
// ----------------------------------------------------------------------

// U8At 读取 pos 处的 1 字节无符号整数；越界返回 0。
func (r *ByteReader) U8At(pos int) uint8 {
	if pos < 0 || pos+1 > len(r.buf) {
		return 0
	}
	return r.buf[pos]
}

// U16At 读取 pos 处的大端 2 字节无符号整数；越界返回 0。
func (r *ByteReader) U16At(pos int) uint16 {
	if pos < 0 || pos+2 > len(r.buf) {
		return 0
	}
	return binary.BigEndian.Uint16(r.buf[pos : pos+2])
}

// U32At 读取 pos 处的大端 4 字节无符号整数；越界返回 0。
func (r *ByteReader) U32At(pos int) uint32 {
	if pos < 0 || pos+4 > len(r.buf) {
		return 0
	}
	return binary.BigEndian.Uint32(r.buf[pos : pos+4])
}

// U64At 读取 pos 处的大端 8 字节无符号整数；越界返回 0。
func (r *ByteReader) U64At(pos int) uint64 {
	if pos < 0 || pos+8 > len(r.buf) {
		return 0
	}
	return binary.BigEndian.Uint64(r.buf[pos : pos+8])
}

// I8At、I16At、I32At、I64At 是对应无符号读取的按位重解释。
func (r *ByteReader) I8At(pos int) int8   { return int8(r.U8At(pos)) }
func (r *ByteReader) I16At(pos int) int16 { return int16(r.U16At(pos)) }
func (r *ByteReader) I32At(pos int) int32 { return int32(r.U32At(pos)) }
func (r *ByteReader) I64At(pos int) int64 { return int64(r.U64At(pos)) }

// StringAt 返回 pos 处长度为 L 的字节视图，裁剪到 min(L, len-pos)。
func (r *ByteReader) StringAt(pos int, length int) string {
	if pos < 0 || pos >= len(r.buf) || length <= 0 {
		return ""
	}
	end := pos + length
	if end > len(r.buf) {
		end = len(r.buf)
	}
	return string(r.buf[pos:end])
}

// CStringAt 从 pos 开始扫描到第一个 0 字节或末尾，返回其间的字符串
// （不含终止符）。
func (r *ByteReader) CStringAt(pos int) string {
	if pos < 0 || pos >= len(r.buf) {
		return ""
	}
	end := pos
	for end < len(r.buf) && r.buf[end] != 0 {
		end++
	}
	return string(r.buf[pos:end])
}

// ----------------------------------------------------------------------
// 批量定位读取：返回实际读取的元素个数，按 (len-pos)/sizeof(T) 裁剪
// ----------------------------------------------------------------------

// U8SliceAt 从 pos 开始读取最多 n 个字节，返回实际读取的切片。
func (r *ByteReader) U8SliceAt(pos int, n int) []uint8 {
	count := clampCount(len(r.buf), pos, n, 1)
	out := make([]uint8, count)
	if count > 0 {
		copy(out, r.buf[pos:pos+count])
	}
	return out
}

// U16SliceAt 从 pos 开始读取最多 n 个大端 u16。
func (r *ByteReader) U16SliceAt(pos int, n int) []uint16 {
	count := clampCount(len(r.buf), pos, n, 2)
	out := make([]uint16, count)
	for i := 0; i < count; i++ {
		out[i] = r.U16At(pos + i*2)
	}
	return out
}

// U32SliceAt 从 pos 开始读取最多 n 个大端 u32。
func (r *ByteReader) U32SliceAt(pos int, n int) []uint32 {
	count := clampCount(len(r.buf), pos, n, 4)
	out := make([]uint32, count)
	for i := 0; i < count; i++ {
		out[i] = r.U32At(pos + i*4)
	}
	return out
}

// U64SliceAt 从 pos 开始读取最多 n 个大端 u64。
func (r *ByteReader) U64SliceAt(pos int, n int) []uint64 {
	count := clampCount(len(r.buf), pos, n, 8)
	out := make([]uint64, count)
	for i := 0; i < count; i++ {
		out[i] = r.U64At(pos + i*8)
	}
	return out
}

// clampCount 计算 pos 处最多可容纳 n 个 elemSize 大小元素中，实际可读的个数。
func clampCount(total, pos, n, elemSize int) int {
	if pos < 0 || pos >= total || n <= 0 {
		return 0
	}
	maxByCapacity := (total - pos) / elemSize
	if n < maxByCapacity {
		return n
	}
	return maxByCapacity
}

// ----------------------------------------------------------------------
// 游标读取：在当前游标处读取并前进
// ----------------------------------------------------------------------

// U8 在游标处读取 1 字节并前进；越界仍前进（与零填充语义一致）。
func (r *ByteReader) U8() uint8 {
	v := r.U8At(r.cursor)
	r.cursor += 1
	return v
}

// U16 在游标处读取 2 字节并前进。
func (r *ByteReader) U16() uint16 {
	v := r.U16At(r.cursor)
	r.cursor += 2
	return v
}

// U32 在游标处读取 4 字节并前进。
func (r *ByteReader) U32() uint32 {
	v := r.U32At(r.cursor)
	r.cursor += 4
	return v
}

// U64 在游标处读取 8 字节并前进。
func (r *ByteReader) U64() uint64 {
	v := r.U64At(r.cursor)
	r.cursor += 8
	return v
}

// I8、I16、I32、I64 是游标版本的有符号重解释读取。
func (r *ByteReader) I8() int8   { return int8(r.U8()) }
func (r *ByteReader) I16() int16 { return int16(r.U16()) }
func (r *ByteReader) I32() int32 { return int32(r.U32()) }
func (r *ByteReader) I64() int64 { return int64(r.U64()) }

// Bytes 在游标处读取 n 字节并前进，裁剪到剩余长度。
func (r *ByteReader) Bytes(n int) []byte {
	out := r.U8SliceAt(r.cursor, n)
	r.cursor += n
	return out
}

// String 在游标处读取长度为 n 的字符串并前进。
func (r *ByteReader) String(n int) string {
	s := r.StringAt(r.cursor, n)
	r.cursor += n
	return s
}

// CString 在游标处读取一个以 0 结尾的字符串，游标前进到终止符之后
// （或缓冲区末尾）。
func (r *ByteReader) CString() string {
	s := r.CStringAt(r.cursor)
	r.cursor += len(s) + 1
	if r.cursor > len(r.buf) {
		r.cursor = len(r.buf)
	}
	return s
}
