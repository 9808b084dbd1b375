package bytereader

import "testing"

// TestPositionalReadsOutOfRange 验证越界的定位单值读取返回全零。
func TestPositionalReadsOutOfRange(t *testing.T) {
	r := New([]byte{0x01, 0x02})

	if got := r.U8At(5); got != 0 {
		t.Errorf("U8At out of range = %d, want 0", got)
	}
	if got := r.U16At(1); got != 0 {
		t.Errorf("U16At straddling end = %d, want 0", got)
	}
	if got := r.U32At(0); got != 0 {
		t.Errorf("U32At beyond buffer = %d, want 0", got)
	}
}

// TestU16AtBigEndian 验证大端序解码。
func TestU16AtBigEndian(t *testing.T) {
	r := New([]byte{0x12, 0x34})
	if got := r.U16At(0); got != 0x1234 {
		t.Errorf("U16At = %#x, want 0x1234", got)
	}
}

// TestBulkReadClamps 验证批量读取裁剪到剩余长度。
func TestBulkReadClamps(t *testing.T) {
	r := New([]byte{1, 2, 3})
	got := r.U8SliceAt(1, 10)
	if len(got) != 2 {
		t.Fatalf("U8SliceAt len = %d, want 2", len(got))
	}
	if got[0] != 2 || got[1] != 3 {
		t.Errorf("U8SliceAt = %v, want [2 3]", got)
	}
}

// TestU16SliceAtClampsToElementBoundary 验证 u16 批量读取按元素大小裁剪。
func TestU16SliceAtClampsToElementBoundary(t *testing.T) {
	r := New([]byte{0, 1, 0, 2, 0}) // 5 bytes -> 2 full u16 values
	got := r.U16SliceAt(0, 10)
	if len(got) != 2 {
		t.Fatalf("U16SliceAt len = %d, want 2", len(got))
	}
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("U16SliceAt = %v, want [1 2]", got)
	}
}

// TestCString 验证以 0 结尾字符串的读取与游标前进。
func TestCString(t *testing.T) {
	r := New([]byte{'h', 'i', 0, 'x'})
	if got := r.CString(); got != "hi" {
		t.Errorf("CString = %q, want %q", got, "hi")
	}
	if r.Cursor() != 3 {
		t.Errorf("Cursor after CString = %d, want 3", r.Cursor())
	}
}

// TestCStringUnterminated 验证缺少终止符时读到缓冲区末尾。
func TestCStringUnterminated(t *testing.T) {
	r := New([]byte{'a', 'b', 'c'})
	if got := r.CString(); got != "abc" {
		t.Errorf("CString = %q, want %q", got, "abc")
	}
	if r.Cursor() != 3 {
		t.Errorf("Cursor after unterminated CString = %d, want 3", r.Cursor())
	}
}

// TestCursorAdvancesPastEndOnIntegerRead 验证越界时游标仍按标称宽度前进。
func TestCursorAdvancesPastEndOnIntegerRead(t *testing.T) {
	r := New([]byte{0x01})
	v := r.U32()
	if v != 0 {
		t.Errorf("U32 past end = %d, want 0", v)
	}
	if r.Cursor() != 4 {
		t.Errorf("Cursor after out-of-range U32 = %d, want 4", r.Cursor())
	}
}
