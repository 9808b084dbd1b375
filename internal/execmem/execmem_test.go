package execmem

import "testing"

// TestAllocateWriteExecuteFree 验证分配、写入、翻转为可执行、释放的完整
// 生命周期不报错，且区域大小至少满足请求。
func TestAllocateWriteExecuteFree(t *testing.T) {
	r, err := AllocateRW(64)
	if err != nil {
		t.Fatalf("AllocateRW: %v", err)
	}
	if r.Len() < 64 {
		t.Fatalf("region len = %d, want >= 64", r.Len())
	}

	copy(r.Addr(), []byte{0xC3}) // ret

	if err := r.MakeExecutable(); err != nil {
		t.Fatalf("MakeExecutable: %v", err)
	}
	if err := r.MakeWritable(); err != nil {
		t.Fatalf("MakeWritable: %v", err)
	}
	if err := r.Free(); err != nil {
		t.Fatalf("Free: %v", err)
	}
}
