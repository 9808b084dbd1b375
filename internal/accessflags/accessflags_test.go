package accessflags

import "testing"

func TestStringStableOrder(t *testing.T) {
	f := Static | Public | Final
	if got, want := f.String(), "PUBLIC|STATIC|FINAL"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestStringNone(t *testing.T) {
	if got := AccessFlags(0).String(); got != "NONE" {
		t.Errorf("String() of zero = %q, want NONE", got)
	}
}

func TestAliasedBit(t *testing.T) {
	// 0x0020 在类上下文是 Super，在方法上下文是 Synchronized.
	f := AccessFlags(0x0020)
	if !f.Has(Super) || !f.Has(Synchronized) {
		t.Errorf("aliased bit 0x0020 should satisfy both Super and Synchronized")
	}
}

func TestAliasedBitRendersClassContextName(t *testing.T) {
	f := AccessFlags(0x0020) | AccessFlags(0x0001)
	got := f.String()
	if got != "PUBLIC|SUPER" {
		t.Errorf("String() = %q, want PUBLIC|SUPER", got)
	}
}
