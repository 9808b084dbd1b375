// Package accessflags 实现一个不透明的 16 位访问标志集合。
//
// 若干位在不同实体上下文中有两种别名含义（例如 0x0020 在类上是 Super，
// 在方法上是 Synchronized），模型只存储原始位，解释留给调用方。
package accessflags

import "strings"

// AccessFlags 是一个不透明的 16 位标志集合。
type AccessFlags uint16

const (
	Public       AccessFlags = 0x0001
	Private      AccessFlags = 0x0002
	Protected    AccessFlags = 0x0004
	Static       AccessFlags = 0x0008
	Final        AccessFlags = 0x0010
	Super        AccessFlags = 0x0020 // 类上下文
	Synchronized AccessFlags = 0x0020 // 方法上下文，与 Super 同位
	Volatile     AccessFlags = 0x0040
	Bridge       AccessFlags = 0x0040 // 方法上下文，与 Volatile 同位
	Transient    AccessFlags = 0x0080
	Varargs      AccessFlags = 0x0080 // 方法上下文，与 Transient 同位
	Native       AccessFlags = 0x0100
	Interface    AccessFlags = 0x0200
	Abstract     AccessFlags = 0x0400
	Strict       AccessFlags = 0x0800
	Synthetic    AccessFlags = 0x1000
	Annotation   AccessFlags = 0x2000
	Enum         AccessFlags = 0x4000
	Module       AccessFlags = 0x8000
)

// namedBits 按位值从低到高排列，用于 String() 的稳定渲染顺序。
// 出现位别名时取类上下文名称；方法专属的解释由调用方按需求透出。
var namedBits = []struct {
	bit  AccessFlags
	name string
}{
	{Public, "PUBLIC"},
	{Private, "PRIVATE"},
	{Protected, "PROTECTED"},
	{Static, "STATIC"},
	{Final, "FINAL"},
	{Super, "SUPER"},
	{Volatile, "VOLATILE"},
	{Transient, "TRANSIENT"},
	{Native, "NATIVE"},
	{Interface, "INTERFACE"},
	{Abstract, "ABSTRACT"},
	{Strict, "STRICT"},
	{Synthetic, "SYNTHETIC"},
	{Annotation, "ANNOTATION"},
	{Enum, "ENUM"},
	{Module, "MODULE"},
}

// Has 报告 f 是否设置了 bit 对应的所有位。
func (f AccessFlags) Has(bit AccessFlags) bool {
	return f&bit == bit
}

// With 返回设置了额外 bit 的新标志集合。
func (f AccessFlags) With(bit AccessFlags) AccessFlags {
	return f | bit
}

// Without 返回清除了 bit 的新标志集合。
func (f AccessFlags) Without(bit AccessFlags) AccessFlags {
	return f &^ bit
}

// String 返回稳定、确定顺序的可打印渲染，例如 "PUBLIC|STATIC|FINAL"。
// 未命名的位以 "0x..." 形式追加在末尾。
func (f AccessFlags) String() string {
	var parts []string
	remaining := f
	for _, nb := range namedBits {
		if f.Has(nb.bit) {
			parts = append(parts, nb.name)
			remaining &^= nb.bit
		}
	}
	if remaining != 0 {
		parts = append(parts, "0x"+uintToHex(uint16(remaining)))
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

func uintToHex(v uint16) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}
