// Package lclass 实现 .lclass 二进制格式的解码与版本分发。
//
// Decode 验证魔数与版本，然后把游标刚好停在版本字段之后的 ByteReader
// 交给对应版本的解码器。目前只实现版本 1；未来版本应当新增一个
// decodeVN 函数并在这里登记分发，而不是修改 decodeV1。
package lclass

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/tangzhangming/lava/internal/bytereader"
	"github.com/tangzhangming/lava/internal/classfile"
	"github.com/tangzhangming/lava/internal/status"
)

// Magic 是 .lclass 文件的固定魔数 "HOTL"。
const Magic uint32 = 0x484F544C

// supportedVersions 列出当前能解码的版本号。
var supportedVersions = map[uint16]bool{
	1: true,
}

// Decode 解析完整的 .lclass 字节序列：校验魔数与版本，再分发到对应
// 版本的解码器。
func Decode(data []byte) (*classfile.DraftClass, status.LoadStatus) {
	r := bytereader.New(data)

	magic := r.U32()
	if magic != Magic {
		return nil, status.InvalidMagicNumber
	}

	version := r.U16()
	if !supportedVersions[version] {
		return nil, status.InvalidVersion
	}

	switch version {
	case 1:
		return decodeV1(r)
	default:
		return nil, status.InvalidVersion
	}
}

// Digest 返回一份已解码 .lclass 文件原始字节的短指纹（blake2b-256 的
// 前 8 字节，十六进制），供注册表在首次加载一个类时记到日志里，不参与
// 任何校验或相等性判断。
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
