// Package status 定义类加载操作的错误枚举。
//
// 与 nova 的 internal/errors 不同，这里不携带源码位置：.lclass 是二进制
// 产物，没有行列信息可报告，因此只保留一个扁平的状态码枚举。
package status

// LoadStatus 是 load_class 返回的状态码。
type LoadStatus int

const (
	Success LoadStatus = iota // 成功

	FileNotFound // 在任何 class path 上都找不到 .lclass 文件

	InvalidMagicNumber // 魔数不等于 "HOTL"
	InvalidVersion     // 版本号不在受支持集合中（目前仅 {1}）

	InvalidConstantPool      // 常量池交叉引用检查失败
	InvalidConstantPoolEntry // 未知的条目 tag

	InvalidThisClassEntry  // this_class 未指向合法的 tag=1 条目
	InvalidSuperClassEntry // 某个 super 索引非法，或 super 链中出现环

	InvalidFieldName       // 字段 name_index 未指向 tag=2 条目
	InvalidFieldDescriptor // 字段 descriptor_index 未指向 tag=2 条目

	InvalidAttributeName // 属性 name_index 未指向 tag=2 条目

	InvalidMethodName       // 方法 name_index 未指向 tag=2 条目
	InvalidMethodDescriptor // 方法 descriptor_index 未指向 tag=2 条目

	InvalidMethodRefClassName       // methodref.class_name_index 交叉引用失败
	InvalidMethodRefMethodDescriptor // methodref.method_descriptor_index 交叉引用失败
)

var names = [...]string{
	Success:                           "Success",
	FileNotFound:                      "FileNotFound",
	InvalidMagicNumber:                "InvalidMagicNumber",
	InvalidVersion:                    "InvalidVersion",
	InvalidConstantPool:               "InvalidConstantPool",
	InvalidConstantPoolEntry:          "InvalidConstantPoolEntry",
	InvalidThisClassEntry:             "InvalidThisClassEntry",
	InvalidSuperClassEntry:            "InvalidSuperClassEntry",
	InvalidFieldName:                  "InvalidFieldName",
	InvalidFieldDescriptor:            "InvalidFieldDescriptor",
	InvalidAttributeName:              "InvalidAttributeName",
	InvalidMethodName:                 "InvalidMethodName",
	InvalidMethodDescriptor:           "InvalidMethodDescriptor",
	InvalidMethodRefClassName:         "InvalidMethodRefClassName",
	InvalidMethodRefMethodDescriptor:  "InvalidMethodRefMethodDescriptor",
}

// String 实现 fmt.Stringer。
func (s LoadStatus) String() string {
	if int(s) < 0 || int(s) >= len(names) {
		return "UnknownStatus"
	}
	return names[s]
}

// OK 报告该状态是否表示成功。
func (s LoadStatus) OK() bool {
	return s == Success
}

// Error 将状态包装为 error，供需要 error 接口的调用方（如 MustLoadClass）使用。
type Error struct {
	Status LoadStatus
}

func (e *Error) Error() string {
	return "lava: " + e.Status.String()
}

// AsError 将非 Success 状态转换为 *Error；Success 返回 nil。
func AsError(s LoadStatus) error {
	if s == Success {
		return nil
	}
	return &Error{Status: s}
}
