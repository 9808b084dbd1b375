// Package invoke calls into materialized method code from Go.
//
// Grounded on nova's internal/jit bridge_amd64.go/call_amd64.go pair
// (callNative0..callNative4 bodyless declarations backed by hand-written
// assembly): same shape, narrowed to the one arity this loader's CLI
// surface needs (spec.md §6: the demo driver invokes a method with
// exactly three u64 arguments) and to the fixed Microsoft x64 argument
// registers every materialized call site already assumes.
package invoke
