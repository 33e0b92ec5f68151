//go:build chakracore && cgo

package sys

/*
#cgo LDFLAGS: -lChakraCore
#include "jsrt.h"
*/
import "C"

import "unsafe"

// Backend names the ABI implementation compiled into this binary.
const Backend = "chakracore"

func rtRef(h RuntimeHandle) C.JsRuntimeHandle { return C.JsRuntimeHandle(unsafe.Pointer(h)) }

func cxRef(h ContextRef) C.JsContextRef { return C.JsContextRef(unsafe.Pointer(h)) }

func valRef(h ValueRef) C.JsValueRef { return C.JsValueRef(unsafe.Pointer(h)) }

func pidRef(h PropertyIDRef) C.JsPropertyIdRef { return C.JsPropertyIdRef(unsafe.Pointer(h)) }

func wptr(w []uint16) *C.JsChar {
	if len(w) == 0 {
		return nil
	}
	return (*C.JsChar)(unsafe.Pointer(&w[0]))
}

func CreateRuntime(attrs RuntimeAttributes) (RuntimeHandle, ErrorCode) {
	var rt C.JsRuntimeHandle
	code := C.JsCreateRuntime(C.JsRuntimeAttributes(attrs), nil, &rt)
	return RuntimeHandle(uintptr(rt)), ErrorCode(code)
}

func DisposeRuntime(rt RuntimeHandle) ErrorCode {
	return ErrorCode(C.JsDisposeRuntime(rtRef(rt)))
}

func CollectGarbage(rt RuntimeHandle) ErrorCode {
	return ErrorCode(C.JsCollectGarbage(rtRef(rt)))
}

func CreateContext(rt RuntimeHandle) (ContextRef, ErrorCode) {
	var cx C.JsContextRef
	code := C.JsCreateContext(rtRef(rt), &cx)
	return ContextRef(uintptr(cx)), ErrorCode(code)
}

func GetCurrentContext() (ContextRef, ErrorCode) {
	var cx C.JsContextRef
	code := C.JsGetCurrentContext(&cx)
	return ContextRef(uintptr(cx)), ErrorCode(code)
}

func SetCurrentContext(cx ContextRef) ErrorCode {
	return ErrorCode(C.JsSetCurrentContext(cxRef(cx)))
}

func RunScript(script []uint16, sourceContext SourceContext, sourceURL []uint16) (ValueRef, ErrorCode) {
	if script == nil {
		return InvalidReference, ErrorNullArgument
	}
	var out C.JsValueRef
	code := C.JsRunScript(wptr(script), C.JsSourceContext(sourceContext), wptr(sourceURL), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func IntToNumber(n int32) (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsIntToNumber(C.int(n), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func NumberToInt(v ValueRef) (int32, ErrorCode) {
	var out C.int
	code := C.JsNumberToInt(valRef(v), &out)
	return int32(out), ErrorCode(code)
}

func DoubleToNumber(f float64) (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsDoubleToNumber(C.double(f), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func NumberToDouble(v ValueRef) (float64, ErrorCode) {
	var out C.double
	code := C.JsNumberToDouble(valRef(v), &out)
	return float64(out), ErrorCode(code)
}

func BoolToBoolean(b bool) (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsBoolToBoolean(C.bool(b), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func BooleanToBool(v ValueRef) (bool, ErrorCode) {
	var out C.bool
	code := C.JsBooleanToBool(valRef(v), &out)
	return bool(out), ErrorCode(code)
}

func CreateString(content []byte) (ValueRef, ErrorCode) {
	var out C.JsValueRef
	var p *C.char
	if len(content) > 0 {
		p = (*C.char)(unsafe.Pointer(&content[0]))
	}
	code := C.JsCreateString(p, C.size_t(len(content)), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

// CopyString performs the JsRT two-call protocol: query the length, then
// copy into a buffer of that size.
func CopyString(v ValueRef) ([]byte, ErrorCode) {
	var n C.size_t
	if code := ErrorCode(C.JsCopyString(valRef(v), nil, 0, &n)); code != NoError {
		return nil, code
	}
	if n == 0 {
		return []byte{}, NoError
	}
	buf := make([]byte, int(n))
	code := C.JsCopyString(valRef(v), (*C.char)(unsafe.Pointer(&buf[0])), n, &n)
	return buf[:int(n)], ErrorCode(code)
}

func ConvertValueToString(v ValueRef) (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsConvertValueToString(valRef(v), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func GetValueType(v ValueRef) (ValueType, ErrorCode) {
	var out C.JsValueType
	code := C.JsGetValueType(valRef(v), &out)
	return ValueType(out), ErrorCode(code)
}

func StrictEquals(a, b ValueRef) (bool, ErrorCode) {
	var out C.bool
	code := C.JsStrictEquals(valRef(a), valRef(b), &out)
	return bool(out), ErrorCode(code)
}

func CreateObject() (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsCreateObject(&out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func CreateError(message ValueRef) (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsCreateError(valRef(message), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func CreateTypeError(message ValueRef) (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsCreateTypeError(valRef(message), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func GetUndefinedValue() (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsGetUndefinedValue(&out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func GetNullValue() (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsGetNullValue(&out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func SetException(exception ValueRef) ErrorCode {
	return ErrorCode(C.JsSetException(valRef(exception)))
}

func GetAndClearException() (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsGetAndClearException(&out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func HasException() (bool, ErrorCode) {
	var out C.bool
	code := C.JsHasException(&out)
	return bool(out), ErrorCode(code)
}

func GetGlobalObject() (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsGetGlobalObject(&out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func GetPropertyIDFromName(name []uint16) (PropertyIDRef, ErrorCode) {
	if name == nil {
		return InvalidReference, ErrorNullArgument
	}
	var out C.JsPropertyIdRef
	code := C.JsGetPropertyIdFromName(wptr(name), &out)
	return PropertyIDRef(uintptr(out)), ErrorCode(code)
}

func GetProperty(obj ValueRef, id PropertyIDRef) (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsGetProperty(valRef(obj), pidRef(id), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func SetProperty(obj ValueRef, id PropertyIDRef, value ValueRef, useStrictRules bool) ErrorCode {
	return ErrorCode(C.JsSetProperty(valRef(obj), pidRef(id), valRef(value), C.bool(useStrictRules)))
}

func HasProperty(obj ValueRef, id PropertyIDRef) (bool, ErrorCode) {
	var out C.bool
	code := C.JsHasProperty(valRef(obj), pidRef(id), &out)
	return bool(out), ErrorCode(code)
}

func DeleteProperty(obj ValueRef, id PropertyIDRef, useStrictRules bool) (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.JsDeleteProperty(valRef(obj), pidRef(id), C.bool(useStrictRules), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func CreateFunction(state uintptr) (ValueRef, ErrorCode) {
	var out C.JsValueRef
	code := C.jsrtCreateFunction(C.uintptr_t(state), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func CallFunction(fn ValueRef, args []ValueRef) (ValueRef, ErrorCode) {
	if len(args) == 0 || len(args) > 0xFFFF {
		return InvalidReference, ErrorInvalidArgument
	}
	argv := make([]C.JsValueRef, len(args))
	for i, a := range args {
		argv[i] = valRef(a)
	}
	var out C.JsValueRef
	code := C.JsCallFunction(valRef(fn), &argv[0], C.ushort(len(args)), &out)
	return ValueRef(uintptr(out)), ErrorCode(code)
}

func AddRef(v ValueRef) (uint32, ErrorCode) {
	var count C.uint
	code := C.JsAddRef(C.JsRef(unsafe.Pointer(v)), &count)
	return uint32(count), ErrorCode(code)
}

func Release(v ValueRef) (uint32, ErrorCode) {
	var count C.uint
	code := C.JsRelease(C.JsRef(unsafe.Pointer(v)), &count)
	return uint32(count), ErrorCode(code)
}
