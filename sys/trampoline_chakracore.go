//go:build chakracore && cgo

package sys

/*
#include "jsrt.h"
*/
import "C"

import "unsafe"

//export jsrtGoTrampoline
func jsrtGoTrampoline(callee C.JsValueRef, isConstructCall C.bool, args *C.JsValueRef, argc C.ushort, state C.uintptr_t) C.JsValueRef {
	var argv []ValueRef
	if args != nil && argc > 0 {
		raw := unsafe.Slice(args, int(argc))
		argv = make([]ValueRef, len(raw))
		for i, a := range raw {
			argv[i] = ValueRef(uintptr(a))
		}
	}
	res := invokeNative(ValueRef(uintptr(callee)), bool(isConstructCall), argv, uintptr(state))
	return C.JsValueRef(unsafe.Pointer(res))
}
