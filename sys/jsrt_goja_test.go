//go:build !chakracore || !cgo

package sys

import (
	"testing"
)

// withContext runs fn with a fresh runtime whose single context is current.
func withContext(t *testing.T, attrs RuntimeAttributes, fn func(rt RuntimeHandle, cx ContextRef)) {
	t.Helper()
	rt, code := CreateRuntime(attrs)
	if code != NoError {
		t.Fatalf("CreateRuntime: %v", code)
	}
	cx, code := CreateContext(rt)
	if code != NoError {
		t.Fatalf("CreateContext: %v", code)
	}
	if code := SetCurrentContext(cx); code != NoError {
		t.Fatalf("SetCurrentContext: %v", code)
	}
	defer func() {
		SetCurrentContext(InvalidReference)
		if code := DisposeRuntime(rt); code != NoError {
			t.Errorf("DisposeRuntime: %v", code)
		}
	}()
	fn(rt, cx)
}

func run(t *testing.T, src string) (ValueRef, ErrorCode) {
	t.Helper()
	return RunScript(ToWide(src, true), 1, ToWide("test.js", true))
}

func TestEmulator_NoCurrentContext(t *testing.T) {
	if code := SetCurrentContext(InvalidReference); code != NoError {
		t.Fatalf("SetCurrentContext: %v", code)
	}
	if _, code := IntToNumber(1); code != ErrorNoCurrentContext {
		t.Fatalf("expected JsErrorNoCurrentContext, got %v", code)
	}
	if _, code := run(t, "1"); code != ErrorNoCurrentContext {
		t.Fatalf("expected JsErrorNoCurrentContext, got %v", code)
	}
	if code := SetCurrentContext(ContextRef(^uintptr(0))); code != ErrorInvalidArgument {
		t.Fatalf("expected JsErrorInvalidArgument for unknown context, got %v", code)
	}
}

func TestEmulator_RuntimeInUse(t *testing.T) {
	rt, _ := CreateRuntime(AttributeNone)
	cx, _ := CreateContext(rt)
	SetCurrentContext(cx)

	if code := DisposeRuntime(rt); code != ErrorRuntimeInUse {
		t.Fatalf("expected JsErrorRuntimeInUse, got %v", code)
	}
	SetCurrentContext(InvalidReference)
	if code := DisposeRuntime(rt); code != NoError {
		t.Fatalf("DisposeRuntime: %v", code)
	}
	if code := DisposeRuntime(rt); code != ErrorInvalidArgument {
		t.Fatalf("expected JsErrorInvalidArgument disposing twice, got %v", code)
	}
	if code := SetCurrentContext(cx); code != ErrorInvalidArgument {
		t.Fatalf("context must die with its runtime, got %v", code)
	}
}

func TestEmulator_ExceptionState(t *testing.T) {
	withContext(t, AttributeNone, func(rt RuntimeHandle, cx ContextRef) {
		if _, code := GetAndClearException(); code != ErrorInvalidArgument {
			t.Fatalf("expected JsErrorInvalidArgument with nothing pending, got %v", code)
		}

		if _, code := run(t, "throw 'x'"); code != ErrorScriptException {
			t.Fatalf("expected JsErrorScriptException, got %v", code)
		}
		if has, _ := HasException(); !has {
			t.Fatal("expected pending exception")
		}
		if _, code := run(t, "1"); code != ErrorInExceptionState {
			t.Fatalf("expected JsErrorInExceptionState, got %v", code)
		}

		exc, code := GetAndClearException()
		if code != NoError {
			t.Fatalf("GetAndClearException: %v", code)
		}
		b, code := CopyString(exc)
		if code != NoError || string(b) != "x" {
			t.Fatalf("exception = %q, %v", b, code)
		}
		if has, _ := HasException(); has {
			t.Fatal("exception not cleared")
		}

		if _, code := run(t, "("); code != ErrorScriptCompile {
			t.Fatalf("expected JsErrorScriptCompile, got %v", code)
		}
		GetAndClearException()
	})
}

func TestEmulator_Properties(t *testing.T) {
	withContext(t, AttributeNone, func(rt RuntimeHandle, cx ContextRef) {
		global, _ := GetGlobalObject()
		id, code := GetPropertyIDFromName(ToWide("answer", true))
		if code != NoError {
			t.Fatalf("GetPropertyIDFromName: %v", code)
		}
		again, _ := GetPropertyIDFromName(ToWide("answer", true))
		if again != id {
			t.Fatal("property ids must be interned")
		}

		n, _ := IntToNumber(42)
		if code := SetProperty(global, id, n, true); code != NoError {
			t.Fatalf("SetProperty: %v", code)
		}
		v, code := run(t, "answer")
		if code != NoError {
			t.Fatalf("RunScript: %v", code)
		}
		if got, _ := NumberToInt(v); got != 42 {
			t.Fatalf("expected 42, got %d", got)
		}

		if has, _ := HasProperty(global, id); !has {
			t.Fatal("expected property")
		}
		if _, code := DeleteProperty(global, id, true); code != NoError {
			t.Fatalf("DeleteProperty: %v", code)
		}
		if has, _ := HasProperty(global, id); has {
			t.Fatal("expected property removed")
		}

		if code := SetProperty(n, id, n, true); code != ErrorArgumentNotObject {
			t.Fatalf("expected JsErrorArgumentNotObject, got %v", code)
		}
	})
}

func TestEmulator_NativeFunction(t *testing.T) {
	type call struct {
		argc  int
		state uintptr
	}
	var calls []call
	SetNativeHandler(func(callee ValueRef, isConstructCall bool, args []ValueRef, state uintptr) ValueRef {
		calls = append(calls, call{len(args), state})
		if len(args) > 1 {
			return args[1]
		}
		msg, _ := CreateString([]byte("no arguments"))
		exc, _ := CreateTypeError(msg)
		SetException(exc)
		return exc
	})
	defer SetNativeHandler(nil)

	withContext(t, AttributeNone, func(rt RuntimeHandle, cx ContextRef) {
		fn, code := CreateFunction(77)
		if code != NoError {
			t.Fatalf("CreateFunction: %v", code)
		}
		if typ, _ := GetValueType(fn); typ != TypeFunction {
			t.Fatalf("expected function type, got %v", typ)
		}

		undef, _ := GetUndefinedValue()
		arg, _ := IntToNumber(9)
		res, code := CallFunction(fn, []ValueRef{undef, arg})
		if code != NoError {
			t.Fatalf("CallFunction: %v", code)
		}
		if n, _ := NumberToInt(res); n != 9 {
			t.Fatalf("expected 9, got %d", n)
		}

		if _, code := CallFunction(fn, []ValueRef{undef}); code != ErrorScriptException {
			t.Fatalf("expected JsErrorScriptException, got %v", code)
		}
		exc, _ := GetAndClearException()
		if typ, _ := GetValueType(exc); typ != TypeError {
			t.Fatalf("expected error object, got %v", typ)
		}

		if _, code := CallFunction(fn, nil); code != ErrorInvalidArgument {
			t.Fatalf("expected JsErrorInvalidArgument without receiver, got %v", code)
		}

		if len(calls) != 2 || calls[0] != (call{2, 77}) || calls[1] != (call{1, 77}) {
			t.Fatalf("unexpected calls %v", calls)
		}
	})
}

func TestEmulator_RefCounts(t *testing.T) {
	withContext(t, AttributeNone, func(rt RuntimeHandle, cx ContextRef) {
		obj, _ := CreateObject()
		if n, code := AddRef(obj); code != NoError || n != 1 {
			t.Fatalf("AddRef = %d, %v", n, code)
		}
		if n, code := Release(obj); code != NoError || n != 0 {
			t.Fatalf("Release = %d, %v", n, code)
		}
		if _, code := Release(obj); code != ErrorInvalidArgument {
			t.Fatalf("expected JsErrorInvalidArgument on underflow, got %v", code)
		}
		if _, code := AddRef(InvalidReference); code != ErrorNullArgument {
			t.Fatalf("expected JsErrorNullArgument, got %v", code)
		}
	})
}

func TestEmulator_DisableEval(t *testing.T) {
	withContext(t, AttributeDisableEval, func(rt RuntimeHandle, cx ContextRef) {
		if _, code := run(t, "eval('1')"); code != ErrorScriptException {
			t.Fatalf("expected JsErrorScriptException, got %v", code)
		}
		GetAndClearException()
		if _, code := run(t, "1 + 1"); code != NoError {
			t.Fatalf("plain scripts must still run: %v", code)
		}
	})
}

func TestEmulator_ConvertValueToString(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"int", "42", "42"},
		{"float", "1.5", "1.5"},
		{"bool", "true", "true"},
		{"null", "null", "null"},
		{"undefined", "undefined", "undefined"},
		{"string", "'héllo'", "héllo"},
		{"object", "({})", "[object Object]"},
		{"array", "[1, 2]", "1,2"},
		{"custom", "({ toString() { return 'custom' } })", "custom"},
	}

	withContext(t, AttributeNone, func(rt RuntimeHandle, cx ContextRef) {
		for _, tt := range tests {
			v, code := run(t, tt.src)
			if code != NoError {
				t.Fatalf("%s: RunScript: %v", tt.name, code)
			}
			s, code := ConvertValueToString(v)
			if code != NoError {
				t.Fatalf("%s: ConvertValueToString: %v", tt.name, code)
			}
			b, code := CopyString(s)
			if code != NoError {
				t.Fatalf("%s: CopyString: %v", tt.name, code)
			}
			if string(b) != tt.want {
				t.Fatalf("%s: got %q, want %q", tt.name, b, tt.want)
			}
		}

		v, _ := run(t, "({ toString() { throw new Error('no') } })")
		if _, code := ConvertValueToString(v); code != ErrorScriptException {
			t.Fatalf("expected JsErrorScriptException, got %v", code)
		}
		GetAndClearException()
	})
}

func liveValues() int {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	return len(emu.values)
}

func TestEmulator_CollectGarbage(t *testing.T) {
	withContext(t, AttributeNone, func(rt RuntimeHandle, cx ContextRef) {
		loose, _ := run(t, "({ a: 1 })")
		number, _ := IntToNumber(5)
		global, _ := run(t, "globalThis.kept = {}; kept")
		nested, _ := run(t, "globalThis.deep = { a: { b: {} } }; deep.a.b")
		accessor, _ := run(t, "(function () { var fn = function () {}; Object.defineProperty(globalThis, 'acc', { get: fn }); return fn })()")
		pinned, _ := CreateObject()
		pinnedNumber, _ := IntToNumber(6)
		AddRef(pinned)
		AddRef(pinnedNumber)

		if code := CollectGarbage(rt); code != NoError {
			t.Fatalf("CollectGarbage: %v", code)
		}

		for name, ref := range map[string]ValueRef{"loose": loose, "number": number} {
			if _, code := GetValueType(ref); code != ErrorInvalidArgument {
				t.Fatalf("%s: expected swept handle, got %v", name, code)
			}
		}
		for name, ref := range map[string]ValueRef{
			"global":        global,
			"nested":        nested,
			"accessor":      accessor,
			"pinned":        pinned,
			"pinned number": pinnedNumber,
		} {
			if _, code := GetValueType(ref); code != NoError {
				t.Fatalf("%s: expected live handle, got %v", name, code)
			}
		}

		Release(pinned)
		if code := CollectGarbage(rt); code != NoError {
			t.Fatalf("CollectGarbage: %v", code)
		}
		if _, code := GetValueType(pinned); code != ErrorInvalidArgument {
			t.Fatalf("expected released handle to be swept, got %v", code)
		}

		base := liveValues()
		for i := 0; i < 1000; i++ {
			if _, code := run(t, "var o = {a: 1}; o.a"); code != NoError {
				t.Fatalf("RunScript: %v", code)
			}
		}
		if code := CollectGarbage(rt); code != NoError {
			t.Fatalf("CollectGarbage: %v", code)
		}
		if n := liveValues(); n > base {
			t.Fatalf("handles grew from %d to %d", base, n)
		}
	})
}

func TestEmulator_CollectGarbageDuringCall(t *testing.T) {
	var rt RuntimeHandle
	SetNativeHandler(func(callee ValueRef, isConstructCall bool, args []ValueRef, state uintptr) ValueRef {
		if code := CollectGarbage(rt); code != NoError {
			t.Errorf("CollectGarbage: %v", code)
		}
		return args[1]
	})
	defer SetNativeHandler(nil)

	withContext(t, AttributeNone, func(r RuntimeHandle, cx ContextRef) {
		rt = r
		fn, _ := CreateFunction(1)
		global, _ := GetGlobalObject()
		id, _ := GetPropertyIDFromName(ToWide("f", true))
		if code := SetProperty(global, id, fn, true); code != NoError {
			t.Fatalf("SetProperty: %v", code)
		}

		res, code := run(t, "f({ v: 3 }).v")
		if code != NoError {
			t.Fatalf("RunScript: %v", code)
		}
		if n, _ := NumberToInt(res); n != 3 {
			t.Fatalf("expected 3, got %d", n)
		}
	})
}

func TestEmulator_ConstructCall(t *testing.T) {
	var construct []bool
	SetNativeHandler(func(callee ValueRef, isConstructCall bool, args []ValueRef, state uintptr) ValueRef {
		construct = append(construct, isConstructCall)
		if isConstructCall {
			id, _ := GetPropertyIDFromName(ToWide("made", true))
			yes, _ := BoolToBoolean(true)
			SetProperty(args[0], id, yes, true)
		}
		undef, _ := GetUndefinedValue()
		return undef
	})
	defer SetNativeHandler(nil)

	withContext(t, AttributeNone, func(rt RuntimeHandle, cx ContextRef) {
		fn, _ := CreateFunction(1)
		global, _ := GetGlobalObject()
		id, _ := GetPropertyIDFromName(ToWide("F", true))
		if code := SetProperty(global, id, fn, true); code != NoError {
			t.Fatalf("SetProperty: %v", code)
		}

		res, code := run(t, "F(); var o = new F(); o.made === true && o instanceof F")
		if code != NoError {
			t.Fatalf("RunScript: %v", code)
		}
		if ok, _ := BooleanToBool(res); !ok {
			t.Fatal("construct call must receive the new object as receiver")
		}
		if len(construct) != 2 || construct[0] || !construct[1] {
			t.Fatalf("unexpected construct flags %v", construct)
		}
	})
}
