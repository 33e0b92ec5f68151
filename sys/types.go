package sys

import (
	"fmt"
	"sync"
)

// RuntimeHandle identifies one engine runtime.
type RuntimeHandle uintptr

// ContextRef identifies one execution context inside a runtime.
type ContextRef uintptr

// ValueRef identifies an engine-managed value.
type ValueRef uintptr

// PropertyIDRef identifies an interned property name.
type PropertyIDRef uintptr

// SourceContext is the host-chosen cookie passed along with script source.
type SourceContext uintptr

// InvalidReference is the null handle of every handle type.
const InvalidReference = 0

// ErrorCode is a JsRT status code.
type ErrorCode uint32

// Error categories occupy the high bits of every code.
const (
	CategoryUsage  ErrorCode = 0x10000
	CategoryEngine ErrorCode = 0x20000
	CategoryScript ErrorCode = 0x30000
	CategoryFatal  ErrorCode = 0x40000

	categoryMask ErrorCode = 0xF0000
)

const (
	NoError ErrorCode = 0

	ErrorInvalidArgument         ErrorCode = CategoryUsage + 0x1
	ErrorNullArgument            ErrorCode = CategoryUsage + 0x2
	ErrorNoCurrentContext        ErrorCode = CategoryUsage + 0x3
	ErrorInExceptionState        ErrorCode = CategoryUsage + 0x4
	ErrorNotImplemented          ErrorCode = CategoryUsage + 0x5
	ErrorWrongThread             ErrorCode = CategoryUsage + 0x6
	ErrorRuntimeInUse            ErrorCode = CategoryUsage + 0x7
	ErrorBadSerializedScript     ErrorCode = CategoryUsage + 0x8
	ErrorInDisabledState         ErrorCode = CategoryUsage + 0x9
	ErrorCannotDisableExecution  ErrorCode = CategoryUsage + 0xA
	ErrorHeapEnumInProgress      ErrorCode = CategoryUsage + 0xB
	ErrorArgumentNotObject       ErrorCode = CategoryUsage + 0xC
	ErrorInProfileCallback       ErrorCode = CategoryUsage + 0xD
	ErrorInThreadServiceCallback ErrorCode = CategoryUsage + 0xE
	ErrorPropertyNotSymbol       ErrorCode = CategoryUsage + 0x17
	ErrorPropertyNotString       ErrorCode = CategoryUsage + 0x18
	ErrorInvalidContext          ErrorCode = CategoryUsage + 0x19
	ErrorOutOfMemory             ErrorCode = CategoryEngine + 0x1
	ErrorBadFPUState             ErrorCode = CategoryEngine + 0x2
	ErrorScriptException         ErrorCode = CategoryScript + 0x1
	ErrorScriptCompile           ErrorCode = CategoryScript + 0x2
	ErrorScriptTerminated        ErrorCode = CategoryScript + 0x3
	ErrorScriptEvalDisabled      ErrorCode = CategoryScript + 0x4
	ErrorFatal                   ErrorCode = CategoryFatal + 0x1
	ErrorWrongRuntime            ErrorCode = CategoryFatal + 0x2
)

var errorCodeNames = map[ErrorCode]string{
	NoError:                      "JsNoError",
	ErrorInvalidArgument:         "JsErrorInvalidArgument",
	ErrorNullArgument:            "JsErrorNullArgument",
	ErrorNoCurrentContext:        "JsErrorNoCurrentContext",
	ErrorInExceptionState:        "JsErrorInExceptionState",
	ErrorNotImplemented:          "JsErrorNotImplemented",
	ErrorWrongThread:             "JsErrorWrongThread",
	ErrorRuntimeInUse:            "JsErrorRuntimeInUse",
	ErrorBadSerializedScript:     "JsErrorBadSerializedScript",
	ErrorInDisabledState:         "JsErrorInDisabledState",
	ErrorCannotDisableExecution:  "JsErrorCannotDisableExecution",
	ErrorHeapEnumInProgress:      "JsErrorHeapEnumInProgress",
	ErrorArgumentNotObject:       "JsErrorArgumentNotObject",
	ErrorInProfileCallback:       "JsErrorInProfileCallback",
	ErrorInThreadServiceCallback: "JsErrorInThreadServiceCallback",
	ErrorPropertyNotSymbol:       "JsErrorPropertyNotSymbol",
	ErrorPropertyNotString:       "JsErrorPropertyNotString",
	ErrorInvalidContext:          "JsErrorInvalidContext",
	ErrorOutOfMemory:             "JsErrorOutOfMemory",
	ErrorBadFPUState:             "JsErrorBadFPUState",
	ErrorScriptException:         "JsErrorScriptException",
	ErrorScriptCompile:           "JsErrorScriptCompile",
	ErrorScriptTerminated:        "JsErrorScriptTerminated",
	ErrorScriptEvalDisabled:      "JsErrorScriptEvalDisabled",
	ErrorFatal:                   "JsErrorFatal",
	ErrorWrongRuntime:            "JsErrorWrongRuntime",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("JsErrorCode(0x%x)", uint32(c))
}

// Category returns the category bits of c.
func (c ErrorCode) Category() ErrorCode {
	return c & categoryMask
}

// RuntimeAttributes are the flags accepted by CreateRuntime.
type RuntimeAttributes uint32

const (
	AttributeNone                            RuntimeAttributes = 0x0
	AttributeDisableBackgroundWork           RuntimeAttributes = 0x1
	AttributeAllowScriptInterrupt            RuntimeAttributes = 0x2
	AttributeEnableIdleProcessing            RuntimeAttributes = 0x4
	AttributeDisableNativeCodeGeneration     RuntimeAttributes = 0x8
	AttributeDisableEval                     RuntimeAttributes = 0x10
	AttributeEnableExperimentalFeatures      RuntimeAttributes = 0x20
	AttributeDispatchSetExceptionsToDebugger RuntimeAttributes = 0x40
	AttributeDisableFatalOnOOM               RuntimeAttributes = 0x80
)

// ValueType is the engine's classification of a value.
type ValueType int32

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeNumber
	TypeString
	TypeBoolean
	TypeObject
	TypeFunction
	TypeError
	TypeArray
	TypeSymbol
	TypeArrayBuffer
	TypeTypedArray
	TypeDataView
)

var valueTypeNames = [...]string{
	TypeUndefined:   "undefined",
	TypeNull:        "null",
	TypeNumber:      "number",
	TypeString:      "string",
	TypeBoolean:     "boolean",
	TypeObject:      "object",
	TypeFunction:    "function",
	TypeError:       "error",
	TypeArray:       "array",
	TypeSymbol:      "symbol",
	TypeArrayBuffer: "arraybuffer",
	TypeTypedArray:  "typedarray",
	TypeDataView:    "dataview",
}

func (t ValueType) String() string {
	if t >= 0 && int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("ValueType(%d)", int32(t))
}

// NativeFunction is the signature of the process-wide trampoline.
// args[0] is always the receiver; state is the token given to CreateFunction.
// The returned reference becomes the call's result unless an exception was
// set with SetException before returning.
type NativeFunction func(callee ValueRef, isConstructCall bool, args []ValueRef, state uintptr) ValueRef

var (
	nativeMu      sync.RWMutex
	nativeHandler NativeFunction
)

// SetNativeHandler installs the trampoline every function created by
// CreateFunction dispatches to. Passing nil uninstalls it.
func SetNativeHandler(fn NativeFunction) {
	nativeMu.Lock()
	nativeHandler = fn
	nativeMu.Unlock()
}

func invokeNative(callee ValueRef, isConstructCall bool, args []ValueRef, state uintptr) ValueRef {
	nativeMu.RLock()
	fn := nativeHandler
	nativeMu.RUnlock()
	if fn == nil {
		return InvalidReference
	}
	return fn(callee, isConstructCall, args, state)
}
