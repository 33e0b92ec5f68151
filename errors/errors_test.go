package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/wippyai/jsrt/sys"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "engine failure",
			err: &Error{
				Phase: PhaseContext,
				Kind:  KindArgument,
				Code:  sys.ErrorInvalidArgument,
				Op:    "JsSetProperty",
				Path:  []string{"globalThis", "multiply"},
			},
			contains: []string{"[context]", "argument", "globalThis.multiply", "JsSetProperty failed", "JsErrorInvalidArgument"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseRuntime,
				Kind:  KindReleased,
			},
			contains: []string{"[runtime]", "released"},
		},
		{
			name: "script exception",
			err: &Error{
				Phase:     PhaseScript,
				Kind:      KindScript,
				Code:      sys.ErrorScriptException,
				Op:        "JsRunScript",
				Exception: "Error: boom",
			},
			contains: []string{"[script]", "JsErrorScriptException", "uncaught exception: Error: boom"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseCallback,
				Kind:   KindCallback,
				Detail: "closure failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[callback]", "callback", "closure failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseCallback,
		Kind:  KindCallback,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := FromCode(PhaseScript, sys.ErrorScriptException, "JsRunScript")

	if !errors.Is(err, ErrScriptException) {
		t.Error("Is should match by code")
	}
	if errors.Is(err, ErrScriptCompile) {
		t.Error("Is should not match a different code")
	}
	if !err.Is(&Error{Kind: KindScript}) {
		t.Error("Is should match by kind when target has no code")
	}
	if !err.Is(&Error{Phase: PhaseScript, Kind: KindScript}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseValue, Kind: KindScript}) {
		t.Error("Is should not match different phase")
	}

	released := Released(PhaseRuntime, "runtime")
	if !errors.Is(released, ErrReleased) {
		t.Error("Released should match ErrReleased")
	}
}

func TestCheck(t *testing.T) {
	if err := Check(PhaseValue, sys.NoError, "JsIntToNumber"); err != nil {
		t.Fatalf("Check(NoError) = %v, want nil", err)
	}

	err := Check(PhaseValue, sys.ErrorNoCurrentContext, "JsIntToNumber")
	if err == nil {
		t.Fatal("Check should fail for a non-zero code")
	}
	if !errors.Is(err, ErrNoCurrentContext) {
		t.Errorf("err = %v, want ErrNoCurrentContext", err)
	}
	if CodeOf(err) != sys.ErrorNoCurrentContext {
		t.Errorf("CodeOf = %v", CodeOf(err))
	}
	if CodeOf(errors.New("plain")) != sys.NoError {
		t.Error("CodeOf should be NoError for foreign errors")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		code sys.ErrorCode
		want Kind
	}{
		{sys.ErrorInvalidArgument, KindArgument},
		{sys.ErrorNullArgument, KindArgument},
		{sys.ErrorArgumentNotObject, KindArgument},
		{sys.ErrorNoCurrentContext, KindContext},
		{sys.ErrorInExceptionState, KindContext},
		{sys.ErrorRuntimeInUse, KindContext},
		{sys.ErrorOutOfMemory, KindEngine},
		{sys.ErrorScriptException, KindScript},
		{sys.ErrorScriptCompile, KindScript},
		{sys.ErrorScriptTerminated, KindScript},
		{sys.ErrorScriptEvalDisabled, KindScript},
		{sys.ErrorFatal, KindFatal},
		{sys.ErrorCode(0x90000), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			if got := KindOf(tt.code); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseContext, KindContextMismatch).
		Path("multiply").
		Op("JsSetProperty").
		Code(sys.ErrorInvalidArgument).
		Exception("TypeError: nope").
		Cause(cause).
		Detail("guard on %s", "another context").
		Build()

	if err.Phase != PhaseContext {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseContext)
	}
	if err.Kind != KindContextMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindContextMismatch)
	}
	if len(err.Path) != 1 || err.Path[0] != "multiply" {
		t.Errorf("Path = %v, want [multiply]", err.Path)
	}
	if err.Op != "JsSetProperty" || err.Code != sys.ErrorInvalidArgument {
		t.Errorf("Op=%v Code=%v", err.Op, err.Code)
	}
	if err.Exception != "TypeError: nope" {
		t.Errorf("Exception = %v", err.Exception)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "guard on another context" {
		t.Errorf("Detail = %v, want 'guard on another context'", err.Detail)
	}
}

func TestArgument(t *testing.T) {
	err := Argument(PhaseCallback, "multiply expects 2 arguments, got %d", 1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Argument should match ErrInvalidArgument: %v", err)
	}
	if !strings.Contains(err.Error(), "got 1") {
		t.Errorf("message = %q", err.Error())
	}
}
