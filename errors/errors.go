package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/wippyai/jsrt/sys"
)

// Phase indicates which layer the error came from
type Phase string

const (
	PhaseRuntime    Phase = "runtime"    // runtime creation and disposal
	PhaseContext    Phase = "context"    // context activation and globals
	PhaseValue      Phase = "value"      // value factories and conversions
	PhaseFunction   Phase = "function"   // native function creation and calls
	PhaseCallback   Phase = "callback"   // host closures invoked by the engine
	PhaseScript     Phase = "script"     // script evaluation
	PhaseRoot       Phase = "root"       // root store anchoring
	PhasePersistent Phase = "persistent" // reference-count anchoring
)

// Kind categorizes the error
type Kind string

const (
	KindArgument        Kind = "argument"
	KindContext         Kind = "context"
	KindScript          Kind = "script"
	KindEngine          Kind = "engine"
	KindFatal           Kind = "fatal"
	KindUnknown         Kind = "unknown"
	KindInvalidInput    Kind = "invalid_input"
	KindContextMismatch Kind = "context_mismatch"
	KindReleased        Kind = "released"
	KindCallback        Kind = "callback"
	KindPanic           Kind = "panic"
)

// Error is the structured error type used throughout the binding
type Error struct {
	Cause     error
	Phase     Phase
	Kind      Kind
	Op        string
	Detail    string
	Exception string
	Path      []string
	Code      sys.ErrorCode
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
		b.WriteString(" failed")
	}

	if e.Code != sys.NoError {
		b.WriteString(" (")
		b.WriteString(e.Code.String())
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Exception != "" {
		b.WriteString(": uncaught exception: ")
		b.WriteString(e.Exception)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target carrying an engine
// code matches by code; otherwise by kind, and by phase when the target
// names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != sys.NoError {
		return e.Code == t.Code
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidArgument  = &Error{Kind: KindArgument, Code: sys.ErrorInvalidArgument}
	ErrNullArgument     = &Error{Kind: KindArgument, Code: sys.ErrorNullArgument}
	ErrNoCurrentContext = &Error{Kind: KindContext, Code: sys.ErrorNoCurrentContext}
	ErrInExceptionState = &Error{Kind: KindContext, Code: sys.ErrorInExceptionState}
	ErrRuntimeInUse     = &Error{Kind: KindContext, Code: sys.ErrorRuntimeInUse}
	ErrScriptException  = &Error{Kind: KindScript, Code: sys.ErrorScriptException}
	ErrScriptCompile    = &Error{Kind: KindScript, Code: sys.ErrorScriptCompile}
	ErrScriptTerminated = &Error{Kind: KindScript, Code: sys.ErrorScriptTerminated}
	ErrEvalDisabled     = &Error{Kind: KindScript, Code: sys.ErrorScriptEvalDisabled}
	ErrReleased         = &Error{Kind: KindReleased}
	ErrContextMismatch  = &Error{Kind: KindContextMismatch}
)

// KindOf maps an engine status code onto the error taxonomy.
func KindOf(code sys.ErrorCode) Kind {
	switch code.Category() {
	case sys.CategoryUsage:
		switch code {
		case sys.ErrorNoCurrentContext, sys.ErrorInExceptionState, sys.ErrorWrongThread,
			sys.ErrorRuntimeInUse, sys.ErrorInDisabledState, sys.ErrorCannotDisableExecution,
			sys.ErrorHeapEnumInProgress, sys.ErrorInProfileCallback,
			sys.ErrorInThreadServiceCallback, sys.ErrorInvalidContext:
			return KindContext
		}
		return KindArgument
	case sys.CategoryEngine:
		return KindEngine
	case sys.CategoryScript:
		return KindScript
	case sys.CategoryFatal:
		return KindFatal
	}
	return KindUnknown
}

// Check converts the status code of the engine call op into an error.
// JsNoError yields a nil error.
func Check(phase Phase, code sys.ErrorCode, op string) error {
	if code == sys.NoError {
		return nil
	}
	return FromCode(phase, code, op)
}

// FromCode builds the error for a failed engine call unconditionally.
func FromCode(phase Phase, code sys.ErrorCode, op string) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindOf(code),
		Code:  code,
		Op:    op,
	}
}

// CodeOf returns the engine code carried by err, or sys.NoError.
func CodeOf(err error) sys.ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return sys.NoError
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Code sets the engine status code
func (b *Builder) Code(code sys.ErrorCode) *Builder {
	b.err.Code = code
	return b
}

// Op sets the failing engine entry point
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Path sets the property path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Exception sets the string form of the thrown script value
func (b *Builder) Exception(msg string) *Builder {
	b.err.Exception = msg
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidInput creates an error for host-supplied input the binding rejects
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Released creates an error for use of a handle after its release
func Released(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindReleased,
		Detail: what + " already released",
	}
}

// Argument creates an argument error with the engine's invalid-argument code.
// Host callbacks use it to reject bad calls the way engine built-ins do.
func Argument(phase Phase, format string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArgument,
		Code:   sys.ErrorInvalidArgument,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
