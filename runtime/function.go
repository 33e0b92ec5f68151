package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/jsrt/errors"
	"github.com/wippyai/jsrt/resource"
	"github.com/wippyai/jsrt/sys"
)

func init() {
	sys.SetNativeHandler(nativeTrampoline)
}

// Callback is a host closure callable from script.
//
// A non-nil error is raised in script as an Error whose message is the
// error's text. Panics are recovered and raised the same way.
type Callback func(g *Guard, info CallInfo) (Value, error)

// CallInfo describes one script-side call of a Function.
type CallInfo struct {
	// This is the receiver the engine passed in argument slot 0.
	This Value

	// Arguments are the script arguments, receiver excluded.
	Arguments []Value

	// IsConstructCall is set for `new f(...)`. This is then the object
	// being constructed; returning an object replaces it.
	IsConstructCall bool
}

// callbackState is what the engine's callback state token resolves to.
type callbackState struct {
	rt *Runtime
	fn Callback
}

func (s *callbackState) Drop() {
	s.fn = nil
}

// Function is a host closure exposed as an engine function value.
//
// Closing a Function does not free its callback state; the Runtime owns it
// and frees it after the engine runtime is disposed.
//
// The function value itself is not anchored. Install it in script scope or
// hold it in a PersistentValue to keep it across collections.
type Function struct {
	value Value
	state resource.Handle
}

// NewFunction wraps fn as a function value in the guarded context of rt.
func NewFunction(rt *Runtime, g *Guard, fn Callback) (*Function, error) {
	if err := g.check(errors.PhaseFunction); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errors.InvalidInput(errors.PhaseFunction, "nil callback")
	}
	if rt.Raw() == sys.InvalidReference {
		return nil, errors.Released(errors.PhaseFunction, "runtime")
	}
	if g.Runtime() != rt {
		return nil, errors.New(errors.PhaseFunction, errors.KindContextMismatch).
			Detail("guard belongs to another runtime").
			Build()
	}

	h := callbackStates.Insert(callbackTypeID, &callbackState{rt: rt, fn: fn})
	if h == 0 {
		return nil, errors.New(errors.PhaseFunction, errors.KindFatal).
			Detail("callback state table closed").
			Build()
	}
	rt.registerCallbackState(h)

	ref, code := sys.CreateFunction(uintptr(h))
	if err := errors.Check(errors.PhaseFunction, code, "JsCreateFunction"); err != nil {
		return nil, err
	}

	rt.log.Debug("function created",
		zap.Uint32("state", uint32(h)),
		zap.Uintptr("value", uintptr(ref)))

	return &Function{value: Value{ref: ref}, state: h}, nil
}

// Value returns the function value, for installing it in script scope.
func (f *Function) Value() Value { return f.value }

// Call invokes the function with the function value itself as receiver.
func (f *Function) Call(g *Guard, args ...Value) (Value, error) {
	if err := g.check(errors.PhaseFunction); err != nil {
		return Value{}, err
	}
	if f.value.IsZero() {
		return Value{}, errors.Released(errors.PhaseFunction, "function")
	}
	return g.call(f.value, f.value, args)
}

// Close drops the wrapper's references. The callback state stays alive
// until the Runtime is closed.
func (f *Function) Close() {
	f.value = Value{}
	f.state = 0
}

// nativeTrampoline is the single entry point the engine calls for every
// Function. It runs on the engine's thread with the calling context already
// current and must never let a panic escape.
func nativeTrampoline(callee sys.ValueRef, isConstructCall bool, args []sys.ValueRef, state uintptr) (ret sys.ValueRef) {
	var rt *Runtime
	defer func() {
		if p := recover(); p != nil {
			err := errors.New(errors.PhaseCallback, errors.KindPanic).
				Detail("callback panicked: %v", p).
				Build()
			ret = raise(rt, err)
		}
	}()

	v, ok := callbackStates.GetTyped(resource.Handle(state), callbackTypeID)
	if !ok {
		return raise(nil, errors.Released(errors.PhaseCallback, "callback state"))
	}
	s := v.(*callbackState)
	rt = s.rt
	fn := s.fn
	if fn == nil {
		return raise(rt, errors.Released(errors.PhaseCallback, "callback state"))
	}

	cx, code := sys.GetCurrentContext()
	if err := errors.Check(errors.PhaseCallback, code, "JsGetCurrentContext"); err != nil {
		return raise(rt, err)
	}
	g := reentrantGuard(&Context{rt: rt, handle: cx})
	defer g.Release()

	info := CallInfo{IsConstructCall: isConstructCall}
	if len(args) > 0 {
		info.This = Value{ref: args[0]}
		info.Arguments = make([]Value, len(args)-1)
		for i, a := range args[1:] {
			info.Arguments[i] = Value{ref: a}
		}
	}

	res, err := fn(g, info)
	if err != nil {
		return raise(rt, err)
	}
	if res.IsZero() {
		undef, _ := sys.GetUndefinedValue()
		return undef
	}
	return res.ref
}

// raise sets err as the pending engine exception and returns the thrown
// value. If no Error object can be built, undefined is thrown instead.
func raise(rt *Runtime, err error) sys.ValueRef {
	log := Logger()
	if rt != nil {
		log = rt.log
	}
	log.Debug("callback failed", zap.Error(err))

	if msg, code := sys.CreateString([]byte(err.Error())); code == sys.NoError {
		if exc, code := sys.CreateError(msg); code == sys.NoError {
			if sys.SetException(exc) == sys.NoError {
				if rt != nil {
					rt.recordThrown(exc, err)
				}
				return exc
			}
		}
	}

	undef, _ := sys.GetUndefinedValue()
	_ = sys.SetException(undef)
	return undef
}
