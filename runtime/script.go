package runtime

import (
	"sync/atomic"

	"github.com/wippyai/jsrt/errors"
	"github.com/wippyai/jsrt/sys"
)

// DefaultSourceURL names scripts run through Eval.
const DefaultSourceURL = "eval"

var nextSourceContext atomic.Uintptr

// Eval runs src in the guarded context and returns its completion value.
func Eval(g *Guard, src string) (Value, error) {
	return RunScript(g, src, DefaultSourceURL)
}

// RunScript runs src in the guarded context. url is reported in stack
// traces. An uncaught exception is cleared and returned as a script error
// whose Exception field holds the thrown value converted to a string.
func RunScript(g *Guard, src, url string) (Value, error) {
	if err := g.check(errors.PhaseScript); err != nil {
		return Value{}, err
	}
	sc := sys.SourceContext(nextSourceContext.Add(1))
	ref, code := sys.RunScript(sys.ToWide(src, true), sc, sys.ToWide(url, true))
	if err := g.fail(errors.PhaseScript, code, "JsRunScript"); err != nil {
		return Value{}, pathError(err, url)
	}
	return Value{ref: ref}, nil
}

func (g *Guard) call(fn, this Value, args []Value) (Value, error) {
	if this.IsZero() {
		undef, err := Undefined(g)
		if err != nil {
			return Value{}, err
		}
		this = undef
	}
	argv := make([]sys.ValueRef, 0, len(args)+1)
	argv = append(argv, this.ref)
	for _, a := range args {
		argv = append(argv, a.ref)
	}
	ref, code := sys.CallFunction(fn.ref, argv)
	if err := g.fail(errors.PhaseFunction, code, "JsCallFunction"); err != nil {
		return Value{}, err
	}
	return Value{ref: ref}, nil
}

// fail converts code into an error. Script errors take the pending
// exception off the context; when it is the one a host callback raised,
// the callback's error becomes the cause.
func (g *Guard) fail(phase errors.Phase, code sys.ErrorCode, op string) error {
	return engineFailure(g.ctx.rt, phase, code, op)
}

func failCurrent(phase errors.Phase, code sys.ErrorCode, op string) error {
	return engineFailure(nil, phase, code, op)
}

func engineFailure(rt *Runtime, phase errors.Phase, code sys.ErrorCode, op string) error {
	if code == sys.NoError {
		return nil
	}
	e := errors.FromCode(phase, code, op)
	if code.Category() != sys.CategoryScript {
		return e
	}
	exc, c := sys.GetAndClearException()
	if c != sys.NoError {
		return e
	}
	e.Exception = describeException(exc)
	if rt != nil {
		e.Cause = rt.takeThrown(exc)
	}
	return e
}

func describeException(exc sys.ValueRef) string {
	s, code := sys.ConvertValueToString(exc)
	if code != sys.NoError {
		// toString itself threw
		sys.GetAndClearException()
		return "<unprintable exception>"
	}
	b, code := sys.CopyString(s)
	if code != sys.NoError {
		return "<unprintable exception>"
	}
	return string(b)
}
