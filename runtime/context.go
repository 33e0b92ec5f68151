package runtime

import (
	goruntime "runtime"

	"go.uber.org/zap"

	"github.com/wippyai/jsrt/errors"
	"github.com/wippyai/jsrt/sys"
)

// Context is one execution context inside a Runtime.
//
// A Context has no explicit dispose; the engine reclaims it together with
// its Runtime. It must not be used after the Runtime is closed.
type Context struct {
	rt     *Runtime
	handle sys.ContextRef
}

// NewContext creates an execution context in rt.
func NewContext(rt *Runtime) (*Context, error) {
	h := rt.Raw()
	if h == sys.InvalidReference {
		return nil, errors.Released(errors.PhaseContext, "runtime")
	}
	cx, code := sys.CreateContext(h)
	if err := errors.Check(errors.PhaseContext, code, "JsCreateContext"); err != nil {
		return nil, err
	}
	rt.log.Debug("context created", zap.Uintptr("context", uintptr(cx)))
	return &Context{rt: rt, handle: cx}, nil
}

// NewContext creates an execution context in r.
func (r *Runtime) NewContext() (*Context, error) {
	return NewContext(r)
}

// Runtime returns the runtime the context belongs to.
func (c *Context) Runtime() *Runtime { return c.rt }

// Raw returns the engine handle.
func (c *Context) Raw() sys.ContextRef { return c.handle }

// MakeCurrent activates c on the calling thread and returns the guard that
// restores the previously current context.
//
// The goroutine stays locked to its OS thread until the guard is released.
func (c *Context) MakeCurrent() (*Guard, error) {
	goruntime.LockOSThread()

	prev, code := sys.GetCurrentContext()
	if err := errors.Check(errors.PhaseContext, code, "JsGetCurrentContext"); err != nil {
		goruntime.UnlockOSThread()
		return nil, err
	}
	if err := errors.Check(errors.PhaseContext, sys.SetCurrentContext(c.handle), "JsSetCurrentContext"); err != nil {
		goruntime.UnlockOSThread()
		return nil, err
	}

	return &Guard{ctx: c, prev: prev, current: c.handle}, nil
}

// Global returns the global object of c.
func (c *Context) Global(g *Guard) (Value, error) {
	if err := c.owns(g, "global"); err != nil {
		return Value{}, err
	}
	ref, code := sys.GetGlobalObject()
	if err := errors.Check(errors.PhaseContext, code, "JsGetGlobalObject"); err != nil {
		return Value{}, err
	}
	return Value{ref: ref}, nil
}

// SetGlobal sets globalThis[name] = v with strict-mode rules.
func (c *Context) SetGlobal(g *Guard, name string, v Value) error {
	global, err := c.Global(g)
	if err != nil {
		return err
	}
	return global.setProperty(errors.PhaseContext, name, v)
}

// GetGlobal returns globalThis[name].
func (c *Context) GetGlobal(g *Guard, name string) (Value, error) {
	global, err := c.Global(g)
	if err != nil {
		return Value{}, err
	}
	return global.getProperty(errors.PhaseContext, name)
}

// DeleteGlobal removes globalThis[name] with strict-mode rules.
func (c *Context) DeleteGlobal(g *Guard, name string) error {
	global, err := c.Global(g)
	if err != nil {
		return err
	}
	return global.deleteProperty(errors.PhaseContext, name)
}

// owns checks that g is live and guards c. The engine resolves the global
// object through the current context, so a guard over another context
// would silently mutate the wrong scope.
func (c *Context) owns(g *Guard, op string) error {
	if err := g.check(errors.PhaseContext); err != nil {
		return err
	}
	if g.current != c.handle {
		return errors.New(errors.PhaseContext, errors.KindContextMismatch).
			Op(op).
			Detail("guard holds context %d, not %d", g.current, c.handle).
			Build()
	}
	return nil
}
