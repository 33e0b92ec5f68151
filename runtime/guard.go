package runtime

import (
	goruntime "runtime"

	"go.uber.org/zap"

	"github.com/wippyai/jsrt/errors"
	"github.com/wippyai/jsrt/sys"
)

// Guard proves that a context is current on the calling thread.
//
// A Guard is obtained from Context.MakeCurrent, or is handed to a callback
// by the trampoline. It is not safe for use from other goroutines.
type Guard struct {
	ctx       *Context
	prev      sys.ContextRef
	current   sys.ContextRef
	reentrant bool
	released  bool
}

// reentrantGuard describes the context the engine is already running in.
// Releasing it changes nothing: the engine owns that activation.
func reentrantGuard(ctx *Context) *Guard {
	return &Guard{ctx: ctx, prev: ctx.handle, current: ctx.handle, reentrant: true}
}

// Context returns the guarded context.
func (g *Guard) Context() *Context { return g.ctx }

// Runtime returns the runtime of the guarded context.
func (g *Guard) Runtime() *Runtime { return g.ctx.rt }

// Active reports whether the guard has not been released.
func (g *Guard) Active() bool { return g != nil && !g.released }

// Release restores the context that was current before the guard was
// acquired and unpins the goroutine. It never fails; a failed restore is
// only logged. Release is idempotent.
func (g *Guard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	if g.reentrant {
		return
	}
	if code := sys.SetCurrentContext(g.prev); code != sys.NoError {
		g.ctx.rt.log.Debug("restore current context failed",
			zap.Uintptr("context", uintptr(g.prev)),
			zap.Stringer("code", code))
	}
	goruntime.UnlockOSThread()
}

func (g *Guard) check(phase errors.Phase) error {
	if g == nil {
		return errors.InvalidInput(phase, "nil guard")
	}
	if g.released {
		return errors.Released(phase, "guard")
	}
	return nil
}
