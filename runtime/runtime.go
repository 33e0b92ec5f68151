package runtime

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/jsrt/errors"
	"github.com/wippyai/jsrt/resource"
	"github.com/wippyai/jsrt/sys"
)

// callbackTypeID tags callback states in the shared handle table.
const callbackTypeID uint32 = 1

// callbackStates holds the closures of every Function in the process. The
// engine only ever sees the handle.
var callbackStates = resource.NewTable()

func init() {
	callbackStates.Subscribe(callbackEvents{})
}

// callbackEvents logs callback state lifecycle to the owning runtime's
// logger.
type callbackEvents struct{}

func (callbackEvents) OnResourceEvent(e resource.Event) {
	s, ok := e.Value.(*callbackState)
	if !ok || s.rt == nil {
		return
	}
	s.rt.log.Debug("callback state "+e.Type.String(),
		zap.Uint32("state", uint32(e.Handle)),
		zap.Int("live", callbackStates.Len()))
}

// Config holds runtime configuration.
type Config struct {
	// Logger receives lifecycle events for this runtime.
	// Nil uses the package logger.
	Logger *zap.Logger

	// Attributes are passed to JsCreateRuntime.
	Attributes sys.RuntimeAttributes
}

// DefaultConfig returns the default runtime configuration.
func DefaultConfig() *Config {
	return &Config{Attributes: sys.AttributeNone}
}

// Runtime owns one engine runtime and the callback states of the functions
// created against it.
type Runtime struct {
	log       *zap.Logger
	thrown    map[sys.ContextRef]thrownError
	callbacks []resource.Handle
	mu        sync.Mutex
	handle    sys.RuntimeHandle
}

// thrownError links the last exception a callback raised in a context to
// the Go error it came from.
type thrownError struct {
	err error
	exc sys.ValueRef
}

// New creates a runtime with default attributes.
func New() (*Runtime, error) {
	return NewWithConfig(nil)
}

// NewWithConfig creates a runtime with the given configuration.
func NewWithConfig(cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}

	handle, code := sys.CreateRuntime(cfg.Attributes)
	if err := errors.Check(errors.PhaseRuntime, code, "JsCreateRuntime"); err != nil {
		return nil, err
	}

	log.Debug("runtime created",
		zap.Uintptr("handle", uintptr(handle)),
		zap.Uint32("attributes", uint32(cfg.Attributes)),
		zap.String("backend", sys.Backend))

	return &Runtime{
		log:    log,
		handle: handle,
		thrown: make(map[sys.ContextRef]thrownError),
	}, nil
}

// Raw returns the engine handle, or sys.InvalidReference once closed.
func (r *Runtime) Raw() sys.RuntimeHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle
}

// registerCallbackState hands ownership of a callback state to the runtime.
// The state is removed from the table after the engine runtime is disposed.
func (r *Runtime) registerCallbackState(h resource.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, h)
}

// CallbackCount returns the number of callback states the runtime will free
// on Close.
func (r *Runtime) CallbackCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.callbacks)
}

// CollectGarbage runs a full engine collection.
func (r *Runtime) CollectGarbage() error {
	h := r.Raw()
	if h == sys.InvalidReference {
		return errors.Released(errors.PhaseRuntime, "runtime")
	}
	return errors.Check(errors.PhaseRuntime, sys.CollectGarbage(h), "JsCollectGarbage")
}

// Close disposes the engine runtime and then frees every registered
// callback state exactly once.
//
// If the engine refuses disposal, for example because one of the runtime's
// contexts is still current, the error is returned and nothing is freed;
// release the outstanding guards and call Close again. Close on a closed
// runtime is a no-op.
func (r *Runtime) Close() error {
	r.mu.Lock()
	if r.handle == sys.InvalidReference {
		r.mu.Unlock()
		return nil
	}
	if err := errors.Check(errors.PhaseRuntime, sys.DisposeRuntime(r.handle), "JsDisposeRuntime"); err != nil {
		r.mu.Unlock()
		return err
	}
	handle := r.handle
	r.handle = sys.InvalidReference
	callbacks := r.callbacks
	r.callbacks = nil
	r.thrown = nil
	r.mu.Unlock()

	var err error
	for _, h := range callbacks {
		if _, ok := callbackStates.Remove(h); !ok {
			err = multierr.Append(err, errors.New(errors.PhaseRuntime, errors.KindReleased).
				Detail("callback state %d already freed", h).
				Build())
		}
	}

	r.log.Debug("runtime disposed",
		zap.Uintptr("handle", uintptr(handle)),
		zap.Int("callbacks", len(callbacks)),
		zap.Error(err))

	return err
}

// recordThrown remembers err as the source of exc, the exception now
// pending in the current context. exc is pinned until it is matched or
// replaced.
func (r *Runtime) recordThrown(exc sys.ValueRef, err error) {
	cx, code := sys.GetCurrentContext()
	if code != sys.NoError {
		return
	}
	if _, code := sys.AddRef(exc); code != sys.NoError {
		return
	}
	r.mu.Lock()
	prev, had := r.thrown[cx]
	if r.thrown != nil {
		r.thrown[cx] = thrownError{err: err, exc: exc}
	}
	r.mu.Unlock()
	if had {
		sys.Release(prev.exc)
	}
}

// takeThrown returns the callback error behind exc, if the current context
// recorded one. The record is consumed either way.
func (r *Runtime) takeThrown(exc sys.ValueRef) error {
	cx, code := sys.GetCurrentContext()
	if code != sys.NoError {
		return nil
	}
	r.mu.Lock()
	t, ok := r.thrown[cx]
	delete(r.thrown, cx)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	defer sys.Release(t.exc)
	if eq, code := sys.StrictEquals(t.exc, exc); code == sys.NoError && eq {
		return t.err
	}
	return nil
}
