package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/jsrt/errors"
	"github.com/wippyai/jsrt/sys"
)

// PersistentValue keeps one value alive through the engine's reference
// count. Unlike RootStore it needs no context and leaves script scope
// untouched.
type PersistentValue struct {
	value    Value
	refs     uint32
	released bool
}

// NewPersistentValue adds an engine reference to v.
func NewPersistentValue(v Value) (*PersistentValue, error) {
	n, code := sys.AddRef(v.ref)
	if err := errors.Check(errors.PhasePersistent, code, "JsAddRef"); err != nil {
		return nil, err
	}
	return &PersistentValue{value: v, refs: n}, nil
}

// Value returns the anchored value.
func (p *PersistentValue) Value() Value { return p.value }

// RefCount returns the engine reference count reported when the reference
// was added.
func (p *PersistentValue) RefCount() uint32 { return p.refs }

// Released reports whether Release was called.
func (p *PersistentValue) Released() bool { return p.released }

// Release drops the engine reference. Failures are logged and otherwise
// ignored. Release is idempotent.
func (p *PersistentValue) Release() {
	if p.released {
		return
	}
	p.released = true
	if _, code := sys.Release(p.value.ref); code != sys.NoError {
		Logger().Debug("release persistent value failed",
			zap.Uintptr("value", uintptr(p.value.ref)),
			zap.Stringer("code", code))
	}
}
