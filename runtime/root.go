package runtime

import (
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/jsrt/errors"
	"github.com/wippyai/jsrt/sys"
)

// RootsProperty is the global property holding the anchor object.
const RootsProperty = "__jsrtRoots"

// Root keys are unique across the process so stores sharing one anchor
// object never collide.
var rootSeq atomic.Uint64

// RootStore keeps values reachable from the global object so the engine's
// collector cannot reclaim them between script turns.
//
// Every store of a context shares the anchor object; creating a second
// store never drops values rooted by the first.
type RootStore struct {
	ctx    *Context
	anchor Value
	live   atomic.Int64
}

// RootedValue owns one slot of a RootStore.
type RootedValue struct {
	store    *RootStore
	key      string
	released bool
}

// NewRootStore opens the root store of the guarded context, creating the
// anchor object on first use.
func NewRootStore(g *Guard) (*RootStore, error) {
	if err := g.check(errors.PhaseRoot); err != nil {
		return nil, err
	}
	global, err := g.ctx.Global(g)
	if err != nil {
		return nil, err
	}

	anchor, err := global.getProperty(errors.PhaseRoot, RootsProperty)
	if err != nil {
		return nil, err
	}
	t, code := sys.GetValueType(anchor.ref)
	if err := errors.Check(errors.PhaseRoot, code, "JsGetValueType"); err != nil {
		return nil, err
	}
	if t != sys.TypeObject {
		if anchor, err = Object(g); err != nil {
			return nil, err
		}
		if err := global.setProperty(errors.PhaseRoot, RootsProperty, anchor); err != nil {
			return nil, err
		}
	}

	return &RootStore{ctx: g.ctx, anchor: anchor}, nil
}

// Anchor returns the object the store hangs values on.
func (s *RootStore) Anchor() Value { return s.anchor }

// Len returns the number of values rooted through this store and not yet
// released.
func (s *RootStore) Len() int { return int(s.live.Load()) }

// Root anchors v under a fresh key.
func (s *RootStore) Root(g *Guard, v Value) (*RootedValue, error) {
	if err := s.ctx.owns(g, "root"); err != nil {
		return nil, err
	}
	key := "r" + strconv.FormatUint(rootSeq.Add(1), 10)
	if err := s.anchor.setProperty(errors.PhaseRoot, key, v); err != nil {
		return nil, err
	}
	s.live.Add(1)
	return &RootedValue{store: s, key: key}, nil
}

// Lookup returns the value rooted under key, and false if the key is not
// anchored.
func (s *RootStore) Lookup(g *Guard, key string) (Value, bool, error) {
	if err := s.ctx.owns(g, "lookup"); err != nil {
		return Value{}, false, err
	}
	has, err := s.anchor.hasProperty(errors.PhaseRoot, key)
	if err != nil || !has {
		return Value{}, false, err
	}
	v, err := s.anchor.getProperty(errors.PhaseRoot, key)
	if err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}

// Key returns the anchor property name.
func (r *RootedValue) Key() string { return r.key }

// Value returns the anchored value.
func (r *RootedValue) Value(g *Guard) (Value, error) {
	if r.released {
		return Value{}, errors.Released(errors.PhaseRoot, "rooted value "+r.key)
	}
	v, ok, err := r.store.Lookup(g, r.key)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, errors.New(errors.PhaseRoot, errors.KindReleased).
			Path(r.key).
			Detail("anchor slot removed").
			Build()
	}
	return v, nil
}

// Release removes the anchor slot. It must run while the store's context
// is current; failures are logged and otherwise ignored. Release is
// idempotent.
func (r *RootedValue) Release() {
	if r.released {
		return
	}
	r.released = true
	r.store.live.Add(-1)
	if err := r.store.anchor.deleteProperty(errors.PhaseRoot, r.key); err != nil {
		r.store.ctx.rt.log.Debug("unroot failed", zap.String("key", r.key), zap.Error(err))
	}
}
