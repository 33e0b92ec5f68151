package runtime

import (
	"github.com/wippyai/jsrt/errors"
	"github.com/wippyai/jsrt/sys"
)

// Value is a non-owning handle to an engine value.
//
// Copying a Value does not add an engine reference. A Value is only valid
// while the engine can reach it; anchor it with RootStore or
// PersistentValue to keep it across script turns.
type Value struct {
	ref sys.ValueRef
}

// ValueOf wraps a raw engine reference.
func ValueOf(ref sys.ValueRef) Value { return Value{ref: ref} }

// Raw returns the engine reference for direct ABI calls.
func (v Value) Raw() sys.ValueRef { return v.ref }

// IsZero reports whether v holds no reference.
func (v Value) IsZero() bool { return v.ref == sys.InvalidReference }

// Type returns the engine's classification of v.
func (v Value) Type(g *Guard) (sys.ValueType, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return sys.TypeUndefined, err
	}
	t, code := sys.GetValueType(v.ref)
	return t, errors.Check(errors.PhaseValue, code, "JsGetValueType")
}

// IsUndefined reports whether v is the undefined value.
func (v Value) IsUndefined(g *Guard) bool {
	t, err := v.Type(g)
	return err == nil && t == sys.TypeUndefined
}

// IsNull reports whether v is null.
func (v Value) IsNull(g *Guard) bool {
	t, err := v.Type(g)
	return err == nil && t == sys.TypeNull
}

// ToInteger converts a number value to an integer.
func (v Value) ToInteger(g *Guard) (int32, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return 0, err
	}
	n, code := sys.NumberToInt(v.ref)
	return n, errors.Check(errors.PhaseValue, code, "JsNumberToInt")
}

// ToFloat converts a number value to a float64.
func (v Value) ToFloat(g *Guard) (float64, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return 0, err
	}
	f, code := sys.NumberToDouble(v.ref)
	return f, errors.Check(errors.PhaseValue, code, "JsNumberToDouble")
}

// ToBool converts a boolean value to bool.
func (v Value) ToBool(g *Guard) (bool, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return false, err
	}
	b, code := sys.BooleanToBool(v.ref)
	return b, errors.Check(errors.PhaseValue, code, "JsBooleanToBool")
}

// ToString converts any value the way String(v) does in script and returns
// the result as UTF-8.
func (v Value) ToString(g *Guard) (string, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return "", err
	}
	s, code := sys.ConvertValueToString(v.ref)
	if err := g.fail(errors.PhaseValue, code, "JsConvertValueToString"); err != nil {
		return "", err
	}
	b, code := sys.CopyString(s)
	if err := errors.Check(errors.PhaseValue, code, "JsCopyString"); err != nil {
		return "", err
	}
	return string(b), nil
}

// StrictEquals compares v and other with ===.
func (v Value) StrictEquals(g *Guard, other Value) (bool, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return false, err
	}
	eq, code := sys.StrictEquals(v.ref, other.ref)
	return eq, errors.Check(errors.PhaseValue, code, "JsStrictEquals")
}

// Get returns v[name].
func (v Value) Get(g *Guard, name string) (Value, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return Value{}, err
	}
	return v.getProperty(errors.PhaseValue, name)
}

// Set assigns v[name] = val with strict-mode rules.
func (v Value) Set(g *Guard, name string, val Value) error {
	if err := g.check(errors.PhaseValue); err != nil {
		return err
	}
	return v.setProperty(errors.PhaseValue, name, val)
}

// Delete removes v[name] with strict-mode rules.
func (v Value) Delete(g *Guard, name string) error {
	if err := g.check(errors.PhaseValue); err != nil {
		return err
	}
	return v.deleteProperty(errors.PhaseValue, name)
}

// Has reports whether v has a property called name, own or inherited.
func (v Value) Has(g *Guard, name string) (bool, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return false, err
	}
	return v.hasProperty(errors.PhaseValue, name)
}

// Call invokes v as a function with the given receiver.
func (v Value) Call(g *Guard, this Value, args ...Value) (Value, error) {
	if err := g.check(errors.PhaseFunction); err != nil {
		return Value{}, err
	}
	return g.call(v, this, args)
}

// Undefined returns the undefined value.
func Undefined(g *Guard) (Value, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return Value{}, err
	}
	ref, code := sys.GetUndefinedValue()
	return Value{ref: ref}, errors.Check(errors.PhaseValue, code, "JsGetUndefinedValue")
}

// Null returns the null value.
func Null(g *Guard) (Value, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return Value{}, err
	}
	ref, code := sys.GetNullValue()
	return Value{ref: ref}, errors.Check(errors.PhaseValue, code, "JsGetNullValue")
}

// String creates a string value from UTF-8 content.
func String(g *Guard, s string) (Value, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return Value{}, err
	}
	ref, code := sys.CreateString([]byte(s))
	return Value{ref: ref}, errors.Check(errors.PhaseValue, code, "JsCreateString")
}

// Int creates a number value.
func Int(g *Guard, n int32) (Value, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return Value{}, err
	}
	ref, code := sys.IntToNumber(n)
	return Value{ref: ref}, errors.Check(errors.PhaseValue, code, "JsIntToNumber")
}

// Float creates a number value.
func Float(g *Guard, f float64) (Value, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return Value{}, err
	}
	ref, code := sys.DoubleToNumber(f)
	return Value{ref: ref}, errors.Check(errors.PhaseValue, code, "JsDoubleToNumber")
}

// Bool creates a boolean value.
func Bool(g *Guard, b bool) (Value, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return Value{}, err
	}
	ref, code := sys.BoolToBoolean(b)
	return Value{ref: ref}, errors.Check(errors.PhaseValue, code, "JsBoolToBoolean")
}

// Object creates an empty object.
func Object(g *Guard) (Value, error) {
	if err := g.check(errors.PhaseValue); err != nil {
		return Value{}, err
	}
	ref, code := sys.CreateObject()
	return Value{ref: ref}, errors.Check(errors.PhaseValue, code, "JsCreateObject")
}

// ErrorFromMessage creates an Error object with the given message.
func ErrorFromMessage(g *Guard, msg string) (Value, error) {
	return newError(g, msg, sys.CreateError, "JsCreateError")
}

// TypeErrorFromMessage creates a TypeError object with the given message.
func TypeErrorFromMessage(g *Guard, msg string) (Value, error) {
	return newError(g, msg, sys.CreateTypeError, "JsCreateTypeError")
}

func newError(g *Guard, msg string, create func(sys.ValueRef) (sys.ValueRef, sys.ErrorCode), op string) (Value, error) {
	m, err := String(g, msg)
	if err != nil {
		return Value{}, err
	}
	ref, code := create(m.ref)
	return Value{ref: ref}, errors.Check(errors.PhaseValue, code, op)
}

func propertyID(phase errors.Phase, name string) (sys.PropertyIDRef, error) {
	id, code := sys.GetPropertyIDFromName(sys.ToWide(name, true))
	if code != sys.NoError {
		e := errors.FromCode(phase, code, "JsGetPropertyIdFromName")
		e.Path = []string{name}
		return sys.InvalidReference, e
	}
	return id, nil
}

// The property helpers assume the caller already checked the guard. Engine
// exceptions raised by accessors are cleared and returned.

func (v Value) getProperty(phase errors.Phase, name string) (Value, error) {
	id, err := propertyID(phase, name)
	if err != nil {
		return Value{}, err
	}
	ref, code := sys.GetProperty(v.ref, id)
	if err := pathError(failCurrent(phase, code, "JsGetProperty"), name); err != nil {
		return Value{}, err
	}
	return Value{ref: ref}, nil
}

func (v Value) setProperty(phase errors.Phase, name string, val Value) error {
	id, err := propertyID(phase, name)
	if err != nil {
		return err
	}
	return pathError(failCurrent(phase, sys.SetProperty(v.ref, id, val.ref, true), "JsSetProperty"), name)
}

func (v Value) deleteProperty(phase errors.Phase, name string) error {
	id, err := propertyID(phase, name)
	if err != nil {
		return err
	}
	_, code := sys.DeleteProperty(v.ref, id, true)
	return pathError(failCurrent(phase, code, "JsDeleteProperty"), name)
}

func (v Value) hasProperty(phase errors.Phase, name string) (bool, error) {
	id, err := propertyID(phase, name)
	if err != nil {
		return false, err
	}
	has, code := sys.HasProperty(v.ref, id)
	if err := pathError(failCurrent(phase, code, "JsHasProperty"), name); err != nil {
		return false, err
	}
	return has, nil
}

func pathError(err error, name string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = []string{name}
		return e
	}
	return err
}
