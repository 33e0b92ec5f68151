//go:build !chakracore || !cgo

package sys

import (
	"errors"
	"reflect"
	"sync"

	"github.com/dop251/goja"
)

// The emulation backs every context with its own goja VM. The current
// context is tracked process-wide rather than per OS thread, so a single
// goroutine (or externally serialized goroutines) must drive it.
//
// Value handles live until CollectGarbage sweeps them. A handle survives a
// sweep while its reference count is positive or while it names an object
// reachable from its context's global object.

type emuRuntime struct {
	contexts map[ContextRef]struct{}
	attrs    RuntimeAttributes
}

type emuContext struct {
	vm        *goja.Runtime
	exception goja.Value
	runtime   RuntimeHandle

	// describe is Object.getOwnPropertyDescriptor captured at creation,
	// before script can replace it.
	describe goja.Callable
}

type emuValue struct {
	v    goja.Value
	cx   ContextRef
	refs uint32
}

type emulator struct {
	runtimes map[RuntimeHandle]*emuRuntime
	contexts map[ContextRef]*emuContext
	values   map[ValueRef]*emuValue
	names    map[PropertyIDRef]string
	ids      map[string]PropertyIDRef
	next     uintptr
	current  ContextRef
	turns    int
	mu       sync.Mutex
}

var emu = &emulator{
	runtimes: make(map[RuntimeHandle]*emuRuntime),
	contexts: make(map[ContextRef]*emuContext),
	values:   make(map[ValueRef]*emuValue),
	names:    make(map[PropertyIDRef]string),
	ids:      make(map[string]PropertyIDRef),
}

// Backend names the ABI implementation compiled into this binary.
const Backend = "goja"

func (e *emulator) alloc() uintptr {
	e.next++
	return e.next
}

func (e *emulator) wrapLocked(cx ContextRef, v goja.Value) ValueRef {
	if v == nil {
		v = goja.Undefined()
	}
	ref := ValueRef(e.alloc())
	e.values[ref] = &emuValue{v: v, cx: cx}
	return ref
}

func (e *emulator) wrap(cx ContextRef, v goja.Value) ValueRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wrapLocked(cx, v)
}

func (e *emulator) enter(noException bool) (ContextRef, *emuContext, ErrorCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == InvalidReference {
		return InvalidReference, nil, ErrorNoCurrentContext
	}
	c, ok := e.contexts[e.current]
	if !ok {
		return InvalidReference, nil, ErrorInvalidContext
	}
	if noException && c.exception != nil {
		return InvalidReference, nil, ErrorInExceptionState
	}
	return e.current, c, NoError
}

// beginTurn marks script execution in progress; sweeps are skipped until
// the matching endTurn.
func (e *emulator) beginTurn() {
	e.mu.Lock()
	e.turns++
	e.mu.Unlock()
}

func (e *emulator) endTurn() {
	e.mu.Lock()
	e.turns--
	e.mu.Unlock()
}

func (e *emulator) getLocked(ref ValueRef) (goja.Value, ErrorCode) {
	if ref == InvalidReference {
		return nil, ErrorNullArgument
	}
	v, ok := e.values[ref]
	if !ok {
		return nil, ErrorInvalidArgument
	}
	return v.v, NoError
}

func (e *emulator) get(ref ValueRef) (goja.Value, ErrorCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.getLocked(ref)
}

func (e *emulator) object(ref ValueRef) (*goja.Object, ErrorCode) {
	v, code := e.get(ref)
	if code != NoError {
		return nil, code
	}
	o, ok := v.(*goja.Object)
	if !ok {
		return nil, ErrorArgumentNotObject
	}
	return o, NoError
}

func (e *emulator) propertyName(id PropertyIDRef) (string, ErrorCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id == InvalidReference {
		return "", ErrorNullArgument
	}
	name, ok := e.names[id]
	if !ok {
		return "", ErrorInvalidArgument
	}
	return name, NoError
}

func (e *emulator) throw(c *emuContext, exc goja.Value) {
	e.mu.Lock()
	c.exception = exc
	e.mu.Unlock()
}

// fail records err as the context's pending exception and returns the code
// JsRT reports for it.
func (e *emulator) fail(c *emuContext, err error) ErrorCode {
	var exc *goja.Exception
	var interrupted *goja.InterruptedError
	switch {
	case errors.As(err, &interrupted):
		c.vm.ClearInterrupt()
		return ErrorScriptTerminated
	case errors.As(err, &exc):
		e.throw(c, exc.Value())
		return ErrorScriptException
	default:
		e.throw(c, newError(c.vm, "Error", c.vm.ToValue(err.Error())))
		return ErrorFatal
	}
}

func (e *emulator) try(c *emuContext, f func()) ErrorCode {
	if exc := c.vm.Try(f); exc != nil {
		e.throw(c, exc.Value())
		return ErrorScriptException
	}
	return NoError
}

func newError(vm *goja.Runtime, ctor string, msg goja.Value) goja.Value {
	if construct, ok := goja.AssertConstructor(vm.Get(ctor)); ok {
		if obj, err := construct(nil, msg); err == nil {
			return obj
		}
	}
	return vm.NewGoError(errors.New(msg.String()))
}

func isBool(v goja.Value) bool {
	t := v.ExportType()
	return t != nil && t.Kind() == reflect.Bool
}

func disableEval(vm *goja.Runtime) {
	deny := func(goja.FunctionCall) goja.Value {
		panic(newError(vm, "EvalError", vm.ToValue("eval is disabled in this runtime")))
	}
	_ = vm.Set("eval", deny)
	_ = vm.Set("Function", deny)
}

func CreateRuntime(attrs RuntimeAttributes) (RuntimeHandle, ErrorCode) {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	rt := RuntimeHandle(emu.alloc())
	emu.runtimes[rt] = &emuRuntime{attrs: attrs, contexts: make(map[ContextRef]struct{})}
	return rt, NoError
}

func DisposeRuntime(rt RuntimeHandle) ErrorCode {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	r, ok := emu.runtimes[rt]
	if !ok {
		return ErrorInvalidArgument
	}
	if _, busy := r.contexts[emu.current]; busy {
		return ErrorRuntimeInUse
	}
	for ref, v := range emu.values {
		if _, owned := r.contexts[v.cx]; owned {
			delete(emu.values, ref)
		}
	}
	for cx := range r.contexts {
		delete(emu.contexts, cx)
	}
	delete(emu.runtimes, rt)
	return NoError
}

// CollectGarbage drops the value handles of rt that nothing anchors.
// Primitive handles survive only through AddRef. Nothing is swept while a
// script turn is running, since host frames below it may still hold
// handles. goja's own memory is left to the Go collector.
func CollectGarbage(rt RuntimeHandle) ErrorCode {
	emu.mu.Lock()
	r, ok := emu.runtimes[rt]
	if !ok {
		emu.mu.Unlock()
		return ErrorInvalidArgument
	}
	if emu.turns > 0 {
		emu.mu.Unlock()
		return NoError
	}
	pending := make(map[ContextRef]map[*goja.Object][]ValueRef)
	for ref, v := range emu.values {
		if _, owned := r.contexts[v.cx]; !owned || v.refs > 0 {
			continue
		}
		o, isObject := v.v.(*goja.Object)
		if !isObject {
			delete(emu.values, ref)
			continue
		}
		if pending[v.cx] == nil {
			pending[v.cx] = make(map[*goja.Object][]ValueRef)
		}
		pending[v.cx][o] = append(pending[v.cx][o], ref)
	}
	contexts := make(map[ContextRef]*emuContext, len(pending))
	for cx := range pending {
		contexts[cx] = emu.contexts[cx]
	}
	emu.mu.Unlock()

	// The walk may run script (proxy traps), so it runs unlocked.
	for cx, objects := range pending {
		reachable(contexts[cx], objects)
	}

	emu.mu.Lock()
	defer emu.mu.Unlock()
	for _, objects := range pending {
		for _, refs := range objects {
			for _, ref := range refs {
				if v, ok := emu.values[ref]; ok && v.refs == 0 {
					delete(emu.values, ref)
				}
			}
		}
	}
	return NoError
}

// reachable walks the object graph of c from its global object through
// own property values, accessors and prototypes, deleting every object it
// meets from want. Getters are never invoked.
func reachable(c *emuContext, want map[*goja.Object][]ValueRef) {
	if c == nil || c.describe == nil {
		return
	}
	seen := make(map[*goja.Object]struct{})
	stack := []*goja.Object{c.vm.GlobalObject()}
	push := func(v goja.Value) {
		if o, ok := v.(*goja.Object); ok {
			if _, dup := seen[o]; !dup {
				stack = append(stack, o)
			}
		}
	}
	for len(stack) > 0 && len(want) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		delete(want, o)

		_ = c.vm.Try(func() {
			if proto := o.Prototype(); proto != nil {
				push(proto)
			}
			for _, name := range o.GetOwnPropertyNames() {
				desc, err := c.describe(goja.Undefined(), o, c.vm.ToValue(name))
				if err != nil {
					continue
				}
				d, ok := desc.(*goja.Object)
				if !ok {
					continue
				}
				push(d.Get("value"))
				push(d.Get("get"))
				push(d.Get("set"))
			}
		})
	}
}

func CreateContext(rt RuntimeHandle) (ContextRef, ErrorCode) {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	r, ok := emu.runtimes[rt]
	if !ok {
		return InvalidReference, ErrorInvalidArgument
	}
	vm := goja.New()
	var describe goja.Callable
	if object, ok := vm.Get("Object").(*goja.Object); ok {
		describe, _ = goja.AssertFunction(object.Get("getOwnPropertyDescriptor"))
	}
	if r.attrs&AttributeDisableEval != 0 {
		disableEval(vm)
	}
	cx := ContextRef(emu.alloc())
	emu.contexts[cx] = &emuContext{vm: vm, runtime: rt, describe: describe}
	r.contexts[cx] = struct{}{}
	return cx, NoError
}

func GetCurrentContext() (ContextRef, ErrorCode) {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	return emu.current, NoError
}

func SetCurrentContext(cx ContextRef) ErrorCode {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	if cx != InvalidReference {
		if _, ok := emu.contexts[cx]; !ok {
			return ErrorInvalidArgument
		}
	}
	emu.current = cx
	return NoError
}

func RunScript(script []uint16, sourceContext SourceContext, sourceURL []uint16) (ValueRef, ErrorCode) {
	if script == nil {
		return InvalidReference, ErrorNullArgument
	}
	cx, c, code := emu.enter(true)
	if code != NoError {
		return InvalidReference, code
	}
	prg, err := goja.Compile(FromWide(sourceURL), FromWide(script), false)
	if err != nil {
		emu.throw(c, newError(c.vm, "SyntaxError", c.vm.ToValue(err.Error())))
		return InvalidReference, ErrorScriptCompile
	}
	emu.beginTurn()
	defer emu.endTurn()
	res, err := c.vm.RunProgram(prg)
	if err != nil {
		return InvalidReference, emu.fail(c, err)
	}
	return emu.wrap(cx, res), NoError
}

func IntToNumber(n int32) (ValueRef, ErrorCode) {
	cx, c, code := emu.enter(false)
	if code != NoError {
		return InvalidReference, code
	}
	return emu.wrap(cx, c.vm.ToValue(n)), NoError
}

func NumberToInt(ref ValueRef) (int32, ErrorCode) {
	v, code := emu.get(ref)
	if code != NoError {
		return 0, code
	}
	if !goja.IsNumber(v) {
		return 0, ErrorInvalidArgument
	}
	return int32(v.ToInteger()), NoError
}

func DoubleToNumber(f float64) (ValueRef, ErrorCode) {
	cx, c, code := emu.enter(false)
	if code != NoError {
		return InvalidReference, code
	}
	return emu.wrap(cx, c.vm.ToValue(f)), NoError
}

func NumberToDouble(ref ValueRef) (float64, ErrorCode) {
	v, code := emu.get(ref)
	if code != NoError {
		return 0, code
	}
	if !goja.IsNumber(v) {
		return 0, ErrorInvalidArgument
	}
	return v.ToFloat(), NoError
}

func BoolToBoolean(b bool) (ValueRef, ErrorCode) {
	cx, c, code := emu.enter(false)
	if code != NoError {
		return InvalidReference, code
	}
	return emu.wrap(cx, c.vm.ToValue(b)), NoError
}

func BooleanToBool(ref ValueRef) (bool, ErrorCode) {
	v, code := emu.get(ref)
	if code != NoError {
		return false, code
	}
	if !isBool(v) {
		return false, ErrorInvalidArgument
	}
	return v.ToBoolean(), NoError
}

func CreateString(content []byte) (ValueRef, ErrorCode) {
	cx, c, code := emu.enter(false)
	if code != NoError {
		return InvalidReference, code
	}
	return emu.wrap(cx, c.vm.ToValue(string(content))), NoError
}

func CopyString(ref ValueRef) ([]byte, ErrorCode) {
	v, code := emu.get(ref)
	if code != NoError {
		return nil, code
	}
	if !goja.IsString(v) {
		return nil, ErrorInvalidArgument
	}
	return []byte(v.String()), NoError
}

func ConvertValueToString(ref ValueRef) (ValueRef, ErrorCode) {
	cx, c, code := emu.enter(true)
	if code != NoError {
		return InvalidReference, code
	}
	v, code := emu.get(ref)
	if code != NoError {
		return InvalidReference, code
	}
	// Value.ToString leaves primitives as they are; String applies the
	// full conversion and may run a script toString.
	var s goja.Value
	if code := emu.try(c, func() { s = c.vm.ToValue(v.String()) }); code != NoError {
		return InvalidReference, code
	}
	return emu.wrap(cx, s), NoError
}

func GetValueType(ref ValueRef) (ValueType, ErrorCode) {
	v, code := emu.get(ref)
	if code != NoError {
		return TypeUndefined, code
	}
	switch {
	case goja.IsUndefined(v):
		return TypeUndefined, NoError
	case goja.IsNull(v):
		return TypeNull, NoError
	case goja.IsNumber(v), goja.IsBigInt(v):
		return TypeNumber, NoError
	case goja.IsString(v):
		return TypeString, NoError
	case isBool(v):
		return TypeBoolean, NoError
	}
	if _, ok := v.(*goja.Symbol); ok {
		return TypeSymbol, NoError
	}
	o, ok := v.(*goja.Object)
	if !ok {
		return TypeObject, NoError
	}
	if _, ok := goja.AssertFunction(o); ok {
		return TypeFunction, NoError
	}
	switch o.ClassName() {
	case "Error":
		return TypeError, NoError
	case "Array":
		return TypeArray, NoError
	case "ArrayBuffer":
		return TypeArrayBuffer, NoError
	case "DataView":
		return TypeDataView, NoError
	}
	return TypeObject, NoError
}

func CreateObject() (ValueRef, ErrorCode) {
	cx, c, code := emu.enter(false)
	if code != NoError {
		return InvalidReference, code
	}
	return emu.wrap(cx, c.vm.NewObject()), NoError
}

func createError(ctor string, message ValueRef) (ValueRef, ErrorCode) {
	cx, c, code := emu.enter(false)
	if code != NoError {
		return InvalidReference, code
	}
	msg, code := emu.get(message)
	if code != NoError {
		return InvalidReference, code
	}
	return emu.wrap(cx, newError(c.vm, ctor, msg)), NoError
}

func CreateError(message ValueRef) (ValueRef, ErrorCode) {
	return createError("Error", message)
}

func CreateTypeError(message ValueRef) (ValueRef, ErrorCode) {
	return createError("TypeError", message)
}

func GetUndefinedValue() (ValueRef, ErrorCode) {
	cx, _, code := emu.enter(false)
	if code != NoError {
		return InvalidReference, code
	}
	return emu.wrap(cx, goja.Undefined()), NoError
}

func GetNullValue() (ValueRef, ErrorCode) {
	cx, _, code := emu.enter(false)
	if code != NoError {
		return InvalidReference, code
	}
	return emu.wrap(cx, goja.Null()), NoError
}

func SetException(exception ValueRef) ErrorCode {
	_, c, code := emu.enter(false)
	if code != NoError {
		return code
	}
	v, code := emu.get(exception)
	if code != NoError {
		return code
	}
	emu.throw(c, v)
	return NoError
}

func GetAndClearException() (ValueRef, ErrorCode) {
	cx, c, code := emu.enter(false)
	if code != NoError {
		return InvalidReference, code
	}
	emu.mu.Lock()
	defer emu.mu.Unlock()
	if c.exception == nil {
		return InvalidReference, ErrorInvalidArgument
	}
	ref := emu.wrapLocked(cx, c.exception)
	c.exception = nil
	return ref, NoError
}

func HasException() (bool, ErrorCode) {
	_, c, code := emu.enter(false)
	if code != NoError {
		return false, code
	}
	emu.mu.Lock()
	defer emu.mu.Unlock()
	return c.exception != nil, NoError
}

func GetGlobalObject() (ValueRef, ErrorCode) {
	cx, c, code := emu.enter(false)
	if code != NoError {
		return InvalidReference, code
	}
	return emu.wrap(cx, c.vm.GlobalObject()), NoError
}

func GetPropertyIDFromName(name []uint16) (PropertyIDRef, ErrorCode) {
	if name == nil {
		return InvalidReference, ErrorNullArgument
	}
	if _, _, code := emu.enter(false); code != NoError {
		return InvalidReference, code
	}
	s := FromWide(name)
	emu.mu.Lock()
	defer emu.mu.Unlock()
	if id, ok := emu.ids[s]; ok {
		return id, NoError
	}
	id := PropertyIDRef(emu.alloc())
	emu.ids[s] = id
	emu.names[id] = s
	return id, NoError
}

func property(obj ValueRef, id PropertyIDRef) (ContextRef, *emuContext, *goja.Object, string, ErrorCode) {
	cx, c, code := emu.enter(true)
	if code != NoError {
		return InvalidReference, nil, nil, "", code
	}
	o, code := emu.object(obj)
	if code != NoError {
		return InvalidReference, nil, nil, "", code
	}
	name, code := emu.propertyName(id)
	if code != NoError {
		return InvalidReference, nil, nil, "", code
	}
	return cx, c, o, name, NoError
}

func GetProperty(obj ValueRef, id PropertyIDRef) (ValueRef, ErrorCode) {
	cx, c, o, name, code := property(obj, id)
	if code != NoError {
		return InvalidReference, code
	}
	var v goja.Value
	if code := emu.try(c, func() { v = o.Get(name) }); code != NoError {
		return InvalidReference, code
	}
	return emu.wrap(cx, v), NoError
}

func SetProperty(obj ValueRef, id PropertyIDRef, value ValueRef, useStrictRules bool) ErrorCode {
	_, c, o, name, code := property(obj, id)
	if code != NoError {
		return code
	}
	v, code := emu.get(value)
	if code != NoError {
		return code
	}
	if err := o.Set(name, v); err != nil && useStrictRules {
		return emu.fail(c, err)
	}
	return NoError
}

func HasProperty(obj ValueRef, id PropertyIDRef) (bool, ErrorCode) {
	_, c, o, name, code := property(obj, id)
	if code != NoError {
		return false, code
	}
	var has bool
	if code := emu.try(c, func() { has = o.Get(name) != nil }); code != NoError {
		return false, code
	}
	return has, NoError
}

func DeleteProperty(obj ValueRef, id PropertyIDRef, useStrictRules bool) (ValueRef, ErrorCode) {
	cx, c, o, name, code := property(obj, id)
	if code != NoError {
		return InvalidReference, code
	}
	deleted := true
	if err := o.Delete(name); err != nil {
		if useStrictRules {
			return InvalidReference, emu.fail(c, err)
		}
		deleted = false
	}
	return emu.wrap(cx, c.vm.ToValue(deleted)), NoError
}

func StrictEquals(a, b ValueRef) (bool, ErrorCode) {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	va, code := emu.getLocked(a)
	if code != NoError {
		return false, code
	}
	vb, code := emu.getLocked(b)
	if code != NoError {
		return false, code
	}
	return va.StrictEquals(vb), NoError
}

// CreateFunction returns a proxy over an inert native constructor so that
// the handler sees both plain and construct calls. A construct call passes
// a fresh object, whose prototype comes from new.target, as the receiver.
func CreateFunction(state uintptr) (ValueRef, ErrorCode) {
	cx, c, code := emu.enter(false)
	if code != NoError {
		return InvalidReference, code
	}
	target, ok := c.vm.ToValue(func(goja.ConstructorCall) *goja.Object { return nil }).(*goja.Object)
	if !ok {
		return InvalidReference, ErrorFatal
	}
	var self ValueRef
	proxy := c.vm.NewProxy(target, &goja.ProxyTrapConfig{
		Apply: func(_ *goja.Object, this goja.Value, args []goja.Value) goja.Value {
			return emu.dispatch(cx, c, self, this, args, false, state)
		},
		Construct: func(_ *goja.Object, args []goja.Value, newTarget *goja.Object) *goja.Object {
			this := c.vm.NewObject()
			if proto, ok := newTarget.Get("prototype").(*goja.Object); ok {
				_ = this.SetPrototype(proto)
			}
			if o, ok := emu.dispatch(cx, c, self, this, args, true, state).(*goja.Object); ok {
				return o
			}
			return this
		},
	})
	self = emu.wrap(cx, c.vm.ToValue(proxy))
	return self, NoError
}

// dispatch runs the native handler for one script-side call. A pending
// exception left by the handler is rethrown into the VM.
func (e *emulator) dispatch(cx ContextRef, c *emuContext, callee ValueRef, this goja.Value, arguments []goja.Value, construct bool, state uintptr) goja.Value {
	e.mu.Lock()
	args := make([]ValueRef, 0, len(arguments)+1)
	args = append(args, e.wrapLocked(cx, this))
	for _, a := range arguments {
		args = append(args, e.wrapLocked(cx, a))
	}
	e.mu.Unlock()

	res := invokeNative(callee, construct, args, state)

	e.mu.Lock()
	exc := c.exception
	c.exception = nil
	var out goja.Value
	if v, ok := e.values[res]; ok {
		out = v.v
	}
	e.mu.Unlock()

	if exc != nil {
		panic(exc)
	}
	if out == nil {
		return goja.Undefined()
	}
	return out
}

func CallFunction(fn ValueRef, args []ValueRef) (ValueRef, ErrorCode) {
	if len(args) == 0 {
		return InvalidReference, ErrorInvalidArgument
	}
	cx, c, code := emu.enter(true)
	if code != NoError {
		return InvalidReference, code
	}
	emu.mu.Lock()
	f, code := emu.getLocked(fn)
	argv := make([]goja.Value, len(args))
	for i := 0; code == NoError && i < len(args); i++ {
		argv[i], code = emu.getLocked(args[i])
	}
	emu.mu.Unlock()
	if code != NoError {
		return InvalidReference, code
	}
	callable, ok := goja.AssertFunction(f)
	if !ok {
		return InvalidReference, ErrorInvalidArgument
	}
	emu.beginTurn()
	defer emu.endTurn()
	res, err := callable(argv[0], argv[1:]...)
	if err != nil {
		return InvalidReference, emu.fail(c, err)
	}
	return emu.wrap(cx, res), NoError
}

func AddRef(ref ValueRef) (uint32, ErrorCode) {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	if ref == InvalidReference {
		return 0, ErrorNullArgument
	}
	v, ok := emu.values[ref]
	if !ok {
		return 0, ErrorInvalidArgument
	}
	v.refs++
	return v.refs, NoError
}

func Release(ref ValueRef) (uint32, ErrorCode) {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	if ref == InvalidReference {
		return 0, ErrorNullArgument
	}
	v, ok := emu.values[ref]
	if !ok || v.refs == 0 {
		return 0, ErrorInvalidArgument
	}
	v.refs--
	return v.refs, NoError
}
