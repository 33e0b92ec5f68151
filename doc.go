// Package jsrt is a safe Go binding for the JsRT embedding ABI of
// ChakraCore.
//
// The ABI exposes only raw handles and status codes. This module layers
// ownership on top of them: a Runtime owns the engine runtime and the state
// of every host function created against it, a Guard scopes the thread's
// current context, and RootStore and PersistentValue keep values alive
// across script turns.
//
// # Packages
//
//	jsrt/
//	├── sys/        Raw ABI: cgo against libChakraCore, or an in-process emulation on goja
//	├── runtime/    Runtime, Context, Guard, Value, Function, RootStore, PersistentValue
//	├── resource/   Handle table that carries host closures across the ABI
//	├── errors/     Structured errors carrying the engine status code
//	└── cmd/jsrt/   Demo, script runner and interactive REPL
//
// # Quick Start
//
//	rt, err := runtime.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	cx, _ := rt.NewContext()
//	g, _ := cx.MakeCurrent()
//	defer g.Release()
//
//	v, err := runtime.Eval(g, "6 * 7")
//	n, _ := v.ToInteger(g) // 42
//
// # Backends
//
// Build with -tags chakracore (cgo enabled, libChakraCore installed) to use
// the real engine. Without the tag the same ABI is served by goja, which is
// what the tests run against.
//
// # Thread Safety
//
// The engine allows one current context per OS thread. A Guard pins its
// goroutine to the thread until released, and values must only be used
// while a guard over their context is active. Runtime.Close may be called
// from any goroutine once no guard over its contexts remains.
package jsrt
