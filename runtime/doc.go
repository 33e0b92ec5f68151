// Package runtime is the safe layer over the JsRT engine ABI.
//
// # Quick Start
//
//	rt, err := runtime.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	cx, err := rt.NewContext()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	g, err := cx.MakeCurrent()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer g.Release()
//
//	mul, err := runtime.NewFunction(rt, g, func(g *runtime.Guard, info runtime.CallInfo) (runtime.Value, error) {
//	    a, _ := info.Arguments[0].ToInteger(g)
//	    b, _ := info.Arguments[1].ToInteger(g)
//	    return runtime.Int(g, a*b)
//	})
//	_ = cx.SetGlobal(g, "multiply", mul.Value())
//	v, err := runtime.Eval(g, "multiply(191, 7)") // 1337
//
// # Ownership
//
// Runtime owns the engine runtime and every callback state registered by
// NewFunction. Context, Value and Function are non-owning handles: they stay
// valid while their Runtime is open and, for values, while the engine can
// still reach them. Values the host keeps across script turns must be
// anchored with a RootStore or a PersistentValue.
//
// # Guards
//
// The engine tracks one current context per OS thread. MakeCurrent pins the
// calling goroutine to its thread and activates the context; Release restores
// whatever was current before and unpins. Every operation that touches engine
// state takes the Guard as proof that a context is active. Guards must be
// released in reverse acquisition order on the goroutine that created them.
//
// # Callbacks
//
// Host closures become script functions through a single process-wide
// trampoline. The closure itself is kept in a handle table and only its
// integer handle is given to the engine. The state is freed when the owning
// Runtime is closed, never earlier, because the engine may call a function
// at any point until disposal.
package runtime
