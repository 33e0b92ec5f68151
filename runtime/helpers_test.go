package runtime

import (
	"testing"

	"github.com/wippyai/jsrt/sys"
)

// newTestEnv creates a runtime with one context made current. Cleanup
// releases the guard before closing the runtime.
func newTestEnv(t *testing.T) (*Runtime, *Context, *Guard) {
	t.Helper()
	rt, cx := newTestContext(t)
	return rt, cx, enter(t, cx)
}

// newTestContext creates a runtime with one context and leaves no context
// current. Subtests enter it with enter, since each runs on its own
// goroutine and engine contexts are per thread.
func newTestContext(t *testing.T) (*Runtime, *Context) {
	t.Helper()

	rt, err := New()
	if err != nil {
		t.Fatalf("create runtime: %v", err)
	}
	cx, err := rt.NewContext()
	if err != nil {
		rt.Close()
		t.Fatalf("create context: %v", err)
	}
	t.Cleanup(func() {
		if err := rt.Close(); err != nil {
			t.Errorf("close runtime: %v", err)
		}
	})
	return rt, cx
}

// enter makes cx current on the calling goroutine until the test ends.
func enter(t *testing.T, cx *Context) *Guard {
	t.Helper()
	g, err := cx.MakeCurrent()
	if err != nil {
		t.Fatalf("make current: %v", err)
	}
	t.Cleanup(g.Release)
	return g
}

func currentContext(t *testing.T) sys.ContextRef {
	t.Helper()
	cx, code := sys.GetCurrentContext()
	if code != sys.NoError {
		t.Fatalf("JsGetCurrentContext: %v", code)
	}
	return cx
}

func mustInt(t *testing.T, g *Guard, n int32) Value {
	t.Helper()
	v, err := Int(g, n)
	if err != nil {
		t.Fatalf("Int(%d): %v", n, err)
	}
	return v
}

func mustString(t *testing.T, g *Guard, s string) Value {
	t.Helper()
	v, err := String(g, s)
	if err != nil {
		t.Fatalf("String(%q): %v", s, err)
	}
	return v
}

func mustEval(t *testing.T, g *Guard, src string) Value {
	t.Helper()
	v, err := Eval(g, src)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

func toInt(t *testing.T, g *Guard, v Value) int32 {
	t.Helper()
	n, err := v.ToInteger(g)
	if err != nil {
		t.Fatalf("ToInteger: %v", err)
	}
	return n
}

func toString(t *testing.T, g *Guard, v Value) string {
	t.Helper()
	s, err := v.ToString(g)
	if err != nil {
		t.Fatalf("ToString: %v", err)
	}
	return s
}
