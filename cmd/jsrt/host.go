package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/wippyai/jsrt/errors"
	"github.com/wippyai/jsrt/runtime"
)

func multiply(g *runtime.Guard, info runtime.CallInfo) (runtime.Value, error) {
	if len(info.Arguments) != 2 {
		return runtime.Value{}, errors.Argument(errors.PhaseCallback,
			"multiply expects 2 arguments, got %d", len(info.Arguments))
	}
	a, err := info.Arguments[0].ToInteger(g)
	if err != nil {
		return runtime.Value{}, err
	}
	b, err := info.Arguments[1].ToInteger(g)
	if err != nil {
		return runtime.Value{}, err
	}
	return runtime.Int(g, a*b)
}

// printTo returns a print(...) implementation writing space-separated
// arguments and a newline to w.
func printTo(w io.Writer) runtime.Callback {
	return func(g *runtime.Guard, info runtime.CallInfo) (runtime.Value, error) {
		parts := make([]string, len(info.Arguments))
		for i, a := range info.Arguments {
			s, err := a.ToString(g)
			if err != nil {
				return runtime.Value{}, err
			}
			parts[i] = s
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
		return runtime.Undefined(g)
	}
}

// installHost defines the host globals every script sees.
func installHost(rt *runtime.Runtime, cx *runtime.Context, g *runtime.Guard, out io.Writer) error {
	globals := []struct {
		name string
		fn   runtime.Callback
	}{
		{"multiply", multiply},
		{"print", printTo(out)},
	}
	for _, gl := range globals {
		fn, err := runtime.NewFunction(rt, g, gl.fn)
		if err != nil {
			return fmt.Errorf("create %s: %w", gl.name, err)
		}
		if err := cx.SetGlobal(g, gl.name, fn.Value()); err != nil {
			return fmt.Errorf("install %s: %w", gl.name, err)
		}
	}
	return nil
}
