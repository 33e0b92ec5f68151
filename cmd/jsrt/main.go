package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/jsrt/runtime"
	"github.com/wippyai/jsrt/sys"
)

func main() {
	var (
		script      = flag.String("e", "", "Script to evaluate")
		file        = flag.String("f", "", "Script file to evaluate")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		noEval      = flag.Bool("no-eval", false, "Disable eval and Function in scripts")
		verbose     = flag.Bool("v", false, "Verbose engine logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		runtime.SetLogger(logger)
	}

	cfg := runtime.DefaultConfig()
	if *noEval {
		cfg.Attributes |= sys.AttributeDisableEval
	}

	var err error
	switch {
	case *interactive:
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Usage: jsrt -i requires a terminal")
			os.Exit(1)
		}
		err = runInteractive(cfg)
	case *script != "":
		err = evalSource(cfg, *script, runtime.DefaultSourceURL)
	case *file != "":
		var src []byte
		if src, err = os.ReadFile(*file); err == nil {
			err = evalSource(cfg, string(src), *file)
		} else {
			err = fmt.Errorf("read file: %w", err)
		}
	case !term.IsTerminal(int(os.Stdin.Fd())):
		var src []byte
		if src, err = io.ReadAll(os.Stdin); err == nil {
			err = evalSource(cfg, string(src), "stdin")
		} else {
			err = fmt.Errorf("read stdin: %w", err)
		}
	default:
		err = demo(cfg, os.Stdout)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// demo multiplies 191 by 7 through a host function, once called directly and
// once from script.
func demo(cfg *runtime.Config, out io.Writer) (err error) {
	rt, err := runtime.NewWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	cx, err := rt.NewContext()
	if err != nil {
		return multierr.Append(fmt.Errorf("create context: %w", err), rt.Close())
	}
	g, err := cx.MakeCurrent()
	if err != nil {
		return multierr.Append(fmt.Errorf("make current: %w", err), rt.Close())
	}
	defer func() {
		g.Release()
		err = multierr.Append(err, rt.Close())
	}()

	fn, err := runtime.NewFunction(rt, g, multiply)
	if err != nil {
		return fmt.Errorf("create function: %w", err)
	}

	a, err := runtime.Int(g, 191)
	if err != nil {
		return err
	}
	b, err := runtime.Int(g, 7)
	if err != nil {
		return err
	}
	v, err := fn.Call(g, a, b)
	if err != nil {
		return fmt.Errorf("call multiply: %w", err)
	}
	n, err := v.ToInteger(g)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "multiply(191, 7) = %d (direct)\n", n)

	if err := cx.SetGlobal(g, "multiply", fn.Value()); err != nil {
		return fmt.Errorf("install multiply: %w", err)
	}
	v, err = runtime.Eval(g, "multiply(191, 7)")
	if err != nil {
		return fmt.Errorf("eval: %w", err)
	}
	if n, err = v.ToInteger(g); err != nil {
		return err
	}
	fmt.Fprintf(out, "multiply(191, 7) = %d (script)\n", n)
	return nil
}

func evalSource(cfg *runtime.Config, src, url string) (err error) {
	s, err := startSession(cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Close())
	}()

	res := s.Run(src, url)
	fmt.Print(res.printed)
	if res.err != nil {
		return res.err
	}
	fmt.Println(res.value)
	return nil
}
