package main

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/jsrt/errors"
	"github.com/wippyai/jsrt/runtime"
	"github.com/wippyai/jsrt/sys"
)

func TestDemo(t *testing.T) {
	var out bytes.Buffer
	if err := demo(runtime.DefaultConfig(), &out); err != nil {
		t.Fatalf("demo: %v", err)
	}
	want := "multiply(191, 7) = 1337 (direct)\nmultiply(191, 7) = 1337 (script)\n"
	if out.String() != want {
		t.Fatalf("demo output = %q, want %q", out.String(), want)
	}
}

func TestSession(t *testing.T) {
	s, err := startSession(runtime.DefaultConfig())
	if err != nil {
		t.Fatalf("startSession: %v", err)
	}

	tests := []struct {
		src     string
		value   string
		printed string
		target  error
	}{
		{src: "multiply(6, 7)", value: "42"},
		{src: "print('a', 1, true); 'done'", value: "done", printed: "a 1 true\n"},
		{src: "var kept = 5", value: "undefined"},
		{src: "kept * 2", value: "10"},
		{src: "multiply(1)", target: errors.ErrInvalidArgument},
		{src: "syntax error here", target: errors.ErrScriptCompile},
	}

	for _, tt := range tests {
		res := s.Run(tt.src, "test")
		if tt.target != nil {
			if !stderrors.Is(res.err, tt.target) {
				t.Errorf("%q: expected %v, got %v", tt.src, tt.target, res.err)
			}
			continue
		}
		if res.err != nil {
			t.Errorf("%q: %v", tt.src, res.err)
			continue
		}
		if res.value != tt.value || res.printed != tt.printed {
			t.Errorf("%q = (%q, %q), want (%q, %q)", tt.src, res.value, res.printed, tt.value, tt.printed)
		}
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSession_NoEval(t *testing.T) {
	cfg := runtime.DefaultConfig()
	cfg.Attributes |= sys.AttributeDisableEval

	s, err := startSession(cfg)
	if err != nil {
		t.Fatalf("startSession: %v", err)
	}
	defer s.Close()

	res := s.Run("eval('1')", "test")
	if res.err == nil || !strings.Contains(res.err.Error(), "eval") {
		t.Fatalf("expected eval to be refused, got %v", res.err)
	}
}
