package main

import (
	"bytes"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/jsrt/runtime"
)

// session owns a runtime on one goroutine. The engine's current context is
// per OS thread, so every script runs on the goroutine that made the
// context current; callers hand work over through requests.
type session struct {
	requests chan request
	done     chan struct{}
	closeErr error
}

type request struct {
	src   string
	url   string
	reply chan result
}

type result struct {
	err     error
	value   string
	printed string
}

func startSession(cfg *runtime.Config) (*session, error) {
	s := &session{
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	ready := make(chan error, 1)
	go s.loop(cfg, ready)
	if err := <-ready; err != nil {
		<-s.done
		return nil, err
	}
	return s, nil
}

func (s *session) loop(cfg *runtime.Config, ready chan<- error) {
	defer close(s.done)

	rt, err := runtime.NewWithConfig(cfg)
	if err != nil {
		ready <- fmt.Errorf("create runtime: %w", err)
		return
	}
	cx, err := rt.NewContext()
	if err != nil {
		ready <- multierr.Append(fmt.Errorf("create context: %w", err), rt.Close())
		return
	}
	g, err := cx.MakeCurrent()
	if err != nil {
		ready <- multierr.Append(fmt.Errorf("make current: %w", err), rt.Close())
		return
	}

	var printed bytes.Buffer
	if err := installHost(rt, cx, g, &printed); err != nil {
		g.Release()
		ready <- multierr.Append(err, rt.Close())
		return
	}
	ready <- nil

	for req := range s.requests {
		printed.Reset()
		var res result
		v, err := runtime.RunScript(g, req.src, req.url)
		if err == nil {
			res.value, err = v.ToString(g)
		}
		res.err = err
		res.printed = printed.String()
		req.reply <- res

		// Handles from the turn are unreachable from Go once the reply
		// is sent.
		if err := rt.CollectGarbage(); err != nil {
			runtime.Logger().Debug("collect garbage failed", zap.Error(err))
		}
	}

	g.Release()
	s.closeErr = rt.Close()
}

// Run evaluates src and returns its completion value as a string.
func (s *session) Run(src, url string) result {
	reply := make(chan result, 1)
	s.requests <- request{src: src, url: url, reply: reply}
	return <-reply
}

// Close disposes the runtime. It must be called exactly once.
func (s *session) Close() error {
	close(s.requests)
	<-s.done
	return s.closeErr
}
