package engine

import (
	"context"
	"sync"
)

// Signal is a one-shot readiness notification. Callbacks registered with Then
// run exactly once, on the goroutine that fires the signal, or immediately when
// the signal has already fired.
type Signal struct {
	mu        sync.Mutex
	done      chan struct{}
	fired     bool
	callbacks []func()
}

func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Fire runs the registered callbacks, then releases Wait and Done. Then
// called from inside a callback runs immediately.
func (s *Signal) Fire() {
	s.mu.Lock()
	if s.fired {
		s.mu.Unlock()
		return
	}
	s.fired = true
	callbacks := s.callbacks
	s.callbacks = nil
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	close(s.done)
}

func (s *Signal) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

func (s *Signal) Done() <-chan struct{} {
	return s.done
}

func (s *Signal) Then(fn func()) {
	s.mu.Lock()
	if !s.fired {
		s.callbacks = append(s.callbacks, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
