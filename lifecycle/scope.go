// Package lifecycle provides teardown scopes: one-shot registries of
// cleanup hooks run when an owning context ends. The bus engine uses a
// Scope both as its own shutdown trigger and as a conditional-unsubscribe
// token for individual subscriptions.
package lifecycle

import (
	"sync"

	"go.uber.org/multierr"
)

// Scope collects teardown hooks and runs them exactly once.
type Scope struct {
	mu    sync.Mutex
	done  bool
	hooks []*hook
}

type hook struct {
	fn        func() error
	cancelled bool
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// OnTeardown registers fn to run when the scope is torn down. The returned
// cancel function deregisters the hook; calling it after teardown has run
// is a no-op. Registering on an already-torn-down scope runs fn
// immediately and returns a no-op cancel.
func (s *Scope) OnTeardown(fn func() error) (cancel func()) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		_ = fn()
		return func() {}
	}
	h := &hook{fn: fn}
	s.hooks = append(s.hooks, h)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		h.cancelled = true
	}
}

// Teardown runs all registered hooks in registration order and returns
// their errors combined. Only the first call runs hooks; subsequent calls
// return nil.
func (s *Scope) Teardown() error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	var err error
	for _, h := range hooks {
		s.mu.Lock()
		skip := h.cancelled
		s.mu.Unlock()
		if skip {
			continue
		}
		err = multierr.Append(err, h.fn())
	}
	return err
}

// Done reports whether the scope has been torn down.
func (s *Scope) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}
