package bus

import (
	"sync"

	"github.com/google/uuid"
	"github.com/signalbus/signalbus/signal"
)

// subState is the lifecycle state of a subscription. Watcher installation
// is deferred to dodge reactive-context reentrancy, so an unsubscribe can
// legally arrive before the watcher exists; the state machine captures
// that instead of leaking the watcher.
type subState int32

const (
	// statePending means the subscription is registered but its watcher
	// has not been installed yet.
	statePending subState = iota

	// stateInstalled means the watcher is live.
	stateInstalled

	// stateCancelledBeforeInstall means unsubscribe arrived while still
	// pending; installation is skipped.
	stateCancelledBeforeInstall

	// stateStopped means the subscription was installed and later torn
	// down.
	stateStopped
)

// String returns a human-readable state name.
func (s subState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateInstalled:
		return "installed"
	case stateCancelledBeforeInstall:
		return "cancelled-before-install"
	case stateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// subscription is one live consumer registration: a single-key callback,
// a multi-source callback, or an internal view. It owns its main watcher
// and any conditional-unsubscribe tracker, and tears both down together.
type subscription struct {
	id  string
	key Key // registry key; composite for multi-source subscriptions

	engine *Engine

	mu      sync.Mutex
	state   subState
	watch   *signal.Watch
	view    func() // extra disposer for subscriptions wrapping a computed view
	tracker *tracker
	fired   bool // set by once-subscriptions after their single dispatch
}

func newSubscription(e *Engine, key Key) *subscription {
	return &subscription{
		id:     uuid.NewString(),
		key:    key,
		engine: e,
	}
}

// install transitions pending -> installed and attaches the disposers
// produced by mk. mk runs without the subscription lock held because it
// may reenter stop synchronously (a trigger that is already satisfied
// cancels the subscription while it is being built). If the subscription
// was cancelled before or during mk, whatever mk produced is disposed and
// install reports false.
func (s *subscription) install(mk func() (*signal.Watch, func(), *tracker)) bool {
	s.mu.Lock()
	if s.state != statePending {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	watch, view, tr := mk()

	s.mu.Lock()
	if s.state != statePending {
		s.mu.Unlock()
		if watch != nil {
			watch.Stop()
		}
		if view != nil {
			view()
		}
		if tr != nil {
			tr.stop()
		}
		return false
	}
	s.watch, s.view, s.tracker = watch, view, tr
	s.state = stateInstalled
	s.mu.Unlock()
	return true
}

// stop tears the subscription down: the main watcher, the wrapped view if
// any, and the tracker, together. Safe to call multiple times, from any
// state, including from inside a dispatch or tracker callback.
func (s *subscription) stop() {
	s.mu.Lock()
	switch s.state {
	case statePending:
		s.state = stateCancelledBeforeInstall
		s.mu.Unlock()
		s.engine.registry.remove(s)
		return
	case stateCancelledBeforeInstall, stateStopped:
		s.mu.Unlock()
		return
	}
	s.state = stateStopped
	watch, view, tr := s.watch, s.view, s.tracker
	s.watch, s.view, s.tracker = nil, nil, nil
	s.mu.Unlock()

	if watch != nil {
		watch.Stop()
	}
	if view != nil {
		view()
	}
	if tr != nil {
		tr.stop()
	}
	s.engine.registry.remove(s)
}

// claimOnce marks the first dispatch of a once-subscription. Reports false
// when the dispatch has already been claimed.
func (s *subscription) claimOnce() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired {
		return false
	}
	s.fired = true
	return true
}

// unsubscribeFunc wraps stop as the public handle.
func (s *subscription) unsubscribeFunc() UnsubscribeFunc {
	return s.stop
}
