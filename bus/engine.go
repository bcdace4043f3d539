package bus

import (
	"runtime/debug"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/signalbus/signalbus/lifecycle"
	"github.com/signalbus/signalbus/signal"
)

// Engine is a typed, in-process publish/subscribe bus backed by a
// reactive-value store. One engine per logical bus; the keyed store and
// subscription registry are exclusively owned by the instance and torn
// down with it.
type Engine struct {
	rt       *signal.Runtime
	store    *store
	registry *registry
	clk      clock.Clock
	logger   *zap.Logger

	scope       *lifecycle.Scope
	cancelScope func()

	closed atomic.Bool

	emitted   atomic.Uint64
	delivered atomic.Uint64
	cbErrors  atomic.Uint64
	cbPanics  atomic.Uint64
}

// New creates an engine on the given reactive runtime. The runtime is
// required; ErrNilRuntime is the only construction failure.
func New(rt *signal.Runtime, opts ...Option) (*Engine, error) {
	if rt == nil {
		return nil, ErrNilRuntime
	}

	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		rt:       rt,
		store:    newStore(rt),
		registry: newRegistry(),
		clk:      cfg.clk,
		logger:   cfg.logger,
		scope:    cfg.scope,
	}

	if e.scope != nil {
		e.cancelScope = e.scope.OnTeardown(e.Close)
	}

	return e, nil
}

// Emit publishes payload on key. The key's cell is created on first use;
// every live subscriber of the key is dispatched synchronously within the
// runtime's notification pass. Emitting on a closed engine is dropped.
func (e *Engine) Emit(key Key, payload any) {
	if e.closed.Load() {
		e.logger.Warn("emit on closed engine", zap.String("key", string(key)))
		return
	}

	e.store.emit(key, Event{
		Key:       key,
		Payload:   payload,
		Timestamp: e.clk.Now(),
	})
	e.emitted.Add(1)
}

// Latest returns the last event emitted on key, or ok=false if the key has
// never emitted (or has been reset). Reading never dispatches anything.
func (e *Engine) Latest(key Key) (Event, bool) {
	v := e.store.cell(key).Get()
	return v.event, v.emitted
}

// Keys returns every key with a storage cell, sorted. A key appears once
// it has been emitted, subscribed, or read.
func (e *Engine) Keys() []Key {
	return e.store.keys()
}

// ResetEvent rewrites the key's cell back to "never emitted". Subscribers
// stay registered and the cell survives; only its value is cleared.
func (e *Engine) ResetEvent(key Key) {
	e.store.reset(key)
}

// ResetAllEvents resets every known key.
func (e *Engine) ResetAllEvents() {
	e.store.resetAll()
}

// Unsubscribe tears down every subscription registered under exactly this
// key. Multi-source subscriptions live under their composite key and are
// not affected by unsubscribing one of their sources.
func (e *Engine) Unsubscribe(key Key) {
	for _, sub := range e.registry.forKey(key) {
		sub.stop()
	}
}

// UnsubscribeAll tears down every live subscription across every key and
// composite key. Storage cells and their last values stay intact.
func (e *Engine) UnsubscribeAll() {
	for _, sub := range e.registry.all() {
		sub.stop()
	}
}

// Close tears the engine down: every subscription is stopped and all
// storage cells are discarded. Safe to call multiple times. Always returns
// nil; the error return satisfies lifecycle teardown hooks.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	if e.cancelScope != nil {
		e.cancelScope()
	}
	e.UnsubscribeAll()
	e.store.clear()
	return nil
}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	// EventsEmitted is the number of Emit calls accepted.
	EventsEmitted uint64

	// Delivered is the number of successful callback invocations.
	Delivered uint64

	// CallbackErrors is the number of callbacks that returned an error.
	CallbackErrors uint64

	// CallbackPanics is the number of callbacks that panicked.
	CallbackPanics uint64

	// Subscriptions is the current number of live subscriptions.
	Subscriptions int
}

// Stats returns current engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		EventsEmitted:  e.emitted.Load(),
		Delivered:      e.delivered.Load(),
		CallbackErrors: e.cbErrors.Load(),
		CallbackPanics: e.cbPanics.Load(),
		Subscriptions:  e.registry.count(),
	}
}

// invoke runs a subscriber callback behind the failure-isolation boundary:
// panics are recovered and returned errors are captured, both reported to
// the diagnostic sink and never propagated to the emitter or to other
// subscribers.
func (e *Engine) invoke(sub *subscription, run func() error) {
	defer func() {
		if r := recover(); r != nil {
			e.cbPanics.Add(1)
			e.logger.Error("subscriber panicked",
				zap.Error(&PanicError{
					SubscriptionID: sub.id,
					Key:            sub.key,
					Value:          r,
					Stack:          debug.Stack(),
				}))
		}
	}()

	if err := run(); err != nil {
		e.cbErrors.Add(1)
		e.logger.Error("subscriber failed",
			zap.Error(&CallbackError{
				SubscriptionID: sub.id,
				Key:            sub.key,
				Err:            err,
			}))
		return
	}
	e.delivered.Add(1)
}

// noopUnsubscribe is returned for misused registrations (nil callback,
// empty source list) so the surface stays panic-free.
func noopUnsubscribe() {}
