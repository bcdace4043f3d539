package bus

import (
	"go.uber.org/zap"

	"github.com/signalbus/signalbus/signal"
)

// On registers cb for every event emitted on key after the subscription
// becomes active. Historical events are never replayed; use Latest for an
// explicit read. The returned handle tears down the watcher and any
// attached trigger; invoking it more than once is a no-op, and invoking it
// before the watcher finished installing cancels the installation.
func (e *Engine) On(key Key, cb Callback, opts ...SubscribeOption) UnsubscribeFunc {
	return e.subscribe(key, cb, false, opts)
}

// Once is On limited to a single delivery: the subscription unsubscribes
// itself before invoking cb, so even a callback that synchronously emits
// the same key again cannot be dispatched twice.
func (e *Engine) Once(key Key, cb Callback, opts ...SubscribeOption) UnsubscribeFunc {
	return e.subscribe(key, cb, true, opts)
}

func (e *Engine) subscribe(key Key, cb Callback, once bool, opts []SubscribeOption) UnsubscribeFunc {
	if cb == nil {
		e.logger.Warn("subscription dropped", zap.String("key", string(key)), zap.Error(ErrNilCallback))
		return noopUnsubscribe
	}
	if e.closed.Load() {
		e.logger.Warn("subscribe on closed engine", zap.String("key", string(key)))
		return noopUnsubscribe
	}

	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	sub := newSubscription(e, key)
	e.registry.add(sub)
	snap := e.snapshotTrigger(cfg.trigger)

	// Installation is deferred past any in-flight notification pass so a
	// subscription created inside a callback does not join the pass that
	// created it. An unsubscribe arriving before the deferred install runs
	// is remembered by the subscription state machine.
	e.rt.Defer(func() {
		sub.install(func() (*signal.Watch, func(), *tracker) {
			cell := e.store.cell(key)
			watch := cell.Watch(func(v cellValue) {
				if !v.emitted {
					return
				}
				e.dispatch(sub, cfg, cb, once, v.event)
			})

			var tr *tracker
			if cfg.trigger != nil {
				tr = e.attachTracker(sub, cfg.trigger, snap)
			}
			return watch, nil, tr
		})
	})

	return sub.unsubscribeFunc()
}

// dispatch delivers one event to one subscription: transform, then
// callback, behind the isolation boundary. Outgoing events keep the
// emission's key and timestamp.
func (e *Engine) dispatch(sub *subscription, cfg subscribeConfig, cb Callback, once bool, ev Event) {
	if once {
		if !sub.claimOnce() {
			return
		}
		sub.stop()
	}

	e.invoke(sub, func() error {
		if cfg.transform != nil {
			ev = Event{Key: ev.Key, Payload: cfg.transform(ev.Payload), Timestamp: ev.Timestamp}
		}
		return cb(ev)
	})
}

// OnToSignal returns a reactive view of the key's latest event. The view
// is absent until the key first emits, tracks every emission afterwards,
// and becomes absent again if the key is reset. The view is registered
// under the key, so Unsubscribe(key) and UnsubscribeAll stop it.
func (e *Engine) OnToSignal(key Key, opts ...SubscribeOption) *signal.Computed[Latest] {
	if e.closed.Load() {
		e.logger.Warn("subscribe on closed engine", zap.String("key", string(key)))
		return signal.NewComputed(e.rt, func() Latest { return Latest{} })
	}

	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	cell := e.store.cell(key)
	view := signal.NewComputed(e.rt, func() Latest {
		v := cell.Get()
		if !v.emitted {
			return Latest{}
		}
		ev := v.event
		if cfg.transform != nil {
			ev = Event{Key: ev.Key, Payload: cfg.transform(ev.Payload), Timestamp: ev.Timestamp}
		}
		return Latest{Event: ev, OK: true}
	}, cell)

	sub := newSubscription(e, key)
	e.registry.add(sub)
	snap := e.snapshotTrigger(cfg.trigger)
	sub.install(func() (*signal.Watch, func(), *tracker) {
		var tr *tracker
		if cfg.trigger != nil {
			tr = e.attachTracker(sub, cfg.trigger, snap)
		}
		return nil, view.Stop, tr
	})

	return view
}
