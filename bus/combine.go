package bus

import (
	"strings"

	"go.uber.org/zap"

	"github.com/signalbus/signalbus/signal"
)

// compositeKey derives the registry key for a multi-source subscription.
// One composite key per subscription keeps Unsubscribe symmetric with the
// returned handle: tearing down "a+b" does not touch plain "a" or "b"
// subscriptions, and vice versa.
func compositeKey(sources []Source) Key {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = string(s.Key)
	}
	return Key(strings.Join(parts, "+"))
}

// combineView builds the derived view without registering it anywhere.
func (e *Engine) combineView(sources []Source) *signal.Computed[Combined] {
	cells := make([]*signal.Signal[cellValue], len(sources))
	deps := make([]signal.Dep, len(sources))
	for i, src := range sources {
		cells[i] = e.store.cell(src.Key)
		deps[i] = cells[i]
	}

	compute := func() Combined {
		payloads := make([]any, len(sources))
		for i, c := range cells {
			v := c.Get()
			if !v.emitted {
				return Combined{}
			}
			p := v.event.Payload
			if sources[i].Transform != nil {
				p = sources[i].Transform(p)
			}
			payloads[i] = p
		}
		return Combined{Payloads: payloads, OK: true}
	}

	return signal.NewComputed(e.rt, compute, deps...)
}

// CombineLatestToSignal returns a reactive view over the ordered source
// list. Its value stays absent until every source has emitted at least
// once; from then on it recomputes whenever any source changes, holding
// the transformed payloads position-matched to the sources. The view is
// registered under the composite key.
func (e *Engine) CombineLatestToSignal(sources []Source) *signal.Computed[Combined] {
	if len(sources) == 0 {
		e.logger.Warn("combine view dropped", zap.Error(ErrNoSources))
		return signal.NewComputed(e.rt, func() Combined { return Combined{} })
	}

	view := e.combineView(sources)

	sub := newSubscription(e, compositeKey(sources))
	e.registry.add(sub)
	sub.install(func() (*signal.Watch, func(), *tracker) {
		return nil, view.Stop, nil
	})

	return view
}

// CombineLatest invokes cb whenever the combined view over sources holds a
// value, which requires every source to have emitted at least once. Each
// invocation receives freshly constructed per-source events carrying the
// transformed payloads and a synthesized current timestamp. Failure
// isolation matches On. The single watcher is registered under the
// composite key; the returned handle is idempotent.
func (e *Engine) CombineLatest(sources []Source, cb CombinedCallback, opts ...SubscribeOption) UnsubscribeFunc {
	if cb == nil {
		e.logger.Warn("combine subscription dropped", zap.Error(ErrNilCallback))
		return noopUnsubscribe
	}
	if len(sources) == 0 {
		e.logger.Warn("combine subscription dropped", zap.Error(ErrNoSources))
		return noopUnsubscribe
	}
	if e.closed.Load() {
		e.logger.Warn("subscribe on closed engine")
		return noopUnsubscribe
	}

	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	srcs := make([]Source, len(sources))
	copy(srcs, sources)

	sub := newSubscription(e, compositeKey(srcs))
	e.registry.add(sub)
	snap := e.snapshotTrigger(cfg.trigger)

	e.rt.Defer(func() {
		sub.install(func() (*signal.Watch, func(), *tracker) {
			view := e.combineView(srcs)
			watch := view.Watch(func(c Combined) {
				if !c.OK {
					return
				}
				now := e.clk.Now()
				events := make([]Event, len(srcs))
				for i := range srcs {
					events[i] = Event{Key: srcs[i].Key, Payload: c.Payloads[i], Timestamp: now}
				}
				e.invoke(sub, func() error { return cb(events) })
			})

			var tr *tracker
			if cfg.trigger != nil {
				tr = e.attachTracker(sub, cfg.trigger, snap)
			}
			return watch, view.Stop, tr
		})
	})

	return sub.unsubscribeFunc()
}
