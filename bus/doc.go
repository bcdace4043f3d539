// Package bus provides a typed, in-process publish/subscribe engine
// backed by a reactive-value store. Producers emit keyed events with
// payloads; consumers subscribe with callbacks, derive reactive views, or
// combine several event streams into one.
//
// # Architecture
//
//	                ┌────────────────────────────────────────┐
//	                │                Engine                  │
//	                │  - keyed store (one cell per key)      │
//	                │  - subscription registry               │
//	                │  - dispatch pipeline (On / Once)       │
//	                │  - combinator (CombineLatest)          │
//	                └────────────────────────────────────────┘
//	                                   │
//	        ┌──────────────────────────┼──────────────────────────┐
//	        ▼                          ▼                          ▼
//	┌───────────────┐        ┌──────────────────┐       ┌──────────────────┐
//	│    signal     │        │     tracker      │       │    lifecycle     │
//	│ reactive cells│        │ conditional      │       │ teardown scopes  │
//	│ and views     │        │ unsubscribe      │       │                  │
//	└───────────────┘        └──────────────────┘       └──────────────────┘
//
// Each key owns one lazily-created reactive cell holding the last emitted
// event, or a "never emitted" sentinel that is distinguishable from any
// real payload, nil included. Emit writes a fresh immutable Event into the
// cell; every watcher of that cell runs synchronously within the same
// notification pass, in subscription order.
//
// # Delivery semantics
//
// This is a last-value broadcast mechanism, not a queue. Subscribers see
// only events emitted after their subscription became active; there is no
// replay. The last value of any key is always available through Latest or
// OnToSignal. Per key, dispatch order follows emission order; across keys
// there is no ordering guarantee.
//
// # Failure isolation
//
// Subscriber callbacks run behind an isolation boundary: a panic or a
// returned error is reported to the engine's zap logger and never reaches
// the emitter or other subscribers of the same event.
//
// # Conditional unsubscribe
//
// A subscription can carry a Trigger that tears it down automatically:
// when a lifecycle scope ends, when a boolean signal becomes true, or the
// first time any of a set of keys emits. The trigger's own watchers are
// torn down together with the subscription, in both directions.
//
// # Usage
//
//	rt := signal.New()
//	engine, err := bus.New(rt, bus.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	off := engine.On("cart:item-added", func(ev bus.Event) error {
//	    item := ev.Payload.(CartItem)
//	    return updateBadge(item)
//	})
//	defer off()
//
//	engine.Emit("cart:item-added", CartItem{ID: "abc", Quantity: 1})
package bus
