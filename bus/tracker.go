package bus

import (
	"github.com/signalbus/signalbus/lifecycle"
	"github.com/signalbus/signalbus/signal"
)

// Trigger is a conditional-unsubscribe token: an auxiliary signal that,
// when it fires, tears down the subscription it is attached to. It is a
// tagged union; use one of the constructors.
type Trigger struct {
	scope *lifecycle.Scope
	flag  *signal.Signal[bool]
	keys  []Key
}

// TriggerOnTeardown tears the subscription down when the scope ends.
func TriggerOnTeardown(scope *lifecycle.Scope) Trigger {
	return Trigger{scope: scope}
}

// TriggerOnSignal tears the subscription down the moment the flag
// evaluates true, including at attach time.
func TriggerOnSignal(flag *signal.Signal[bool]) Trigger {
	return Trigger{flag: flag}
}

// TriggerOnKeys tears the subscription down the first time any of the
// given keys emits after attach. Multiple keys are OR'd.
func TriggerOnKeys(keys ...Key) Trigger {
	return Trigger{keys: keys}
}

// tracker is the installed form of a Trigger: the watchers observing the
// token, plus their disposers. A tracker is owned by exactly one
// subscription and is torn down together with it, in both directions.
type tracker struct {
	stops []func()
}

func (t *tracker) stop() {
	for _, stop := range t.stops {
		stop()
	}
	t.stops = nil
}

// triggerSnapshot pins the state a Trigger is compared against. For key
// triggers this is each tracked cell's emission counter, captured when the
// subscription is attached rather than when its watcher installs: an
// emission landing in between still counts as "after attach".
type triggerSnapshot struct {
	seqs []uint64
}

// snapshotTrigger captures the attach-time state for trg. Must run before
// installation is deferred.
func (e *Engine) snapshotTrigger(trg *Trigger) triggerSnapshot {
	if trg == nil || len(trg.keys) == 0 {
		return triggerSnapshot{}
	}
	seqs := make([]uint64, len(trg.keys))
	for i, key := range trg.keys {
		seqs[i] = e.store.cell(key).Get().seq
	}
	return triggerSnapshot{seqs: seqs}
}

// attachTracker installs the trigger's watchers. sub.stop() is the action
// every variant arms. Runs during subscription installation, before the
// subscription can dispatch; snap carries the attach-time state so that a
// trigger satisfied during the deferred-install window still fires.
func (e *Engine) attachTracker(sub *subscription, trg *Trigger, snap triggerSnapshot) *tracker {
	t := &tracker{}

	switch {
	case trg.scope != nil:
		cancel := trg.scope.OnTeardown(func() error {
			sub.stop()
			return nil
		})
		t.stops = append(t.stops, cancel)

	case trg.flag != nil:
		w := trg.flag.Watch(func(set bool) {
			if set {
				sub.stop()
			}
		})
		t.stops = append(t.stops, w.Stop)
		if trg.flag.Get() {
			// Already true: the subscription never becomes active.
			e.rt.Defer(sub.stop)
		}

	case len(trg.keys) > 0:
		for i, key := range trg.keys {
			cell := e.store.cell(key)
			seq := snap.seqs[i]
			w := cell.Watch(func(v cellValue) {
				if v.seq != seq {
					sub.stop()
				}
			})
			t.stops = append(t.stops, w.Stop)
			if cell.Get().seq != seq {
				// The tracked key fired between attach and install.
				e.rt.Defer(sub.stop)
			}
		}
	}

	return t
}
