package bus

import (
	"errors"
	"testing"
)

func TestOn_ReceivesEmissionsInOrder(t *testing.T) {
	e := newTestEngine(t)

	var got []any
	e.On("k", func(ev Event) error {
		got = append(got, ev.Payload)
		return nil
	})

	e.Emit("k", 1)
	e.Emit("k", 2)
	e.Emit("k", 3)

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("delivered %v, want [1 2 3]", got)
	}
}

func TestOn_NoReplayOfHistoricalEvents(t *testing.T) {
	e := newTestEngine(t)

	e.Emit("k", 1)
	e.Emit("k", 2)

	count := 0
	e.On("k", func(Event) error { count++; return nil })

	if count != 0 {
		t.Errorf("late subscriber received %d historical events", count)
	}

	e.Emit("k", 3)
	if count != 1 {
		t.Errorf("late subscriber received %d events, want 1", count)
	}
}

func TestOn_Transform(t *testing.T) {
	e := newTestEngine(t)

	var got any
	e.On("k", func(ev Event) error {
		got = ev.Payload
		return nil
	}, WithTransform(func(p any) any { return p.(int) * 10 }))

	e.Emit("k", 4)

	if got != 40 {
		t.Errorf("transformed payload = %v, want 40", got)
	}

	// The transform never touches the stored event.
	ev, _ := e.Latest("k")
	if ev.Payload != 4 {
		t.Errorf("stored payload = %v, want raw 4", ev.Payload)
	}
}

func TestOn_TransformKeepsKeyAndTimestamp(t *testing.T) {
	e := newTestEngine(t)

	var got Event
	e.On("k", func(ev Event) error {
		got = ev
		return nil
	}, WithTransform(func(any) any { return "derived" }))

	e.Emit("k", "raw")

	stored, _ := e.Latest("k")
	if got.Key != stored.Key {
		t.Errorf("delivered key = %q, want %q", got.Key, stored.Key)
	}
	if !got.Timestamp.Equal(stored.Timestamp) {
		t.Errorf("delivered timestamp = %v, want %v", got.Timestamp, stored.Timestamp)
	}
}

func TestOn_UnsubscribeIsIdempotent(t *testing.T) {
	e := newTestEngine(t)

	count := 0
	off := e.On("k", func(Event) error { count++; return nil })

	off()
	off()
	e.Emit("k", 1)

	if count != 0 {
		t.Errorf("callback fired %d times after unsubscribe, want 0", count)
	}
}

func TestOn_FailingSubscriberDoesNotBlockOthers(t *testing.T) {
	e := newTestEngine(t)

	var second, third int
	e.On("k", func(Event) error { panic("first subscriber broken") })
	e.On("k", func(Event) error { second++; return nil })
	e.On("k", func(Event) error { third++; return errors.New("third failed") })

	e.Emit("k", 1)
	e.Emit("k", 2)

	if second != 2 {
		t.Errorf("second subscriber fired %d times, want 2", second)
	}
	if third != 2 {
		t.Errorf("third subscriber fired %d times, want 2", third)
	}
}

func TestOn_ErrorNeverReachesEmitter(t *testing.T) {
	e := newTestEngine(t)

	e.On("k", func(Event) error { return errors.New("boom") })

	// Emit has no error to return; the failure is swallowed at the
	// dispatch boundary.
	e.Emit("k", 1)
}

func TestOn_SubscribeInsideCallbackMissesCurrentEvent(t *testing.T) {
	e := newTestEngine(t)

	var innerGot []any
	e.On("k", func(Event) error {
		e.On("k", func(ev Event) error {
			innerGot = append(innerGot, ev.Payload)
			return nil
		})
		return nil
	})

	e.Emit("k", 1)
	if len(innerGot) != 0 {
		t.Errorf("inner subscriber received the event that created it: %v", innerGot)
	}

	e.Emit("k", 2)
	// One inner subscriber from the first emission, a second from the
	// second emission; only the first is active during emission 2.
	if len(innerGot) != 1 || innerGot[0] != 2 {
		t.Errorf("inner deliveries = %v, want [2]", innerGot)
	}
}

func TestOn_UnsubscribeBeforeInstallIsHonored(t *testing.T) {
	e := newTestEngine(t)

	innerCount := 0
	e.On("k", func(Event) error {
		// Subscribing inside a callback defers watcher installation;
		// cancelling before the install runs must be remembered.
		off := e.On("k", func(Event) error { innerCount++; return nil })
		off()
		return nil
	})

	e.Emit("k", 1)
	e.Emit("k", 2)

	if innerCount != 0 {
		t.Errorf("cancelled-before-install subscriber fired %d times", innerCount)
	}
	if got := e.Stats().Subscriptions; got != 1 {
		t.Errorf("live subscriptions = %d, want 1 (no leaked watchers)", got)
	}
}

func TestOnce_FiresExactlyOnce(t *testing.T) {
	e := newTestEngine(t)

	count := 0
	e.Once("k", func(Event) error { count++; return nil })

	e.Emit("k", 1)
	e.Emit("k", 2)

	if count != 1 {
		t.Errorf("once callback fired %d times, want 1", count)
	}
}

func TestOnce_ReentrantEmitCannotDoubleFire(t *testing.T) {
	e := newTestEngine(t)

	count := 0
	e.Once("k", func(Event) error {
		count++
		// The subscription unsubscribed before this callback ran, so a
		// synchronous re-emit of the same key cannot dispatch us again.
		e.Emit("k", "again")
		return nil
	})

	e.Emit("k", "first")

	if count != 1 {
		t.Errorf("once callback fired %d times, want 1", count)
	}
	ev, ok := e.Latest("k")
	if !ok || ev.Payload != "again" {
		t.Errorf("Latest() = (%v, %v), want (again, true)", ev.Payload, ok)
	}
}

func TestOnce_ManualUnsubscribeBeforeEmit(t *testing.T) {
	e := newTestEngine(t)

	count := 0
	off := e.Once("k", func(Event) error { count++; return nil })
	off()

	e.Emit("k", 1)
	if count != 0 {
		t.Errorf("once callback fired %d times after unsubscribe, want 0", count)
	}
}

func TestOn_NilCallbackIsSafe(t *testing.T) {
	e := newTestEngine(t)

	off := e.On("k", nil)
	off()
	e.Emit("k", 1)

	if got := e.Stats().Subscriptions; got != 0 {
		t.Errorf("live subscriptions = %d, want 0", got)
	}
}

func TestOnToSignal_AbsentUntilEmit(t *testing.T) {
	e := newTestEngine(t)

	view := e.OnToSignal("k")
	if view.Get().OK {
		t.Error("view holds a value before any emission")
	}

	e.Emit("k", 7)
	got := view.Get()
	if !got.OK {
		t.Fatal("view absent after emission")
	}
	if got.Event.Payload != 7 {
		t.Errorf("view payload = %v, want 7", got.Event.Payload)
	}
}

func TestOnToSignal_TracksEveryEmission(t *testing.T) {
	e := newTestEngine(t)

	view := e.OnToSignal("k")
	e.Emit("k", 1)
	e.Emit("k", 2)

	if got := view.Get(); got.Event.Payload != 2 {
		t.Errorf("view payload = %v, want 2", got.Event.Payload)
	}
}

func TestOnToSignal_Transform(t *testing.T) {
	e := newTestEngine(t)

	view := e.OnToSignal("k", WithTransform(func(p any) any { return p.(string) + "!" }))
	e.Emit("k", "hey")

	if got := view.Get(); got.Event.Payload != "hey!" {
		t.Errorf("view payload = %v, want hey!", got.Event.Payload)
	}
}

func TestOnToSignal_ResetMakesAbsent(t *testing.T) {
	e := newTestEngine(t)

	view := e.OnToSignal("k")
	e.Emit("k", 1)
	e.ResetEvent("k")

	if view.Get().OK {
		t.Error("view still holds a value after reset")
	}
}

func TestOnToSignal_ClosedEngineYieldsAbsentView(t *testing.T) {
	e := newTestEngine(t)
	e.Close()

	view := e.OnToSignal("k")
	if view.Get().OK {
		t.Error("view on closed engine holds a value")
	}
	if got := len(e.Keys()); got != 0 {
		t.Errorf("closed engine has %d cells, want 0", got)
	}
	if got := e.Stats().Subscriptions; got != 0 {
		t.Errorf("live subscriptions = %d, want 0", got)
	}
}

func TestOnToSignal_StoppedByUnsubscribeAll(t *testing.T) {
	e := newTestEngine(t)

	view := e.OnToSignal("k")
	e.Emit("k", 1)
	e.UnsubscribeAll()
	e.Emit("k", 2)

	if got := view.Get(); got.Event.Payload != 1 {
		t.Errorf("view payload = %v, want last pre-teardown value 1", got.Event.Payload)
	}
}
