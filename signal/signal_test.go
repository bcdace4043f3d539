package signal

import "testing"

func TestSignal_GetSet(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 10)

	if got := s.Get(); got != 10 {
		t.Errorf("Get() = %d, want 10", got)
	}

	s.Set(42)
	if got := s.Get(); got != 42 {
		t.Errorf("Get() after Set = %d, want 42", got)
	}
}

func TestSignal_WatchFiresOnSet(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)

	var got []int
	s.Watch(func(v int) { got = append(got, v) })

	s.Set(1)
	s.Set(2)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("watcher saw %v, want [1 2]", got)
	}
}

func TestSignal_WatchDoesNotFireForInitialValue(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 99)

	fired := false
	s.Watch(func(int) { fired = true })

	if fired {
		t.Error("watcher fired for initial value")
	}
}

func TestSignal_WatchersFireInRegistrationOrder(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)

	var order []string
	s.Watch(func(int) { order = append(order, "first") })
	s.Watch(func(int) { order = append(order, "second") })

	s.Set(1)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("fire order = %v, want [first second]", order)
	}
}

func TestSignal_StopSuppressesDelivery(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)

	count := 0
	w := s.Watch(func(int) { count++ })

	s.Set(1)
	w.Stop()
	s.Set(2)

	if count != 1 {
		t.Errorf("watcher fired %d times, want 1", count)
	}

	// Stop is idempotent.
	w.Stop()
}

func TestSignal_StopDuringPassSuppressesQueuedDelivery(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)

	var second *Watch
	secondFired := false
	s.Watch(func(v int) {
		if second != nil {
			second.Stop()
		}
	})
	second = s.Watch(func(int) { secondFired = true })

	// First watcher stops the second before it is reached in the same
	// delivery; the second must not fire.
	s.Set(1)

	if secondFired {
		t.Error("stopped watcher fired from queued notification")
	}
}

func TestSignal_ReentrantSetDeliveredInOrder(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)

	var got []int
	s.Watch(func(v int) {
		got = append(got, v)
		if v == 1 {
			s.Set(2)
		}
	})

	s.Set(1)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("watcher saw %v, want [1 2]", got)
	}
}

func TestSignal_Update(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 5)

	var got int
	s.Watch(func(v int) { got = v })

	s.Update(func(v int) int { return v * 2 })

	if s.Get() != 10 {
		t.Errorf("Get() = %d, want 10", s.Get())
	}
	if got != 10 {
		t.Errorf("watcher saw %d, want 10", got)
	}
}

func TestSignal_StopInsideOwnWatcher(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 0)

	count := 0
	var w *Watch
	w = s.Watch(func(int) {
		count++
		w.Stop()
	})

	s.Set(1)
	s.Set(2)

	if count != 1 {
		t.Errorf("watcher fired %d times, want 1", count)
	}
}
