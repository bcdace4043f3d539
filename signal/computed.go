package signal

import "sync"

// Computed is a derived reactive view over a fixed set of sources. Its
// value is recomputed whenever any source changes, and its own watchers
// are notified with the new value.
type Computed[T any] struct {
	rt       *Runtime
	compute  func() T
	mu       sync.Mutex
	value    T
	watchers []*watcher[T]
	deps     []*Watch
	stopped  bool
}

// NewComputed creates a computed view. compute runs once immediately to
// establish the initial value, then again on every change of any dep.
// compute must read only from the declared deps.
func NewComputed[T any](rt *Runtime, compute func() T, deps ...Dep) *Computed[T] {
	c := &Computed[T]{rt: rt, compute: compute}
	c.value = compute()
	for _, dep := range deps {
		c.deps = append(c.deps, dep.depWatch(c.refresh))
	}
	return c
}

// refresh recomputes the value and notifies watchers. Runs inside the
// runtime's notification pass, triggered by a source change.
func (c *Computed[T]) refresh() {
	value := c.compute()

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.value = value
	snapshot := make([]*watcher[T], len(c.watchers))
	copy(snapshot, c.watchers)
	c.mu.Unlock()

	c.rt.enqueue(func() {
		for _, w := range snapshot {
			if w.alive.Load() {
				w.fn(value)
			}
		}
	})
}

// Get returns the most recently computed value.
func (c *Computed[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Watch registers fn to run after every recomputation. fn does not run for
// the current value.
func (c *Computed[T]) Watch(fn func(T)) *Watch {
	w := newWatcher(fn)
	c.mu.Lock()
	c.watchers = append(c.watchers, w)
	c.mu.Unlock()

	return &Watch{stop: func() {
		w.alive.Store(false)
		c.remove(w)
	}}
}

func (c *Computed[T]) remove(w *watcher[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cur := range c.watchers {
		if cur == w {
			c.watchers = append(c.watchers[:i], c.watchers[i+1:]...)
			return
		}
	}
}

// Stop detaches the view from its sources. The last computed value remains
// readable via Get; watchers never fire again. Idempotent.
func (c *Computed[T]) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	deps := c.deps
	c.deps = nil
	c.mu.Unlock()

	for _, d := range deps {
		d.Stop()
	}
}

// depWatch implements Dep, allowing computed views to feed other computed
// views.
func (c *Computed[T]) depWatch(fn func()) *Watch {
	return c.Watch(func(T) { fn() })
}
