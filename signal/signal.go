package signal

import "sync"

// Signal is a mutable reactive cell. Reads are direct; writes notify every
// registered watcher through the runtime's notification queue.
type Signal[T any] struct {
	rt       *Runtime
	mu       sync.Mutex
	value    T
	watchers []*watcher[T]
}

// NewSignal creates a signal holding the initial value. No watchers fire
// for the initial value.
func NewSignal[T any](rt *Runtime, initial T) *Signal[T] {
	return &Signal[T]{rt: rt, value: initial}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set stores a new value and notifies all watchers in registration order.
// When called from inside a notification pass the delivery is queued and
// happens after the in-flight batch, preserving write order.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	snapshot := make([]*watcher[T], len(s.watchers))
	copy(snapshot, s.watchers)
	s.mu.Unlock()

	s.rt.enqueue(func() {
		for _, w := range snapshot {
			if w.alive.Load() {
				w.fn(value)
			}
		}
	})
}

// Update applies fn to the current value and stores the result as one
// atomic read-modify-write, then notifies watchers like Set.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.value = fn(s.value)
	value := s.value
	snapshot := make([]*watcher[T], len(s.watchers))
	copy(snapshot, s.watchers)
	s.mu.Unlock()

	s.rt.enqueue(func() {
		for _, w := range snapshot {
			if w.alive.Load() {
				w.fn(value)
			}
		}
	})
}

// Watch registers fn to run on every subsequent Set or Update. fn does not
// run for the current value.
func (s *Signal[T]) Watch(fn func(T)) *Watch {
	w := newWatcher(fn)
	s.mu.Lock()
	s.watchers = append(s.watchers, w)
	s.mu.Unlock()

	return &Watch{stop: func() {
		w.alive.Store(false)
		s.remove(w)
	}}
}

func (s *Signal[T]) remove(w *watcher[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.watchers {
		if cur == w {
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			return
		}
	}
}

// depWatch implements Dep.
func (s *Signal[T]) depWatch(fn func()) *Watch {
	return s.Watch(func(T) { fn() })
}
