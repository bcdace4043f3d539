package signal

import "sync"

// Runtime owns the notification queue shared by every signal and computed
// view attached to it. One Runtime per logical reactive graph.
type Runtime struct {
	mu     sync.Mutex
	active bool
	queue  []func()
	tasks  []func()
}

// New creates a new runtime with an empty graph.
func New() *Runtime {
	return &Runtime{}
}

// enqueue appends a notification to the queue. If no pass is active the
// caller becomes the drainer and runs the queue to completion; otherwise
// the notification is picked up by the goroutine already draining.
func (r *Runtime) enqueue(fn func()) {
	r.mu.Lock()
	r.queue = append(r.queue, fn)
	if r.active {
		r.mu.Unlock()
		return
	}
	r.active = true
	r.drain()
}

// Defer runs fn after the current notification pass completes, or
// immediately when no pass is active.
func (r *Runtime) Defer(fn func()) {
	r.mu.Lock()
	if r.active {
		r.tasks = append(r.tasks, fn)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	fn()
}

// drain runs queued notifications, then deferred tasks, until both queues
// are empty. Called with r.mu held; returns with it released. Callbacks
// run without the lock so they may enqueue further work.
func (r *Runtime) drain() {
	for {
		var fn func()
		switch {
		case len(r.queue) > 0:
			fn, r.queue = r.queue[0], r.queue[1:]
		case len(r.tasks) > 0:
			fn, r.tasks = r.tasks[0], r.tasks[1:]
		default:
			r.active = false
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
		fn()
		r.mu.Lock()
	}
}
