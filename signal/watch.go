package signal

import (
	"sync"
	"sync/atomic"
)

// Watch is the disposal handle for a registered watcher.
type Watch struct {
	stop func()
	once sync.Once
}

// Stop detaches the watcher. It is safe to call multiple times and safe to
// call from inside the watcher itself; after Stop returns the watcher will
// not fire again, even for notifications already queued.
func (w *Watch) Stop() {
	w.once.Do(w.stop)
}

// watcher is one registered callback on a signal or computed view.
// alive is checked at delivery time so that stopping a watcher also
// suppresses queued notifications.
type watcher[T any] struct {
	fn    func(T)
	alive atomic.Bool
}

func newWatcher[T any](fn func(T)) *watcher[T] {
	w := &watcher[T]{fn: fn}
	w.alive.Store(true)
	return w
}

// Dep is a source a Computed can depend on. Both Signal and Computed
// satisfy it.
type Dep interface {
	// depWatch registers a value-independent change notification.
	depWatch(fn func()) *Watch
}
