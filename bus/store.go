package bus

import (
	"sort"
	"sync"

	"github.com/signalbus/signalbus/signal"
)

// cellValue is the tagged state of one storage cell: either "never
// emitted" or the last emitted event. seq counts emissions and survives
// resets, so watchers can tell an emission from a reset without comparing
// payloads.
type cellValue struct {
	emitted bool
	seq     uint64
	event   Event
}

// store owns one lazily-created reactive cell per key. It is exclusively
// owned by one engine instance.
type store struct {
	rt    *signal.Runtime
	mu    sync.Mutex
	cells map[Key]*signal.Signal[cellValue]
}

func newStore(rt *signal.Runtime) *store {
	return &store{
		rt:    rt,
		cells: make(map[Key]*signal.Signal[cellValue]),
	}
}

// cell returns the cell for key, creating it in the "never emitted" state
// on first access. At most one cell ever exists per key.
func (st *store) cell(key Key) *signal.Signal[cellValue] {
	st.mu.Lock()
	defer st.mu.Unlock()

	c, ok := st.cells[key]
	if !ok {
		c = signal.NewSignal(st.rt, cellValue{})
		st.cells[key] = c
	}
	return c
}

// emit writes a new event into the key's cell, triggering every dependent
// watcher and view.
func (st *store) emit(key Key, event Event) {
	st.cell(key).Update(func(v cellValue) cellValue {
		return cellValue{emitted: true, seq: v.seq + 1, event: event}
	})
}

// reset rewrites the key's cell back to "never emitted". The cell itself
// survives, as do its watchers; the emission counter is kept so a reset is
// never mistaken for an emission.
func (st *store) reset(key Key) {
	st.mu.Lock()
	c, ok := st.cells[key]
	st.mu.Unlock()
	if !ok {
		return
	}
	c.Update(func(v cellValue) cellValue {
		return cellValue{emitted: false, seq: v.seq}
	})
}

// resetAll resets every known cell.
func (st *store) resetAll() {
	for _, key := range st.keys() {
		st.reset(key)
	}
}

// keys returns all known cell keys, sorted.
func (st *store) keys() []Key {
	st.mu.Lock()
	keys := make([]Key, 0, len(st.cells))
	for k := range st.cells {
		keys = append(keys, k)
	}
	st.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// clear discards every cell. Used only by full engine teardown.
func (st *store) clear() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cells = make(map[Key]*signal.Signal[cellValue])
}
