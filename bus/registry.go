package bus

import "sync"

// registry tracks every live subscription, grouped by registry key and
// indexed by ID. A subscription is present iff it is live (pending or
// installed); stop removes it.
type registry struct {
	mu    sync.Mutex
	byKey map[Key][]*subscription
	byID  map[string]*subscription
}

func newRegistry() *registry {
	return &registry{
		byKey: make(map[Key][]*subscription),
		byID:  make(map[string]*subscription),
	}
}

func (r *registry) add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[sub.key] = append(r.byKey[sub.key], sub)
	r.byID[sub.id] = sub
}

func (r *registry) remove(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[sub.id]; !ok {
		return
	}
	delete(r.byID, sub.id)

	subs := r.byKey[sub.key]
	for i, s := range subs {
		if s.id == sub.id {
			r.byKey[sub.key] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	// Drop empty buckets so Keys-style diagnostics stay clean.
	if len(r.byKey[sub.key]) == 0 {
		delete(r.byKey, sub.key)
	}
}

// forKey returns a snapshot of the subscriptions registered under exactly
// this key.
func (r *registry) forKey(key Key) []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := r.byKey[key]
	out := make([]*subscription, len(subs))
	copy(out, subs)
	return out
}

// all returns a snapshot of every live subscription.
func (r *registry) all() []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*subscription, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}

// count returns the number of live subscriptions.
func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
