package bus

import "time"

// Key identifies a logical event channel. Keys are opaque strings; the
// engine never enumerates or validates them, and emitting on a previously
// unused key implicitly creates its storage cell.
type Key string

// Event is the envelope delivered to subscribers.
// Events are immutable once created; every emission produces a new one.
type Event struct {
	// Key is the channel the event was emitted on.
	Key Key

	// Payload is the data carried by this occurrence. It may legitimately
	// be nil; "never emitted" is tracked separately, never encoded as a
	// nil payload.
	Payload any

	// Timestamp is when the event was emitted, from the engine's clock.
	Timestamp time.Time
}

// Transform maps a raw payload to a derived value before delivery.
// Transforms must be pure; they run inside the dispatch pass.
type Transform func(payload any) any

// Callback consumes one delivered event. A returned error is reported to
// the engine's diagnostic sink and never propagated to the emitter or to
// other subscribers.
type Callback func(Event) error

// CombinedCallback consumes one delivery from a multi-source subscription.
// Events are position-matched to the source list passed to CombineLatest.
type CombinedCallback func([]Event) error

// UnsubscribeFunc tears down the subscription that returned it, including
// any conditional-unsubscribe tracker attached to it. Calling it more than
// once is a no-op.
type UnsubscribeFunc func()

// Latest is the value of a single-key reactive view. OK is false until the
// key has emitted at least once or after the key has been reset.
type Latest struct {
	Event Event
	OK    bool
}

// Source is one input to a multi-source subscription or view.
type Source struct {
	Key       Key
	Transform Transform
}

// Combined is the value of a multi-source reactive view. OK is false until
// every source has emitted at least once; Payloads is position-matched to
// the source list.
type Combined struct {
	Payloads []any
	OK       bool
}

// PayloadAs returns the event payload asserted to T.
func PayloadAs[T any](e Event) (T, bool) {
	v, ok := e.Payload.(T)
	return v, ok
}
