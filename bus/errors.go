package bus

import (
	"errors"
	"fmt"
)

// Sentinel errors for the bus engine.
var (
	// ErrNilRuntime is returned by New when no reactive runtime is
	// supplied. The engine cannot function without one.
	ErrNilRuntime = errors.New("bus: nil signal runtime")

	// ErrNilCallback reports a subscription registered without a callback.
	ErrNilCallback = errors.New("bus: nil callback")

	// ErrNoSources reports a multi-source subscription with an empty
	// source list.
	ErrNoSources = errors.New("bus: no sources")

	// ErrCallbackPanic is the target for errors.Is on recovered panics.
	ErrCallbackPanic = errors.New("bus: callback panicked")
)

// CallbackError wraps an error returned by a subscriber callback.
type CallbackError struct {
	// SubscriptionID is the ID of the failing subscription.
	SubscriptionID string

	// Key is the registry key the subscription is registered under.
	Key Key

	// Err is the error the callback returned.
	Err error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback error for subscription %s on %q: %v", e.SubscriptionID, string(e.Key), e.Err)
}

// Unwrap returns the underlying error.
func (e *CallbackError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic recovered from a subscriber callback.
type PanicError struct {
	// SubscriptionID is the ID of the panicking subscription.
	SubscriptionID string

	// Key is the registry key the subscription is registered under.
	Key Key

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace captured at recovery.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("callback panic for subscription %s on %q: %v", e.SubscriptionID, string(e.Key), e.Value)
}

// Is allows errors.Is to match PanicError with ErrCallbackPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrCallbackPanic
}
