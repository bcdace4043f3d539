// Package signal provides the reactive primitives the bus engine is built
// on: mutable cells, derived views, and push-based watchers.
//
// The dependency graph is explicit. A Signal holds a value and a list of
// watchers; a Computed declares its sources up front and recomputes when
// any of them changes. There is no automatic dependency tracking.
//
// # Scheduling
//
// All notification happens synchronously inside the Runtime's notification
// pass. A write performed while a pass is already running (for example, a
// watcher that sets another signal) is queued and delivered by the
// outermost caller after the current batch, so watchers always observe
// writes to a single signal in write order and never reenter each other.
//
// Runtime.Defer schedules work for the end of the current pass, or runs it
// immediately when no pass is active. The bus uses this to install
// subscription watchers outside of any in-flight notification.
//
// # Disposal
//
// Watch returns a *Watch handle. Stop is idempotent and takes effect for
// notifications that have been queued but not yet delivered: a stopped
// watcher never fires again.
package signal
