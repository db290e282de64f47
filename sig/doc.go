// Package sig implements a thread-safe bitmask signal/slot pair for
// cooperative cancellation of asynchronous tasks. A Signal is a shared
// multi-bit event source; a Slot is a single-task receiver bound to exactly
// one Signal, holding at most one pending handler and a stack of scope
// filters. Emitting on a Signal fires matching handlers synchronously on the
// emitter's goroutine and forwards the triggered bits along one-directional
// chain edges to child Signals.
package sig
