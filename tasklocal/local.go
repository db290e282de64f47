// Package tasklocal provides type-erased per-task storage keyed by
// process-unique identity tokens. Values attached to a task's context are
// visible to every call made from that frame, including after the work is
// handed to another goroutine, because the context travels with the
// continuation rather than living in any goroutine-local slot.
package tasklocal

import "context"

// Key identifies one stored value of type T. Keys are compared by pointer
// identity, never by name, so a lookup through the wrong key (or the right
// name on a different key) reports "not found" instead of returning a
// mis-typed value.
type Key[T any] struct {
	name string
}

// NewKey allocates a fresh key. The name is for diagnostics only and has no
// effect on identity; two keys with the same name are still distinct.
func NewKey[T any](name string) *Key[T] {
	return &Key[T]{name: name}
}

// Name returns the diagnostic name the key was created with.
func (k *Key[T]) Name() string { return k.name }

func (k *Key[T]) String() string { return "tasklocal.Key(" + k.name + ")" }

// With attaches v to ctx under k. A later With on the same key shadows the
// earlier value for the subtree of calls derived from the returned context.
func (k *Key[T]) With(ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, k, v)
}

// From retrieves the value stored under k, reporting false when nothing was
// stored for this key anywhere up the chain.
func (k *Key[T]) From(ctx context.Context) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}
