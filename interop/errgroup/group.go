// Package errgroup provides an adapter with golang.org/x/sync/errgroup
// semantics on top of the sig core: the first failing task emits Terminate
// on a shared Signal, cooperatively interrupting siblings parked at
// cancelable waits. It enables incremental migration of errgroup-shaped
// code without giving up slot-based cancellation.
package errgroup

import (
	"context"
	"sync"

	"github.com/NetPo4ki/go-sigslot/sig"
)

// Group is an errgroup-like wrapper over a shared cancellation Signal.
type Group struct {
	scope  *sig.Signal
	watch  *sig.Slot
	cancel context.CancelFunc
	unhook func() bool

	wg       sync.WaitGroup
	mu       sync.Mutex
	firstErr error
}

// WithContext creates a Group bound to ctx. The returned context is
// canceled when any function passed to Go returns a non-nil error, and
// cancellation of ctx itself forwards into the group's Signal.
func WithContext(ctx context.Context) (*Group, context.Context) {
	scope := sig.New()
	derived, cancel := context.WithCancel(ctx)

	// Bridge both directions: Terminate on the scope cancels the derived
	// context, and cancellation of the parent context terminates the scope.
	watch := sig.NewSlot(scope)
	watch.Emplace(sig.Terminate, func(uint64, *sig.Signal) { cancel() })
	unhook := context.AfterFunc(ctx, func() { scope.Emit(sig.Terminate) })

	return &Group{scope: scope, watch: watch, cancel: cancel, unhook: unhook}, derived
}

// Go starts f on its own goroutine with a fresh slot bound to the group's
// Signal. The first non-nil error terminates the group.
func (g *Group) Go(f func(ctx context.Context) error) {
	if f == nil {
		return
	}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		ctx := sig.WithSlot(context.Background(), sig.NewSlot(g.scope))
		defer sig.ForbidSignal(ctx)
		if err := f(ctx); err != nil {
			g.mu.Lock()
			if g.firstErr == nil {
				g.firstErr = err
			}
			g.mu.Unlock()
			g.scope.Emit(sig.Terminate)
		}
	}()
}

// Wait blocks until all functions have returned and reports the first
// non-nil error, or nil on success.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.unhook()
	g.watch.Clear()
	g.cancel()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.firstErr
}
