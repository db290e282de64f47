package sig

import (
	"context"
	"sync/atomic"

	"github.com/NetPo4ki/go-sigslot/tasklocal"
)

// The active cancellation slot travels with the task's context rather than
// any goroutine-local storage, so propagation survives handoff between
// worker goroutines. The extra box indirection lets ForbidSignal destroy the
// slot for every frame of the chain, not merely hide it from descendants.
var slotKey = tasklocal.NewKey[*slotBox]("sig.slot")

type slotBox struct {
	slot atomic.Pointer[Slot]
}

// WithSlot publishes sl as the active cancellation slot for the task chain
// rooted at the returned context, shadowing any slot an ancestor published.
// Use BindSlot instead when binding at the root of a chain that must not
// already carry one.
func WithSlot(ctx context.Context, sl *Slot) context.Context {
	b := &slotBox{}
	b.slot.Store(sl)
	return slotKey.With(ctx, b)
}

// BindSlot creates a Slot bound to s and publishes it as the chain root's
// cancellation slot. Binding a chain that already carries a live slot is an
// error; spawn points that deliberately start a fresh chain use WithSlot.
func BindSlot(ctx context.Context, s *Signal) (context.Context, *Slot, error) {
	if CurrentSlot(ctx) != nil {
		return ctx, nil, ErrSlotBound
	}
	sl := NewSlot(s)
	return WithSlot(ctx, sl), sl, nil
}

// CurrentSlot returns the cancellation slot the nearest chain root
// published, or nil when none was bound or it was destroyed by
// ForbidSignal.
func CurrentSlot(ctx context.Context) *Slot {
	if b, ok := slotKey.From(ctx); ok {
		return b.slot.Load()
	}
	return nil
}

// ForbidSignal destroys the published slot: any pending handler is
// discarded without firing, the slot is unbound from its Signal, and every
// subsequent CurrentSlot lookup on this chain, by this task or its
// descendants, reports nil. It reports false when there was nothing to
// destroy.
func ForbidSignal(ctx context.Context) bool {
	b, ok := slotKey.From(ctx)
	if !ok {
		return false
	}
	sl := b.slot.Swap(nil)
	if sl == nil {
		return false
	}
	sl.detach()
	return true
}
