package sig

import (
	"fmt"
	"math/bits"
	"sync/atomic"
)

// Handler receives the newly-triggered bitmask (already narrowed by the
// slot's filter) and the Signal that fired. Handlers run synchronously
// inside Emit, possibly on a goroutine unrelated to the slot's owning task;
// they must not block, must not panic, and must not retain the Signal.
type Handler func(triggered uint64, s *Signal)

type handlerCell struct {
	bit uint64
	fn  Handler
}

// Slot is a per-task cancellation receiver bound to exactly one Signal at
// construction. All methods except the internal fire path are owner-only:
// one task owns one Slot and no two goroutines may use it concurrently. The
// handler cell alone is contested between the owner (Emplace, Clear) and a
// remote emitter; a single atomic take-or-install resolves any race so
// exactly one side wins.
type Slot struct {
	sig *Signal

	// cell holds the at-most-one pending handler. nil means empty, either
	// never installed, cleared, or consumed by a fire.
	cell atomic.Pointer[handlerCell]

	// eff is the intersection of every active filter, read by emitters on
	// the fire path. stack is owner-only.
	eff   atomic.Uint64
	stack []uint64
}

// NewSlot binds a fresh Slot to s with no filter restriction. If the
// terminal bit is already latched on s the returned Slot is unbound:
// Signal reports nil and every other operation degrades to its failure
// result.
func NewSlot(s *Signal) *Slot { return NewFilteredSlot(s, All) }

// NewFilteredSlot is NewSlot with an initial filter narrowing which bits the
// slot observes.
func NewFilteredSlot(s *Signal, filter uint64) *Slot {
	sl := &Slot{stack: []uint64{filter}}
	sl.eff.Store(filter)
	if s == nil || !s.bind(sl) {
		return sl
	}
	sl.sig = s
	return sl
}

// Signal returns the bound Signal, or nil when the slot was constructed
// against an already-terminated Signal (or detached). A non-nil result is
// valid for the slot's whole lifetime.
func (sl *Slot) Signal() *Signal { return sl.sig }

// Emplace installs fn as the sole pending handler for bit, which must
// designate exactly one bit position. Any previously installed handler is
// replaced and will never fire. It reports false, without installing, when
// the bit has already triggered (as seen through the current filter) or the
// slot is unbound.
//
// The check-and-install is race-free against a concurrent Emit of the same
// bit: either the handler is retracted and Emplace reports false, or the
// emitter consumes it, fires it, and Emplace reports true.
func (sl *Slot) Emplace(bit uint64, fn Handler) bool {
	if bits.OnesCount64(bit) != 1 {
		panic(fmt.Sprintf("sig: Emplace requires exactly one bit, got %#x", bit))
	}
	if fn == nil {
		panic("sig: Emplace with nil handler")
	}
	if sl.sig == nil {
		return false
	}
	oneshot := bit&OneShotMask != 0
	if oneshot && sl.HasTriggered(bit) {
		return false
	}
	h := &handlerCell{bit: bit, fn: fn}
	sl.cell.Store(h)
	if oneshot && sl.HasTriggered(bit) {
		// The bit latched between the first check and the install. If the
		// handler is still ours the emitter never saw it: retract and report
		// already-triggered. Otherwise the emitter took it and fires it.
		if sl.cell.CompareAndSwap(h, nil) {
			return false
		}
	}
	return true
}

// Clear removes the pending handler if it has not fired, reporting false
// when there was none or it was already consumed.
func (sl *Slot) Clear() bool {
	return sl.cell.Swap(nil) != nil
}

// HasTriggered reports whether bit is latched on the bound Signal and
// survives the slot's current effective filter. The answer is computed
// live, never cached.
func (sl *Slot) HasTriggered(bit uint64) bool {
	return sl.sig != nil && sl.sig.State()&sl.eff.Load()&bit != 0
}

// GetFilter returns the current effective filter, the intersection of the
// construction filter and every active scoped filter.
func (sl *Slot) GetFilter() uint64 { return sl.eff.Load() }

// SetScopedFilter pushes a restriction narrowing the effective filter to
// the intersection of all active filters. Releasing the returned guard pops
// the restriction, restoring the prior effective filter. Filters only ever
// narrow visibility. Guards are expected to be released in LIFO order;
// releasing one out of order also drops every filter pushed after it.
func (sl *Slot) SetScopedFilter(filter uint64) *FilterGuard {
	sl.stack = append(sl.stack, filter)
	sl.refilter()
	return &FilterGuard{slot: sl, depth: len(sl.stack)}
}

// AddChainedSignal forwards from the bound Signal to other, a convenience
// for Signal.AddChainedSignal. It is a no-op on an unbound slot.
func (sl *Slot) AddChainedSignal(other *Signal) {
	if sl.sig != nil {
		sl.sig.AddChainedSignal(other)
	}
}

func (sl *Slot) refilter() {
	eff := All
	for _, f := range sl.stack {
		eff &= f
	}
	sl.eff.Store(eff)
}

// detach unbinds the slot from its Signal and discards any pending handler
// without firing it. Owner-only, like the rest of the non-fire surface.
func (sl *Slot) detach() {
	sl.cell.Store(nil)
	if sl.sig != nil {
		sl.sig.unbind(sl)
		sl.sig = nil
	}
}

// fire is the emitter side of the handler cell. triggered is the full
// newly-triggered set for this Emit; the slot narrows it by its filter and
// invokes the pending handler when its armed bit is present. Single-shot
// handlers are consumed by an atomic take so a racing Clear, Emplace or
// second emitter never produces a duplicate invocation; repeatable handlers
// stay armed and may run concurrently.
func (sl *Slot) fire(triggered uint64, src *Signal) {
	triggered &= sl.eff.Load()
	if triggered == 0 {
		return
	}
	h := sl.cell.Load()
	if h == nil || h.bit&triggered == 0 {
		return
	}
	if h.bit&OneShotMask != 0 {
		if !sl.cell.CompareAndSwap(h, nil) {
			return
		}
	}
	h.fn(triggered, src)
}

// FilterGuard restores a Slot's previous filter when released. Release is
// idempotent.
type FilterGuard struct {
	slot  *Slot
	depth int
}

// Release pops the restriction installed by the matching SetScopedFilter.
func (g *FilterGuard) Release() {
	sl := g.slot
	g.slot = nil
	if sl == nil || len(sl.stack) < g.depth {
		return
	}
	sl.stack = sl.stack[:g.depth-1]
	sl.refilter()
}
