package sig

import (
	"sync"
	"sync/atomic"
)

// Bit layout of a Signal's 64-bit state. The low 32 bits are single-shot:
// each bit latches on first emit and its handler fires at most once. The
// high 32 bits are repeatable: every Emit call that includes such a bit is a
// distinct trigger event, even when the bit is already latched in State.
const (
	// None is the empty bitmask.
	None uint64 = 0

	// Terminate is the reserved single-shot bit conventionally meaning
	// "cancel".
	Terminate uint64 = 1 << 0

	// OneShotMask covers the single-shot half of the state word.
	OneShotMask uint64 = 1<<32 - 1

	// RepeatableMask covers the repeatable half of the state word.
	RepeatableMask uint64 = ^OneShotMask

	// All matches every bit; it is the default Slot filter.
	All uint64 = ^uint64(0)
)

// Signal is a thread-safe multi-bit event source. The zero value is not
// usable; construct with New or NewWith. A Signal stays alive for as long as
// any bound Slot or external holder references it.
type Signal struct {
	state atomic.Uint64

	// payload is optional application state fixed at construction and
	// recovered by handlers with Payload. Immutable after New.
	payload any

	mu     sync.Mutex
	slots  []*Slot
	chains []*Signal
}

// New returns a fresh Signal with zero state.
func New() *Signal { return &Signal{} }

// NewWith returns a fresh Signal carrying payload, the stand-in for
// subclassing a signal with extra application state. Handlers receive the
// Signal and recover the payload with Payload.
func NewWith(payload any) *Signal { return &Signal{payload: payload} }

// Payload recovers the value attached at construction, reporting false when
// the Signal carries no payload or a payload of a different concrete type.
// The type check is an identity comparison, never a by-name match.
func Payload[T any](s *Signal) (T, bool) {
	v, ok := s.payload.(T)
	return v, ok
}

// State returns an atomic snapshot of the currently latched bits.
func (s *Signal) State() uint64 { return s.state.Load() }

// Emit triggers bits and returns exactly the set that counts as newly
// triggered by this call: for single-shot bits those not previously latched,
// plus every repeatable bit present in bits regardless of prior state.
//
// Handlers for the returned bits run synchronously on the caller's
// goroutine before Emit returns, then the same bits are forwarded to every
// chained child Signal. For a single-shot bit raced by concurrent emitters,
// exactly one caller observes it as newly triggered and exactly one handler
// invocation occurs; repeatable handlers may run concurrently, once per
// qualifying Emit.
func (s *Signal) Emit(bits uint64) uint64 {
	if bits == 0 {
		return 0
	}
	old := s.state.Or(bits)
	newly := (bits & OneShotMask &^ old) | bits&RepeatableMask
	if newly == 0 {
		return 0
	}

	for _, sl := range s.boundSlots() {
		sl.fire(newly, s)
	}
	for _, c := range s.chainedSignals() {
		c.Emit(newly)
	}
	return newly
}

// AddChainedSignal registers a one-directional forwarding edge from s to
// child: bits newly triggered on s are re-emitted on child, never the
// reverse. Single-shot bits already latched on s are forwarded immediately
// so a late-attached child still observes them. Chains must not form cycles;
// forwarding is one-directional by contract and no cycle detection is done.
func (s *Signal) AddChainedSignal(child *Signal) {
	s.mu.Lock()
	s.chains = append(s.chains, child)
	s.mu.Unlock()

	if latched := s.state.Load() & OneShotMask; latched != 0 {
		child.Emit(latched)
	}
}

// RemoveChainedSignal drops a previously registered forwarding edge. It is
// a no-op when child was never chained.
func (s *Signal) RemoveChainedSignal(child *Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.chains {
		if c == child {
			s.chains = append(s.chains[:i], s.chains[i+1:]...)
			return
		}
	}
}

func (s *Signal) boundSlots() []*Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.slots) == 0 {
		return nil
	}
	out := make([]*Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

func (s *Signal) chainedSignals() []*Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.chains) == 0 {
		return nil
	}
	out := make([]*Signal, len(s.chains))
	copy(out, s.chains)
	return out
}

// bind registers sl as a receiver. It fails when the terminal bit is already
// latched, in which case the slot is constructed unbound.
func (s *Signal) bind(sl *Slot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Load()&Terminate != 0 {
		return false
	}
	s.slots = append(s.slots, sl)
	return true
}

func (s *Signal) unbind(sl *Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.slots {
		if b == sl {
			s.slots = append(s.slots[:i], s.slots[i+1:]...)
			return
		}
	}
}
