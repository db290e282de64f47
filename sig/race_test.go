package sig

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The linearization rule for Emplace racing Emit on the same bit: either the
// emitter never saw the handler and Emplace reports already-triggered, or
// the emitter consumed and fired it and Emplace reports success. Exactly one
// side wins, never both, never neither.
func TestEmplaceEmitLinearization(t *testing.T) {
	t.Parallel()
	for i := 0; i < 2000; i++ {
		s := New()
		sl := NewSlot(s)

		var fired atomic.Int32
		var installed bool
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Emit(Terminate)
		}()
		go func() {
			defer wg.Done()
			installed = sl.Emplace(Terminate, func(uint64, *Signal) {
				fired.Add(1)
			})
		}()
		wg.Wait()

		if installed {
			if got := fired.Load(); got != 1 {
				t.Fatalf("iteration %d: installed handler fired %d times, want 1", i, got)
			}
		} else if got := fired.Load(); got != 0 {
			t.Fatalf("iteration %d: rejected handler fired %d times", i, got)
		}
	}
}

func TestConcurrentEmitSingleShot(t *testing.T) {
	t.Parallel()
	const emitters = 16
	for i := 0; i < 200; i++ {
		s := New()
		sl := NewSlot(s)

		var fired atomic.Int32
		sl.Emplace(Terminate, func(uint64, *Signal) { fired.Add(1) })

		var winners atomic.Int32
		var wg sync.WaitGroup
		wg.Add(emitters)
		for e := 0; e < emitters; e++ {
			go func() {
				defer wg.Done()
				if s.Emit(Terminate) != 0 {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), winners.Load(), "exactly one emitter observes newly-triggered")
		assert.Equal(t, int32(1), fired.Load(), "exactly one handler invocation")
	}
}

func TestConcurrentRepeatableEmits(t *testing.T) {
	t.Parallel()
	const emitters = 16
	s := New()
	sl := NewSlot(s)
	bit := uint64(1) << 33

	var fired atomic.Int32
	sl.Emplace(bit, func(uint64, *Signal) { fired.Add(1) })

	var wg sync.WaitGroup
	wg.Add(emitters)
	for e := 0; e < emitters; e++ {
		go func() {
			defer wg.Done()
			s.Emit(bit)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(emitters), fired.Load(),
		"every qualifying emit produces its own invocation")
}

func TestClearEmitRace(t *testing.T) {
	t.Parallel()
	for i := 0; i < 2000; i++ {
		s := New()
		sl := NewSlot(s)

		var fired atomic.Int32
		sl.Emplace(Terminate, func(uint64, *Signal) { fired.Add(1) })

		var cleared bool
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Emit(Terminate)
		}()
		go func() {
			defer wg.Done()
			cleared = sl.Clear()
		}()
		wg.Wait()

		won := fired.Load()
		if cleared {
			assert.Equal(t, int32(0), won, "a successful Clear means the handler never fires")
		} else {
			assert.Equal(t, int32(1), won, "an unsuccessful Clear means the emitter consumed it")
		}
	}
}

func TestConcurrentStateReads(t *testing.T) {
	t.Parallel()
	s := New()
	var wg sync.WaitGroup
	for b := uint64(1); b < 16; b++ {
		wg.Add(2)
		go func(bit uint64) {
			defer wg.Done()
			s.Emit(1 << bit)
		}(b)
		go func() {
			defer wg.Done()
			_ = s.State()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(0b1111111111111110), s.State())
}
