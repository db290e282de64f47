package sig

// Wait runs one cancelable wait against slot, fixing the ordering and
// race-closing guarantees any interruptible primitive needs; the primitive
// supplies only its own start/abort behavior. bit is the cancellation bit to
// watch, conventionally Terminate.
//
// start begins the underlying operation and returns a channel that is
// closed when the operation finishes, plus an abort func that forces it to
// finish early. abort must be safe to call at any point, from any
// goroutine, more than once.
//
// The three phases:
//
//  1. If bit already triggered, the suspension is skipped entirely and the
//     wait fails with a CanceledError without starting the operation.
//  2. The operation is started and a cleanup handler calling abort is
//     registered on slot. When registration fails because the bit triggered
//     during the transition, Wait performs the abort itself, since no
//     handler will ever fire.
//  3. After wakeup, however it happened, a triggered bit means the wait
//     fails with a CanceledError even if the abort did not physically stop
//     the operation; otherwise any still-pending handler is cleared and the
//     wait succeeds.
//
// A nil slot makes the wait uncancelable: the operation simply runs to
// completion.
func Wait(slot *Slot, bit uint64, start func() (done <-chan struct{}, abort func())) error {
	if slot != nil && slot.Signal() == nil {
		// Unbound slots have nothing to watch.
		slot = nil
	}
	if slot != nil && slot.HasTriggered(bit) {
		return &CanceledError{Bits: bit}
	}

	done, abort := start()
	if slot != nil && !slot.Emplace(bit, func(uint64, *Signal) { abort() }) {
		abort()
	}

	<-done

	if slot != nil {
		defer slot.Clear()
		if slot.HasTriggered(bit) {
			return &CanceledError{Bits: bit}
		}
	}
	return nil
}
