package sig

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrCanceled matches every CanceledError via errors.Is, letting callers
// test for cancellation without caring which bits triggered it.
var ErrCanceled = errors.New("sig: canceled")

// ErrSlotBound is returned by BindSlot when the task chain already carries a
// live cancellation slot.
var ErrSlotBound = errors.New("sig: slot already bound on this task chain")

// CanceledError is the failure outcome of a cancelable wait whose
// resume-check observed a triggered cancellation bit. It propagates as the
// ordinary error of whatever was suspended.
type CanceledError struct {
	// Bits are the triggering bit(s) observed at the resume check.
	Bits uint64
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("sig: canceled (bits %#x)", e.Bits)
}

// Is reports a match for ErrCanceled.
func (e *CanceledError) Is(target error) bool { return target == ErrCanceled }

// IsCanceled reports whether err is (or wraps) a cancellation failure.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }
