// Package await provides interruptible blocking primitives built on the
// cancelable-wait protocol of package sig. Each primitive fetches the
// active cancellation slot from the task's context, so nested calls become
// cancelable without threading a slot parameter through every signature.
package await

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/NetPo4ki/go-sigslot/sig"
)

// ErrClosed is returned by Recv when the channel is closed before a value
// arrives.
var ErrClosed = errors.New("await: channel closed")

// Sleep suspends the calling task for d. It returns early with a
// CanceledError when the ambient slot's Terminate bit fires, and skips the
// timer entirely when the bit is already set.
func Sleep(ctx context.Context, d time.Duration) error {
	return sig.Wait(sig.CurrentSlot(ctx), sig.Terminate, func() (<-chan struct{}, func()) {
		done := make(chan struct{})
		var once sync.Once
		wake := func() { once.Do(func() { close(done) }) }
		t := time.AfterFunc(d, wake)
		return done, func() {
			t.Stop()
			wake()
		}
	})
}

// Recv receives one value from ch, failing with a CanceledError when the
// ambient slot cancels first, or ErrClosed when ch closes without a value.
func Recv[T any](ctx context.Context, ch <-chan T) (T, error) {
	var (
		v  T
		ok bool
	)
	err := sig.Wait(sig.CurrentSlot(ctx), sig.Terminate, func() (<-chan struct{}, func()) {
		done := make(chan struct{})
		stop := make(chan struct{})
		var once sync.Once
		go func() {
			defer close(done)
			select {
			case v, ok = <-ch:
			case <-stop:
			}
		}()
		return done, func() { once.Do(func() { close(stop) }) }
	})
	if err != nil {
		return v, err
	}
	if !ok {
		return v, ErrClosed
	}
	return v, nil
}

// Until blocks until done is closed or the ambient slot cancels.
func Until(ctx context.Context, done <-chan struct{}) error {
	return sig.Wait(sig.CurrentSlot(ctx), sig.Terminate, func() (<-chan struct{}, func()) {
		woke := make(chan struct{})
		stop := make(chan struct{})
		var once sync.Once
		go func() {
			defer close(woke)
			select {
			case <-done:
			case <-stop:
			}
		}()
		return woke, func() { once.Do(func() { close(stop) }) }
	})
}
