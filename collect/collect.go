package collect

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/NetPo4ki/go-sigslot/sig"
)

// Task is one unit of work scheduled by a combinator. The context carries
// the task's own cancellation slot, bound to the scope's shared Signal.
type Task[T any] func(ctx context.Context) (T, error)

// Result pairs one task's value with its own failure outcome. A task
// interrupted at a cancelable wait carries its CanceledError here; the
// combinator itself never converts cancellation into a call-level failure.
type Result[T any] struct {
	Value T
	Err   error
}

// ErrNoTasks is returned by Any when called with an empty task list.
var ErrNoTasks = errors.New("collect: no tasks")

// Any launches every task concurrently under a fresh shared Signal and
// returns the index and outcome of the first to complete. When CancelBits
// is configured it is emitted on the shared Signal once the winner is
// recorded, interrupting every loser currently parked at a cancelable wait.
//
// Any does not join the losers: tasks still running when it returns
// continue detached, so they must not rely on by-reference captures staying
// alive. A completion racing with the winner is discarded. Cancellation of
// the enclosing task (its ambient slot or its context) forwards into the
// shared Signal while Any is in flight.
func Any[T any](ctx context.Context, tasks []Task[T], optFns ...Option) (int, T, error) {
	var zero T
	if len(tasks) == 0 {
		return -1, zero, ErrNoTasks
	}
	o := buildOptions(optFns)
	start := time.Now()
	if o.Observer != nil {
		o.Observer.CollectStarted(ctx, len(tasks))
	}

	scope := sig.New()
	unhook := forwardAmbient(ctx, scope)
	defer unhook()

	lim := newSemaphoreLimiter(o.MaxConcurrency)

	type outcome struct {
		index int
		value T
		err   error
	}
	won := make(chan outcome, 1)

	for i, fn := range tasks {
		go func(index int, fn Task[T]) {
			childCtx := sig.WithSlot(ctx, sig.NewSlot(scope))
			defer sig.ForbidSignal(childCtx)
			v, err := runTask(childCtx, index, fn, o, lim)
			select {
			case won <- outcome{index: index, value: v, err: err}:
			default:
				// a winner is already recorded
			}
		}(i, fn)
	}

	w := <-won
	if o.CancelBits != 0 {
		scope.Emit(o.CancelBits)
		if o.Observer != nil {
			o.Observer.CancelEmitted(ctx, o.CancelBits)
		}
	}
	if o.Observer != nil {
		o.Observer.CollectJoined(ctx, time.Since(start))
	}
	return w.index, w.value, w.err
}

// All launches every task concurrently under a fresh shared Signal and
// always waits for all of them before returning, so by-reference captures
// stay valid across every task. Results are ordered by input position, each
// carrying that task's own outcome; cancellation never surfaces as a
// call-level failure.
//
// When CancelBits is configured, the first completion emits it once on the
// shared Signal as a request for early termination of the rest; tasks that
// never reach a cancelable wait simply run to completion.
func All[T any](ctx context.Context, tasks []Task[T], optFns ...Option) []Result[T] {
	results := make([]Result[T], len(tasks))
	if len(tasks) == 0 {
		return results
	}
	o := buildOptions(optFns)
	start := time.Now()
	if o.Observer != nil {
		o.Observer.CollectStarted(ctx, len(tasks))
	}

	scope := sig.New()
	unhook := forwardAmbient(ctx, scope)
	defer unhook()

	lim := newSemaphoreLimiter(o.MaxConcurrency)

	var (
		wg    sync.WaitGroup
		first sync.Once
	)
	for i := range tasks {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			childCtx := sig.WithSlot(ctx, sig.NewSlot(scope))
			defer sig.ForbidSignal(childCtx)
			v, err := runTask(childCtx, index, tasks[index], o, lim)
			results[index] = Result[T]{Value: v, Err: err}
			if o.CancelBits != 0 {
				first.Do(func() {
					scope.Emit(o.CancelBits)
					if o.Observer != nil {
						o.Observer.CancelEmitted(ctx, o.CancelBits)
					}
				})
			}
		}(i)
	}
	wg.Wait()

	if o.Observer != nil {
		o.Observer.CollectJoined(ctx, time.Since(start))
	}
	return results
}

func runTask[T any](ctx context.Context, index int, fn Task[T], o Options, lim Limiter) (value T, err error) {
	if lim != nil {
		if aerr := lim.Acquire(ctx); aerr != nil {
			return value, aerr
		}
		defer lim.Release()
	}

	start := time.Now()
	panicked := false
	if o.Observer != nil {
		o.Observer.TaskStarted(ctx, index)
		defer func() {
			o.Observer.TaskFinished(ctx, index, time.Since(start), err, panicked)
		}()
	}
	if o.PanicAsError {
		defer func() {
			if r := recover(); r != nil {
				panicked = true
				err = errors.Errorf("collect: task %d panicked: %v", index, r)
			}
		}()
	}

	value, err = fn(ctx)
	return value, err
}

// forwardAmbient wires cancellation of the enclosing task into the scope's
// Signal: the ambient slot's Signal (when one is bound) gains a chain edge
// to scope, and cancellation of ctx itself emits Terminate. The returned
// func unhooks both.
func forwardAmbient(ctx context.Context, scope *sig.Signal) func() {
	var undo []func()
	if outer := sig.CurrentSlot(ctx); outer != nil {
		if src := outer.Signal(); src != nil {
			src.AddChainedSignal(scope)
			undo = append(undo, func() { src.RemoveChainedSignal(scope) })
		}
	}
	stop := context.AfterFunc(ctx, func() { scope.Emit(sig.Terminate) })
	undo = append(undo, func() { stop() })
	return func() {
		for _, fn := range undo {
			fn()
		}
	}
}
