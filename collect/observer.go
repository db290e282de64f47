package collect

import (
	"context"
	"time"
)

// Observer receives lifecycle events from a combinator call. Methods may be
// invoked concurrently from task goroutines and must be safe for that.
type Observer interface {
	CollectStarted(ctx context.Context, tasks int)
	TaskStarted(ctx context.Context, index int)
	TaskFinished(ctx context.Context, index int, dur time.Duration, err error, panicked bool)
	CancelEmitted(ctx context.Context, bits uint64)
	CollectJoined(ctx context.Context, wait time.Duration)
}
