package zlog

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/NetPo4ki/go-sigslot/collect"
)

func TestObserverLogsLifecycle(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	obs := New(zerolog.New(&buf))

	tasks := []collect.Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
	}
	collect.All(context.Background(), tasks, collect.WithObserver(obs))

	out := buf.String()
	assert.Contains(t, out, "collect started")
	assert.Contains(t, out, "task finished")
	assert.Contains(t, out, "collect joined")
}

func TestObserverLogsError(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	obs := New(zerolog.New(&buf))
	obs.TaskFinished(context.Background(), 3, time.Millisecond, assert.AnError, false)
	assert.Contains(t, buf.String(), assert.AnError.Error())
}
