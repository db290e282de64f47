// Package zlog logs combinator lifecycle events through zerolog.
package zlog

import (
	"context"
	"os"
	"time"

	console "github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Observer implements collect.Observer by emitting one debug event per
// lifecycle hook.
type Observer struct {
	log zerolog.Logger
}

// New wraps an existing logger.
func New(log zerolog.Logger) *Observer { return &Observer{log: log} }

// NewConsole builds an observer writing human-readable output to stderr,
// with color only when stderr is a terminal.
func NewConsole() *Observer {
	w := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: !console.IsTerminal(os.Stderr.Fd()),
	}
	return &Observer{log: zerolog.New(w).With().Timestamp().Logger()}
}

func (o *Observer) CollectStarted(ctx context.Context, tasks int) {
	o.log.Debug().Ctx(ctx).Int("tasks", tasks).Msg("collect started")
}

func (o *Observer) TaskStarted(ctx context.Context, index int) {
	o.log.Debug().Ctx(ctx).Int("index", index).Msg("task started")
}

func (o *Observer) TaskFinished(ctx context.Context, index int, dur time.Duration, err error, panicked bool) {
	e := o.log.Debug().Ctx(ctx).Int("index", index).Dur("dur", dur).Bool("panicked", panicked)
	if err != nil {
		e = e.Err(err)
	}
	e.Msg("task finished")
}

func (o *Observer) CancelEmitted(ctx context.Context, bits uint64) {
	o.log.Debug().Ctx(ctx).Uint64("bits", bits).Msg("cancel emitted")
}

func (o *Observer) CollectJoined(ctx context.Context, wait time.Duration) {
	o.log.Debug().Ctx(ctx).Dur("wait", wait).Msg("collect joined")
}
