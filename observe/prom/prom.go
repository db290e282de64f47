// Package prom exports combinator lifecycle events as Prometheus metrics.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observer implements collect.Observer on top of a Prometheus registry.
type Observer struct {
	collects      prometheus.Counter
	tasksStarted  prometheus.Counter
	tasksFinished *prometheus.CounterVec
	cancelsByBits *prometheus.CounterVec
	taskDuration  prometheus.Histogram
	joinWait      prometheus.Histogram
}

// New registers the observer's metrics on reg, which must not be nil. Use
// prometheus.DefaultRegisterer for the process-wide registry.
func New(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		collects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sigslot",
			Subsystem: "collect",
			Name:      "calls_total",
			Help:      "Combinator calls started.",
		}),
		tasksStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sigslot",
			Subsystem: "collect",
			Name:      "tasks_started_total",
			Help:      "Tasks launched by combinators.",
		}),
		tasksFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sigslot",
			Subsystem: "collect",
			Name:      "tasks_finished_total",
			Help:      "Tasks finished, partitioned by outcome.",
		}, []string{"outcome"}),
		cancelsByBits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sigslot",
			Subsystem: "collect",
			Name:      "cancels_emitted_total",
			Help:      "Cancel emissions on combinator scopes, by bitmask.",
		}, []string{"bits"}),
		taskDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sigslot",
			Subsystem: "collect",
			Name:      "task_duration_seconds",
			Help:      "Per-task wall time.",
			Buckets:   prometheus.DefBuckets,
		}),
		joinWait: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sigslot",
			Subsystem: "collect",
			Name:      "join_wait_seconds",
			Help:      "Time from combinator start to join.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (o *Observer) CollectStarted(_ context.Context, _ int) {
	o.collects.Inc()
}

func (o *Observer) TaskStarted(_ context.Context, _ int) {
	o.tasksStarted.Inc()
}

func (o *Observer) TaskFinished(_ context.Context, _ int, dur time.Duration, err error, panicked bool) {
	outcome := "ok"
	switch {
	case panicked:
		outcome = "panic"
	case err != nil:
		outcome = "error"
	}
	o.tasksFinished.WithLabelValues(outcome).Inc()
	o.taskDuration.Observe(dur.Seconds())
}

func (o *Observer) CancelEmitted(_ context.Context, bits uint64) {
	o.cancelsByBits.WithLabelValues("0x" + strconv.FormatUint(bits, 16)).Inc()
}

func (o *Observer) CollectJoined(_ context.Context, wait time.Duration) {
	o.joinWait.Observe(wait.Seconds())
}
