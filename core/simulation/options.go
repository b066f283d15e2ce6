package simulation

import (
	"time"

	"github.com/kilianp07/flexmodel/core/logger"
	"github.com/kilianp07/flexmodel/core/metrics"
	"github.com/kilianp07/flexmodel/core/steplog"
	"github.com/kilianp07/flexmodel/internal/eventbus"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for run-level messages.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithSink sets the metrics sink receiving per-step results.
func WithSink(s metrics.MetricsSink) Option {
	return func(r *Runner) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithStepLog persists a record for every simulated step.
func WithStepLog(s steplog.Store) Option {
	return func(r *Runner) {
		if s != nil {
			r.steps = s
		}
	}
}

// WithEventBus publishes run and curtailment events on bus.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(r *Runner) { r.bus = bus }
}

// WithStart sets the wall-clock time of step 0. Defaults to the time Run is called.
func WithStart(t time.Time) Option {
	return func(r *Runner) { r.start = t }
}

// WithReductionSteps sets how many times a storage command is scaled down
// before the runner gives up and idles the asset. Defaults to 10.
func WithReductionSteps(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.reductions = n
		}
	}
}
