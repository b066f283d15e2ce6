package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/flexmodel/core/metrics"
)

// PromSink records simulation and solver events in Prometheus metrics.
type PromSink struct {
	energy      *prometheus.CounterVec
	cost        *prometheus.GaugeVec
	soc         *prometheus.GaugeVec
	infeasible  *prometheus.CounterVec
	curtailed   *prometheus.CounterVec
	started     prometheus.Counter
	runs        prometheus.Counter
	runDuration prometheus.Histogram
	solve       *prometheus.HistogramVec
}

// NewPromSink registers metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.energy, err = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flex_asset_energy_kwh_total",
		Help: "Energy exchanged by each asset",
	}, []string{"asset", "direction"})); err != nil {
		return nil, err
	}
	if s.cost, err = registerOrReuse(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flex_asset_cost_eur",
		Help: "Accumulated operating cost of each asset, negative for net revenue",
	}, []string{"asset"})); err != nil {
		return nil, err
	}
	if s.soc, err = registerOrReuse(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flex_asset_soc_ratio",
		Help: "Latest state of charge of each storage asset",
	}, []string{"asset"})); err != nil {
		return nil, err
	}
	if s.infeasible, err = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flex_asset_infeasible_steps_total",
		Help: "Steps executed with a violated limit",
	}, []string{"asset"})); err != nil {
		return nil, err
	}
	if s.curtailed, err = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flex_asset_curtailments_total",
		Help: "Commands reduced to become feasible",
	}, []string{"asset"})); err != nil {
		return nil, err
	}
	if s.started, err = registerOrReuse(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flex_simulation_runs_started_total",
		Help: "Simulation runs started",
	})); err != nil {
		return nil, err
	}
	if s.runs, err = registerOrReuse(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flex_simulation_runs_total",
		Help: "Completed simulation runs",
	})); err != nil {
		return nil, err
	}
	if s.runDuration, err = registerOrReuse(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "flex_simulation_duration_seconds",
		Help:    "Wall time of a simulation run",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if s.solve, err = registerOrReuse(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flex_lp_solve_seconds",
		Help:    "Wall time of an LP solve",
		Buckets: prometheus.DefBuckets,
	}, []string{"ok"})); err != nil {
		return nil, err
	}
	return s, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordStepResults updates the per-asset counters and gauges.
func (s *PromSink) RecordStepResults(res []coremetrics.StepResult) error {
	for _, r := range res {
		if r.DrawKW > 0 {
			s.energy.WithLabelValues(r.Asset, "draw").Add(r.DrawKW * r.DtHours)
		}
		if r.InjectKW > 0 {
			s.energy.WithLabelValues(r.Asset, "inject").Add(r.InjectKW * r.DtHours)
		}
		s.cost.WithLabelValues(r.Asset).Add(r.CostEUR)
		if r.SOC != nil {
			s.soc.WithLabelValues(r.Asset).Set(*r.SOC)
		}
		if !r.Feasible {
			s.infeasible.WithLabelValues(r.Asset).Inc()
		}
	}
	return nil
}

// RecordRunStart counts a started run.
func (s *PromSink) RecordRunStart(coremetrics.RunStartEvent) error {
	s.started.Inc()
	return nil
}

// RecordRunSummary counts the run and observes its duration.
func (s *PromSink) RecordRunSummary(sum coremetrics.RunSummary) error {
	s.runs.Inc()
	s.runDuration.Observe(sum.Duration.Seconds())
	return nil
}

// RecordSolve observes the solver wall time.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.solve.WithLabelValues(strconv.FormatBool(ev.Error == "")).Observe(ev.Duration.Seconds())
	return nil
}

// RecordCurtailment counts a reduced command.
func (s *PromSink) RecordCurtailment(ev coremetrics.CurtailmentEvent) error {
	s.curtailed.WithLabelValues(ev.Asset).Inc()
	return nil
}
