package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/kilianp07/flexmodel/config"
	"github.com/kilianp07/flexmodel/core/assets"
	"github.com/kilianp07/flexmodel/core/battery"
	"github.com/kilianp07/flexmodel/core/events"
	"github.com/kilianp07/flexmodel/core/flex"
	coremetrics "github.com/kilianp07/flexmodel/core/metrics"
	"github.com/kilianp07/flexmodel/core/optimization"
	"github.com/kilianp07/flexmodel/core/report"
	"github.com/kilianp07/flexmodel/core/simulation"
	"github.com/kilianp07/flexmodel/core/steplog"
	"github.com/kilianp07/flexmodel/core/timeseries"
	"github.com/kilianp07/flexmodel/infra/logger"
	"github.com/kilianp07/flexmodel/infra/metrics"
	"github.com/kilianp07/flexmodel/infra/series"
	"github.com/kilianp07/flexmodel/internal/eventbus"
)

// Service wires a scenario file to the simulation and optimization engines.
type Service struct {
	cfg    *config.Config
	env    assets.Env
	demand timeseries.Value
	steps  int
	sink   coremetrics.MetricsSink
	store  steplog.Store
	bus    eventbus.EventBus
	log    logger.Logger

	cancel    context.CancelFunc
	collector <-chan struct{}
}

// New loads the series referenced by the configuration and opens the sinks.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	logg := logger.New("service")

	env, err := loadPrices(cfg.Prices)
	if err != nil {
		return nil, fmt.Errorf("prices: %w", err)
	}
	demand, err := loadDemand(cfg.Scenario)
	if err != nil {
		return nil, fmt.Errorf("demand: %w", err)
	}
	steps := cfg.Scenario.Timesteps
	if steps == 0 {
		n, ok := demand.Horizon()
		if !ok || n == 0 {
			return nil, fmt.Errorf("demand: cannot infer the number of timesteps")
		}
		steps = n
	}
	// Fail on bad asset configs before any sink is opened.
	if _, err := assets.Build(cfg.Assets, env); err != nil {
		return nil, err
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := steplog.Open(cfg.StepLog.Options())
	if err != nil {
		return nil, fmt.Errorf("step log: %w", err)
	}
	logg.Infof("scenario %s: %d steps of %.2f h, %d assets", cfg.Scenario.Name, steps, cfg.Scenario.DtHours, len(cfg.Assets))
	return &Service{
		cfg:    cfg,
		env:    env,
		demand: demand,
		steps:  steps,
		sink:   sink,
		store:  store,
		bus:    eventbus.New(),
		log:    logg,
	}, nil
}

// Start launches the event collector and, when configured, the Prometheus
// endpoint. Both stop when ctx is cancelled or the service is closed.
func (s *Service) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.collector = metrics.StartEventCollector(ctx, s.bus, s.sink)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
}

// Steps returns the simulated horizon.
func (s *Service) Steps() int { return s.steps }

// Assets builds a fresh set of assets from the configuration.
func (s *Service) Assets() ([]flex.Asset, error) {
	return assets.Build(s.cfg.Assets, s.env)
}

// Simulate runs every configured asset over the scenario.
func (s *Service) Simulate(ctx context.Context) (*simulation.Result, error) {
	list, err := s.Assets()
	if err != nil {
		return nil, err
	}
	return s.simulate(ctx, list)
}

func (s *Service) simulate(ctx context.Context, list []flex.Asset) (*simulation.Result, error) {
	r, err := simulation.NewRunner(list,
		simulation.WithLogger(logger.New("simulation")),
		simulation.WithSink(s.sink),
		simulation.WithStepLog(s.store),
		simulation.WithEventBus(s.bus),
		simulation.WithStart(s.cfg.Scenario.StartTime()),
	)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, s.demand, s.steps, s.cfg.Scenario.DtHours)
}

// LinearModels returns the linear model of every configured asset.
func (s *Service) LinearModels() ([]*optimization.LinearModel, error) {
	list, err := s.Assets()
	if err != nil {
		return nil, err
	}
	models := make([]*optimization.LinearModel, 0, len(list))
	for _, a := range list {
		m, err := a.LinearModel(s.steps, s.cfg.Scenario.DtHours)
		if err != nil {
			return nil, fmt.Errorf("linear model %s: %w", a.Name(), err)
		}
		models = append(models, m)
	}
	return models, nil
}

// Optimize solves the coupled dispatch of every asset over the horizon.
func (s *Service) Optimize(ctx context.Context) (*optimization.Solution, error) {
	models, err := s.LinearModels()
	if err != nil {
		return nil, err
	}
	opt, err := optimization.NewOptimizer(models,
		optimization.WithTolerance(s.cfg.Optimization.Tolerance),
		optimization.WithLogger(logger.New("optimizer")),
	)
	if err != nil {
		return nil, err
	}
	began := time.Now()
	sol, err := opt.Solve(ctx, s.demand)
	ev := events.Solved{
		Models:    len(models),
		Variables: opt.NVars(),
		Timesteps: opt.NTimesteps(),
		Duration:  time.Since(began),
		Err:       err,
	}
	if sol != nil {
		ev.Objective = sol.Objective
	}
	s.bus.Publish(ev)
	return sol, err
}

// Comparison bundles the two runs behind a report.
type Comparison struct {
	Baseline  *simulation.Result
	Candidate *simulation.Result
	Report    *report.Comparison
}

// Compare simulates the baseline assets and the full asset set, then weighs
// the savings against the investments the baseline does not include.
func (s *Service) Compare(ctx context.Context) (*Comparison, error) {
	full, err := s.Assets()
	if err != nil {
		return nil, err
	}
	keep := lo.SliceToMap(s.cfg.Scenario.Baseline, func(n string) (string, struct{}) { return n, struct{}{} })
	inBaseline := func(a flex.Asset) bool {
		_, ok := keep[a.Name()]
		return ok || a.Kind() == flex.KindSettlement
	}
	fresh, err := s.Assets()
	if err != nil {
		return nil, err
	}
	base, err := s.simulate(ctx, lo.Filter(fresh, func(a flex.Asset, _ int) bool { return inBaseline(a) }))
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	cand, err := s.simulate(ctx, full)
	if err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}
	var invs []report.Investment
	for _, a := range full {
		b, ok := a.(*battery.Asset)
		if !ok || inBaseline(a) {
			continue
		}
		invs = append(invs, report.Investment{Asset: b.Name(), Capacity: b.Unit().Spec(), Model: b.CostModel()})
	}
	rep, err := report.Compare(base, cand, invs, s.cfg.Scenario.DiscountRate)
	if err != nil {
		return nil, err
	}
	return &Comparison{Baseline: base, Candidate: cand, Report: rep}, nil
}

// Close flushes pending events to the sink, stops the background workers
// and releases the step log.
func (s *Service) Close() error {
	s.bus.Close()
	if s.collector != nil {
		<-s.collector
	}
	if s.cancel != nil {
		s.cancel()
	}
	return s.store.Close()
}

func loadPrices(c config.PricesConfig) (assets.Env, error) {
	if c.File == "" {
		return assets.Env{Buy: timeseries.Constant(c.Buy), Sell: timeseries.Constant(c.Sell)}, nil
	}
	p, err := series.LoadPrices(c.File)
	if err != nil {
		return assets.Env{}, err
	}
	return assets.Env{Buy: p.Buy, Sell: p.Sell}, nil
}

func loadDemand(c config.ScenarioConfig) (timeseries.Value, error) {
	d := c.Demand
	switch {
	case d.Constant != nil:
		return timeseries.Constant(*d.Constant), nil
	case len(d.Values) > 0:
		return timeseries.FromSlice(d.Values, timeseries.Strict()), nil
	case d.File != "":
		return series.LoadProfile(d.File)
	case d.Synthetic != nil:
		gen := series.Synthetic{
			BaseKW:      d.Synthetic.BaseKW,
			AmplitudeKW: d.Synthetic.AmplitudeKW,
			PeakHour:    d.Synthetic.PeakHour,
			JitterPct:   d.Synthetic.JitterPct,
			Seed:        d.Synthetic.Seed,
		}
		return timeseries.FromSlice(gen.Generate(c.Timesteps, c.DtHours), timeseries.Strict()), nil
	default:
		return timeseries.Value{}, fmt.Errorf("no demand source")
	}
}
