package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/kilianp07/flexmodel/core/events"
	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/logger"
	"github.com/kilianp07/flexmodel/core/metrics"
	"github.com/kilianp07/flexmodel/core/steplog"
	"github.com/kilianp07/flexmodel/core/timeseries"
	"github.com/kilianp07/flexmodel/internal/eventbus"
)

var (
	// ErrNoAssets is returned when a runner is built without any asset.
	ErrNoAssets = errors.New("simulation: no assets")
	// ErrHorizon is returned when the number of steps cannot be determined.
	ErrHorizon = errors.New("simulation: invalid horizon")
)

// Runner executes assets step by step against a net demand series.
type Runner struct {
	storage    []flex.Asset
	market     flex.Asset
	log        logger.Logger
	sink       metrics.MetricsSink
	steps      steplog.Store
	bus        eventbus.EventBus
	start      time.Time
	reductions int
}

// NewRunner partitions assets into storage assets and at most one settlement asset.
func NewRunner(assets []flex.Asset, opts ...Option) (*Runner, error) {
	if len(assets) == 0 {
		return nil, ErrNoAssets
	}
	r := &Runner{
		log:        logger.NopLogger{},
		sink:       metrics.NopSink{},
		steps:      steplog.NopStore{},
		reductions: 10,
	}
	seen := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		if a == nil {
			return nil, fmt.Errorf("simulation: nil asset")
		}
		if _, dup := seen[a.Name()]; dup {
			return nil, fmt.Errorf("simulation: duplicate asset name %q", a.Name())
		}
		seen[a.Name()] = struct{}{}
		switch a.Kind() {
		case flex.KindStorage:
			r.storage = append(r.storage, a)
		case flex.KindSettlement:
			if r.market != nil {
				return nil, fmt.Errorf("simulation: more than one settlement asset (%s, %s)", r.market.Name(), a.Name())
			}
			r.market = a
		default:
			return nil, fmt.Errorf("simulation: asset %s has unsupported kind %s", a.Name(), a.Kind())
		}
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// AssetResult holds the final counters of one asset.
type AssetResult struct {
	Name    string
	Kind    flex.Kind
	CostEUR float64
	Metrics flex.Metrics
}

// Result summarises a run.
type Result struct {
	RunID   string
	Steps   int
	DtHours float64
	Assets  []AssetResult
	// DemandKWh is the absolute energy of the demand series over the run.
	DemandKWh      float64
	TotalCostEUR   float64
	UnservedKWh    float64
	CurtailedSteps int
}

// Asset returns the result of the named asset.
func (r *Result) Asset(name string) (AssetResult, bool) {
	return lo.Find(r.Assets, func(a AssetResult) bool { return a.Name == name })
}

// Hours is the simulated duration.
func (r *Result) Hours() float64 { return float64(r.Steps) * r.DtHours }

// Run simulates steps periods of dtHours. When steps is zero the horizon of
// the demand series is used. Assets keep the state they had before the run.
func (r *Runner) Run(ctx context.Context, demand timeseries.Value, steps int, dtHours float64) (*Result, error) {
	if !(dtHours > 0) {
		return nil, fmt.Errorf("%w: dt_hours must be > 0, got %v", ErrHorizon, dtHours)
	}
	if steps <= 0 {
		n, ok := demand.Horizon()
		if !ok || n == 0 {
			return nil, fmt.Errorf("%w: no step count given and demand has no horizon", ErrHorizon)
		}
		steps = n
	}
	start := r.start
	if start.IsZero() {
		start = time.Now().UTC()
	}
	began := time.Now()
	res := &Result{RunID: uuid.NewString(), Steps: steps, DtHours: dtHours}
	all := r.assets()
	if r.bus != nil {
		r.bus.Publish(events.RunStarted{
			RunID:   res.RunID,
			Steps:   steps,
			DtHours: dtHours,
			Assets:  lo.Map(all, func(a flex.Asset, _ int) string { return a.Name() }),
		})
	}
	r.log.Infof("simulation %s: %d steps of %.2f h over %d assets", res.RunID, steps, dtHours, len(all))

	for t := 0; t < steps; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := demand.At(t)
		if err != nil {
			return nil, fmt.Errorf("demand at step %d: %w", t, err)
		}
		rec, results, curtailed, err := r.step(res.RunID, t, d, dtHours)
		if err != nil {
			return nil, err
		}
		ts := start.Add(time.Duration(float64(t) * dtHours * float64(time.Hour)))
		rec.RunID, rec.Timestamp = res.RunID, ts
		for i := range results {
			results[i].RunID, results[i].Time = res.RunID, ts
		}
		res.DemandKWh += math.Abs(d) * dtHours
		res.UnservedKWh += rec.unservedKWh
		res.TotalCostEUR += rec.CostEUR
		if curtailed {
			res.CurtailedSteps++
		}
		if err := r.sink.RecordStepResults(results); err != nil {
			r.log.Warnf("simulation %s: record step %d: %v", res.RunID, t, err)
		}
		if err := r.steps.Append(ctx, rec.Record); err != nil {
			return nil, fmt.Errorf("append step log %d: %w", t, err)
		}
	}

	for _, a := range all {
		m := a.Metrics()
		res.Assets = append(res.Assets, AssetResult{Name: a.Name(), Kind: a.Kind(), CostEUR: m[flex.MetricCostEUR], Metrics: m})
	}
	r.log.Infof("simulation %s: total cost %.2f EUR, unserved %.3f kWh, %d curtailed steps",
		res.RunID, res.TotalCostEUR, res.UnservedKWh, res.CurtailedSteps)
	if rr, ok := r.sink.(metrics.RunRecorder); ok {
		sum := metrics.RunSummary{
			RunID:          res.RunID,
			Steps:          res.Steps,
			DtHours:        res.DtHours,
			TotalCostEUR:   res.TotalCostEUR,
			UnservedKWh:    res.UnservedKWh,
			CurtailedSteps: res.CurtailedSteps,
			AssetCostEUR:   lo.SliceToMap(res.Assets, func(a AssetResult) (string, float64) { return a.Name, a.CostEUR }),
			Duration:       time.Since(began),
			Time:           time.Now(),
		}
		if err := rr.RecordRunSummary(sum); err != nil {
			r.log.Warnf("simulation %s: record summary: %v", res.RunID, err)
		}
	}
	return res, nil
}

func (r *Runner) assets() []flex.Asset {
	all := append([]flex.Asset(nil), r.storage...)
	if r.market != nil {
		all = append(all, r.market)
	}
	return all
}
