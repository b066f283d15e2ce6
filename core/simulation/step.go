package simulation

import (
	"fmt"
	"math"

	"github.com/kilianp07/flexmodel/core/events"
	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/metrics"
	"github.com/kilianp07/flexmodel/core/steplog"
)

type stepRecord struct {
	steplog.Record
	unservedKWh float64
}

// step dispatches one period. Positive residual is a deficit to be supplied.
func (r *Runner) step(runID string, t int, demandKW, dtHours float64) (stepRecord, []metrics.StepResult, bool, error) {
	rec := stepRecord{Record: steplog.Record{
		Step:     t,
		DtHours:  dtHours,
		DemandKW: demandKW,
		Assets:   make(map[string]steplog.AssetStep, len(r.storage)+1),
	}}
	results := make([]metrics.StepResult, 0, len(r.storage)+1)
	curtailed := false
	residual := demandKW

	for _, a := range r.storage {
		want, err := request(a, t, residual)
		if err != nil {
			return rec, nil, false, err
		}
		act, ev, rejected, err := r.feasibleCommand(a, t, want, dtHours)
		if err != nil {
			return rec, nil, false, err
		}
		before := a.Metrics()[flex.MetricCostEUR]
		if err := a.Execute(t, act); err != nil {
			return rec, nil, false, fmt.Errorf("execute %s at step %d: %w", a.Name(), t, err)
		}
		m := a.Metrics()
		cost := m[flex.MetricCostEUR] - before

		requested, executed := want.net(), act.InjectKW-act.DrawKW
		if math.Abs(requested-executed) > flex.PowerTolerance {
			curtailed = true
			r.log.Debugw("storage command curtailed", map[string]any{
				"asset": a.Name(), "step": t, "requested_kw": requested, "executed_kw": executed,
			})
			if r.bus != nil {
				r.bus.Publish(events.Curtailment{
					RunID: runID, Step: t, Asset: a.Name(), RequestedKW: requested, ExecutedKW: executed, Violations: rejected,
				})
			}
		}
		residual -= executed

		var soc *float64
		if v, ok := m[flex.MetricSOC]; ok {
			soc = &v
		}
		rec.Assets[a.Name()] = steplog.AssetStep{
			Kind: string(a.Kind()), DrawKW: act.DrawKW, InjectKW: act.InjectKW,
			CostEUR: cost, SOC: soc, Violations: ev.Violations,
		}
		rec.CostEUR += cost
		results = append(results, metrics.StepResult{
			Step: t, Asset: a.Name(), Kind: string(a.Kind()), DtHours: dtHours,
			DrawKW: act.DrawKW, InjectKW: act.InjectKW, CostEUR: cost, SOC: soc, Feasible: ev.Feasible,
		})
	}

	if math.Abs(residual) <= flex.PowerTolerance {
		residual = 0
	}
	if r.market == nil {
		rec.unservedKWh = math.Abs(residual) * dtHours
		return rec, results, curtailed, nil
	}
	settle := flex.SettlementActivation{DtHours: dtHours}
	if residual > 0 {
		settle.ImportKW = residual
	} else {
		settle.ExportKW = -residual
	}
	before := r.market.Metrics()[flex.MetricCostEUR]
	if err := r.market.Execute(t, settle); err != nil {
		return rec, nil, false, fmt.Errorf("settle %s at step %d: %w", r.market.Name(), t, err)
	}
	cost := r.market.Metrics()[flex.MetricCostEUR] - before
	kind := string(r.market.Kind())
	// Import is supply to the site, stored as inject from the market's point of view.
	rec.Assets[r.market.Name()] = steplog.AssetStep{Kind: kind, DrawKW: settle.ExportKW, InjectKW: settle.ImportKW, CostEUR: cost}
	rec.CostEUR += cost
	results = append(results, metrics.StepResult{
		Step: t, Asset: r.market.Name(), Kind: kind, DtHours: dtHours,
		DrawKW: settle.ExportKW, InjectKW: settle.ImportKW, CostEUR: cost, Feasible: true,
	})
	return rec, results, curtailed, nil
}

type command struct {
	drawKW, injectKW float64
}

func (c command) net() float64 { return c.injectKW - c.drawKW }

// request clamps the residual to what the asset may deliver at t.
func request(a flex.Asset, t int, residual float64) (command, error) {
	lim, err := a.PowerLimits(t)
	if err != nil {
		return command{}, fmt.Errorf("power limits of %s at step %d: %w", a.Name(), t, err)
	}
	switch {
	case residual > 0:
		return command{injectKW: lim.Inject.Clamp(residual)}, nil
	case residual < 0:
		return command{drawKW: lim.Draw.Clamp(-residual)}, nil
	default:
		return command{}, nil
	}
}

// feasibleCommand scales want down linearly until the asset accepts it and
// returns the violations of the original request. When no scaled command is
// feasible the asset is idled.
func (r *Runner) feasibleCommand(a flex.Asset, t int, want command, dtHours float64) (flex.StorageActivation, flex.Evaluation, []string, error) {
	var rejected []string
	for k := 0; k <= r.reductions; k++ {
		scale := 1 - float64(k)/float64(r.reductions)
		act := flex.StorageActivation{DrawKW: want.drawKW * scale, InjectKW: want.injectKW * scale, DtHours: dtHours}
		ev, err := a.Evaluate(t, act)
		if err != nil {
			return act, ev, nil, fmt.Errorf("evaluate %s at step %d: %w", a.Name(), t, err)
		}
		if ev.Feasible {
			return act, ev, rejected, nil
		}
		if k == 0 {
			rejected = ev.Violations
		}
		if want.drawKW == 0 && want.injectKW == 0 {
			break
		}
	}
	r.log.Debugf("%s: no feasible command at step %d, idling: %v", a.Name(), t, rejected)
	idle := flex.StorageActivation{DtHours: dtHours}
	return idle, flex.Evaluation{Feasible: false, Violations: rejected}, rejected, nil
}
