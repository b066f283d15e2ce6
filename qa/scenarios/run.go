package scenarios

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/flexmodel/core/battery"
	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/market"
	"github.com/kilianp07/flexmodel/core/optimization"
	"github.com/kilianp07/flexmodel/core/simulation"
	"github.com/kilianp07/flexmodel/core/timeseries"
	"github.com/kilianp07/flexmodel/infra/metrics"
)

// build returns fresh assets for one scenario run.
func build(t *testing.T, sc *Scenario) []flex.Asset {
	t.Helper()
	var out []flex.Asset
	for _, b := range sc.Batteries {
		opts := []battery.Option{}
		if b.Efficiency > 0 {
			opts = append(opts, battery.WithEfficiency(b.Efficiency))
		}
		u, err := battery.NewUnit(b.Name, b.CapacityKWh, b.PowerKW, opts...)
		if err != nil {
			t.Fatalf("battery %s: %v", b.Name, err)
		}
		u.ResetSOC(b.InitialSOC)
		c, err := battery.NewCostModel(b.Name, 0, 10)
		if err != nil {
			t.Fatalf("battery cost %s: %v", b.Name, err)
		}
		a, err := battery.NewAsset(u, c, battery.WithStorageBalance())
		if err != nil {
			t.Fatalf("battery asset %s: %v", b.Name, err)
		}
		out = append(out, a)
	}
	if sc.Market != nil {
		c, err := market.NewCostModel("market", timeseries.Constant(sc.Market.Buy), timeseries.Constant(sc.Market.Sell))
		if err != nil {
			t.Fatalf("market cost: %v", err)
		}
		m, err := market.NewAsset(c, "market")
		if err != nil {
			t.Fatalf("market: %v", err)
		}
		out = append(out, m)
	}
	return out
}

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	demand := timeseries.FromSlice(sc.Demand, timeseries.Strict())

	r, err := simulation.NewRunner(build(t, sc), simulation.WithSink(sink))
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	res, err := r.Run(context.Background(), demand, 0, sc.DtHours)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	exp := sc.Expected
	if math.Abs(res.TotalCostEUR-exp.TotalCostEUR) > exp.Tolerance {
		t.Errorf("scenario %s expected cost %.4f, got %.4f", sc.Name, exp.TotalCostEUR, res.TotalCostEUR)
	}
	if math.Abs(res.UnservedKWh-exp.UnservedKWh) > exp.Tolerance {
		t.Errorf("scenario %s expected %.3f kWh unserved, got %.3f", sc.Name, exp.UnservedKWh, res.UnservedKWh)
	}
	if res.CurtailedSteps != exp.CurtailedSteps {
		t.Errorf("scenario %s expected %d curtailed steps, got %d", sc.Name, exp.CurtailedSteps, res.CurtailedSteps)
	}
	const runs = `
# HELP flex_simulation_runs_total Completed simulation runs
# TYPE flex_simulation_runs_total counter
flex_simulation_runs_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(runs), "flex_simulation_runs_total"); err != nil {
		t.Errorf("scenario %s: %v", sc.Name, err)
	}

	if exp.LPObjective == nil {
		return
	}
	list := build(t, sc)
	models := make([]*optimization.LinearModel, 0, len(list))
	for _, a := range list {
		m, err := a.LinearModel(len(sc.Demand), sc.DtHours)
		if err != nil {
			t.Fatalf("linear model %s: %v", a.Name(), err)
		}
		models = append(models, m)
	}
	opt, err := optimization.NewOptimizer(models)
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	sol, err := opt.Solve(context.Background(), demand)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if math.Abs(sol.Objective-*exp.LPObjective) > exp.Tolerance {
		t.Errorf("scenario %s expected LP objective %.4f, got %.4f", sc.Name, *exp.LPObjective, sol.Objective)
	}
	// The optimum never costs more than the greedy dispatch.
	if sol.Objective > res.TotalCostEUR+exp.Tolerance {
		t.Errorf("scenario %s LP objective %.4f above simulated cost %.4f", sc.Name, sol.Objective, res.TotalCostEUR)
	}
}
