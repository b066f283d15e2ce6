package battery

import (
	"errors"
	"strings"
	"testing"

	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/timeseries"
)

func newTestAsset(t *testing.T, unitOpts []Option, costOpts []CostOption) *Asset {
	t.Helper()
	u, err := NewUnit("bat", 100, 50, unitOpts...)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewCostModel("bat_cost", 500, 10, costOpts...)
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewAsset(u, c)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func hasViolation(ev flex.Evaluation, substr string) bool {
	for _, v := range ev.Violations {
		if strings.Contains(v, substr) {
			return true
		}
	}
	return false
}

func TestNewAsset_RequiresParts(t *testing.T) {
	u, _ := NewUnit("bat", 10, 5)
	c, _ := NewCostModel("c", 0, 1)
	if _, err := NewAsset(nil, c); err == nil {
		t.Fatalf("expected error without unit")
	}
	if _, err := NewAsset(u, nil); err == nil {
		t.Fatalf("expected error without cost model")
	}
	a, err := NewAsset(u, c, WithName("renamed"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Name() != "renamed" || a.Kind() != flex.KindStorage {
		t.Fatalf("unexpected identity %s/%s", a.Name(), a.Kind())
	}
}

func TestAsset_EvaluateFeasibleCharge(t *testing.T) {
	a := newTestAsset(t, nil, []CostOption{
		WithDegradation(timeseries.Constant(0.1)),
		WithPrices(timeseries.Constant(0.2), timeseries.Constant(0.25)),
	})
	ev, err := a.EvaluateOperation(0, 1, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !ev.Feasible || len(ev.Violations) != 0 {
		t.Fatalf("expected feasible got %v", ev.Violations)
	}
	if !near(ev.Cost, 3, 1e-9) {
		t.Fatalf("expected cost 3 got %v", ev.Cost)
	}
	if !near(ev.Details[DetailEnergyStored], 9.5, 1e-9) || !near(ev.Details[DetailSOC], 0.095, 1e-9) {
		t.Fatalf("unexpected details %v", ev.Details)
	}
	if a.Unit().Stored() != 0 {
		t.Fatalf("evaluate must not mutate state")
	}
}

func TestAsset_EvaluateRejectsSimultaneous(t *testing.T) {
	a := newTestAsset(t, nil, nil)
	a.Unit().ResetSOC(0.5)
	ev, err := a.EvaluateOperation(0, 0.25, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Feasible || !hasViolation(ev, "simultaneously") {
		t.Fatalf("expected simultaneous violation got %v", ev.Violations)
	}
	if ev.Cost != 0 {
		t.Fatalf("infeasible evaluation must cost zero, got %v", ev.Cost)
	}
}

func TestAsset_EvaluatePowerLimit(t *testing.T) {
	a := newTestAsset(t, nil, nil)
	ev, err := a.EvaluateOperation(0, 0.25, 60, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Feasible || !hasViolation(ev, "draw power exceeds limit") {
		t.Fatalf("expected draw limit violation got %v", ev.Violations)
	}
	ev, _ = a.EvaluateOperation(0, 0.25, 0, 1)
	if ev.Feasible || !hasViolation(ev, "inject power exceeds limit") {
		t.Fatalf("empty battery must refuse discharge, got %v", ev.Violations)
	}
}

func TestAsset_EvaluateSOCMinimum(t *testing.T) {
	a := newTestAsset(t, []Option{WithEfficiency(1), WithSOCLimits(0.1, 1), WithNominalStep(1)}, nil)
	a.Unit().ResetSOC(0.12)
	// 2 kWh above the floor: the power limit allows 2 kW for one hour,
	// so 1.9 kW over 2 h stays within the power limit yet breaches the floor.
	ev, err := a.EvaluateOperation(0, 2, 0, 1.9)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Feasible || !hasViolation(ev, "below minimum") {
		t.Fatalf("expected SOC floor violation got %v", ev.Violations)
	}
	if hasViolation(ev, "exceeds limit") {
		t.Fatalf("unexpected power violation %v", ev.Violations)
	}
}

func TestAsset_EvaluateRejectsNegativeAndWrongKind(t *testing.T) {
	a := newTestAsset(t, nil, nil)
	if _, err := a.EvaluateOperation(0, 1, -5, 0); !errors.Is(err, flex.ErrInvalidActivation) {
		t.Fatalf("expected ErrInvalidActivation got %v", err)
	}
	if _, err := a.Evaluate(0, flex.SettlementActivation{DtHours: 1}); !errors.Is(err, flex.ErrActivationKind) {
		t.Fatalf("expected ErrActivationKind got %v", err)
	}
	if _, err := a.EvaluateOperation(0, 0, 1, 0); !errors.Is(err, flex.ErrMissingField) {
		t.Fatalf("expected ErrMissingField got %v", err)
	}
}

func TestAsset_ExecuteMatchesEvaluate(t *testing.T) {
	a := newTestAsset(t, []Option{WithEfficiency(0.9)}, []CostOption{
		WithDegradation(timeseries.Constant(0.02)),
		WithPrices(timeseries.Constant(0.3), timeseries.Constant(0.1)),
	})
	a.Unit().ResetSOC(0.5)
	ev, err := a.EvaluateOperation(0, 0.5, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.ExecuteOperation(0, 0.5, 20, 0); err != nil {
		t.Fatal(err)
	}
	if !near(a.Unit().Stored(), ev.Details[DetailEnergyStored], 1e-9) {
		t.Fatalf("executed state %v differs from prediction %v", a.Unit().Stored(), ev.Details[DetailEnergyStored])
	}
	if !near(a.TotalCost(), ev.Cost, 1e-9) {
		t.Fatalf("executed cost %v differs from evaluation %v", a.TotalCost(), ev.Cost)
	}
	if a.Activations() != 1 || a.TotalThroughputKWh() != 10 {
		t.Fatalf("unexpected counters %d/%v", a.Activations(), a.TotalThroughputKWh())
	}
}

func TestAsset_IdleStepIsNotAnActivation(t *testing.T) {
	a := newTestAsset(t, nil, nil)
	if err := a.ExecuteOperation(0, 1, 0, 0); err != nil {
		t.Fatal(err)
	}
	if a.Activations() != 0 {
		t.Fatalf("expected 0 activations got %d", a.Activations())
	}
}

func TestAsset_RoundTripLoss(t *testing.T) {
	lossy := newTestAsset(t, []Option{WithEfficiency(0.9)}, nil)
	ideal := newTestAsset(t, []Option{WithEfficiency(1)}, nil)
	for _, a := range []*Asset{lossy, ideal} {
		if err := a.ExecuteOperation(0, 1, 20, 0); err != nil {
			t.Fatal(err)
		}
	}
	// Discharge everything that can be delivered at the grid side.
	lossyOut := lossy.Unit().Stored() * lossy.Unit().Efficiency()
	idealOut := ideal.Unit().Stored() * ideal.Unit().Efficiency()
	if !(lossyOut < 20) {
		t.Fatalf("lossy battery must return less than 20 kWh, got %v", lossyOut)
	}
	if !near(idealOut, 20, 1e-9) {
		t.Fatalf("ideal battery must return 20 kWh, got %v", idealOut)
	}
	if err := lossy.ExecuteOperation(1, 1, 0, lossyOut); err != nil {
		t.Fatal(err)
	}
	if !near(lossy.Unit().Stored(), 0, 1e-9) {
		t.Fatalf("expected empty battery got %v", lossy.Unit().Stored())
	}
}

func TestAsset_ArbitrageRevenue(t *testing.T) {
	buy := timeseries.FromSlice([]float64{0.1, 0.4}, timeseries.Strict())
	sell := timeseries.FromSlice([]float64{0.05, 0.35}, timeseries.Strict())
	a := newTestAsset(t, []Option{WithEfficiency(1)}, []CostOption{WithPrices(buy, sell)})

	if err := a.ExecuteOperation(0, 1, 20, 0); err != nil {
		t.Fatal(err)
	}
	chargeCost := a.TotalCost()
	if err := a.ExecuteOperation(1, 1, 0, 20); err != nil {
		t.Fatal(err)
	}
	if !(a.TotalCost() < chargeCost) || !(a.TotalCost() < 0) {
		t.Fatalf("expected net revenue, charge=%v total=%v", chargeCost, a.TotalCost())
	}
}

func TestAsset_ResetAndMetrics(t *testing.T) {
	a := newTestAsset(t, nil, nil)
	if err := a.ExecuteOperation(0, 1, 10, 0); err != nil {
		t.Fatal(err)
	}
	m := a.Metrics()
	for _, k := range []string{flex.MetricThroughputKWh, flex.MetricCostEUR, flex.MetricActivations, flex.MetricSOC, flex.MetricEnergyStored} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing metric %s", k)
		}
	}
	a.Reset(30, 70)
	m = a.Metrics()
	if m[flex.MetricActivations] != 0 || m[flex.MetricThroughputKWh] != 0 || m[flex.MetricEnergyStored] != 30 {
		t.Fatalf("unexpected metrics after reset %v", m)
	}
	if a.Unit().EMinus() != 70 {
		t.Fatalf("expected E_minus 70 got %v", a.Unit().EMinus())
	}
}

func TestAsset_EvaluateRejectsStoredAboveAvailableCapacity(t *testing.T) {
	avail := timeseries.FromSlice([]float64{1, 0.5}, timeseries.Strict())
	a := newTestAsset(t, []Option{WithAvailability(avail)}, nil)
	a.Unit().ResetSOC(0.8)

	idle, err := a.EvaluateOperation(1, 0.25, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if idle.Feasible || !hasViolation(idle, "available capacity") {
		t.Fatalf("expected capacity violation, got %+v", idle)
	}

	// Discharging 25 kW for 1.5 h brings the store back under the 50 kWh
	// available at t=1.
	ev, err := a.EvaluateOperation(1, 1.5, 0, 25)
	if err != nil {
		t.Fatal(err)
	}
	if !ev.Feasible {
		t.Fatalf("expected feasible discharge, got %v", ev.Violations)
	}
	if err := a.ExecuteOperation(1, 1.5, 0, 25); err != nil {
		t.Fatal(err)
	}
	if !near(a.Unit().Stored(), ev.Details[DetailEnergyStored], 1e-9) {
		t.Fatalf("executed state %v differs from prediction %v", a.Unit().Stored(), ev.Details[DetailEnergyStored])
	}
}

func TestAsset_ArbitrageScenario(t *testing.T) {
	buy := timeseries.FromSeries(map[int]float64{0: 0.15, 1: 0.35}, timeseries.Strict())
	sell := timeseries.FromSeries(map[int]float64{0: 0.13, 1: 0.33}, timeseries.Strict())
	a := newTestAsset(t, []Option{WithEfficiency(0.95)}, []CostOption{
		WithDegradation(timeseries.Constant(0.05)),
		WithPrices(buy, sell),
	})
	a.Reset(50, 50)

	steps := []struct {
		t          int
		drawKW     float64
		injectKW   float64
		wantCost   float64
		wantStored float64
	}{
		// 10 kWh bought at 0.15 plus 0.05 degradation; 9.5 kWh reach the cells.
		{t: 0, drawKW: 40, wantCost: 2.0, wantStored: 59.5},
		// 10 kWh sold at 0.33 minus degradation; 10/0.95 kWh leave the cells.
		{t: 1, injectKW: 40, wantCost: -2.8, wantStored: 59.5 - 10/0.95},
	}
	var chargeCost float64
	for _, s := range steps {
		ev, err := a.EvaluateOperation(s.t, 0.25, s.drawKW, s.injectKW)
		if err != nil {
			t.Fatal(err)
		}
		if !ev.Feasible || !near(ev.Cost, s.wantCost, 1e-9) {
			t.Fatalf("t=%d: expected feasible cost %v, got %+v", s.t, s.wantCost, ev)
		}
		if err := a.ExecuteOperation(s.t, 0.25, s.drawKW, s.injectKW); err != nil {
			t.Fatal(err)
		}
		if !near(a.Unit().Stored(), s.wantStored, 1e-9) {
			t.Fatalf("t=%d: expected stored %v got %v", s.t, s.wantStored, a.Unit().Stored())
		}
		if s.t == 0 {
			chargeCost = ev.Cost
		}
	}
	if !near(a.TotalCost(), -0.8, 1e-9) {
		t.Fatalf("expected net cost -0.8 got %v", a.TotalCost())
	}
	if !(a.TotalCost() < chargeCost) {
		t.Fatalf("expected net profit below the charge cost %v, got %v", chargeCost, a.TotalCost())
	}
}
