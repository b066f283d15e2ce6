package battery

import (
	"testing"

	"github.com/kilianp07/flexmodel/core/optimization"
	"github.com/kilianp07/flexmodel/core/timeseries"
)

func TestAsset_LinearModelIndependentSteps(t *testing.T) {
	a := newTestAsset(t, []Option{WithAvailability(timeseries.FromSlice([]float64{1, 0.5, 1}, timeseries.Strict()))},
		[]CostOption{
			WithDegradation(timeseries.Constant(0.01)),
			WithPrices(timeseries.Constant(0.2), timeseries.Constant(0.1)),
		})
	m, err := a.LinearModel(3, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if m.NVars() != 6 || m.NTimesteps() != 3 || m.NumEq() != 0 || m.NumUb() != 0 {
		t.Fatalf("unexpected dimensions: %s", m.Summary())
	}
	idx, ok := m.Index("bat_P_discharge_1")
	if !ok || idx != 4 {
		t.Fatalf("expected discharge var at 4 got %d/%v", idx, ok)
	}
	bounds := m.VarBounds()
	if bounds[1].Upper != 25 || bounds[4].Upper != 25 || bounds[0].Upper != 50 {
		t.Fatalf("bounds must follow availability: %v", bounds)
	}
	cost := m.Cost()
	if !near(cost[0], 0.105, 1e-12) || !near(cost[3], -0.045, 1e-12) {
		t.Fatalf("unexpected cost vector %v", cost)
	}
	terms := m.PowerTerms(2)
	if len(terms) != 2 || terms[0] != (optimization.PowerTerm{Index: 2, Coef: -1}) || terms[1] != (optimization.PowerTerm{Index: 5, Coef: 1}) {
		t.Fatalf("unexpected power terms %v", terms)
	}
}

func TestAsset_LinearModelStorageBalance(t *testing.T) {
	u, err := NewUnit("bat", 100, 50, WithEfficiency(0.9), WithSOCLimits(0.1, 0.9), WithSelfDischarge(0.01))
	if err != nil {
		t.Fatal(err)
	}
	u.ResetSOC(0.5)
	c, _ := NewCostModel("c", 0, 1)
	a, _ := NewAsset(u, c, WithStorageBalance())

	m, err := a.LinearModel(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if m.NVars() != 6 || m.NumEq() != 2 {
		t.Fatalf("unexpected dimensions: %s", m.Summary())
	}
	aEq, bEq := m.Eq()
	if !near(bEq[0], 0.99*50, 1e-9) || bEq[1] != 0 {
		t.Fatalf("unexpected b_eq %v", bEq)
	}
	// row 1: E_1 - 0.99 E_0 - 0.9 c_1 + 1/0.9 d_1 = 0
	if aEq.At(1, 5) != 1 || !near(aEq.At(1, 4), -0.99, 1e-12) ||
		!near(aEq.At(1, 1), -0.9, 1e-12) || !near(aEq.At(1, 3), 1/0.9, 1e-12) {
		t.Fatalf("unexpected balance row")
	}
	b := m.VarBounds()[4]
	if b.Lower != 10 || b.Upper != 90 {
		t.Fatalf("energy bounds must follow SOC window, got %v", b)
	}
}

func TestAsset_LinearModelRejectsBadHorizon(t *testing.T) {
	a := newTestAsset(t, nil, nil)
	if _, err := a.LinearModel(0, 1); err == nil {
		t.Fatalf("expected error for zero timesteps")
	}
	if _, err := a.LinearModel(2, 0); err == nil {
		t.Fatalf("expected error for zero dt")
	}
}
