package optimization_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/flexmodel/core/battery"
	"github.com/kilianp07/flexmodel/core/market"
	"github.com/kilianp07/flexmodel/core/optimization"
	"github.com/kilianp07/flexmodel/core/timeseries"
)

func newMarket(t *testing.T, buy, sell timeseries.Value) *market.Asset {
	t.Helper()
	c, err := market.NewCostModel("market", buy, sell)
	require.NoError(t, err)
	m, err := market.NewAsset(c, "")
	require.NoError(t, err)
	return m
}

func TestOptimizer_MarketOnlyCoversDemand(t *testing.T) {
	mk := newMarket(t, timeseries.Constant(0.3), timeseries.Constant(0.1))
	lm, err := mk.LinearModel(3, 0.25)
	require.NoError(t, err)
	o, err := optimization.NewOptimizer([]*optimization.LinearModel{lm})
	require.NoError(t, err)

	demand := timeseries.FromSlice([]float64{10, 20, 30}, timeseries.Strict())
	sol, err := o.Solve(context.Background(), demand)
	require.NoError(t, err)
	as, _ := sol.Asset("market")
	assert.InDeltaSlice(t, []float64{10, 20, 30}, as.Power, 1e-6)
	for step := 0; step < 3; step++ {
		exp, _ := as.Value(fmt.Sprintf("market_P_export_%d", step))
		assert.InDelta(t, 0, exp, 1e-6)
	}
	assert.InDelta(t, 0.3*0.25*60, sol.Objective, 1e-6)
}

func TestOptimizer_BatteryAndMarket(t *testing.T) {
	u, err := battery.NewUnit("bat", 100, 50, battery.WithEfficiency(1))
	require.NoError(t, err)
	u.ResetSOC(1)
	c, err := battery.NewCostModel("bat_cost", 0, 10, battery.WithDegradation(timeseries.Constant(0.01)))
	require.NoError(t, err)
	bat, err := battery.NewAsset(u, c)
	require.NoError(t, err)
	mk := newMarket(t, timeseries.Constant(0.3), timeseries.Constant(0.1))

	bm, err := bat.LinearModel(1, 1)
	require.NoError(t, err)
	mm, err := mk.LinearModel(1, 1)
	require.NoError(t, err)
	o, err := optimization.NewOptimizer([]*optimization.LinearModel{bm, mm})
	require.NoError(t, err)

	sol, err := o.Solve(context.Background(), timeseries.Constant(40))
	require.NoError(t, err)
	b, _ := sol.Asset("bat")
	m, _ := sol.Asset("market")
	// Discharging is cheaper than the export price pays, so the battery runs
	// at full power and the surplus is sold.
	assert.InDelta(t, 50, b.Power[0], 1e-6)
	assert.InDelta(t, -10, m.Power[0], 1e-6)
	assert.InDelta(t, -0.5, sol.Objective, 1e-6)
	assert.InDelta(t, b.Cost+m.Cost, sol.Objective, 1e-9)
}

func TestOptimizer_StorageBalanceShiftsEnergy(t *testing.T) {
	u, err := battery.NewUnit("bat", 100, 50, battery.WithEfficiency(1))
	require.NoError(t, err)
	u.ResetSOC(0.2)
	c, err := battery.NewCostModel("bat_cost", 0, 10, battery.WithDegradation(timeseries.Constant(0.01)))
	require.NoError(t, err)
	bat, err := battery.NewAsset(u, c, battery.WithStorageBalance())
	require.NoError(t, err)
	buy := timeseries.FromSlice([]float64{0.1, 0.5}, timeseries.Strict())
	mk := newMarket(t, buy, timeseries.Constant(0))

	bm, err := bat.LinearModel(2, 1)
	require.NoError(t, err)
	mm, err := mk.LinearModel(2, 1)
	require.NoError(t, err)
	o, err := optimization.NewOptimizer([]*optimization.LinearModel{bm, mm})
	require.NoError(t, err)

	sol, err := o.Solve(context.Background(), timeseries.Constant(30))
	require.NoError(t, err)
	b, _ := sol.Asset("bat")
	charge0, _ := b.Value("bat_P_charge_0")
	discharge1, _ := b.Value("bat_P_discharge_1")
	e1, _ := b.Value("bat_E_1")
	assert.InDelta(t, 10, charge0, 1e-6)
	assert.InDelta(t, 30, discharge1, 1e-6)
	assert.InDelta(t, 0, e1, 1e-6)
	assert.InDelta(t, 4.4, sol.Objective, 1e-6)
}
