package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/flexmodel/core/battery"
	"github.com/kilianp07/flexmodel/core/factory"
	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/timeseries"
)

func TestBuild_BatteryAndMarket(t *testing.T) {
	env := Env{Buy: timeseries.Constant(0.3), Sell: timeseries.Constant(0.1)}
	cfgs := []factory.ModuleConfig{
		{Type: TypeBattery, Conf: map[string]any{
			"name": "bat", "capacity_kwh": 100, "power_kw": 50,
			"soc_min": 0.1, "initial_soc": 0.5, "c_inv": 500, "storage_balance": true,
		}},
		{Type: TypeMarket, Conf: map[string]any{"sell": 0.05}},
	}
	list, err := Build(cfgs, env)
	require.NoError(t, err)
	require.Len(t, list, 2)

	bat, ok := list[0].(*battery.Asset)
	require.True(t, ok)
	assert.Equal(t, "bat", bat.Name())
	assert.InDelta(t, 50, bat.Unit().Stored(), 1e-9)
	assert.Equal(t, battery.DefaultEfficiency, bat.Unit().Efficiency())
	socMin, socMax := bat.Unit().SOCLimits()
	assert.Equal(t, 0.1, socMin)
	assert.Equal(t, 1.0, socMax)
	ann, err := bat.CostModel().AnnualizedInvestment(100, 0)
	require.NoError(t, err)
	assert.InDelta(t, 5000, ann, 1e-9)

	lm, err := bat.LinearModel(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, lm.NVars())

	mkt := list[1]
	assert.Equal(t, "market", mkt.Name())
	assert.Equal(t, flex.KindSettlement, mkt.Kind())
	ev, err := mkt.Evaluate(0, flex.SettlementActivation{ImportKW: 10, ExportKW: 10, DtHours: 1})
	require.NoError(t, err)
	assert.InDelta(t, 3-0.5, ev.Cost, 1e-9)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build([]factory.ModuleConfig{{Type: "heatpump"}}, Env{})
	assert.ErrorContains(t, err, "unknown module type")

	_, err = Build([]factory.ModuleConfig{{Type: TypeBattery, Conf: map[string]any{"capacity_kwh": 10, "power_kw": 5}}}, Env{})
	assert.ErrorContains(t, err, "Name")

	_, err = Build([]factory.ModuleConfig{{Type: TypeBattery, Conf: map[string]any{
		"name": "b", "capacity_kwh": 10, "power_kw": 5, "soc_min": 0.9, "soc_max": 0.5,
	}}}, Env{})
	assert.Error(t, err)

	_, err = Build([]factory.ModuleConfig{{Type: TypeBattery, Conf: map[string]any{
		"name": "b", "capacity_kwh": 10, "powr_kw": 5,
	}}}, Env{})
	assert.ErrorContains(t, err, "powr_kw")
}

func TestBuild_InitialSOCMustSitInWindow(t *testing.T) {
	for _, tc := range []struct {
		name string
		soc  float64
		ok   bool
	}{
		{"below soc_min", 0.1, false},
		{"at soc_min", 0.2, true},
		{"inside", 0.5, true},
		{"at soc_max", 0.9, true},
		{"above soc_max", 0.95, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build([]factory.ModuleConfig{{Type: TypeBattery, Conf: map[string]any{
				"name": "b", "capacity_kwh": 10, "power_kw": 5,
				"soc_min": 0.2, "soc_max": 0.9, "initial_soc": tc.soc,
			}}}, Env{})
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, flex.ErrInvalidParameter)
			assert.ErrorContains(t, err, "initial_soc")
		})
	}
}

func TestBuild_TradeEnergyUsesScenarioPrices(t *testing.T) {
	env := Env{Buy: timeseries.Constant(0.3), Sell: timeseries.Constant(0.1)}
	list, err := Build([]factory.ModuleConfig{{Type: TypeBattery, Conf: map[string]any{
		"name": "b", "capacity_kwh": 100, "power_kw": 50, "trade_energy": true,
	}}}, env)
	require.NoError(t, err)
	ev, err := list[0].Evaluate(0, flex.StorageActivation{DrawKW: 10, DtHours: 1})
	require.NoError(t, err)
	assert.InDelta(t, 3, ev.Cost, 1e-9)
}
