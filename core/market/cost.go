package market

import (
	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/timeseries"
)

// CostModel prices settled imbalances. It carries no investment and no
// internal cost.
type CostModel struct {
	flex.CostBase
}

var _ flex.CostModel = (*CostModel)(nil)

// NewCostModel returns a settlement cost model with the given buy and sell
// prices per kWh.
func NewCostModel(name string, buy, sell timeseries.Value) (*CostModel, error) {
	base, err := flex.NewCostBase(name,
		flex.Investment{NLifetime: 1},
		flex.Tariff{Buy: buy, Sell: sell},
	)
	if err != nil {
		return nil, err
	}
	return &CostModel{CostBase: base}, nil
}

// StepCost returns E_import*p_buy - E_export*p_sell. It requires a
// SettlementActivation.
func (c *CostModel) StepCost(t int, _ flex.State, act flex.Activation) (float64, error) {
	a, err := flex.AsSettlement(act)
	if err != nil {
		return 0, err
	}
	buy, err := c.PBuy(t)
	if err != nil {
		return 0, err
	}
	sell, err := c.PSell(t)
	if err != nil {
		return 0, err
	}
	return a.EnergyImport()*buy - a.EnergyExport()*sell, nil
}
