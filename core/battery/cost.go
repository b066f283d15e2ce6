package battery

import (
	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/timeseries"
)

type costOptions struct {
	cFix   float64
	tariff flex.Tariff
}

// CostOption configures a CostModel.
type CostOption func(*costOptions)

// WithFixedCost sets the fixed yearly cost.
func WithFixedCost(cFix float64) CostOption {
	return func(o *costOptions) { o.cFix = cFix }
}

// WithDegradation sets the internal cost per kWh of throughput.
func WithDegradation(pInt timeseries.Value) CostOption {
	return func(o *costOptions) { o.tariff.Internal = pInt }
}

// WithPrices sets the energy purchase and sale prices per kWh.
func WithPrices(buy, sell timeseries.Value) CostOption {
	return func(o *costOptions) { o.tariff.Buy, o.tariff.Sell = buy, sell }
}

// CostModel prices battery activations: degradation on throughput plus the
// energy bought while charging minus the energy sold while discharging.
type CostModel struct {
	flex.CostBase
}

var _ flex.CostModel = (*CostModel)(nil)

// NewCostModel returns a battery cost model. Prices default to zero.
func NewCostModel(name string, cInv, nLifetime float64, opts ...CostOption) (*CostModel, error) {
	var o costOptions
	for _, opt := range opts {
		opt(&o)
	}
	base, err := flex.NewCostBase(name, flex.Investment{CInv: cInv, NLifetime: nLifetime, CFix: o.cFix}, o.tariff)
	if err != nil {
		return nil, err
	}
	return &CostModel{CostBase: base}, nil
}

// StepCost requires a StorageActivation.
func (c *CostModel) StepCost(t int, _ flex.State, act flex.Activation) (float64, error) {
	a, err := flex.AsStorage(act)
	if err != nil {
		return 0, err
	}
	pInt, err := c.PInt(t)
	if err != nil {
		return 0, err
	}
	pBuy, err := c.PBuy(t)
	if err != nil {
		return 0, err
	}
	pSell, err := c.PSell(t)
	if err != nil {
		return 0, err
	}
	eDraw, eInject := a.EnergyDraw(), a.EnergyInject()
	return pInt*(eDraw+eInject) + pBuy*eDraw - pSell*eInject, nil
}
