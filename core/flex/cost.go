package flex

import (
	"fmt"
	"math"

	"github.com/kilianp07/flexmodel/core/timeseries"
)

// CostModel evaluates the economics of one asset. StepCost returns a positive
// value for a net cost and a negative one for a net revenue. Implementations
// hold no mutable state besides their price series.
type CostModel interface {
	Name() string
	StepCost(t int, state State, act Activation) (float64, error)
	AnnualizedInvestment(capacity, discountRate float64) (float64, error)
}

// Investment holds the capital parameters of an asset.
type Investment struct {
	CInv      float64 // cost per capacity unit
	NLifetime float64 // years
	CFix      float64 // fixed cost per year
}

// Validate checks the investment parameters.
func (i Investment) Validate() error {
	if i.CInv < 0 {
		return fmt.Errorf("%w: c_inv must be >= 0, got %v", ErrInvalidParameter, i.CInv)
	}
	if !(i.NLifetime > 0) {
		return fmt.Errorf("%w: n_lifetime must be > 0, got %v", ErrInvalidParameter, i.NLifetime)
	}
	if i.CFix < 0 {
		return fmt.Errorf("%w: c_fix must be >= 0, got %v", ErrInvalidParameter, i.CFix)
	}
	return nil
}

// FixedCost returns the yearly fixed cost.
func (i Investment) FixedCost() float64 { return i.CFix }

// TotalInvestment returns the up-front capital for capacity units.
func (i Investment) TotalInvestment(capacity float64) float64 { return i.CInv * capacity }

// AnnualizedInvestment converts c_inv * capacity into a yearly annuity using
// the capital recovery factor r(1+r)^n / ((1+r)^n - 1). A zero discount rate
// degrades to straight division by the lifetime.
func (i Investment) AnnualizedInvestment(capacity, discountRate float64) (float64, error) {
	if capacity < 0 {
		return 0, fmt.Errorf("%w: capacity must be >= 0, got %v", ErrInvalidParameter, capacity)
	}
	if discountRate < 0 || math.IsNaN(discountRate) {
		return 0, fmt.Errorf("%w: discount rate must be >= 0, got %v", ErrInvalidParameter, discountRate)
	}
	total := i.CInv * capacity
	if discountRate == 0 {
		return total / i.NLifetime, nil
	}
	growth := math.Pow(1+discountRate, i.NLifetime)
	crf := discountRate * growth / (growth - 1)
	return total * crf, nil
}

// Tariff groups the time-dependent unit prices of a cost model.
type Tariff struct {
	Internal timeseries.Value // degradation or internal cost per energy unit
	Buy      timeseries.Value
	Sell     timeseries.Value
}

// CostBase is embedded by concrete cost models.
type CostBase struct {
	name string
	Investment
	tariff Tariff
}

// NewCostBase validates the investment and returns a cost model base.
func NewCostBase(name string, inv Investment, tariff Tariff) (CostBase, error) {
	if name == "" {
		return CostBase{}, fmt.Errorf("%w: cost model name is required", ErrInvalidParameter)
	}
	if err := inv.Validate(); err != nil {
		return CostBase{}, fmt.Errorf("cost model %s: %w", name, err)
	}
	return CostBase{name: name, Investment: inv, tariff: tariff}, nil
}

func (c *CostBase) Name() string { return c.name }

// Tariff returns the price series of the model.
func (c *CostBase) Tariff() Tariff { return c.tariff }

// PInt returns the internal unit cost at t.
func (c *CostBase) PInt(t int) (float64, error) { return lookup(c.name, "p_int", c.tariff.Internal, t) }

// PBuy returns the energy purchase price at t.
func (c *CostBase) PBuy(t int) (float64, error) { return lookup(c.name, "p_E_buy", c.tariff.Buy, t) }

// PSell returns the energy sale price at t.
func (c *CostBase) PSell(t int) (float64, error) { return lookup(c.name, "p_E_sell", c.tariff.Sell, t) }

func lookup(model, field string, v timeseries.Value, t int) (float64, error) {
	x, err := v.At(t)
	if err != nil {
		return 0, fmt.Errorf("cost model %s %s: %w", model, field, err)
	}
	return x, nil
}
