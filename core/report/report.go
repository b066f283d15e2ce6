// Package report compares a baseline simulation with a candidate one and
// weighs the operating savings against the candidate's investments.
package report

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/kilianp07/flexmodel/core/simulation"
)

// HoursPerYear is used to extrapolate a simulated horizon to one year.
const HoursPerYear = 8760

// ErrEmptyRun is returned when a run covers no time.
var ErrEmptyRun = errors.New("report: run covers no time")

// Investor is implemented by cost models that carry capital parameters.
type Investor interface {
	AnnualizedInvestment(capacity, discountRate float64) (float64, error)
	FixedCost() float64
	TotalInvestment(capacity float64) float64
}

// Investment is one asset added by the candidate scenario.
type Investment struct {
	Asset    string
	Capacity float64
	Model    Investor
}

// Line is the capital side of one investment.
type Line struct {
	Asset      string          `json:"asset"`
	Capex      decimal.Decimal `json:"capex_eur"`
	Annuity    decimal.Decimal `json:"annuity_eur"`
	FixedCosts decimal.Decimal `json:"fixed_cost_eur"`
}

// Comparison holds yearly figures in EUR rounded to cents.
type Comparison struct {
	BaselineCost  decimal.Decimal `json:"baseline_cost_eur"`
	CandidateCost decimal.Decimal `json:"candidate_cost_eur"`
	// AnnualSavings is the operating cost avoided per year.
	AnnualSavings decimal.Decimal `json:"annual_savings_eur"`
	AnnualCapex   decimal.Decimal `json:"annual_capex_eur"`
	NetBenefit    decimal.Decimal `json:"net_annual_benefit_eur"`
	TotalCapex    decimal.Decimal `json:"total_capex_eur"`
	// PaybackYears is nil when the investments never pay back.
	PaybackYears *decimal.Decimal `json:"payback_years,omitempty"`
	Lines        []Line           `json:"lines"`
}

// Compare annualises the operating cost of both runs and sets the candidate's
// savings against the annuities and fixed costs of its investments.
func Compare(baseline, candidate *simulation.Result, investments []Investment, discountRate float64) (*Comparison, error) {
	if baseline == nil || candidate == nil {
		return nil, fmt.Errorf("report: both runs are required")
	}
	baseCost, err := annualCost(baseline)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	candCost, err := annualCost(candidate)
	if err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}

	lines := make([]Line, 0, len(investments))
	for _, inv := range investments {
		if inv.Model == nil {
			return nil, fmt.Errorf("report: investment %s has no cost model", inv.Asset)
		}
		ann, err := inv.Model.AnnualizedInvestment(inv.Capacity, discountRate)
		if err != nil {
			return nil, fmt.Errorf("investment %s: %w", inv.Asset, err)
		}
		lines = append(lines, Line{
			Asset:      inv.Asset,
			Capex:      cents(inv.Model.TotalInvestment(inv.Capacity)),
			Annuity:    cents(ann),
			FixedCosts: cents(inv.Model.FixedCost()),
		})
	}

	sum := func(f func(Line) decimal.Decimal) decimal.Decimal {
		return lo.Reduce(lines, func(acc decimal.Decimal, l Line, _ int) decimal.Decimal { return acc.Add(f(l)) }, decimal.Zero)
	}
	annualCapex := sum(func(l Line) decimal.Decimal { return l.Annuity.Add(l.FixedCosts) })
	totalCapex := sum(func(l Line) decimal.Decimal { return l.Capex })

	c := &Comparison{
		BaselineCost:  baseCost,
		CandidateCost: candCost,
		AnnualSavings: baseCost.Sub(candCost),
		AnnualCapex:   annualCapex,
		TotalCapex:    totalCapex,
		Lines:         lines,
	}
	c.NetBenefit = c.AnnualSavings.Sub(annualCapex)

	// Payback compares the up-front capital with savings net of fixed costs.
	fixed := sum(func(l Line) decimal.Decimal { return l.FixedCosts })
	if yearly := c.AnnualSavings.Sub(fixed); yearly.IsPositive() {
		p := totalCapex.DivRound(yearly, 2)
		c.PaybackYears = &p
	}
	return c, nil
}

func annualCost(r *simulation.Result) (decimal.Decimal, error) {
	h := r.Hours()
	if !(h > 0) {
		return decimal.Zero, ErrEmptyRun
	}
	return cents(r.TotalCostEUR * HoursPerYear / h), nil
}

func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
