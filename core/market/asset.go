package market

import (
	"errors"
	"fmt"

	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/optimization"
)

// Evaluation detail keys.
const (
	DetailEnergyImport = "energy_import_kwh"
	DetailEnergyExport = "energy_export_kwh"
)

// Asset settles imbalances. It is always feasible and keeps only counters.
type Asset struct {
	flex.Tracker
	name string
	cost *CostModel
}

var _ flex.Asset = (*Asset)(nil)

// NewAsset wraps cost. An empty name falls back to the cost model name.
func NewAsset(cost *CostModel, name string) (*Asset, error) {
	if cost == nil {
		return nil, errors.New("market asset: cost model is required")
	}
	if name == "" {
		name = cost.Name()
	}
	return &Asset{name: name, cost: cost}, nil
}

func (a *Asset) Name() string          { return a.name }
func (a *Asset) Kind() flex.Kind       { return flex.KindSettlement }
func (a *Asset) CostModel() *CostModel { return a.cost }

// PowerLimits is unbounded in both directions.
func (a *Asset) PowerLimits(int) (flex.PowerLimits, error) {
	return flex.PowerLimits{Draw: flex.Unbounded(), Inject: flex.Unbounded()}, nil
}

// EvaluateOperation is Evaluate with explicit arguments.
func (a *Asset) EvaluateOperation(t int, dtHours, importKW, exportKW float64) (flex.Evaluation, error) {
	return a.Evaluate(t, flex.SettlementActivation{ImportKW: importKW, ExportKW: exportKW, DtHours: dtHours})
}

// ExecuteOperation is Execute with explicit arguments.
func (a *Asset) ExecuteOperation(t int, dtHours, importKW, exportKW float64) error {
	return a.Execute(t, flex.SettlementActivation{ImportKW: importKW, ExportKW: exportKW, DtHours: dtHours})
}

// Evaluate prices the settlement. Every well-formed activation is feasible.
func (a *Asset) Evaluate(t int, act flex.Activation) (flex.Evaluation, error) {
	sa, err := flex.AsSettlement(act)
	if err != nil {
		return flex.Evaluation{}, err
	}
	cost, err := a.cost.StepCost(t, flex.State{}, sa)
	if err != nil {
		return flex.Evaluation{}, err
	}
	return flex.Evaluation{
		Feasible:   true,
		Cost:       cost,
		Violations: []string{},
		Details: map[string]float64{
			DetailEnergyImport: sa.EnergyImport(),
			DetailEnergyExport: sa.EnergyExport(),
		},
	}, nil
}

// Execute records the settlement. Each call counts as one activation, idle
// periods included.
func (a *Asset) Execute(t int, act flex.Activation) error {
	sa, err := flex.AsSettlement(act)
	if err != nil {
		return err
	}
	cost, err := a.cost.StepCost(t, flex.State{}, sa)
	if err != nil {
		return err
	}
	a.Record(sa.EnergyImport()+sa.EnergyExport(), cost, true)
	return nil
}

// Reset zeroes the counters. The headroom arguments are ignored.
func (a *Asset) Reset(float64, float64) { a.ResetCounters() }

// Metrics returns the settlement counters.
func (a *Asset) Metrics() flex.Metrics { return a.CounterMetrics() }

// LinearModel exposes one import and one export variable per timestep, both
// non-negative and unbounded above. Import supplies power to the balance
// (+1), export consumes it (-1).
func (a *Asset) LinearModel(nTimesteps int, dtHours float64) (*optimization.LinearModel, error) {
	if nTimesteps <= 0 {
		return nil, fmt.Errorf("market %s: n_timesteps must be > 0, got %d", a.name, nTimesteps)
	}
	if !(dtHours > 0) {
		return nil, fmt.Errorf("market %s: dt_hours must be > 0, got %v", a.name, dtHours)
	}
	n := nTimesteps
	names := make([]string, 2*n)
	bounds := make([]optimization.Bound, 2*n)
	cost := make([]float64, 2*n)
	power := make(map[int][]optimization.PowerTerm, n)
	for t := 0; t < n; t++ {
		buy, err := a.cost.PBuy(t)
		if err != nil {
			return nil, err
		}
		sell, err := a.cost.PSell(t)
		if err != nil {
			return nil, err
		}
		names[t] = fmt.Sprintf("%s_P_import_%d", a.name, t)
		names[n+t] = fmt.Sprintf("%s_P_export_%d", a.name, t)
		bounds[t] = optimization.AtLeast(0)
		bounds[n+t] = optimization.AtLeast(0)
		cost[t] = buy * dtHours
		cost[n+t] = -sell * dtHours
		power[t] = []optimization.PowerTerm{{Index: t, Coef: 1}, {Index: n + t, Coef: -1}}
	}
	return optimization.NewLinearModel(optimization.Spec{
		Name:         a.name,
		NTimesteps:   n,
		NVars:        2 * n,
		VarNames:     names,
		VarBounds:    bounds,
		Cost:         cost,
		PowerIndices: power,
	})
}
