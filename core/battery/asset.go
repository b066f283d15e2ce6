package battery

import (
	"errors"
	"fmt"

	"github.com/kilianp07/flexmodel/core/flex"
)

// socTolerance absorbs rounding when comparing a predicted SOC with its limits.
const socTolerance = 1e-9

// Evaluation detail keys.
const (
	DetailSOC             = "soc"
	DetailEnergyStored    = "energy_stored_kwh"
	DetailThroughput      = "throughput_kwh"
	DetailEnergyCharged   = "energy_charged_kwh"
	DetailEnergyDischarge = "energy_discharged_kwh"
)

// AssetOption configures an Asset.
type AssetOption func(*Asset)

// WithName overrides the asset name, which defaults to the unit name.
func WithName(name string) AssetOption {
	return func(a *Asset) {
		if name != "" {
			a.name = name
		}
	}
}

// WithStorageBalance couples the stored energy across timesteps in the linear
// model. Without it each timestep is priced independently.
func WithStorageBalance() AssetOption {
	return func(a *Asset) { a.storageBalance = true }
}

// Asset is the operational composition of a battery unit and its cost model.
type Asset struct {
	flex.Tracker
	name           string
	unit           *Unit
	cost           *CostModel
	storageBalance bool
}

var _ flex.Asset = (*Asset)(nil)

// NewAsset composes unit and cost. Both are shared, not copied.
func NewAsset(unit *Unit, cost *CostModel, opts ...AssetOption) (*Asset, error) {
	if unit == nil {
		return nil, errors.New("battery asset: unit is required")
	}
	if cost == nil {
		return nil, errors.New("battery asset: cost model is required")
	}
	a := &Asset{name: unit.Name(), unit: unit, cost: cost}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

func (a *Asset) Name() string          { return a.name }
func (a *Asset) Kind() flex.Kind       { return flex.KindStorage }
func (a *Asset) Unit() *Unit           { return a.unit }
func (a *Asset) CostModel() *CostModel { return a.cost }

// PowerLimits returns the unit's current power limits.
func (a *Asset) PowerLimits(t int) (flex.PowerLimits, error) { return a.unit.PowerLimits(t) }

// EvaluateOperation is Evaluate with explicit arguments.
func (a *Asset) EvaluateOperation(t int, dtHours, drawKW, injectKW float64) (flex.Evaluation, error) {
	return a.Evaluate(t, flex.StorageActivation{DrawKW: drawKW, InjectKW: injectKW, DtHours: dtHours})
}

// ExecuteOperation is Execute with explicit arguments.
func (a *Asset) ExecuteOperation(t int, dtHours, drawKW, injectKW float64) error {
	return a.Execute(t, flex.StorageActivation{DrawKW: drawKW, InjectKW: injectKW, DtHours: dtHours})
}

// Evaluate checks, in order, simultaneous draw and inject, each power against
// its limit, the resulting SOC against its window and the resulting stored
// energy against the capacity available at t. Every violation found is
// reported. State is left untouched.
func (a *Asset) Evaluate(t int, act flex.Activation) (flex.Evaluation, error) {
	sa, err := flex.AsStorage(act)
	if err != nil {
		return flex.Evaluation{}, err
	}
	limits, err := a.unit.PowerLimits(t)
	if err != nil {
		return flex.Evaluation{}, err
	}

	var violations []string
	if sa.DrawKW > 0 && sa.InjectKW > 0 {
		violations = append(violations, "cannot draw and inject simultaneously")
	}
	if limits.Draw.Exceeded(sa.DrawKW, flex.PowerTolerance) {
		violations = append(violations, fmt.Sprintf("draw power exceeds limit (%.3f > %s kW)", sa.DrawKW, limits.Draw))
	}
	if limits.Inject.Exceeded(sa.InjectKW, flex.PowerTolerance) {
		violations = append(violations, fmt.Sprintf("inject power exceeds limit (%.3f > %s kW)", sa.InjectKW, limits.Inject))
	}
	storedAfter := a.unit.StoredAfter(sa.DtHours, sa.DrawKW, sa.InjectKW)
	socAfter := storedAfter / a.unit.Spec()
	socMin, socMax := a.unit.SOCLimits()
	if socAfter < socMin-socTolerance {
		violations = append(violations, fmt.Sprintf("SOC %.4f below minimum %.4f", socAfter, socMin))
	}
	if socAfter > socMax+socTolerance {
		violations = append(violations, fmt.Sprintf("SOC %.4f above maximum %.4f", socAfter, socMax))
	}
	capacity, err := a.unit.Capacity(t)
	if err != nil {
		return flex.Evaluation{}, err
	}
	if storedAfter > capacity+socTolerance*a.unit.Spec() {
		violations = append(violations, fmt.Sprintf("stored energy %.3f kWh exceeds available capacity %.3f kWh", storedAfter, capacity))
	}

	cost, err := a.cost.StepCost(t, a.unit.State(), sa)
	if err != nil {
		return flex.Evaluation{}, err
	}
	feasible := len(violations) == 0
	if !feasible {
		cost = 0
	}
	return flex.Evaluation{
		Feasible:   feasible,
		Cost:       cost,
		Violations: violations,
		Details: map[string]float64{
			DetailSOC:             socAfter,
			DetailEnergyStored:    storedAfter,
			DetailThroughput:      sa.EnergyDraw() + sa.EnergyInject(),
			DetailEnergyCharged:   sa.EnergyDraw(),
			DetailEnergyDischarge: sa.EnergyInject(),
		},
	}, nil
}

// Execute prices the activation, applies it to the unit and accumulates the
// counters. Feasibility is not re-checked; the unit clamps to its physical
// bounds, which may silently curtail an infeasible command.
func (a *Asset) Execute(t int, act flex.Activation) error {
	sa, err := flex.AsStorage(act)
	if err != nil {
		return err
	}
	cost, err := a.cost.StepCost(t, a.unit.State(), sa)
	if err != nil {
		return err
	}
	if err := a.unit.UpdateState(t, sa.DtHours, flex.Command{DrawKW: sa.DrawKW, InjectKW: sa.InjectKW}); err != nil {
		return err
	}
	throughput := sa.EnergyDraw() + sa.EnergyInject()
	a.Record(throughput, cost, throughput > 0)
	return nil
}

// Reset zeroes the counters and resets the unit headroom.
func (a *Asset) Reset(ePlusInit, eMinusInit float64) {
	a.ResetCounters()
	a.unit.ResetState(ePlusInit, eMinusInit)
}

// Metrics returns the counters plus the current SOC and stored energy.
func (a *Asset) Metrics() flex.Metrics {
	m := a.CounterMetrics()
	m[flex.MetricSOC] = a.unit.SOC()
	m[flex.MetricEnergyStored] = a.unit.Stored()
	return m
}
