package flex

import "github.com/kilianp07/flexmodel/core/optimization"

// Metric keys returned by Asset.Metrics.
const (
	MetricThroughputKWh = "total_throughput_kwh"
	MetricCostEUR       = "total_cost_eur"
	MetricActivations   = "num_activations"
	MetricSOC           = "current_soc"
	MetricEnergyStored  = "current_energy_stored"
)

// Metrics is a flat mapping of named cumulative aggregates.
type Metrics map[string]float64

// Evaluation is the side-effect free preview of an activation. Infeasible
// evaluations always carry a zero cost. Details echoes asset-specific
// quantities such as the resulting SOC.
type Evaluation struct {
	Feasible   bool
	Cost       float64
	Violations []string
	Details    map[string]float64
}

// Asset composes a unit and a cost model into an operational entity.
// Evaluate never mutates state; Execute applies the activation without
// re-checking feasibility. Time indices passed to Execute must increase
// strictly by one step per call.
type Asset interface {
	Name() string
	Kind() Kind
	PowerLimits(t int) (PowerLimits, error)
	Evaluate(t int, act Activation) (Evaluation, error)
	Execute(t int, act Activation) error
	Reset(ePlusInit, eMinusInit float64)
	Metrics() Metrics
	LinearModel(nTimesteps int, dtHours float64) (*optimization.LinearModel, error)
}

// Tracker accumulates operational counters. The cost total is an algebraic
// sum and may become negative.
type Tracker struct {
	throughputKWh float64
	costEUR       float64
	activations   int
}

// Record adds one executed step.
func (tr *Tracker) Record(throughputKWh, cost float64, activated bool) {
	tr.throughputKWh += throughputKWh
	tr.costEUR += cost
	if activated {
		tr.activations++
	}
}

// ResetCounters zeroes every counter.
func (tr *Tracker) ResetCounters() {
	*tr = Tracker{}
}

func (tr *Tracker) TotalThroughputKWh() float64 { return tr.throughputKWh }
func (tr *Tracker) TotalCost() float64          { return tr.costEUR }
func (tr *Tracker) Activations() int            { return tr.activations }

// CounterMetrics returns the counters as Metrics.
func (tr *Tracker) CounterMetrics() Metrics {
	return Metrics{
		MetricThroughputKWh: tr.throughputKWh,
		MetricCostEUR:       tr.costEUR,
		MetricActivations:   float64(tr.activations),
	}
}
