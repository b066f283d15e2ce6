package flex

import (
	"math"
	"strconv"
)

// PowerTolerance is the slack, in kW, allowed when comparing a command with a
// power limit.
const PowerTolerance = 1e-6

// Limit is an optional non-negative upper bound. The zero Limit is unbounded.
type Limit struct {
	value   float64
	bounded bool
}

// Bounded returns a finite limit. Negative values are floored at zero.
func Bounded(v float64) Limit {
	return Limit{value: math.Max(0, v), bounded: true}
}

// Unbounded returns a limit that never binds.
func Unbounded() Limit { return Limit{} }

// Value returns the bound and whether one is set.
func (l Limit) Value() (float64, bool) { return l.value, l.bounded }

// IsBounded reports whether the limit binds.
func (l Limit) IsBounded() bool { return l.bounded }

// Exceeded reports whether x is above the limit by more than tol.
func (l Limit) Exceeded(x, tol float64) bool {
	return l.bounded && x > l.value+tol
}

// Clamp returns x limited to [0, limit].
func (l Limit) Clamp(x float64) float64 {
	if x < 0 {
		return 0
	}
	if l.bounded && x > l.value {
		return l.value
	}
	return x
}

func (l Limit) String() string {
	if !l.bounded {
		return "unbounded"
	}
	return strconv.FormatFloat(l.value, 'f', 3, 64)
}

// PowerLimits holds the instantaneous draw and inject bounds in kW.
type PowerLimits struct {
	Draw   Limit
	Inject Limit
}

// RampLimits holds the maximum power change per step in kW. The zero value
// means ramping is unconstrained.
type RampLimits struct {
	Draw   Limit
	Inject Limit
}

// StepLimit is an optional bound expressed in time steps.
type StepLimit struct {
	Steps int
	Set   bool
}

// Steps returns a bound of n time steps.
func Steps(n int) StepLimit { return StepLimit{Steps: n, Set: true} }

// DurationLimits bounds continuous activation and the rest period that must
// follow. Enforcement belongs to the optimisation layer.
type DurationLimits struct {
	MaxActive StepLimit
	MinRest   StepLimit
}
