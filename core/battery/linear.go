package battery

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/flexmodel/core/optimization"
)

// LinearModel builds one charge and one discharge power variable per
// timestep. Charging consumes power (coefficient -1 in the power balance) and
// discharging supplies it (+1). Each variable is priced at its degradation
// cost plus the energy bought, or minus the energy sold.
//
// By default timesteps are independent: only the power bounds restrict the
// variables. WithStorageBalance adds one stored-energy variable per step,
// bounded by the SOC window, and the equality rows
//
//	E[t] - (1 - sd·dt)·E[t-1] - eff·dt·charge[t] + dt/eff·discharge[t] = 0
//
// where E[-1] is the currently stored energy.
func (a *Asset) LinearModel(nTimesteps int, dtHours float64) (*optimization.LinearModel, error) {
	if nTimesteps <= 0 {
		return nil, fmt.Errorf("battery %s: n_timesteps must be > 0, got %d", a.name, nTimesteps)
	}
	if !(dtHours > 0) {
		return nil, fmt.Errorf("battery %s: dt_hours must be > 0, got %v", a.name, dtHours)
	}
	n := nTimesteps
	nVars := 2 * n
	if a.storageBalance {
		nVars = 3 * n
	}
	names := make([]string, nVars)
	bounds := make([]optimization.Bound, nVars)
	cost := make([]float64, nVars)
	power := make(map[int][]optimization.PowerTerm, n)

	for t := 0; t < n; t++ {
		avail, err := a.unit.Availability(t)
		if err != nil {
			return nil, err
		}
		pInt, err := a.cost.PInt(t)
		if err != nil {
			return nil, err
		}
		pBuy, err := a.cost.PBuy(t)
		if err != nil {
			return nil, err
		}
		pSell, err := a.cost.PSell(t)
		if err != nil {
			return nil, err
		}
		rated := a.unit.PowerKW() * avail
		names[t] = fmt.Sprintf("%s_P_charge_%d", a.name, t)
		names[n+t] = fmt.Sprintf("%s_P_discharge_%d", a.name, t)
		bounds[t] = optimization.Between(0, rated)
		bounds[n+t] = optimization.Between(0, rated)
		cost[t] = (pInt + pBuy) * dtHours
		cost[n+t] = (pInt - pSell) * dtHours
		power[t] = []optimization.PowerTerm{{Index: t, Coef: -1}, {Index: n + t, Coef: 1}}
	}

	spec := optimization.Spec{
		Name:         a.name,
		NTimesteps:   n,
		NVars:        nVars,
		VarNames:     names,
		VarBounds:    bounds,
		Cost:         cost,
		PowerIndices: power,
	}
	if a.storageBalance {
		a.addStorageBalance(&spec, dtHours)
	}
	return optimization.NewLinearModel(spec)
}

func (a *Asset) addStorageBalance(spec *optimization.Spec, dtHours float64) {
	n := spec.NTimesteps
	u := a.unit
	socMin, socMax := u.SOCLimits()
	retain := 1 - u.SelfDischarge()*dtHours
	eff := u.Efficiency()

	aEq := mat.NewDense(n, spec.NVars, nil)
	bEq := make([]float64, n)
	for t := 0; t < n; t++ {
		e := 2*n + t
		spec.VarNames[e] = fmt.Sprintf("%s_E_%d", a.name, t)
		spec.VarBounds[e] = optimization.Between(socMin*u.Spec(), socMax*u.Spec())
		aEq.Set(t, e, 1)
		aEq.Set(t, t, -eff*dtHours)
		aEq.Set(t, n+t, dtHours/eff)
		if t == 0 {
			bEq[t] = retain * u.Stored()
			continue
		}
		aEq.Set(t, e-1, -retain)
	}
	spec.AEq = aEq
	spec.BEq = bEq
}
