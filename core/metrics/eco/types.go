package eco

import "time"

// Record aggregates what one storage asset did on one day of one run.
// Energies are measured at the grid connection.
type Record struct {
	RunID         string
	Asset         string
	Date          time.Time
	ChargedKWh    float64
	DischargedKWh float64
	ActiveSteps   int
	CostEUR       float64
}

// Merge adds the energy, activity and cost of o to r.
func (r *Record) Merge(o Record) {
	r.ChargedKWh += o.ChargedKWh
	r.DischargedKWh += o.DischargedKWh
	r.ActiveSteps += o.ActiveSteps
	r.CostEUR += o.CostEUR
}

// RoundTripEfficiency returns discharged over charged energy, or 0 when
// nothing was charged. Over a single day it can exceed 1 if the asset
// started the day with energy stored.
func (r Record) RoundTripEfficiency() float64 {
	if r.ChargedKWh == 0 {
		return 0
	}
	return r.DischargedKWh / r.ChargedKWh
}

// CO2Avoided returns the grams of CO2 not emitted by supplying the
// discharged energy instead of importing it at factor g/kWh.
func (r Record) CO2Avoided(factor float64) float64 {
	return r.DischargedKWh * factor
}

// CostPerKWh returns the operating cost per discharged kWh, or 0 when
// nothing was discharged.
func (r Record) CostPerKWh() float64 {
	if r.DischargedKWh == 0 {
		return 0
	}
	return r.CostEUR / r.DischargedKWh
}

// FromStep converts one asset step into a record. The step counts as active
// when the asset drew or injected power.
func FromStep(runID, asset string, at time.Time, dtHours, drawKW, injectKW, costEUR float64) Record {
	rec := Record{
		RunID:         runID,
		Asset:         asset,
		Date:          at,
		ChargedKWh:    drawKW * dtHours,
		DischargedKWh: injectKW * dtHours,
		CostEUR:       costEUR,
	}
	if drawKW > 0 || injectKW > 0 {
		rec.ActiveSteps = 1
	}
	return rec
}
