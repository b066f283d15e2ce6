package battery

import (
	"fmt"
	"math"

	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/timeseries"
)

// Default unit parameters.
const (
	DefaultEfficiency  = 0.95
	DefaultNominalStep = 0.25
)

type unitOptions struct {
	efficiency    float64
	socMin        float64
	socMax        float64
	selfDischarge float64
	nominalStep   float64
	headroom      []flex.HeadroomOption
}

// Option configures a Unit.
type Option func(*unitOptions)

// WithEfficiency sets the one-way efficiency in (0, 1].
func WithEfficiency(eff float64) Option {
	return func(o *unitOptions) { o.efficiency = eff }
}

// WithSOCLimits sets the usable SOC window.
func WithSOCLimits(min, max float64) Option {
	return func(o *unitOptions) { o.socMin, o.socMax = min, max }
}

// WithSelfDischarge sets the fraction of stored energy lost per hour.
func WithSelfDischarge(perHour float64) Option {
	return func(o *unitOptions) { o.selfDischarge = perHour }
}

// WithNominalStep sets the step length in hours used to convert remaining
// energy into a power limit.
func WithNominalStep(hours float64) Option {
	return func(o *unitOptions) { o.nominalStep = hours }
}

// WithAvailability sets the availability factor of the unit.
func WithAvailability(v timeseries.Value) Option {
	return func(o *unitOptions) { o.headroom = append(o.headroom, flex.WithAvailability(v)) }
}

// WithAccessStates configures discrete operating points.
func WithAccessStates(states ...flex.AccessState) Option {
	return func(o *unitOptions) { o.headroom = append(o.headroom, flex.WithAccessStates(states...)) }
}

// Unit is the physical model of a battery.
type Unit struct {
	flex.Headroom
	powerKW       float64
	efficiency    float64
	socMin        float64
	socMax        float64
	selfDischarge float64
	nominalStep   float64
}

var _ flex.Unit = (*Unit)(nil)

// NewUnit validates the parameters and returns a battery resting at its
// minimum SOC.
func NewUnit(name string, capacityKWh, powerKW float64, opts ...Option) (*Unit, error) {
	o := unitOptions{
		efficiency:  DefaultEfficiency,
		socMin:      0,
		socMax:      1,
		nominalStep: DefaultNominalStep,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !(powerKW > 0) || math.IsInf(powerKW, 0) {
		return nil, fmt.Errorf("%w: battery %s power must be positive and finite, got %v", flex.ErrInvalidParameter, name, powerKW)
	}
	if !(o.efficiency > 0 && o.efficiency <= 1) {
		return nil, fmt.Errorf("%w: battery %s efficiency must be in (0, 1], got %v", flex.ErrInvalidParameter, name, o.efficiency)
	}
	if !(o.socMin >= 0 && o.socMin < o.socMax && o.socMax <= 1) {
		return nil, fmt.Errorf("%w: battery %s SOC limits must satisfy 0 <= soc_min < soc_max <= 1, got [%v, %v]",
			flex.ErrInvalidParameter, name, o.socMin, o.socMax)
	}
	if !(o.selfDischarge >= 0 && o.selfDischarge < 1) {
		return nil, fmt.Errorf("%w: battery %s self-discharge must be in [0, 1), got %v", flex.ErrInvalidParameter, name, o.selfDischarge)
	}
	if !(o.nominalStep > 0) {
		return nil, fmt.Errorf("%w: battery %s nominal step must be > 0, got %v", flex.ErrInvalidParameter, name, o.nominalStep)
	}
	h, err := flex.NewHeadroom(name, capacityKWh, o.headroom...)
	if err != nil {
		return nil, err
	}
	u := &Unit{
		Headroom:      h,
		powerKW:       powerKW,
		efficiency:    o.efficiency,
		socMin:        o.socMin,
		socMax:        o.socMax,
		selfDischarge: o.selfDischarge,
		nominalStep:   o.nominalStep,
	}
	floor := o.socMin * capacityKWh
	u.ResetState(floor, capacityKWh-floor)
	return u, nil
}

func (u *Unit) PowerKW() float64              { return u.powerKW }
func (u *Unit) Efficiency() float64           { return u.efficiency }
func (u *Unit) SOCLimits() (float64, float64) { return u.socMin, u.socMax }
func (u *Unit) SelfDischarge() float64        { return u.selfDischarge }
func (u *Unit) NominalStep() float64          { return u.nominalStep }

// Stored returns the stored energy in kWh.
func (u *Unit) Stored() float64 { return u.EPlus() }

// SOC returns the state of charge as a fraction of nameplate capacity.
func (u *Unit) SOC() float64 { return u.EPlus() / u.Spec() }

// PowerLimits bounds charging by the room left below soc_max and discharging
// by the energy left above soc_min, each converted to power over the nominal
// step and capped by the available power rating.
func (u *Unit) PowerLimits(t int) (flex.PowerLimits, error) {
	avail, err := u.Availability(t)
	if err != nil {
		return flex.PowerLimits{}, err
	}
	capacity, err := u.Capacity(t)
	if err != nil {
		return flex.PowerLimits{}, err
	}
	rated := u.powerKW * avail
	stored := u.Stored()
	ceiling := math.Min(u.socMax*u.Spec(), capacity)
	draw := math.Min(rated, (ceiling-stored)/u.nominalStep)
	inject := math.Min(rated, (stored-u.socMin*u.Spec())/u.nominalStep)
	return flex.PowerLimits{Draw: flex.Bounded(draw), Inject: flex.Bounded(inject)}, nil
}

// FeasibleAccessStates drops states whose direction cannot currently be
// served: drawing states need charge room, injecting states need energy.
func (u *Unit) FeasibleAccessStates(t int) ([]flex.AccessState, error) {
	states := u.AccessStates()
	if len(states) == 0 {
		return states, nil
	}
	limits, err := u.PowerLimits(t)
	if err != nil {
		return nil, err
	}
	draw, _ := limits.Draw.Value()
	inject, _ := limits.Inject.Value()
	out := states[:0]
	for _, s := range states {
		switch {
		case s.Utilisation() > 0 && draw <= 0:
		case s.Utilisation() < 0 && inject <= 0:
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

// StoredAfter predicts the stored energy after one step without mutating the
// unit. UpdateState applies the same arithmetic before physical clamping.
func (u *Unit) StoredAfter(dtHours, drawKW, injectKW float64) float64 {
	stored := u.Stored()
	in := math.Max(0, drawKW) * dtHours * u.efficiency
	out := math.Max(0, injectKW) * dtHours / u.efficiency
	loss := stored * u.selfDischarge * dtHours
	return stored + in - out - loss
}

// UpdateState applies grid-side charge (draw) and discharge (inject) powers.
// Stored energy lives in E_plus, so storage inflow feeds the headroom's
// inject channel and storage outflow its draw channel.
func (u *Unit) UpdateState(t int, dtHours float64, cmd flex.Command) error {
	draw := math.Max(0, cmd.DrawKW)
	inject := math.Max(0, cmd.InjectKW)
	storage := flex.Command{
		DrawKW:   inject / u.efficiency,
		InjectKW: draw * u.efficiency,
		LossKW:   u.Stored()*u.selfDischarge + cmd.LossKW,
		GainKW:   cmd.GainKW,
	}
	if err := u.Headroom.UpdateState(t, dtHours, storage); err != nil {
		return err
	}
	u.SetPower(draw, inject)
	return nil
}

// ResetSOC resets the unit to the given SOC with consistent headroom.
func (u *Unit) ResetSOC(soc float64) {
	stored := soc * u.Spec()
	u.ResetState(stored, u.Spec()-stored)
}
