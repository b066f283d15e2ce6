package flex

import (
	"fmt"
	"math"

	"github.com/kilianp07/flexmodel/core/timeseries"
)

// Command is one step of commanded power for a unit. Draw and inject are
// separate non-negative channels; loss and gain are internal power terms such
// as self-discharge or passive heat gains.
type Command struct {
	DrawKW   float64
	InjectKW float64
	LossKW   float64
	GainKW   float64
}

// State is a snapshot of a unit's mutable state.
type State struct {
	EPlus             float64
	EMinus            float64
	PDraw             float64
	PInject           float64
	TimeInActiveState int
}

// Unit is the physical model of a flexibility-providing unit. Implementations
// usually embed Headroom and only add PowerLimits.
type Unit interface {
	Name() string
	Spec() float64
	Availability(t int) (float64, error)
	Capacity(t int) (float64, error)
	// PowerLimits must already reflect availability and current headroom.
	PowerLimits(t int) (PowerLimits, error)
	RampLimits(t int) RampLimits
	DurationLimits() DurationLimits
	AccessStates() []AccessState
	FeasibleAccessStates(t int) ([]AccessState, error)
	UpdateState(t int, dtHours float64, cmd Command) error
	ResetState(ePlusInit, eMinusInit float64)
	State() State
}

// HeadroomOption configures a Headroom.
type HeadroomOption func(*Headroom)

// WithAvailability sets the availability factor alpha(t). Values are clamped
// to [0, 1] when queried.
func WithAvailability(v timeseries.Value) HeadroomOption {
	return func(h *Headroom) { h.availability = v }
}

// WithAccessStates configures discrete operating points. Without states the
// unit is continuously controllable.
func WithAccessStates(states ...AccessState) HeadroomOption {
	return func(h *Headroom) { h.accessStates = append([]AccessState(nil), states...) }
}

// Headroom implements the generic energy headroom state machine shared by
// every unit. E_plus and E_minus are each kept within [0, Capacity(t)].
type Headroom struct {
	name         string
	cSpec        float64
	availability timeseries.Value
	accessStates []AccessState

	ePlus  float64
	eMinus float64

	pDraw   float64
	pInject float64

	timeInActiveState int
}

// NewHeadroom returns a fully available unit base with nameplate capacity cSpec.
func NewHeadroom(name string, cSpec float64, opts ...HeadroomOption) (Headroom, error) {
	if name == "" {
		return Headroom{}, fmt.Errorf("%w: unit name is required", ErrInvalidParameter)
	}
	if !(cSpec > 0) || math.IsInf(cSpec, 0) {
		return Headroom{}, fmt.Errorf("%w: capacity must be positive and finite, got %v", ErrInvalidParameter, cSpec)
	}
	h := Headroom{name: name, cSpec: cSpec, availability: timeseries.Constant(1)}
	for _, o := range opts {
		o(&h)
	}
	return h, nil
}

func (h *Headroom) Name() string  { return h.name }
func (h *Headroom) Spec() float64 { return h.cSpec }

// Availability returns alpha(t) clamped to [0, 1].
func (h *Headroom) Availability(t int) (float64, error) {
	a, err := h.availability.At(t)
	if err != nil {
		return 0, fmt.Errorf("unit %s availability: %w", h.name, err)
	}
	return math.Max(0, math.Min(1, a)), nil
}

// Capacity returns C(t) = C_spec * alpha(t).
func (h *Headroom) Capacity(t int) (float64, error) {
	a, err := h.Availability(t)
	if err != nil {
		return 0, err
	}
	return h.cSpec * a, nil
}

// RampLimits defaults to unconstrained ramping.
func (h *Headroom) RampLimits(int) RampLimits { return RampLimits{} }

// DurationLimits defaults to no duration constraints.
func (h *Headroom) DurationLimits() DurationLimits { return DurationLimits{} }

// AccessStates returns a copy of the configured discrete states.
func (h *Headroom) AccessStates() []AccessState {
	return append([]AccessState(nil), h.accessStates...)
}

// HasDiscreteStates reports whether the unit uses discrete access states.
func (h *Headroom) HasDiscreteStates() bool { return len(h.accessStates) > 0 }

// FeasibleAccessStates returns every configured state.
func (h *Headroom) FeasibleAccessStates(int) ([]AccessState, error) {
	return h.AccessStates(), nil
}

// UpdateState applies one step of commanded power to the headroom
// accumulators. It performs no feasibility checks: results are clamped to
// [0, Capacity(t)].
func (h *Headroom) UpdateState(t int, dtHours float64, cmd Command) error {
	if dtHours < 0 || math.IsNaN(dtHours) || math.IsInf(dtHours, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidStep, dtHours)
	}
	capacity, err := h.Capacity(t)
	if err != nil {
		return err
	}
	draw := math.Max(0, cmd.DrawKW)
	inject := math.Max(0, cmd.InjectKW)
	h.pDraw = draw
	h.pInject = inject

	eDraw := draw * dtHours
	eInject := inject * dtHours
	eGain := cmd.GainKW * dtHours
	eLoss := cmd.LossKW * dtHours

	h.ePlus = clamp(h.ePlus+(eInject-eDraw+eGain-eLoss), 0, capacity)
	h.eMinus = clamp(h.eMinus+(eDraw-eInject-eGain+eLoss), 0, capacity)

	if draw > 0 || inject > 0 {
		h.timeInActiveState++
	} else {
		h.timeInActiveState = 0
	}
	return nil
}

// ResetState reinitialises headroom and clears transient power and counters.
func (h *Headroom) ResetState(ePlusInit, eMinusInit float64) {
	h.ePlus = math.Max(0, ePlusInit)
	h.eMinus = math.Max(0, eMinusInit)
	h.pDraw = 0
	h.pInject = 0
	h.timeInActiveState = 0
}

// State returns a snapshot of the mutable state.
func (h *Headroom) State() State {
	return State{
		EPlus:             h.ePlus,
		EMinus:            h.eMinus,
		PDraw:             h.pDraw,
		PInject:           h.pInject,
		TimeInActiveState: h.timeInActiveState,
	}
}

func (h *Headroom) EPlus() float64  { return h.ePlus }
func (h *Headroom) EMinus() float64 { return h.eMinus }

// SetPower overrides the recorded transient powers. Units whose storage-side
// terms differ from the grid-side command use it after UpdateState.
func (h *Headroom) SetPower(drawKW, injectKW float64) {
	h.pDraw = math.Max(0, drawKW)
	h.pInject = math.Max(0, injectKW)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}
