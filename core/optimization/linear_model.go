package optimization

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
)

// ErrDimension is returned when a linear model is dimensionally inconsistent.
var ErrDimension = errors.New("linear model dimension mismatch")

// Bound is the box constraint of one variable. Lower is always finite; the
// upper side is optional.
type Bound struct {
	Lower    float64
	Upper    float64
	HasUpper bool
}

// Between returns the bound lo <= x <= hi.
func Between(lo, hi float64) Bound { return Bound{Lower: lo, Upper: hi, HasUpper: true} }

// AtLeast returns the bound x >= lo with no upper limit.
func AtLeast(lo float64) Bound { return Bound{Lower: lo} }

func (b Bound) String() string {
	if !b.HasUpper {
		return fmt.Sprintf("[%g, +inf)", b.Lower)
	}
	return fmt.Sprintf("[%g, %g]", b.Lower, b.Upper)
}

// PowerTerm is one contribution coef * x[Index] to the net power of a step.
type PowerTerm struct {
	Index int
	Coef  float64
}

// Spec is the input used to build a LinearModel.
type Spec struct {
	Name         string
	NTimesteps   int
	NVars        int
	VarNames     []string
	VarBounds    []Bound
	Cost         []float64
	AEq          *mat.Dense
	BEq          []float64
	AUb          *mat.Dense
	BUb          []float64
	PowerIndices map[int][]PowerTerm
}

// LinearModel is an immutable snapshot of one asset's decision variables,
// bounds, objective and constraints over a horizon.
type LinearModel struct {
	name         string
	nTimesteps   int
	nVars        int
	varNames     []string
	varBounds    []Bound
	cost         []float64
	aEq          *mat.Dense
	bEq          []float64
	aUb          *mat.Dense
	bUb          []float64
	powerIndices map[int][]PowerTerm
}

// NewLinearModel validates s eagerly and returns a copy-owning model.
//
//nolint:gocyclo
func NewLinearModel(s Spec) (*LinearModel, error) {
	if s.NTimesteps < 0 {
		return nil, fmt.Errorf("%w: n_timesteps %d < 0", ErrDimension, s.NTimesteps)
	}
	if len(s.VarNames) != s.NVars {
		return nil, fmt.Errorf("%w: var_names length %d != n_vars %d", ErrDimension, len(s.VarNames), s.NVars)
	}
	if len(s.VarBounds) != s.NVars {
		return nil, fmt.Errorf("%w: var_bounds length %d != n_vars %d", ErrDimension, len(s.VarBounds), s.NVars)
	}
	if len(s.Cost) != s.NVars {
		return nil, fmt.Errorf("%w: cost_coefficients length %d != n_vars %d", ErrDimension, len(s.Cost), s.NVars)
	}
	if dup := lo.FindDuplicates(s.VarNames); len(dup) > 0 {
		return nil, fmt.Errorf("%w: duplicate variable names %v", ErrDimension, dup)
	}
	for i, b := range s.VarBounds {
		if math.IsNaN(b.Lower) || math.IsInf(b.Lower, 0) {
			return nil, fmt.Errorf("%w: variable %s lower bound must be finite", ErrDimension, s.VarNames[i])
		}
		if b.HasUpper && b.Upper < b.Lower {
			return nil, fmt.Errorf("%w: variable %s bound %s is empty", ErrDimension, s.VarNames[i], b)
		}
	}
	if err := checkSystem("eq", s.AEq, s.BEq, s.NVars); err != nil {
		return nil, err
	}
	if err := checkSystem("ub", s.AUb, s.BUb, s.NVars); err != nil {
		return nil, err
	}
	power := make(map[int][]PowerTerm, len(s.PowerIndices))
	for t, terms := range s.PowerIndices {
		if t < 0 || t >= s.NTimesteps {
			return nil, fmt.Errorf("%w: power index timestep %d outside [0, %d)", ErrDimension, t, s.NTimesteps)
		}
		for _, term := range terms {
			if term.Index < 0 || term.Index >= s.NVars {
				return nil, fmt.Errorf("%w: power index variable %d outside [0, %d)", ErrDimension, term.Index, s.NVars)
			}
		}
		power[t] = append([]PowerTerm(nil), terms...)
	}

	m := &LinearModel{
		name:         s.Name,
		nTimesteps:   s.NTimesteps,
		nVars:        s.NVars,
		varNames:     append([]string(nil), s.VarNames...),
		varBounds:    append([]Bound(nil), s.VarBounds...),
		cost:         append([]float64(nil), s.Cost...),
		powerIndices: power,
	}
	if s.AEq != nil {
		m.aEq = mat.DenseCopyOf(s.AEq)
		m.bEq = append([]float64(nil), s.BEq...)
	}
	if s.AUb != nil {
		m.aUb = mat.DenseCopyOf(s.AUb)
		m.bUb = append([]float64(nil), s.BUb...)
	}
	return m, nil
}

func checkSystem(label string, a *mat.Dense, b []float64, nVars int) error {
	if a == nil {
		if len(b) > 0 {
			return fmt.Errorf("%w: b_%s given without A_%s", ErrDimension, label, label)
		}
		return nil
	}
	rows, cols := a.Dims()
	if cols != nVars {
		return fmt.Errorf("%w: A_%s columns %d != n_vars %d", ErrDimension, label, cols, nVars)
	}
	if len(b) != rows {
		return fmt.Errorf("%w: b_%s length %d != A_%s rows %d", ErrDimension, label, len(b), label, rows)
	}
	return nil
}

func (m *LinearModel) Name() string    { return m.name }
func (m *LinearModel) NTimesteps() int { return m.nTimesteps }
func (m *LinearModel) NVars() int      { return m.nVars }

// VarNames returns a copy of the variable names.
func (m *LinearModel) VarNames() []string { return append([]string(nil), m.varNames...) }

// VarBounds returns a copy of the variable bounds.
func (m *LinearModel) VarBounds() []Bound { return append([]Bound(nil), m.varBounds...) }

// Cost returns a copy of the objective coefficients.
func (m *LinearModel) Cost() []float64 { return append([]float64(nil), m.cost...) }

// Eq returns a copy of the equality system, or nil when the model has none.
func (m *LinearModel) Eq() (*mat.Dense, []float64) {
	if m.aEq == nil {
		return nil, nil
	}
	return mat.DenseCopyOf(m.aEq), append([]float64(nil), m.bEq...)
}

// Ub returns a copy of the inequality system, or nil when the model has none.
func (m *LinearModel) Ub() (*mat.Dense, []float64) {
	if m.aUb == nil {
		return nil, nil
	}
	return mat.DenseCopyOf(m.aUb), append([]float64(nil), m.bUb...)
}

// NumEq returns the number of equality rows.
func (m *LinearModel) NumEq() int { return len(m.bEq) }

// NumUb returns the number of inequality rows.
func (m *LinearModel) NumUb() int { return len(m.bUb) }

// PowerTerms returns the contributions to net power at timestep t.
func (m *LinearModel) PowerTerms(t int) []PowerTerm {
	return append([]PowerTerm(nil), m.powerIndices[t]...)
}

// CoupledTimesteps returns how many timesteps carry power contributions.
func (m *LinearModel) CoupledTimesteps() int { return len(m.powerIndices) }

// Index returns the position of the named variable.
func (m *LinearModel) Index(name string) (int, bool) {
	_, i, ok := lo.FindIndexOf(m.varNames, func(n string) bool { return n == name })
	return i, ok
}

// Summary returns a human readable description of the model.
func (m *LinearModel) Summary() string {
	lines := []string{
		fmt.Sprintf("LinearModel: %s", m.name),
		fmt.Sprintf("  Timesteps: %d", m.nTimesteps),
		fmt.Sprintf("  Variables: %d", m.nVars),
		fmt.Sprintf("  Equality constraints: %d", m.NumEq()),
		fmt.Sprintf("  Inequality constraints: %d", m.NumUb()),
		fmt.Sprintf("  Power coupling: %d timesteps", m.CoupledTimesteps()),
	}
	return strings.Join(lines, "\n")
}
