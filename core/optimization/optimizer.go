package optimization

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/flexmodel/core/logger"
	"github.com/kilianp07/flexmodel/core/timeseries"
)

var (
	// ErrInfeasible indicates the coupled program has no feasible point.
	ErrInfeasible = errors.New("lp infeasible")
	// ErrUnbounded indicates the objective can decrease without limit.
	ErrUnbounded = errors.New("lp unbounded")
	// ErrTooManyConstraints indicates more independent rows than columns.
	ErrTooManyConstraints = errors.New("lp has more constraints than variables")
	// ErrNoModels is returned when the optimizer has nothing to solve.
	ErrNoModels = errors.New("no linear models")
)

// DefaultTolerance is passed to the simplex solver.
const DefaultTolerance = 1e-7

// solveLP runs the simplex algorithm on a standard form program
// min cᵀy s.t. Ay = b, y >= 0.
func solveLP(c []float64, a mat.Matrix, b []float64, tol float64) (float64, []float64, error) {
	return lp.Simplex(c, a, b, tol, nil)
}

// lpSolve points to the function used to solve the LP. It can be overridden
// in tests to simulate solver failures.
var lpSolve = solveLP

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithTolerance sets the simplex tolerance.
func WithTolerance(tol float64) Option {
	return func(o *Optimizer) {
		if tol > 0 {
			o.tol = tol
		}
	}
}

// WithLogger sets the logger used for solve diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.log = l
		}
	}
}

// Optimizer couples several linear models through one power balance row per
// timestep: the sum of every model's power terms equals the net demand.
type Optimizer struct {
	models     []*LinearModel
	offsets    []int
	nVars      int
	nTimesteps int
	tol        float64
	log        logger.Logger
}

// NewOptimizer checks that the models share a horizon and have distinct
// names.
func NewOptimizer(models []*LinearModel, opts ...Option) (*Optimizer, error) {
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	names := lo.Map(models, func(m *LinearModel, _ int) string { return m.Name() })
	if dup := lo.FindDuplicates(names); len(dup) > 0 {
		return nil, fmt.Errorf("%w: duplicate model names %v", ErrDimension, dup)
	}
	o := &Optimizer{
		models:     models,
		offsets:    make([]int, len(models)),
		nTimesteps: models[0].NTimesteps(),
		tol:        DefaultTolerance,
		log:        logger.NopLogger{},
	}
	for i, m := range models {
		if m.NTimesteps() != o.nTimesteps {
			return nil, fmt.Errorf("%w: model %s has %d timesteps, expected %d", ErrDimension, m.Name(), m.NTimesteps(), o.nTimesteps)
		}
		o.offsets[i] = o.nVars
		o.nVars += m.NVars()
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// NTimesteps returns the shared horizon length.
func (o *Optimizer) NTimesteps() int { return o.nTimesteps }

// NVars returns the number of variables across all models.
func (o *Optimizer) NVars() int { return o.nVars }

// row is a sparse constraint row over the global variable vector.
type row struct {
	coefs map[int]float64
	rhs   float64
	ineq  bool
	label string
}

// Solve assembles the coupled program and solves it. netDemand(t) is the
// power that the assets must jointly supply at step t.
func (o *Optimizer) Solve(ctx context.Context, netDemand timeseries.Value) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lower, upper, hasUpper, cost := o.globalVectors()
	rows, err := o.constraintRows(netDemand)
	if err != nil {
		return nil, err
	}

	// Substitute x = lower + y so that every variable becomes y >= 0.
	for i := range rows {
		for j, v := range rows[i].coefs {
			rows[i].rhs -= v * lower[j]
		}
	}

	used := make([]bool, o.nVars)
	for _, r := range rows {
		for j, v := range r.coefs {
			if v != 0 {
				used[j] = true
			}
		}
	}
	// Columns appearing nowhere are fixed at their lower bound when that is
	// optimal, or pushed to their upper bound when it exists.
	fixed := make(map[int]float64)
	var cols []int
	for j := 0; j < o.nVars; j++ {
		switch {
		case used[j] || (hasUpper[j] && cost[j] < 0):
			cols = append(cols, j)
		case cost[j] < 0:
			return nil, fmt.Errorf("%w: variable %s has negative cost and no constraint", ErrUnbounded, o.varName(j))
		default:
			fixed[j] = 0
		}
	}

	var bounded []int
	for _, j := range cols {
		if hasUpper[j] {
			bounded = append(bounded, j)
		}
	}
	kept := rows[:0]
	for _, r := range rows {
		if isZeroRow(r) {
			if r.ineq && r.rhs >= -o.tol {
				continue
			}
			if !r.ineq && math.Abs(r.rhs) <= o.tol {
				continue
			}
			return nil, fmt.Errorf("%w: constraint %s has no variables but rhs %g", ErrInfeasible, r.label, r.rhs)
		}
		kept = append(kept, r)
	}
	rows = kept
	nUb := lo.CountBy(rows, func(r row) bool { return r.ineq })

	nRows := len(rows) + len(bounded)
	nCols := len(cols) + nUb + len(bounded)
	if nRows > nCols {
		return nil, fmt.Errorf("%w: %d rows, %d columns", ErrTooManyConstraints, nRows, nCols)
	}

	colPos := make(map[int]int, len(cols))
	for k, j := range cols {
		colPos[j] = k
	}
	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	c := make([]float64, nCols)
	for k, j := range cols {
		c[k] = cost[j]
	}
	slack := len(cols)
	for i, r := range rows {
		for j, v := range r.coefs {
			if k, ok := colPos[j]; ok {
				a.Set(i, k, v)
			}
		}
		b[i] = r.rhs
		if r.ineq {
			a.Set(i, slack, 1)
			slack++
		}
	}
	for n, j := range bounded {
		i := len(rows) + n
		a.Set(i, colPos[j], 1)
		a.Set(i, slack, 1)
		slack++
		b[i] = upper[j] - lower[j]
	}
	for i := range b {
		if b[i] < 0 {
			b[i] = -b[i]
			for k := 0; k < nCols; k++ {
				a.Set(i, k, -a.At(i, k))
			}
		}
	}

	o.log.Debugw("lp assembled", map[string]any{
		"models": len(o.models), "rows": nRows, "columns": nCols, "timesteps": o.nTimesteps,
	})
	_, y, err := lpSolve(c, a, b, o.tol)
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return nil, fmt.Errorf("%w: %v", ErrInfeasible, err)
		case errors.Is(err, lp.ErrUnbounded):
			return nil, fmt.Errorf("%w: %v", ErrUnbounded, err)
		default:
			return nil, fmt.Errorf("simplex: %w", err)
		}
	}

	x := make([]float64, o.nVars)
	for j := 0; j < o.nVars; j++ {
		if v, ok := fixed[j]; ok {
			x[j] = lower[j] + v
			continue
		}
		x[j] = lower[j] + y[colPos[j]]
	}
	sol := o.distribute(x)
	o.log.Debugf("lp solved: objective %.4f over %d variables", sol.Objective, o.nVars)
	return sol, nil
}

func isZeroRow(r row) bool {
	for _, v := range r.coefs {
		if v != 0 {
			return false
		}
	}
	return true
}

func (o *Optimizer) globalVectors() (lower, upper []float64, hasUpper []bool, cost []float64) {
	lower = make([]float64, o.nVars)
	upper = make([]float64, o.nVars)
	hasUpper = make([]bool, o.nVars)
	cost = make([]float64, o.nVars)
	for mi, m := range o.models {
		off := o.offsets[mi]
		for i, b := range m.varBounds {
			lower[off+i] = b.Lower
			upper[off+i] = b.Upper
			hasUpper[off+i] = b.HasUpper
			cost[off+i] = m.cost[i]
		}
	}
	return lower, upper, hasUpper, cost
}

func (o *Optimizer) constraintRows(netDemand timeseries.Value) ([]row, error) {
	var rows []row
	for mi, m := range o.models {
		off := o.offsets[mi]
		rows = append(rows, denseRows(m.aEq, m.bEq, off, false, m.name+" eq")...)
		rows = append(rows, denseRows(m.aUb, m.bUb, off, true, m.name+" ub")...)
	}
	for t := 0; t < o.nTimesteps; t++ {
		d, err := netDemand.At(t)
		if err != nil {
			return nil, fmt.Errorf("net demand: %w", err)
		}
		r := row{coefs: make(map[int]float64), rhs: d, label: fmt.Sprintf("power balance t=%d", t)}
		for mi, m := range o.models {
			for _, term := range m.powerIndices[t] {
				r.coefs[o.offsets[mi]+term.Index] += term.Coef
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func denseRows(a *mat.Dense, b []float64, off int, ineq bool, label string) []row {
	if a == nil {
		return nil
	}
	n, cols := a.Dims()
	out := make([]row, n)
	for i := 0; i < n; i++ {
		r := row{coefs: make(map[int]float64), rhs: b[i], ineq: ineq, label: fmt.Sprintf("%s[%d]", label, i)}
		for j := 0; j < cols; j++ {
			if v := a.At(i, j); v != 0 {
				r.coefs[off+j] = v
			}
		}
		out[i] = r
	}
	return out
}

func (o *Optimizer) varName(j int) string {
	for mi := len(o.models) - 1; mi >= 0; mi-- {
		if j >= o.offsets[mi] {
			return o.models[mi].varNames[j-o.offsets[mi]]
		}
	}
	return fmt.Sprintf("x%d", j)
}
