package timeseries

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingTimestep is returned by strict series when no value exists for
// the requested time index.
var ErrMissingTimestep = errors.New("timeseries: missing timestep")

// MissingPolicy decides what a sparse series returns for an absent index.
type MissingPolicy struct {
	strict   bool
	fallback float64
}

// Strict makes lookups of absent indices fail with ErrMissingTimestep.
func Strict() MissingPolicy { return MissingPolicy{strict: true} }

// Default makes lookups of absent indices return v.
func Default(v float64) MissingPolicy { return MissingPolicy{fallback: v} }

// IsStrict reports whether absent indices are an error.
func (p MissingPolicy) IsStrict() bool { return p.strict }

type kind int

const (
	kindConstant kind = iota
	kindSeries
	kindFunc
)

// Value is a time-dependent scalar f(t). The zero Value is the constant 0.
// Values are immutable and safe for concurrent reads.
type Value struct {
	kind     kind
	constant float64
	series   map[int]float64
	policy   MissingPolicy
	fn       func(int) float64
}

// Constant returns a Value that yields v for every time index.
func Constant(v float64) Value {
	return Value{kind: kindConstant, constant: v}
}

// FromSeries returns a Value backed by a copy of the given mapping. The policy
// is mandatory so that the behaviour for absent indices is always explicit.
func FromSeries(m map[int]float64, policy MissingPolicy) Value {
	cp := make(map[int]float64, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: kindSeries, series: cp, policy: policy}
}

// FromSlice returns a series Value where index i maps to vals[i].
func FromSlice(vals []float64, policy MissingPolicy) Value {
	m := make(map[int]float64, len(vals))
	for i, v := range vals {
		m[i] = v
	}
	return Value{kind: kindSeries, series: m, policy: policy}
}

// FromFunc wraps an arbitrary function of the time index. A nil function is
// treated as the constant 0.
func FromFunc(fn func(t int) float64) Value {
	if fn == nil {
		return Constant(0)
	}
	return Value{kind: kindFunc, fn: fn}
}

// At resolves the value at time index t.
func (v Value) At(t int) (float64, error) {
	switch v.kind {
	case kindSeries:
		if x, ok := v.series[t]; ok {
			return x, nil
		}
		if v.policy.strict {
			return 0, fmt.Errorf("%w: t=%d", ErrMissingTimestep, t)
		}
		return v.policy.fallback, nil
	case kindFunc:
		return v.fn(t), nil
	default:
		return v.constant, nil
	}
}

// IsConstant reports whether v is independent of the time index.
func (v Value) IsConstant() bool { return v.kind == kindConstant }

// Horizon returns the number of contiguous indices 0..n-1 present in a series
// Value. ok is false for constants and functions, which have no natural end.
func (v Value) Horizon() (n int, ok bool) {
	if v.kind != kindSeries {
		return 0, false
	}
	for {
		if _, found := v.series[n]; !found {
			return n, true
		}
		n++
	}
}

// Indices returns the explicitly stored indices of a series in ascending order.
func (v Value) Indices() []int {
	if v.kind != kindSeries {
		return nil
	}
	idx := make([]int, 0, len(v.series))
	for k := range v.series {
		idx = append(idx, k)
	}
	sort.Ints(idx)
	return idx
}

// Sample resolves n consecutive values starting at index 0.
func (v Value) Sample(n int) ([]float64, error) {
	out := make([]float64, n)
	for t := 0; t < n; t++ {
		x, err := v.At(t)
		if err != nil {
			return nil, err
		}
		out[t] = x
	}
	return out, nil
}
