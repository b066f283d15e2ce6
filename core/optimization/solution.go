package optimization

// AssetSolution is the part of a solved program belonging to one model.
type AssetSolution struct {
	Name   string
	Values []float64
	// Power holds the model's net power contribution per timestep.
	Power []float64
	// Cost is the model's share of the objective.
	Cost  float64
	index map[string]int
}

// Value returns the solved value of the named variable.
func (a AssetSolution) Value(name string) (float64, bool) {
	i, ok := a.index[name]
	if !ok {
		return 0, false
	}
	return a.Values[i], true
}

// Solution is the solved program redistributed per model.
type Solution struct {
	Objective float64
	Assets    map[string]AssetSolution
	order     []string
}

// Names returns the model names in the order they were given.
func (s *Solution) Names() []string { return append([]string(nil), s.order...) }

// Asset returns the solution of the named model.
func (s *Solution) Asset(name string) (AssetSolution, bool) {
	a, ok := s.Assets[name]
	return a, ok
}

func (o *Optimizer) distribute(x []float64) *Solution {
	sol := &Solution{Assets: make(map[string]AssetSolution, len(o.models))}
	for mi, m := range o.models {
		off := o.offsets[mi]
		as := AssetSolution{
			Name:   m.name,
			Values: append([]float64(nil), x[off:off+m.nVars]...),
			Power:  make([]float64, o.nTimesteps),
			index:  make(map[string]int, m.nVars),
		}
		for i, n := range m.varNames {
			as.index[n] = i
			as.Cost += m.cost[i] * as.Values[i]
		}
		for t := 0; t < o.nTimesteps; t++ {
			for _, term := range m.powerIndices[t] {
				as.Power[t] += term.Coef * as.Values[term.Index]
			}
		}
		sol.Objective += as.Cost
		sol.Assets[m.name] = as
		sol.order = append(sol.order, m.name)
	}
	return sol
}
