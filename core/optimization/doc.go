// Package optimization holds the linear representation of flexibility assets
// and the optimizer that couples several of them through a per-timestep
// power balance and solves the resulting program with gonum's simplex.
//
// Objective convention: minimise cᵀx. Equality rows read A_eq x = b_eq and
// inequality rows A_ub x <= b_ub. PowerIndices maps each timestep to the
// variables contributing to the net power supplied at that step.
package optimization
