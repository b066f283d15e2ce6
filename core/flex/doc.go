// Package flex defines the three layers used to model an energy-flexibility
// asset:
//
//   - Unit: physical behaviour (capacity, availability, power limits and the
//     E_plus/E_minus headroom state machine).
//   - CostModel: economic evaluation of one step plus investment annuities.
//   - Asset: operational composition exposing evaluate/execute, cumulative
//     metrics and a linear model for horizon-wide optimisation.
//
// Concrete assets live in sibling packages (battery, market). Headroom,
// CostBase and Tracker are meant to be embedded by those implementations.
package flex
