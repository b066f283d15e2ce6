// Package events defines the events emitted on the event bus while a
// scenario is simulated or optimised.
//
// Available event types:
//   - RunStarted: a simulation run begins
//   - Curtailment: a storage command was reduced to become feasible
//   - Solved: the LP optimizer returned
package events
