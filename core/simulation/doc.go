// Package simulation steps a set of flexibility assets through a horizon.
//
// Storage assets are dispatched first, in the order they were given, to cover
// the net demand of each step. Whatever they cannot cover is settled on the
// market asset when one is present and counted as unserved energy otherwise.
package simulation
