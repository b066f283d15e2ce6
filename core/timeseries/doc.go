// Package timeseries resolves prices, profiles and availability factors that
// may be given as a constant, a sparse mapping from time index to value, or an
// arbitrary function of the time index. Every representation is queried the
// same way through Value.At.
package timeseries
