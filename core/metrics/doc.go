// Package metrics defines the sinks that observe simulation runs and solver
// calls. Sinks such as PromSink and InfluxSink record per-step asset results
// and run summaries and can be combined with NewMultiSink. The factory helpers
// return a MultiSink automatically when multiple sinks are configured.
package metrics
