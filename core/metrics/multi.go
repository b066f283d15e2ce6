package metrics

// MultiSink fans records out to several sinks. Optional recorder methods
// reach only the sinks that implement them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// forward calls record on every sink implementing R and stops at the first
// error.
func forward[R any](sinks []MetricsSink, record func(R) error) error {
	for _, s := range sinks {
		if r, ok := s.(R); ok {
			if err := record(r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordStepResults(res []StepResult) error {
	return forward(m.Sinks, func(s MetricsSink) error { return s.RecordStepResults(res) })
}

func (m *MultiSink) RecordRunStart(ev RunStartEvent) error {
	return forward(m.Sinks, func(r RunStartRecorder) error { return r.RecordRunStart(ev) })
}

func (m *MultiSink) RecordRunSummary(sum RunSummary) error {
	return forward(m.Sinks, func(r RunRecorder) error { return r.RecordRunSummary(sum) })
}

func (m *MultiSink) RecordSolve(ev SolveEvent) error {
	return forward(m.Sinks, func(r SolveRecorder) error { return r.RecordSolve(ev) })
}

func (m *MultiSink) RecordCurtailment(ev CurtailmentEvent) error {
	return forward(m.Sinks, func(r CurtailmentRecorder) error { return r.RecordCurtailment(ev) })
}
