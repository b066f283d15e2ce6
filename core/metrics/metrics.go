package metrics

import "time"

// StepResult is what one asset did during one simulated step.
type StepResult struct {
	RunID    string
	Step     int
	Time     time.Time
	Asset    string
	Kind     string
	DtHours  float64
	DrawKW   float64
	InjectKW float64
	CostEUR  float64
	// SOC is set for storage assets only.
	SOC *float64
	// Feasible is false when the executed command violated a limit.
	Feasible bool
}

// MetricsSink records per-step results for observability purposes.
type MetricsSink interface {
	RecordStepResults(results []StepResult) error
}

// RunSummary closes a simulation run.
type RunSummary struct {
	RunID          string
	Steps          int
	DtHours        float64
	TotalCostEUR   float64
	UnservedKWh    float64
	CurtailedSteps int
	AssetCostEUR   map[string]float64
	Duration       time.Duration
	Time           time.Time
}

// RunRecorder records run summaries.
type RunRecorder interface {
	RecordRunSummary(s RunSummary) error
}

// RunStartEvent opens a simulation run.
type RunStartEvent struct {
	RunID   string
	Steps   int
	DtHours float64
	Assets  []string
	Time    time.Time
}

// RunStartRecorder records started runs.
type RunStartRecorder interface {
	RecordRunStart(ev RunStartEvent) error
}

// SolveEvent describes one call to the LP optimizer.
type SolveEvent struct {
	Models    int
	Variables int
	Timesteps int
	Objective float64
	Duration  time.Duration
	Error     string
	Time      time.Time
}

// SolveRecorder records optimizer calls.
type SolveRecorder interface {
	RecordSolve(ev SolveEvent) error
}

// CurtailmentEvent is emitted when a storage command had to be reduced to
// become feasible.
type CurtailmentEvent struct {
	RunID       string
	Step        int
	Asset       string
	RequestedKW float64
	ExecutedKW  float64
	Time        time.Time
}

// CurtailmentRecorder records curtailed commands.
type CurtailmentRecorder interface {
	RecordCurtailment(ev CurtailmentEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordStepResults([]StepResult) error     { return nil }
func (NopSink) RecordRunStart(RunStartEvent) error       { return nil }
func (NopSink) RecordRunSummary(RunSummary) error        { return nil }
func (NopSink) RecordSolve(SolveEvent) error             { return nil }
func (NopSink) RecordCurtailment(CurtailmentEvent) error { return nil }
