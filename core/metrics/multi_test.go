package metrics

import (
	"errors"
	"testing"
)

// countingSink records every optional event kind.
type countingSink struct {
	NopSink
	steps, starts, summaries int
	err                      error
}

func (c *countingSink) RecordStepResults([]StepResult) error {
	c.steps++
	return c.err
}

func (c *countingSink) RecordRunStart(RunStartEvent) error {
	c.starts++
	return c.err
}

func (c *countingSink) RecordRunSummary(RunSummary) error {
	c.summaries++
	return c.err
}

// stepOnly implements only the base interface.
type stepOnly struct{ steps int }

func (s *stepOnly) RecordStepResults([]StepResult) error {
	s.steps++
	return nil
}

func TestMultiSink_ForwardsToCapableSinks(t *testing.T) {
	a, b, base := &countingSink{}, &countingSink{}, &stepOnly{}
	m := NewMultiSink(a, base, b)
	if err := m.RecordStepResults([]StepResult{{Asset: "bat"}}); err != nil {
		t.Fatalf("steps: %v", err)
	}
	if err := m.RecordRunStart(RunStartEvent{RunID: "r"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.RecordRunSummary(RunSummary{RunID: "r"}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if err := m.RecordCurtailment(CurtailmentEvent{Asset: "bat"}); err != nil {
		t.Fatalf("curtailment: %v", err)
	}
	for name, c := range map[string]*countingSink{"a": a, "b": b} {
		if c.steps != 1 || c.starts != 1 || c.summaries != 1 {
			t.Fatalf("sink %s: unexpected counts %+v", name, c)
		}
	}
	if base.steps != 1 {
		t.Fatalf("expected base sink to receive step results only, got %d", base.steps)
	}
}

func TestMultiSink_StopsAtFirstError(t *testing.T) {
	boom := errors.New("influx down")
	failing, after := &countingSink{err: boom}, &countingSink{}
	m := NewMultiSink(failing, after)
	if err := m.RecordRunSummary(RunSummary{}); !errors.Is(err, boom) {
		t.Fatalf("expected %v got %v", boom, err)
	}
	if after.summaries != 0 {
		t.Fatalf("sinks after a failure must not be called")
	}
}
