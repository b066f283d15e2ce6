package flex

import "testing"

func TestLimit(t *testing.T) {
	var zero Limit
	if zero.IsBounded() || zero.Exceeded(1e12, 0) {
		t.Fatalf("zero limit must be unbounded")
	}
	if zero.String() != "unbounded" {
		t.Fatalf("unexpected string %q", zero.String())
	}

	l := Bounded(-3)
	if v, ok := l.Value(); !ok || v != 0 {
		t.Fatalf("negative bound must floor at 0, got %v/%v", v, ok)
	}

	l = Bounded(10)
	if l.Exceeded(10+PowerTolerance/2, PowerTolerance) {
		t.Fatalf("value within tolerance must not exceed")
	}
	if !l.Exceeded(10.1, PowerTolerance) {
		t.Fatalf("expected 10.1 to exceed 10")
	}
	if l.Clamp(12) != 10 || l.Clamp(-1) != 0 || l.Clamp(4) != 4 {
		t.Fatalf("unexpected clamp results")
	}
	if Unbounded().Clamp(1e9) != 1e9 {
		t.Fatalf("unbounded clamp must only floor")
	}
	if l.String() != "10.000" {
		t.Fatalf("unexpected string %q", l.String())
	}
}

func TestTracker(t *testing.T) {
	var tr Tracker
	tr.Record(5, 1.5, true)
	tr.Record(0, -3, false)
	m := tr.CounterMetrics()
	if m[MetricThroughputKWh] != 5 || m[MetricCostEUR] != -1.5 || m[MetricActivations] != 1 {
		t.Fatalf("unexpected metrics %v", m)
	}
	tr.ResetCounters()
	if tr.Activations() != 0 || tr.TotalCost() != 0 || tr.TotalThroughputKWh() != 0 {
		t.Fatalf("reset must zero counters")
	}
}
