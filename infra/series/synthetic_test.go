package series

import (
	"math"
	"testing"
)

func TestSynthetic_PeakAndTrough(t *testing.T) {
	s := Synthetic{BaseKW: 10, AmplitudeKW: 5, PeakHour: 18}
	vals := s.Generate(24, 1)
	if math.Abs(vals[18]-15) > 1e-9 {
		t.Fatalf("peak = %v", vals[18])
	}
	if math.Abs(vals[6]-5) > 1e-9 {
		t.Fatalf("trough = %v", vals[6])
	}
}

func TestSynthetic_SeedIsDeterministic(t *testing.T) {
	s := Synthetic{BaseKW: 10, AmplitudeKW: 2, PeakHour: 12, JitterPct: 0.2, Seed: 7}
	a, b := s.Generate(48, 0.5), s.Generate(48, 0.5)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("step %d differs: %v vs %v", i, a[i], b[i])
		}
		clean := 10 + 2*math.Cos(2*math.Pi*(math.Mod(float64(i)*0.5, 24)-12)/24)
		if math.Abs(a[i]-clean) > 0.2*math.Abs(clean)+1e-9 {
			t.Fatalf("step %d outside jitter band: %v", i, a[i])
		}
	}
}
