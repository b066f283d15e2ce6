package series

import (
	"math"
	"math/rand"
)

// Synthetic describes a generated daily profile.
type Synthetic struct {
	BaseKW      float64
	AmplitudeKW float64
	// PeakHour is the hour of day at which the sine peaks.
	PeakHour float64
	// JitterPct scales a uniform noise in [-1, 1] relative to the clean value.
	JitterPct float64
	Seed      int64
}

// Generate returns steps values of dtHours each starting at midnight. The
// same seed always yields the same profile.
func (s Synthetic) Generate(steps int, dtHours float64) []float64 {
	rng := rand.New(rand.NewSource(s.Seed))
	out := make([]float64, steps)
	for t := range out {
		hour := math.Mod(float64(t)*dtHours, 24)
		v := s.BaseKW + s.AmplitudeKW*math.Cos(2*math.Pi*(hour-s.PeakHour)/24)
		if s.JitterPct > 0 {
			v += math.Abs(v) * s.JitterPct * (2*rng.Float64() - 1)
		}
		out[t] = v
	}
	return out
}
