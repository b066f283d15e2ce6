package config

import (
	"fmt"
	"time"
)

// ScenarioConfig defines the simulated horizon and the net demand to cover.
type ScenarioConfig struct {
	Name string `json:"name"`
	// Timesteps may be left at 0 when the demand series has a horizon.
	Timesteps    int     `json:"timesteps"`
	DtHours      float64 `json:"dt_hours"`
	Start        string  `json:"start"`
	DiscountRate float64 `json:"discount_rate"`
	// Baseline lists the assets kept in the reference run of a comparison.
	// Settlement assets are always kept.
	Baseline []string     `json:"baseline"`
	Demand   SeriesConfig `json:"demand"`
}

func (c *ScenarioConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "scenario"
	}
	if c.DtHours == 0 {
		c.DtHours = 0.25
	}
	if c.DiscountRate == 0 {
		c.DiscountRate = 0.05
	}
	c.Demand.SetDefaults()
}

func (c ScenarioConfig) Validate() error {
	if c.Timesteps < 0 {
		return fmt.Errorf("timesteps must be >= 0")
	}
	if !(c.DtHours > 0) {
		return fmt.Errorf("dt_hours must be > 0")
	}
	if c.DiscountRate < 0 {
		return fmt.Errorf("discount_rate must be >= 0")
	}
	if c.Start != "" {
		if _, err := time.Parse(time.RFC3339, c.Start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	if err := c.Demand.Validate(); err != nil {
		return fmt.Errorf("demand: %w", err)
	}
	if c.Timesteps == 0 && (c.Demand.Constant != nil || c.Demand.Synthetic != nil) {
		return fmt.Errorf("timesteps is required for a constant or synthetic demand")
	}
	return nil
}

// StartTime returns the parsed start or the zero time.
func (c ScenarioConfig) StartTime() time.Time {
	t, _ := time.Parse(time.RFC3339, c.Start)
	return t
}

// SeriesConfig selects exactly one source for a series.
type SeriesConfig struct {
	Constant  *float64         `json:"constant"`
	Values    []float64        `json:"values"`
	File      string           `json:"file"`
	Synthetic *SyntheticConfig `json:"synthetic"`
}

func (c *SeriesConfig) SetDefaults() {
	if c.Synthetic != nil {
		c.Synthetic.SetDefaults()
	}
}

func (c SeriesConfig) Validate() error {
	n := 0
	if c.Constant != nil {
		n++
	}
	if len(c.Values) > 0 {
		n++
	}
	if c.File != "" {
		n++
	}
	if c.Synthetic != nil {
		n++
		if err := c.Synthetic.Validate(); err != nil {
			return err
		}
	}
	if n != 1 {
		return fmt.Errorf("exactly one of constant, values, file or synthetic is required, got %d", n)
	}
	return nil
}

// SyntheticConfig describes a generated daily profile: a sine around BaseKW
// peaking at PeakHour plus seeded relative jitter.
type SyntheticConfig struct {
	BaseKW      float64 `json:"base_kw"`
	AmplitudeKW float64 `json:"amplitude_kw"`
	PeakHour    float64 `json:"peak_hour"`
	JitterPct   float64 `json:"jitter_pct"`
	Seed        int64   `json:"seed"`
}

// SetDefaults applies fallback values for optional fields.
func (c *SyntheticConfig) SetDefaults() {
	if c.PeakHour == 0 {
		c.PeakHour = 19
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

// Validate checks the configuration ranges.
func (c SyntheticConfig) Validate() error {
	if c.AmplitudeKW < 0 {
		return fmt.Errorf("amplitude_kw must be >= 0")
	}
	if c.PeakHour < 0 || c.PeakHour >= 24 {
		return fmt.Errorf("peak_hour must be in [0, 24)")
	}
	if c.JitterPct < 0 || c.JitterPct > 1 {
		return fmt.Errorf("jitter_pct must be in [0, 1]")
	}
	return nil
}
