package config

import "fmt"

// OptimizationConfig tunes the LP solver.
type OptimizationConfig struct {
	Tolerance float64 `json:"tolerance"`
}

func (c *OptimizationConfig) SetDefaults() {
	if c.Tolerance == 0 {
		c.Tolerance = 1e-7
	}
}

func (c OptimizationConfig) Validate() error {
	if !(c.Tolerance > 0) {
		return fmt.Errorf("tolerance must be > 0")
	}
	return nil
}
