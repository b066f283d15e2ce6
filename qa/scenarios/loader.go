// Package scenarios runs small YAML-described simulations end to end and
// checks their totals against recorded expectations.
package scenarios

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BatteryDef is a battery starting at InitialSOC with zero investment cost.
type BatteryDef struct {
	Name        string  `yaml:"name"`
	CapacityKWh float64 `yaml:"capacity_kwh"`
	PowerKW     float64 `yaml:"power_kw"`
	Efficiency  float64 `yaml:"efficiency"`
	InitialSOC  float64 `yaml:"initial_soc"`
}

// MarketDef is a settlement asset with constant prices.
type MarketDef struct {
	Buy  float64 `yaml:"buy"`
	Sell float64 `yaml:"sell"`
}

// Expected holds the totals a run must reproduce. LPObjective is only
// checked when set.
type Expected struct {
	TotalCostEUR   float64  `yaml:"total_cost_eur"`
	UnservedKWh    float64  `yaml:"unserved_kwh"`
	CurtailedSteps int      `yaml:"curtailed_steps"`
	LPObjective    *float64 `yaml:"lp_objective,omitempty"`
	Tolerance      float64  `yaml:"tolerance,omitempty"`
}

// Scenario is one regression case.
type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	DtHours     float64      `yaml:"dt_hours"`
	Demand      []float64    `yaml:"demand"`
	Batteries   []BatteryDef `yaml:"batteries"`
	Market      *MarketDef   `yaml:"market,omitempty"`
	Expected    Expected     `yaml:"expected"`
}

// DefaultTolerance applies when a scenario sets none.
const DefaultTolerance = 1e-6

// Load reads and validates a scenario file. Unknown keys are rejected so a
// typo in an expectation cannot silently disable it.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Expected.Tolerance == 0 {
		sc.Expected.Tolerance = DefaultTolerance
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks the fields a run depends on.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return errors.New("scenario name is required")
	}
	if !(sc.DtHours > 0) {
		return fmt.Errorf("scenario %s: dt_hours must be > 0", sc.Name)
	}
	if len(sc.Demand) == 0 {
		return fmt.Errorf("scenario %s: demand is empty", sc.Name)
	}
	seen := make(map[string]bool, len(sc.Batteries))
	for _, b := range sc.Batteries {
		if seen[b.Name] {
			return fmt.Errorf("scenario %s: duplicate battery %q", sc.Name, b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}
