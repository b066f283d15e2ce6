package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `log:
  level: debug
scenario:
  timesteps: 96
  dt_hours: 0.25
  start: "2024-01-01T00:00:00Z"
  demand:
    constant: 12.5
prices:
  buy: 0.3
  sell: 0.1
assets:
  - type: battery
    conf:
      name: bat
      capacity_kwh: 100
      power_kw: 50
  - type: market
metrics:
  sinks:
    - type: "nop"
steplog:
  backend: sqlite
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"log.level", cfg.Log.Level, "debug"},
		{"scenario.timesteps", cfg.Scenario.Timesteps, 96},
		{"scenario.dt_hours", cfg.Scenario.DtHours, 0.25},
		{"scenario.discount_rate", cfg.Scenario.DiscountRate, 0.05},
		{"scenario.demand", *cfg.Scenario.Demand.Constant, 12.5},
		{"scenario.start", cfg.Scenario.StartTime().Year(), 2024},
		{"prices.buy", cfg.Prices.Buy, 0.3},
		{"assets", len(cfg.Assets), 2},
		{"assets[0].type", cfg.Assets[0].Type, "battery"},
		{"assets[0].name", cfg.Assets[0].Conf["name"], "bat"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"optimization.tolerance", cfg.Optimization.Tolerance, 1e-7},
		{"steplog.path", cfg.StepLog.Path, "steps.db"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "scenario": {"timesteps": 4, "demand": {"values": [1, 2, 3, 4]}},
  "assets": [{"type": "market"}]
}`)
	t.Setenv("K_LOG__LEVEL", "warn")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("expected env override, got %s", cfg.Log.Level)
	}
	if len(cfg.Scenario.Demand.Values) != 4 {
		t.Fatalf("expected 4 demand values, got %v", cfg.Scenario.Demand.Values)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"no assets":    "scenario:\n  timesteps: 4\n  demand:\n    constant: 1\n",
		"two sources":  "scenario:\n  timesteps: 4\n  demand:\n    constant: 1\n    file: d.csv\nassets:\n  - type: market\n",
		"no horizon":   "scenario:\n  demand:\n    constant: 1\nassets:\n  - type: market\n",
		"bad backend":  "scenario:\n  timesteps: 4\n  demand:\n    constant: 1\nassets:\n  - type: market\nsteplog:\n  backend: csv\n",
		"bad level":    "log:\n  level: loud\nscenario:\n  timesteps: 4\n  demand:\n    constant: 1\nassets:\n  - type: market\n",
		"mixed prices": "scenario:\n  timesteps: 4\n  demand:\n    constant: 1\nprices:\n  file: p.csv\n  buy: 1\nassets:\n  - type: market\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, "c.yaml", data)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if _, err := Load(writeConfig(t, "c.toml", "")); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestSyntheticConfig_Defaults(t *testing.T) {
	c := SyntheticConfig{BaseKW: 10}
	c.SetDefaults()
	if c.PeakHour != 19 || c.Seed != 1 {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if err := (SyntheticConfig{PeakHour: 24}).Validate(); err == nil {
		t.Fatalf("expected peak hour error")
	}
}
