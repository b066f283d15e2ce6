package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/flexmodel/core/factory"
	"github.com/kilianp07/flexmodel/core/metrics"
)

// Config is the scenario file.
type Config struct {
	Log          LogConfig              `json:"log"`
	Scenario     ScenarioConfig         `json:"scenario"`
	Prices       PricesConfig           `json:"prices"`
	Assets       []factory.ModuleConfig `json:"assets"`
	Optimization OptimizationConfig     `json:"optimization"`
	Metrics      metrics.Config         `json:"metrics"`
	StepLog      StepLogConfig          `json:"steplog"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Log.SetDefaults()
	c.Scenario.SetDefaults()
	c.Prices.SetDefaults()
	c.Optimization.SetDefaults()
	c.StepLog.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Scenario.Validate(); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	if err := c.Prices.Validate(); err != nil {
		return fmt.Errorf("prices: %w", err)
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("assets: at least one asset is required")
	}
	for i, a := range c.Assets {
		if a.Type == "" {
			return fmt.Errorf("assets[%d]: type is required", i)
		}
	}
	if err := c.Optimization.Validate(); err != nil {
		return fmt.Errorf("optimization: %w", err)
	}
	if err := c.StepLog.Validate(); err != nil {
		return fmt.Errorf("steplog: %w", err)
	}
	return nil
}
