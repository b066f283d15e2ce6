// Package assets builds flexibility assets from module configurations.
//
// Each module type decodes its raw settings into a typed config that knows
// how to build the asset once the scenario environment is known.
package assets

import (
	"fmt"

	"github.com/kilianp07/flexmodel/core/factory"
	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/timeseries"
	"github.com/kilianp07/flexmodel/internal/validate"
)

// Env carries the scenario-wide series an asset may depend on.
type Env struct {
	Buy  timeseries.Value
	Sell timeseries.Value
}

// Builder is a decoded asset configuration.
type Builder interface {
	Build(env Env) (flex.Asset, error)
}

var registry = factory.NewRegistry[Builder]()

// Register adds an asset type.
func Register(name string, f factory.Factory[Builder]) error {
	return registry.Register(name, f)
}

// Types lists the registered asset types in lexical order.
func Types() []string { return registry.Names() }

// Decode returns the builder for one module config.
func Decode(cfg factory.ModuleConfig) (Builder, error) {
	b, err := registry.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", cfg.Type, err)
	}
	return b, nil
}

// Build decodes and builds every configured asset in order.
func Build(cfgs []factory.ModuleConfig, env Env) ([]flex.Asset, error) {
	out := make([]flex.Asset, 0, len(cfgs))
	for i, c := range cfgs {
		b, err := Decode(c)
		if err != nil {
			return nil, err
		}
		a, err := b.Build(env)
		if err != nil {
			return nil, fmt.Errorf("asset %d (%s): %w", i, c.Type, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// decodeInto decodes and validates a typed config.
func decodeInto[T any](conf map[string]any, setDefaults func(*T)) (*T, error) {
	var c T
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	if setDefaults != nil {
		setDefaults(&c)
	}
	if err := validate.Struct(c); err != nil {
		return nil, err
	}
	return &c, nil
}
