// Package factory instantiates configured modules by type name.
//
// Asset and metrics sink sections of a scenario file are lists of
// ModuleConfig entries:
//
//	assets:
//	  - type: battery
//	    conf: {name: bat, capacity_kwh: 100, power_kw: 50}
//
// Each package owning a module family keeps a Registry and registers its
// built-in types from init. Factories call Decode to fill a typed config
// from the raw conf map.
package factory
