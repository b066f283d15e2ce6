package assets

import (
	"fmt"

	"github.com/kilianp07/flexmodel/core/battery"
	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/market"
	"github.com/kilianp07/flexmodel/core/timeseries"
)

// Module types accepted in the assets section.
const (
	TypeBattery = "battery"
	TypeMarket  = "market"
)

func init() {
	_ = Register(TypeBattery, func(conf map[string]any) (Builder, error) {
		return decodeInto(conf, (*BatteryConfig).setDefaults)
	})
	_ = Register(TypeMarket, func(conf map[string]any) (Builder, error) {
		return decodeInto(conf, (*MarketConfig).setDefaults)
	})
}

// BatteryConfig describes a battery asset.
type BatteryConfig struct {
	Name          string   `json:"name" validate:"required"`
	CapacityKWh   float64  `json:"capacity_kwh" validate:"gt=0"`
	PowerKW       float64  `json:"power_kw" validate:"gt=0"`
	Efficiency    float64  `json:"efficiency" validate:"gt=0,lte=1"`
	SOCMin        float64  `json:"soc_min" validate:"gte=0,ltfield=SOCMax"`
	SOCMax        float64  `json:"soc_max" validate:"lte=1"`
	InitialSOC    *float64 `json:"initial_soc" validate:"omitempty,gte=0,lte=1"`
	SelfDischarge float64  `json:"self_discharge" validate:"gte=0,lt=1"`
	NominalStep   float64  `json:"nominal_step_hours" validate:"gt=0"`
	Availability  *float64 `json:"availability" validate:"omitempty,gte=0,lte=1"`

	CInv        float64 `json:"c_inv" validate:"gte=0"`
	Lifetime    float64 `json:"lifetime_years" validate:"gt=0"`
	CFix        float64 `json:"c_fix" validate:"gte=0"`
	Degradation float64 `json:"degradation_eur_kwh" validate:"gte=0"`
	// TradeEnergy prices charging and discharging at the scenario prices.
	TradeEnergy    bool `json:"trade_energy"`
	StorageBalance bool `json:"storage_balance"`
}

func (c *BatteryConfig) setDefaults() {
	if c.Efficiency == 0 {
		c.Efficiency = battery.DefaultEfficiency
	}
	if c.SOCMax == 0 {
		c.SOCMax = 1
	}
	if c.NominalStep == 0 {
		c.NominalStep = battery.DefaultNominalStep
	}
	if c.Lifetime == 0 {
		c.Lifetime = 10
	}
}

// Build returns the battery asset.
func (c *BatteryConfig) Build(env Env) (flex.Asset, error) {
	if c.InitialSOC != nil && (*c.InitialSOC < c.SOCMin || *c.InitialSOC > c.SOCMax) {
		return nil, fmt.Errorf("%w: battery %s initial_soc %v outside [%v, %v]",
			flex.ErrInvalidParameter, c.Name, *c.InitialSOC, c.SOCMin, c.SOCMax)
	}
	uopts := []battery.Option{
		battery.WithEfficiency(c.Efficiency),
		battery.WithSOCLimits(c.SOCMin, c.SOCMax),
		battery.WithSelfDischarge(c.SelfDischarge),
		battery.WithNominalStep(c.NominalStep),
	}
	if c.Availability != nil {
		uopts = append(uopts, battery.WithAvailability(timeseries.Constant(*c.Availability)))
	}
	unit, err := battery.NewUnit(c.Name, c.CapacityKWh, c.PowerKW, uopts...)
	if err != nil {
		return nil, err
	}
	if c.InitialSOC != nil {
		unit.ResetSOC(*c.InitialSOC)
	}
	copts := []battery.CostOption{
		battery.WithFixedCost(c.CFix),
		battery.WithDegradation(timeseries.Constant(c.Degradation)),
	}
	if c.TradeEnergy {
		copts = append(copts, battery.WithPrices(env.Buy, env.Sell))
	}
	cost, err := battery.NewCostModel(c.Name, c.CInv, c.Lifetime, copts...)
	if err != nil {
		return nil, err
	}
	var aopts []battery.AssetOption
	if c.StorageBalance {
		aopts = append(aopts, battery.WithStorageBalance())
	}
	return battery.NewAsset(unit, cost, aopts...)
}

// MarketConfig describes the settlement asset. Constant prices override the
// scenario series.
type MarketConfig struct {
	Name string   `json:"name" validate:"required"`
	Buy  *float64 `json:"buy"`
	Sell *float64 `json:"sell"`
}

func (c *MarketConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "market"
	}
}

// Build returns the market asset.
func (c *MarketConfig) Build(env Env) (flex.Asset, error) {
	buy, sell := env.Buy, env.Sell
	if c.Buy != nil {
		buy = timeseries.Constant(*c.Buy)
	}
	if c.Sell != nil {
		sell = timeseries.Constant(*c.Sell)
	}
	cost, err := market.NewCostModel(c.Name, buy, sell)
	if err != nil {
		return nil, err
	}
	return market.NewAsset(cost, c.Name)
}
