package config

import "fmt"

// PricesConfig sets the energy prices of the scenario, either as constants
// or as a CSV file with p_buy and p_sell columns.
type PricesConfig struct {
	File string  `json:"file"`
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

func (c *PricesConfig) SetDefaults() {}

func (c PricesConfig) Validate() error {
	if c.File != "" && (c.Buy != 0 || c.Sell != 0) {
		return fmt.Errorf("set either file or constant buy/sell")
	}
	return nil
}
