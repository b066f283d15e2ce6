// Package battery implements a battery energy storage system on top of the
// flex abstractions.
//
// Stored energy is tracked in E_plus and the remaining charge room in
// E_minus, so SOC = E_plus / C_spec. Charging multiplies the grid energy by
// the efficiency on the way in and discharging withdraws energy / efficiency
// on the way out, giving a round-trip efficiency of efficiency².
// Self-discharge removes a fraction of the stored energy per hour.
package battery
