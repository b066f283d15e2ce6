// Package market models imbalance settlement with the transmission system
// operator as a flexibility asset without physical limits, efficiency losses
// or state. Positive deviations are bought at the import price and negative
// ones sold at the export price.
package market
