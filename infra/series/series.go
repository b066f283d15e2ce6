// Package series loads price and profile time series from CSV files.
//
// Rows are mapped to consecutive timestep indices starting at 0 in file
// order. The optional timestamp column is kept for reference only.
package series

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"

	"github.com/kilianp07/flexmodel/core/timeseries"
)

// ErrNoRows is returned for a file holding a header only.
var ErrNoRows = errors.New("series: no rows")

// PriceRow is one line of a price file.
type PriceRow struct {
	Timestamp string  `csv:"timestamp"`
	Buy       float64 `csv:"p_buy"`
	Sell      float64 `csv:"p_sell"`
}

// ProfileRow is one line of a demand or availability profile.
type ProfileRow struct {
	Timestamp string  `csv:"timestamp"`
	Value     float64 `csv:"value"`
}

// Prices are the buy and sell series read from one file.
type Prices struct {
	Buy  timeseries.Value
	Sell timeseries.Value
	Rows int
}

// LoadPrices reads a file with p_buy and p_sell columns.
func LoadPrices(path string) (Prices, error) {
	var rows []*PriceRow
	if err := unmarshalFile(path, &rows); err != nil {
		return Prices{}, err
	}
	if len(rows) == 0 {
		return Prices{}, fmt.Errorf("%s: %w", path, ErrNoRows)
	}
	buy := lo.Map(rows, func(r *PriceRow, _ int) float64 { return r.Buy })
	sell := lo.Map(rows, func(r *PriceRow, _ int) float64 { return r.Sell })
	return Prices{
		Buy:  timeseries.FromSlice(buy, timeseries.Strict()),
		Sell: timeseries.FromSlice(sell, timeseries.Strict()),
		Rows: len(rows),
	}, nil
}

// LoadProfile reads a file with a value column.
func LoadProfile(path string) (timeseries.Value, error) {
	vals, err := ReadProfileValues(path)
	if err != nil {
		return timeseries.Value{}, err
	}
	return timeseries.FromSlice(vals, timeseries.Strict()), nil
}

// ReadProfileValues returns the raw values of a profile file.
func ReadProfileValues(path string) ([]float64, error) {
	var rows []*ProfileRow
	if err := unmarshalFile(path, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRows)
	}
	return lo.Map(rows, func(r *ProfileRow, _ int) float64 { return r.Value }), nil
}

func unmarshalFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return unmarshal(f, out, path)
}

func unmarshal(r io.Reader, out any, name string) error {
	if err := gocsv.Unmarshal(r, out); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return fmt.Errorf("%s: %w", name, ErrNoRows)
		}
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// Stats summarises a series.
type Stats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	// Sum is multiplied by the step length to give an energy.
	Sum float64
}

// Describe returns summary statistics of vals.
func Describe(vals []float64) Stats {
	if len(vals) == 0 {
		return Stats{}
	}
	sum := lo.Sum(vals)
	return Stats{
		Count: len(vals),
		Min:   lo.Min(vals),
		Max:   lo.Max(vals),
		Mean:  sum / float64(len(vals)),
		Sum:   sum,
	}
}
