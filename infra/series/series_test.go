package series

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/flexmodel/core/timeseries"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadPrices(t *testing.T) {
	path := writeFile(t, "prices.csv", "timestamp,p_buy,p_sell\n"+
		"2024-01-01T00:00:00Z,0.30,0.10\n"+
		"2024-01-01T01:00:00Z,0.25,0.08\n")
	p, err := LoadPrices(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Rows != 2 {
		t.Fatalf("expected 2 rows got %d", p.Rows)
	}
	if v, _ := p.Buy.At(1); v != 0.25 {
		t.Fatalf("buy[1] = %v", v)
	}
	if v, _ := p.Sell.At(0); v != 0.10 {
		t.Fatalf("sell[0] = %v", v)
	}
	if _, err := p.Buy.At(2); !errors.Is(err, timeseries.ErrMissingTimestep) {
		t.Fatalf("expected strict lookup, got %v", err)
	}
	if n, ok := p.Buy.Horizon(); !ok || n != 2 {
		t.Fatalf("horizon = %d, %v", n, ok)
	}
}

func TestLoadProfile_WithoutTimestamp(t *testing.T) {
	path := writeFile(t, "demand.csv", "value\n10\n-5\n2.5\n")
	v, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if x, _ := v.At(1); x != -5 {
		t.Fatalf("value[1] = %v", x)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := writeFile(t, "bad.csv", "value\nabc\n")
	if _, err := LoadProfile(bad); err == nil {
		t.Fatalf("expected parse error")
	}
	empty := writeFile(t, "empty.csv", "")
	if _, err := LoadPrices(empty); !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{1, -2, 4})
	if s.Count != 3 || s.Min != -2 || s.Max != 4 || s.Sum != 3 || s.Mean != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if (Describe(nil) != Stats{}) {
		t.Fatalf("expected zero stats")
	}
}
