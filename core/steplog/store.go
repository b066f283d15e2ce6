// Package steplog persists one record per simulated step so a run can be
// audited or replayed after the fact.
package steplog

import (
	"context"
	"time"
)

// AssetStep is what one asset did during a step.
type AssetStep struct {
	Kind       string   `json:"kind"`
	DrawKW     float64  `json:"draw_kw"`
	InjectKW   float64  `json:"inject_kw"`
	CostEUR    float64  `json:"cost_eur"`
	SOC        *float64 `json:"soc,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

// Record captures one simulated step.
type Record struct {
	RunID     string               `json:"run_id"`
	Step      int                  `json:"step"`
	Timestamp time.Time            `json:"timestamp"`
	DtHours   float64              `json:"dt_hours"`
	DemandKW  float64              `json:"demand_kw"`
	CostEUR   float64              `json:"cost_eur"`
	Assets    map[string]AssetStep `json:"assets"`
}

// Query defines filters for retrieving records. Zero values match anything.
type Query struct {
	RunID string
	Asset string
	Start time.Time
	End   time.Time
}

// Match reports whether r satisfies q.
func (q Query) Match(r Record) bool {
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Asset != "" {
		if _, ok := r.Assets[q.Asset]; !ok {
			return false
		}
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
