// Package ecokpi rebuilds daily eco records from a persisted step log.
package ecokpi

import (
	"context"
	"time"

	"github.com/kilianp07/flexmodel/core/flex"
	"github.com/kilianp07/flexmodel/core/metrics/eco"
	"github.com/kilianp07/flexmodel/core/steplog"
)

// Backfill replays the steps matching q into store and returns how many
// asset steps were added. Settlement positions hold no energy of their own
// and idle steps carry nothing, so both are skipped.
func Backfill(ctx context.Context, store eco.Store, logs steplog.Store, q steplog.Query) (int, error) {
	recs, err := logs.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		for name, a := range r.Assets {
			if a.Kind == string(flex.KindSettlement) || (q.Asset != "" && name != q.Asset) {
				continue
			}
			if a.DrawKW == 0 && a.InjectKW == 0 && a.CostEUR == 0 {
				continue
			}
			rec := eco.FromStep(r.RunID, name, r.Timestamp, r.DtHours, a.DrawKW, a.InjectKW, a.CostEUR)
			if err := store.Add(rec); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// Span returns the first and last timestamps of recs.
func Span(recs []steplog.Record) (start, end time.Time) {
	for i, r := range recs {
		if i == 0 || r.Timestamp.Before(start) {
			start = r.Timestamp
		}
		if i == 0 || r.Timestamp.After(end) {
			end = r.Timestamp
		}
	}
	return start, end
}
