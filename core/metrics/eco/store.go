package eco

import (
	"cmp"
	"slices"
	"time"
)

// Filter selects records. Zero values match anything; From and To are
// inclusive and compared by day.
type Filter struct {
	RunID string
	Asset string
	From  time.Time
	To    time.Time
}

// Match reports whether r satisfies f.
func (f Filter) Match(r Record) bool {
	if f.RunID != "" && r.RunID != f.RunID {
		return false
	}
	if f.Asset != "" && r.Asset != f.Asset {
		return false
	}
	d := Day(r.Date)
	if !f.From.IsZero() && d.Before(Day(f.From)) {
		return false
	}
	if !f.To.IsZero() && d.After(Day(f.To)) {
		return false
	}
	return true
}

// Store persists daily asset records. Add merges into the record of the
// same run, asset and day.
type Store interface {
	Add(Record) error
	Query(Filter) ([]Record, error)
}

// Day aligns t to the start of its day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Sort orders records by day, then run, then asset.
func Sort(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.RunID, b.RunID); c != 0 {
			return c
		}
		return cmp.Compare(a.Asset, b.Asset)
	})
}

// Totals sums recs per asset over every day and run. The returned records
// carry no date or run id.
func Totals(recs []Record) map[string]Record {
	out := make(map[string]Record)
	for _, r := range recs {
		t := out[r.Asset]
		t.Asset = r.Asset
		t.Merge(r)
		out[r.Asset] = t
	}
	return out
}
