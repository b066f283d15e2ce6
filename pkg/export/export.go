package export

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/kilianp07/flexmodel/core/steplog"
)

// Row is one asset during one step, flattened for spreadsheets.
type Row struct {
	RunID     string  `csv:"run_id"`
	Step      int     `csv:"step"`
	Timestamp string  `csv:"timestamp"`
	DemandKW  float64 `csv:"demand_kw"`
	Asset     string  `csv:"asset"`
	Kind      string  `csv:"kind"`
	DrawKW    float64 `csv:"draw_kw"`
	InjectKW  float64 `csv:"inject_kw"`
	CostEUR   float64 `csv:"cost_eur"`
	SOC       string  `csv:"soc"`
}

// Rows flattens records into one row per asset, assets sorted by name.
func Rows(recs []steplog.Record) []*Row {
	var rows []*Row
	for _, r := range recs {
		names := make([]string, 0, len(r.Assets))
		for n := range r.Assets {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			a := r.Assets[n]
			row := &Row{
				RunID:     r.RunID,
				Step:      r.Step,
				Timestamp: r.Timestamp.Format(time.RFC3339),
				DemandKW:  r.DemandKW,
				Asset:     n,
				Kind:      a.Kind,
				DrawKW:    a.DrawKW,
				InjectKW:  a.InjectKW,
				CostEUR:   a.CostEUR,
			}
			if a.SOC != nil {
				row.SOC = strconv.FormatFloat(*a.SOC, 'f', 4, 64)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteJSON writes the step records to w in JSON format.
func WriteJSON(w io.Writer, recs []steplog.Record) error {
	enc := json.NewEncoder(w)
	return enc.Encode(recs)
}

// WriteCSV writes one row per asset and step to w.
func WriteCSV(w io.Writer, recs []steplog.Record) error {
	return gocsv.Marshal(Rows(recs), w)
}
