package eco

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_MergesPerRunAssetAndDay(t *testing.T) {
	s := NewMemoryStore()
	day := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	for _, r := range []Record{
		{RunID: "r1", Asset: "bat", Date: day, ChargedKWh: 10, ActiveSteps: 1, CostEUR: 3},
		{RunID: "r1", Asset: "bat", Date: day.Add(2 * time.Hour), DischargedKWh: 9, ActiveSteps: 1, CostEUR: -2},
		{RunID: "r1", Asset: "bat", Date: day.Add(26 * time.Hour), ChargedKWh: 1, ActiveSteps: 1},
		{RunID: "r2", Asset: "bat", Date: day, ChargedKWh: 5, ActiveSteps: 1},
		{RunID: "r1", Asset: "bat2", Date: day, DischargedKWh: 4, ActiveSteps: 1},
	} {
		require.NoError(t, s.Add(r))
	}

	recs, err := s.Query(Filter{RunID: "r1", Asset: "bat", From: day, To: day})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, Day(day), recs[0].Date)
	assert.Equal(t, 10.0, recs[0].ChargedKWh)
	assert.Equal(t, 9.0, recs[0].DischargedKWh)
	assert.Equal(t, 2, recs[0].ActiveSteps)
	assert.InDelta(t, 1, recs[0].CostEUR, 1e-9)

	all, err := s.Query(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	// day 1: r1/bat, r1/bat2, r2/bat; day 2: r1/bat
	assert.Equal(t, []string{"r1/bat", "r1/bat2", "r2/bat", "r1/bat"}, []string{
		all[0].RunID + "/" + all[0].Asset, all[1].RunID + "/" + all[1].Asset,
		all[2].RunID + "/" + all[2].Asset, all[3].RunID + "/" + all[3].Asset,
	})

	tot := Totals(all)
	assert.Equal(t, 16.0, tot["bat"].ChargedKWh)
	assert.Equal(t, 4, tot["bat"].ActiveSteps)
	assert.Equal(t, 4.0, tot["bat2"].DischargedKWh)
}

func TestRecord_Ratios(t *testing.T) {
	r := Record{ChargedKWh: 10, DischargedKWh: 9, CostEUR: 1.8}
	assert.InDelta(t, 0.9, r.RoundTripEfficiency(), 1e-12)
	assert.InDelta(t, 900, r.CO2Avoided(100), 1e-9)
	assert.InDelta(t, 0.2, r.CostPerKWh(), 1e-12)

	var empty Record
	assert.Zero(t, empty.RoundTripEfficiency())
	assert.Zero(t, empty.CostPerKWh())
}
