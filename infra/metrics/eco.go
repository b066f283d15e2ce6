package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/flexmodel/core/flex"
	core "github.com/kilianp07/flexmodel/core/metrics"
	eco "github.com/kilianp07/flexmodel/core/metrics/eco"
)

// EcoSink aggregates storage step results into daily records per run and
// asset, and mirrors the current day in Prometheus gauges.
type EcoSink struct {
	store      eco.Store
	factor     float64
	discharged *prometheus.GaugeVec
	efficiency *prometheus.GaugeVec
	co2        *prometheus.GaugeVec
}

// NewEcoSink creates a sink with gauges registered on reg. factor is the
// grid emission factor in g/kWh.
func NewEcoSink(store eco.Store, factor float64, reg prometheus.Registerer) (*EcoSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"asset", "day"}
	discharged, err := registerOrReuse(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flex_eco_discharged_kwh",
		Help: "Energy supplied by each storage asset over the day",
	}, labels))
	if err != nil {
		return nil, err
	}
	efficiency, err := registerOrReuse(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flex_eco_round_trip_efficiency",
		Help: "Discharged over charged energy of each storage asset over the day",
	}, labels))
	if err != nil {
		return nil, err
	}
	co2, err := registerOrReuse(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flex_eco_co2_avoided_grams",
		Help: "CO2 not imported thanks to each storage asset over the day",
	}, labels))
	if err != nil {
		return nil, err
	}
	return &EcoSink{store: store, factor: factor, discharged: discharged, efficiency: efficiency, co2: co2}, nil
}

// RecordStepResults adds each storage step to the store and refreshes the
// gauges of its day. Settlement positions are skipped.
func (s *EcoSink) RecordStepResults(res []core.StepResult) error {
	for _, r := range res {
		if r.Kind == string(flex.KindSettlement) {
			continue
		}
		rec := eco.FromStep(r.RunID, r.Asset, r.Time, r.DtHours, r.DrawKW, r.InjectKW, r.CostEUR)
		if err := s.store.Add(rec); err != nil {
			return err
		}
		day, err := s.store.Query(eco.Filter{RunID: r.RunID, Asset: r.Asset, From: r.Time, To: r.Time})
		if err != nil {
			return err
		}
		if len(day) == 0 {
			continue
		}
		label := eco.Day(r.Time).Format("2006-01-02")
		s.discharged.WithLabelValues(r.Asset, label).Set(day[0].DischargedKWh)
		s.efficiency.WithLabelValues(r.Asset, label).Set(day[0].RoundTripEfficiency())
		s.co2.WithLabelValues(r.Asset, label).Set(day[0].CO2Avoided(s.factor))
	}
	return nil
}
