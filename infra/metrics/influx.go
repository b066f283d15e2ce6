package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/flexmodel/core/metrics"
	"github.com/kilianp07/flexmodel/infra/logger"
)

// InfluxSink writes simulation events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStepResults writes one asset_step point per result.
func (s *InfluxSink) RecordStepResults(res []coremetrics.StepResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range res {
		p := write.NewPointWithMeasurement("asset_step").
			AddTag("asset", r.Asset).
			AddTag("kind", r.Kind).
			AddTag("run_id", r.RunID).
			AddField("step", r.Step).
			AddField("draw_kw", round3(r.DrawKW)).
			AddField("inject_kw", round3(r.InjectKW)).
			AddField("cost_eur", round3(r.CostEUR)).
			AddField("feasible", r.Feasible)
		if r.SOC != nil {
			p = p.AddField("soc", round3(*r.SOC))
		}
		p = p.SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordRunSummary writes the run totals and one cost field per asset.
func (s *InfluxSink) RecordRunSummary(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_run").
		AddTag("run_id", sum.RunID).
		AddField("steps", sum.Steps).
		AddField("total_cost_eur", round3(sum.TotalCostEUR)).
		AddField("unserved_kwh", round3(sum.UnservedKWh)).
		AddField("curtailed_steps", sum.CurtailedSteps).
		AddField("duration_ms", round3(sum.Duration.Seconds()*1000))
	for name, c := range sum.AssetCostEUR {
		p = p.AddField("cost_eur_"+name, round3(c))
	}
	return s.writeAPI.WritePoint(ctx, p.SetTime(sum.Time))
}

// RecordSolve writes an optimizer call.
func (s *InfluxSink) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("lp_solve").
		AddTag("ok", strconv.FormatBool(ev.Error == "")).
		AddField("models", ev.Models).
		AddField("variables", ev.Variables).
		AddField("timesteps", ev.Timesteps).
		AddField("objective", round3(ev.Objective)).
		AddField("latency_ms", round3(ev.Duration.Seconds()*1000)).
		AddField("errors", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCurtailment writes a reduced command.
func (s *InfluxSink) RecordCurtailment(ev coremetrics.CurtailmentEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("curtailment").
		AddTag("asset", ev.Asset).
		AddTag("run_id", ev.RunID).
		AddField("step", ev.Step).
		AddField("requested_kw", round3(ev.RequestedKW)).
		AddField("executed_kw", round3(ev.ExecutedKW)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
