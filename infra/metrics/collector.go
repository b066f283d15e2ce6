package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/flexmodel/core/events"
	coremetrics "github.com/kilianp07/flexmodel/core/metrics"
	"github.com/kilianp07/flexmodel/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the bus is closed, or when the context is canceled after the
// events already buffered have been recorded. The returned channel is closed
// once the collector has stopped.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				drain(sink, sub)
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				collect(sink, ev)
			}
		}
	}()
	return done
}

// drain records the events still buffered in sub without waiting for more.
func drain(sink coremetrics.MetricsSink, sub <-chan eventbus.Event) {
	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return
			}
			collect(sink, ev)
		default:
			return
		}
	}
}

func collect(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.RunStarted:
		if r, ok := sink.(coremetrics.RunStartRecorder); ok {
			_ = r.RecordRunStart(coremetrics.RunStartEvent{
				RunID:   e.RunID,
				Steps:   e.Steps,
				DtHours: e.DtHours,
				Assets:  e.Assets,
				Time:    time.Now(),
			})
		}
	case events.Curtailment:
		if r, ok := sink.(coremetrics.CurtailmentRecorder); ok {
			_ = r.RecordCurtailment(coremetrics.CurtailmentEvent{
				RunID:       e.RunID,
				Step:        e.Step,
				Asset:       e.Asset,
				RequestedKW: e.RequestedKW,
				ExecutedKW:  e.ExecutedKW,
				Time:        time.Now(),
			})
		}
	case events.Solved:
		if r, ok := sink.(coremetrics.SolveRecorder); ok {
			errStr := ""
			if e.Err != nil {
				errStr = e.Err.Error()
			}
			_ = r.RecordSolve(coremetrics.SolveEvent{
				Models:    e.Models,
				Variables: e.Variables,
				Timesteps: e.Timesteps,
				Objective: e.Objective,
				Duration:  e.Duration,
				Error:     errStr,
				Time:      time.Now(),
			})
		}
	}
}
