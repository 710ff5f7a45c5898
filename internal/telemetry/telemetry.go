// Package telemetry records daemon-lifecycle counters as OpenTelemetry
// metrics. It is entirely optional: with no metrics_endpoint configured,
// [Init] is never called, the global MeterProvider stays the OTel
// no-op default, and every [Recorder] method is a safe no-op.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/JhihJian/SUMM-Daemon/summd"

// Init configures the global MeterProvider to export to endpoint over
// OTLP/HTTP, pushing on a periodic reader. Callers hold onto the
// returned shutdown func and call it during graceful stop so buffered
// metrics are flushed. Init is only called when endpoint is non-empty;
// an empty endpoint means no telemetry, not an error.
func Init(ctx context.Context, endpoint string) (shutdown func(context.Context) error, err error) {
	exp, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(endpoint), otlpmetrichttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("creating otlp metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(15*time.Second))),
	)
	otel.SetMeterProvider(provider)
	return provider.Shutdown, nil
}

// instruments holds the lazily-initialized counters. Reading the global
// MeterProvider is deferred to the first NewRecorder call rather than
// done at package init.
type instruments struct {
	sessionsStarted metric.Int64Counter
	sessionsStopped metric.Int64Counter
	requestsTotal   metric.Int64Counter
	monitorTransits metric.Int64Counter
}

var (
	instOnce sync.Once
	inst     instruments
)

func initInstruments() {
	instOnce.Do(func() {
		m := otel.GetMeterProvider().Meter(meterName)
		inst.sessionsStarted, _ = m.Int64Counter("summd.sessions.started.total",
			metric.WithDescription("Total sessions successfully started"))
		inst.sessionsStopped, _ = m.Int64Counter("summd.sessions.stopped.total",
			metric.WithDescription("Total sessions stopped by a Stop request"))
		inst.requestsTotal, _ = m.Int64Counter("summd.requests.total",
			metric.WithDescription("Total client requests handled, by type"))
		inst.monitorTransits, _ = m.Int64Counter("summd.monitor.transitions.total",
			metric.WithDescription("Total effective-status transitions observed by the monitor loop"))
	})
}

// Recorder is the handle daemon components hold to emit counters. A nil
// *Recorder is usable: every method is a no-op on a nil receiver. A
// non-nil Recorder uses the instruments [NewRecorder] creates; methods
// do not create them themselves.
type Recorder struct{}

// NewRecorder returns a Recorder. Safe to call regardless of whether
// [Init] has run; the first call creates the instruments from whatever
// MeterProvider is global at that moment.
func NewRecorder() *Recorder {
	initInstruments()
	return &Recorder{}
}

// SessionStarted increments the sessions-started counter.
func (r *Recorder) SessionStarted() {
	if r == nil {
		return
	}
	inst.sessionsStarted.Add(context.Background(), 1)
}

// SessionStopped increments the sessions-stopped counter.
func (r *Recorder) SessionStopped() {
	if r == nil {
		return
	}
	inst.sessionsStopped.Add(context.Background(), 1)
}

// Request increments the per-type request counter.
func (r *Recorder) Request(reqType string) {
	if r == nil {
		return
	}
	inst.requestsTotal.Add(context.Background(), 1, metric.WithAttributes(attribute.String("type", reqType)))
}

// MonitorTransition increments the monitor status-transition counter.
func (r *Recorder) MonitorTransition(from, to string) {
	if r == nil {
		return
	}
	inst.monitorTransits.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("from", from), attribute.String("to", to),
	))
}
