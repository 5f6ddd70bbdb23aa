// Package observe provides observability primitives for the scoring engine:
// OpenTelemetry metrics with a Prometheus exporter bridge.
//
// Metrics are recorded through the OpenTelemetry Metrics API. [InitProvider]
// installs a Prometheus exporter so metrics can be scraped via the standard
// /metrics endpoint of whatever serving layer embeds the engine. Tests should
// use [NewMetrics] with a private [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all engine metrics.
const meterName = "github.com/LQ758/phonoscore"

// Pipeline stage names used as the "stage" attribute on StageDuration.
const (
	StageMap      = "map"
	StageAcoustic = "acoustic"
	StageDecode   = "decode"
	StageAlign    = "align"
	StageScore    = "score"
)

// Metrics holds all OpenTelemetry metric instruments for the engine.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ScoringDuration tracks end-to-end scoring latency per request.
	// Use with attribute.String("mode", ...).
	ScoringDuration metric.Float64Histogram

	// StageDuration tracks per-stage latency within a scoring request.
	// Use with attribute.String("stage", ...).
	StageDuration metric.Float64Histogram

	// ScoringRequests counts scoring calls. Use with attributes:
	//   attribute.String("mode", ...), attribute.String("status", ...)
	ScoringRequests metric.Int64Counter

	// UnmappableWords counts reference words rejected for missing
	// dictionary entries.
	UnmappableWords metric.Int64Counter

	// EmptyDecodes counts requests whose decode produced no labels
	// (silence or unrecognizable speech). Not errors, but worth watching.
	EmptyDecodes metric.Int64Counter
}

// latencyBuckets defines histogram boundaries (in seconds) sized for
// scoring requests: the DP core is sub-millisecond, the acoustic model
// call dominates.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
}

// NewMetrics creates a fully initialised [Metrics] using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ScoringDuration, err = m.Float64Histogram("phonoscore.scoring.duration",
		metric.WithDescription("End-to-end latency of a scoring request."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.StageDuration, err = m.Float64Histogram("phonoscore.stage.duration",
		metric.WithDescription("Latency of one pipeline stage within a scoring request."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ScoringRequests, err = m.Int64Counter("phonoscore.scoring.requests",
		metric.WithDescription("Number of scoring requests, by mode and status."),
	); err != nil {
		return nil, err
	}
	if met.UnmappableWords, err = m.Int64Counter("phonoscore.mapper.unmappable_words",
		metric.WithDescription("Reference words missing from the pronunciation dictionary."),
	); err != nil {
		return nil, err
	}
	if met.EmptyDecodes, err = m.Int64Counter("phonoscore.decoder.empty_decodes",
		metric.WithDescription("Requests whose decode produced no labels."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// RecordRequest records one finished scoring request.
func (m *Metrics) RecordRequest(ctx context.Context, mode, status string, seconds float64) {
	if m == nil {
		return
	}
	m.ScoringRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("status", status),
	))
	m.ScoringDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("mode", mode)))
}

// RecordStage records one pipeline stage duration.
func (m *Metrics) RecordStage(ctx context.Context, stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("stage", stage)))
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// DefaultMetrics returns a process-wide [Metrics] built from the global OTel
// meter provider. Instruments are created on first use.
func DefaultMetrics() *Metrics {
	defaultOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			// Instrument names are static; creation cannot fail at runtime.
			panic(err)
		}
		defaultMetrics = m
	})
	return defaultMetrics
}
