// Package observe provides application-wide observability primitives for
// voicecloneai: OpenTelemetry metrics, tracing helpers, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/sajina/voicecloneai"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// GenerationDuration tracks the latency of one speech generation unit.
	GenerationDuration metric.Float64Histogram

	// BatchDuration tracks end-to-end batch latency, admission to report.
	BatchDuration metric.Float64Histogram

	// TranslationDuration tracks translation round-trip latency.
	TranslationDuration metric.Float64Histogram

	// DetectionDuration tracks local language-detection latency.
	DetectionDuration metric.Float64Histogram

	// --- Counters ---

	// GenerationUnits counts per-voice generation requests. Use with
	// attributes:
	//   attribute.String("kind", ...), attribute.String("status", ...)
	GenerationUnits metric.Int64Counter

	// TranslationRequests counts translation calls. Use with attributes:
	//   attribute.String("target", ...), attribute.String("status", ...)
	TranslationRequests metric.Int64Counter

	// PlaybackStarts counts started playbacks. Use with attribute:
	//   attribute.String("slot", ...)
	PlaybackStarts metric.Int64Counter

	// ReconcileFailures counts failed credit reconciliations.
	ReconcileFailures metric.Int64Counter

	// --- Gauges ---

	// ActiveBatches tracks generation batches currently in flight.
	ActiveBatches metric.Int64UpDownCounter

	// CreditBalance tracks the last reconciled credit balance.
	CreditBalance metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// backend round-trips that include synthesis time.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.GenerationDuration, err = m.Float64Histogram("voicecloneai.generation.duration",
		metric.WithDescription("Latency of one speech generation unit."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.BatchDuration, err = m.Float64Histogram("voicecloneai.batch.duration",
		metric.WithDescription("End-to-end generation batch latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranslationDuration, err = m.Float64Histogram("voicecloneai.translation.duration",
		metric.WithDescription("Latency of translation round-trips."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.DetectionDuration, err = m.Float64Histogram("voicecloneai.detection.duration",
		metric.WithDescription("Latency of local language detection."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.GenerationUnits, err = m.Int64Counter("voicecloneai.generation.units",
		metric.WithDescription("Total per-voice generation requests by kind and status."),
	); err != nil {
		return nil, err
	}
	if met.TranslationRequests, err = m.Int64Counter("voicecloneai.translation.requests",
		metric.WithDescription("Total translation requests by target language and status."),
	); err != nil {
		return nil, err
	}
	if met.PlaybackStarts, err = m.Int64Counter("voicecloneai.playback.starts",
		metric.WithDescription("Total started playbacks by slot."),
	); err != nil {
		return nil, err
	}
	if met.ReconcileFailures, err = m.Int64Counter("voicecloneai.credit.reconcile_failures",
		metric.WithDescription("Total failed credit balance reconciliations."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveBatches, err = m.Int64UpDownCounter("voicecloneai.active_batches",
		metric.WithDescription("Generation batches currently in flight."),
	); err != nil {
		return nil, err
	}
	if met.CreditBalance, err = m.Int64UpDownCounter("voicecloneai.credit.balance",
		metric.WithDescription("Last reconciled credit balance."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("voicecloneai.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordGenerationUnit records one per-voice generation request with the
// standard attribute set.
func (m *Metrics) RecordGenerationUnit(ctx context.Context, kind, status string) {
	m.GenerationUnits.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordTranslation records a translation request with the standard
// attribute set.
func (m *Metrics) RecordTranslation(ctx context.Context, target, status string) {
	m.TranslationRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("target", target),
			attribute.String("status", status),
		),
	)
}

// RecordPlaybackStart records a started playback.
func (m *Metrics) RecordPlaybackStart(ctx context.Context, slot string) {
	m.PlaybackStarts.Add(ctx, 1,
		metric.WithAttributes(attribute.String("slot", slot)),
	)
}

// SetCreditBalance moves the balance gauge to the given value.
func (m *Metrics) SetCreditBalance(ctx context.Context, old, new int64) {
	m.CreditBalance.Add(ctx, new-old)
}
