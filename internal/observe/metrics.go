// Package observe holds the OpenTelemetry instruments recorded by the
// transcription pipeline and the analyze endpoint, and the provider setup
// that exposes them to Prometheus.
//
// Tests should build a [Metrics] with [NewMetrics] and their own
// [metric.MeterProvider] rather than use [DefaultMetrics].
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/codebuildervaibhav/speech-insights/internal/analytics"
)

const meterName = "github.com/codebuildervaibhav/speech-insights"

// Metrics holds all metric instruments for the application.
type Metrics struct {
	// Jobs counts finished transcription jobs by source and status.
	Jobs metric.Int64Counter

	// JobDuration tracks end-to-end job processing time.
	JobDuration metric.Float64Histogram

	// AnalysisDuration tracks how long one Compute call takes.
	AnalysisDuration metric.Float64Histogram

	// FluencyScore records the fluency score of every analysed transcript.
	FluencyScore metric.Int64Histogram

	// AnalyzeRequests counts POST /analyze calls by status.
	AnalyzeRequests metric.Int64Counter
}

var latencyBuckets = []float64{
	0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600,
}

var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// NewMetrics creates the instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Jobs, err = m.Int64Counter("speech_insights.jobs",
		metric.WithDescription("Transcription jobs finished, by source and status."),
	); err != nil {
		return nil, err
	}
	if met.JobDuration, err = m.Float64Histogram("speech_insights.job.duration",
		metric.WithDescription("Wall time of a transcription job."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AnalysisDuration, err = m.Float64Histogram("speech_insights.analysis.duration",
		metric.WithDescription("Time spent computing delivery metrics."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FluencyScore, err = m.Int64Histogram("speech_insights.fluency_score",
		metric.WithDescription("Fluency score of analysed transcripts."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AnalyzeRequests, err = m.Int64Counter("speech_insights.analyze.requests",
		metric.WithDescription("Synchronous analyze requests, by status."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built on the global
// meter provider. Panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Analyze runs analytics.Compute and records its duration and score.
func (m *Metrics) Analyze(ctx context.Context, words []analytics.Word, text string) analytics.DeliveryMetrics {
	start := time.Now()
	result := analytics.Compute(words, text)
	if m != nil {
		m.AnalysisDuration.Record(ctx, time.Since(start).Seconds())
		if result.WordCount > 0 {
			m.FluencyScore.Record(ctx, int64(result.FluencyScore))
		}
	}
	return result
}

// RecordJob records a finished job.
func (m *Metrics) RecordJob(ctx context.Context, source, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)
	m.Jobs.Add(ctx, 1, attrs)
	m.JobDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("source", source)))
}

// RecordAnalyzeRequest counts one analyze request.
func (m *Metrics) RecordAnalyzeRequest(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.AnalyzeRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
