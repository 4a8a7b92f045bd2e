package orchestrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/logging"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/pipeline"
)

const instrumentationName = "github.com/KazuakiWatanabe/agentic-bizflow/internal/orchestrator"

// Conversion outcomes recorded on the conversions counter.
const (
	outcomeSuccess          = "success"
	outcomeValidationFailed = "validation_failed"
	outcomeError            = "error"
)

// Metrics holds the conversion pipeline instruments. A nil instrument
// (creation failed) is skipped at record time; metrics never block a
// conversion.
type Metrics struct {
	meter  metric.Meter
	logger *logging.Logger

	conversions   metric.Int64Counter
	retries       metric.Int64Histogram
	stageDuration metric.Float64Histogram
	issues        metric.Int64Counter
	llmRequests   metric.Int64Counter
}

// NewMetrics creates the orchestrator instruments.
func NewMetrics(logger *logging.Logger) *Metrics {
	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.conversions, err = m.meter.Int64Counter(
		"bizflow.conversion.total",
		metric.WithDescription("Completed conversions by outcome (success, validation_failed, error)."),
		metric.WithUnit("{conversion}"),
	)
	if err != nil {
		m.logger.Warn("failed to create conversions counter", zap.Error(err))
	}

	m.retries, err = m.meter.Int64Histogram(
		"bizflow.conversion.retries",
		metric.WithDescription("Planner/validator retries consumed per conversion."),
		metric.WithUnit("{retry}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3),
	)
	if err != nil {
		m.logger.Warn("failed to create retries histogram", zap.Error(err))
	}

	m.stageDuration, err = m.meter.Float64Histogram(
		"bizflow.stage.duration_seconds",
		metric.WithDescription("Stage execution time by stage (reader, planner, validator, generator)."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0),
	)
	if err != nil {
		m.logger.Warn("failed to create stage duration histogram", zap.Error(err))
	}

	m.issues, err = m.meter.Int64Counter(
		"bizflow.validation.issues_total",
		metric.WithDescription("Validation findings by code and severity, counted per validation attempt."),
		metric.WithUnit("{issue}"),
	)
	if err != nil {
		m.logger.Warn("failed to create issues counter", zap.Error(err))
	}

	m.llmRequests, err = m.meter.Int64Counter(
		"bizflow.llm.requests_total",
		metric.WithDescription("LLM augmentation attempts by provider, feature, and outcome (used, skipped, error)."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.logger.Warn("failed to create llm requests counter", zap.Error(err))
	}
}

// RecordConversion records one finished conversion.
func (m *Metrics) RecordConversion(ctx context.Context, outcome string, retries int, duration time.Duration) {
	if m.conversions != nil {
		m.conversions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if m.retries != nil {
		m.retries.Record(ctx, int64(retries), metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if m.stageDuration != nil {
		m.stageDuration.Record(ctx, duration.Seconds(),
			metric.WithAttributes(attribute.String("stage", "total")))
	}
}

// RecordStage records the duration of one stage run.
func (m *Metrics) RecordStage(ctx context.Context, stage string, duration time.Duration) {
	if m.stageDuration == nil {
		return
	}
	m.stageDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordIssues counts the findings of one validation attempt.
func (m *Metrics) RecordIssues(ctx context.Context, result pipeline.ValidationResult) {
	if m.issues == nil {
		return
	}
	severities := make(map[string]string, len(result.IssueDetails))
	for _, detail := range result.IssueDetails {
		severities[detail.Code] = detail.Severity
	}
	for _, code := range result.Issues {
		severity := severities[code]
		if severity == "" {
			severity = pipeline.SeverityError
		}
		m.issues.Add(ctx, 1, metric.WithAttributes(
			attribute.String("code", code),
			attribute.String("severity", severity),
		))
	}
}

// RecordUsage counts one LLM augmentation attempt.
func (m *Metrics) RecordUsage(ctx context.Context, rec pipeline.UsageRecord) {
	if m.llmRequests == nil {
		return
	}
	outcome := "skipped"
	switch {
	case rec.Used:
		outcome = "used"
	case rec.Error != "":
		outcome = "error"
	}
	m.llmRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", rec.Provider),
		attribute.String("feature", rec.Feature),
		attribute.String("outcome", outcome),
	))
}
