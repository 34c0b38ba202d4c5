package observability

import (
	"context"
	"fmt"
	"time"

	"hirescore/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Business metric types accepted by RecordBusinessMetric
const (
	MetricApplicationScored = "application_scored"
	MetricExtraction        = "extraction"
	MetricQuizScored        = "quiz_scored"
	MetricSkillVerification = "skill_verification"
	MetricRateLimitHit      = "rate_limit_hit"
)

// Metrics holds all custom metrics. Every method is safe on a nil receiver.
type Metrics struct {
	settings config.CustomMetricsConfig

	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Business metrics
	ApplicationsScored  metric.Int64Counter
	MatchScore          metric.Int64Histogram
	ExtractionsBySource metric.Int64Counter
	QuizzesScored       metric.Int64Counter
	QuizScore           metric.Int64Histogram
	SkillVerifications  metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 75, 80, 90, 100}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter, settings config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{settings: settings}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram(
		"hirescore_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	if m.AIRequestCount, err = meter.Int64Counter(
		"hirescore_ai_requests_total",
		metric.WithDescription("Total number of AI requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	if m.AIErrorCount, err = meter.Int64Counter(
		"hirescore_ai_errors_total",
		metric.WithDescription("Total number of AI request errors"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	if m.AITokenUsage, err = meter.Int64Histogram(
		"hirescore_ai_token_usage",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.ApplicationsScored, err = meter.Int64Counter(
		"hirescore_applications_scored_total",
		metric.WithDescription("Applications scored, by eligibility and threshold outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create applications scored metric: %w", err)
	}

	if m.MatchScore, err = meter.Int64Histogram(
		"hirescore_match_final_score",
		metric.WithDescription("Distribution of final match scores"),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create match score metric: %w", err)
	}

	if m.ExtractionsBySource, err = meter.Int64Counter(
		"hirescore_extractions_total",
		metric.WithDescription("Resume extractions, by the extractor that produced the profile"),
	); err != nil {
		return nil, fmt.Errorf("failed to create extractions metric: %w", err)
	}

	if m.QuizzesScored, err = meter.Int64Counter(
		"hirescore_quizzes_scored_total",
		metric.WithDescription("Quiz submissions scored"),
	); err != nil {
		return nil, fmt.Errorf("failed to create quizzes scored metric: %w", err)
	}

	if m.QuizScore, err = meter.Int64Histogram(
		"hirescore_quiz_percentage_score",
		metric.WithDescription("Distribution of quiz percentage scores"),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create quiz score metric: %w", err)
	}

	if m.SkillVerifications, err = meter.Int64Counter(
		"hirescore_skill_verifications_total",
		metric.WithDescription("Claimed skills classified by the verification engine, by status"),
	); err != nil {
		return nil, fmt.Errorf("failed to create skill verification metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"hirescore_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return m, nil
}

// TrackAIOperationWithTokens instruments an AI operation with tracing, metrics, and token usage
func (m *Metrics) TrackAIOperationWithTokens(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	if m == nil || !m.settings.AIOperations.Enabled {
		return resultError(fn(ctx))
	}

	ctx, span := otel.Tracer("hirescore.ai").Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()
	err := resultError(result)

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	if m.settings.AIOperations.TrackDuration {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.recordTokenUsage(ctx, result, attrs, span)
	span.SetAttributes(attrs...)

	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}

	return err
}

func resultError(result *AIOperationResult) error {
	if result == nil {
		return nil
	}
	return result.Error
}

// recordTokenUsage records token usage metrics and span attributes
func (m *Metrics) recordTokenUsage(ctx context.Context, result *AIOperationResult, attrs []attribute.KeyValue, span oteltrace.Span) {
	if result == nil || result.TokenUsage == nil {
		return
	}
	usage := result.TokenUsage

	if m.settings.AIOperations.TrackTokenUsage {
		for _, tt := range []struct {
			tokenType string
			value     int64
		}{
			{"input", usage.InputTokens},
			{"output", usage.OutputTokens},
			{"total", usage.TotalTokens},
		} {
			tokenAttrs := append(append([]attribute.KeyValue{}, attrs...), attribute.String("token_type", tt.tokenType))
			m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
		}
	}

	span.SetAttributes(
		attribute.Int64("ai.tokens.input", usage.InputTokens),
		attribute.Int64("ai.tokens.output", usage.OutputTokens),
		attribute.Int64("ai.tokens.total", usage.TotalTokens),
	)
}

// RecordBusinessMetric adds one to the counter behind metricType
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	m.RecordBusinessCount(ctx, metricType, success, 1, attributes...)
}

// RecordBusinessCount adds n to the counter behind metricType
func (m *Metrics) RecordBusinessCount(ctx context.Context, metricType string, success bool, n int64, attributes ...attribute.KeyValue) {
	if m == nil || n <= 0 {
		return
	}

	attrs := append([]attribute.KeyValue{
		attribute.Bool("success", success),
	}, attributes...)

	// Rate limiting is an infrastructure metric and has its own switch
	if metricType == MetricRateLimitHit {
		if m.settings.Infrastructure.TrackRateLimits {
			m.RateLimitHits.Add(ctx, n, metric.WithAttributes(attrs...))
		}
		return
	}

	if !m.settings.BusinessMetrics.Enabled {
		return
	}

	switch metricType {
	case MetricApplicationScored:
		m.ApplicationsScored.Add(ctx, n, metric.WithAttributes(attrs...))
	case MetricExtraction:
		m.ExtractionsBySource.Add(ctx, n, metric.WithAttributes(attrs...))
	case MetricQuizScored:
		m.QuizzesScored.Add(ctx, n, metric.WithAttributes(attrs...))
	case MetricSkillVerification:
		m.SkillVerifications.Add(ctx, n, metric.WithAttributes(attrs...))
	}
}

// RecordMatchScore records a final match score
func (m *Metrics) RecordMatchScore(ctx context.Context, score int, attributes ...attribute.KeyValue) {
	if m == nil || !m.settings.BusinessMetrics.Enabled {
		return
	}
	m.MatchScore.Record(ctx, int64(score), metric.WithAttributes(attributes...))
}

// RecordQuizScore records a quiz percentage score
func (m *Metrics) RecordQuizScore(ctx context.Context, score int, attributes ...attribute.KeyValue) {
	if m == nil || !m.settings.BusinessMetrics.Enabled {
		return
	}
	m.QuizScore.Record(ctx, int64(score), metric.WithAttributes(attributes...))
}
