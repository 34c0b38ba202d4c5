package extraction

import (
	"context"
	"time"

	"hirescore/internal/errors"
	"hirescore/internal/observability"
	"hirescore/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// FailoverExtractor tries the primary extractor under a deadline and falls back
// to the deterministic one on any failure. Failures are logged and counted,
// never returned.
type FailoverExtractor struct {
	primary  Extractor
	fallback *KeywordExtractor
	timeout  time.Duration
	logger   *errors.Logger
	metrics  *observability.Metrics
}

// NewFailoverExtractor builds the extractor used by the application service.
// A nil primary means every extraction uses the keyword fallback.
func NewFailoverExtractor(primary Extractor, timeout time.Duration, logger *errors.Logger, metrics *observability.Metrics) *FailoverExtractor {
	return &FailoverExtractor{
		primary:  primary,
		fallback: NewKeywordExtractor(),
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
	}
}

// Extract returns a profile and the extractor that produced it
func (f *FailoverExtractor) Extract(ctx context.Context, input types.ExtractProfileInput) (types.CandidateProfile, types.ExtractionSource) {
	if f.primary != nil {
		profile, err := f.runPrimary(ctx, input)
		if err == nil {
			f.metrics.RecordBusinessMetric(ctx, observability.MetricExtraction, true,
				attribute.String("source", string(types.ExtractionSourceLLM)))
			return profile, types.ExtractionSourceLLM
		}

		appErr := errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			"Model extraction failed, using keyword fallback", err).
			WithContext("job_title", input.Job.Title).
			WithContext("timeout", f.timeout.String())
		f.logger.LogError(appErr, "Extraction failed over to keyword scan")
		f.metrics.RecordBusinessMetric(ctx, observability.MetricExtraction, false,
			attribute.String("source", string(types.ExtractionSourceFallback)))
	} else {
		f.metrics.RecordBusinessMetric(ctx, observability.MetricExtraction, true,
			attribute.String("source", string(types.ExtractionSourceFallback)))
	}

	return f.fallback.Scan(input.ResumeText, input.Job), types.ExtractionSourceFallback
}

func (f *FailoverExtractor) runPrimary(ctx context.Context, input types.ExtractProfileInput) (types.CandidateProfile, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	type outcome struct {
		profile types.CandidateProfile
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		profile, err := f.primary.Extract(ctx, input)
		done <- outcome{profile, err}
	}()

	// A primary that ignores ctx must not hold the caller past the deadline
	select {
	case o := <-done:
		return o.profile, o.err
	case <-ctx.Done():
		return types.CandidateProfile{}, ctx.Err()
	}
}
