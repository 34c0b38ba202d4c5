package extraction

import (
	"context"

	"hirescore/internal/ai"
	"hirescore/internal/observability"
	"hirescore/internal/types"
)

const operationExtractProfile = "extract_profile"

// LLMExtractor asks the configured model for the profile fields
type LLMExtractor struct {
	provider ai.AIProvider
	metrics  *observability.Metrics
	maxChars int
}

// NewLLMExtractor wraps an AI provider. Resume text beyond maxChars is not sent;
// zero sends everything. metrics may be nil.
func NewLLMExtractor(provider ai.AIProvider, metrics *observability.Metrics, maxChars int) *LLMExtractor {
	return &LLMExtractor{provider: provider, metrics: metrics, maxChars: maxChars}
}

// Extract implements Extractor
func (e *LLMExtractor) Extract(ctx context.Context, input types.ExtractProfileInput) (types.CandidateProfile, error) {
	input.ResumeText = truncateRunes(input.ResumeText, e.maxChars)

	var profile types.CandidateProfile
	err := e.metrics.TrackAIOperationWithTokens(ctx, operationExtractProfile, func(ctx context.Context) *observability.AIOperationResult {
		var usage *ai.TokenUsage
		var err error
		profile, usage, err = e.provider.ExtractProfile(ctx, input)
		return &observability.AIOperationResult{Error: err, TokenUsage: toObservabilityUsage(usage)}
	})
	if err != nil {
		return types.CandidateProfile{}, err
	}
	return Clean(profile), nil
}

func toObservabilityUsage(u *ai.TokenUsage) *observability.TokenUsage {
	if u == nil {
		return nil
	}
	return &observability.TokenUsage{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.TotalTokens,
	}
}

func truncateRunes(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
