package ai

import (
	"context"

	"hirescore/internal/types"
)

// AIProvider is implemented by every model backend.
// Token usage may be nil when the backend does not report it.
type AIProvider interface {
	ExtractProfile(ctx context.Context, input types.ExtractProfileInput) (types.CandidateProfile, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
