package server

import (
	"time"

	"hirescore/internal/ai"
	"hirescore/internal/application"
	"hirescore/internal/config"
	hirescoreErrors "hirescore/internal/errors"
	"hirescore/internal/quiz"
	"hirescore/internal/store"
	"hirescore/internal/types"
)

// MatchRequest is the body of POST /match
type MatchRequest struct {
	Profile types.CandidateProfile `json:"profile"`
	Job     types.JobRequirement   `json:"job"`
}

// QuizSubmissionRequest is the body of POST /applications/{id}/quiz
type QuizSubmissionRequest struct {
	Answers []types.QuizAnswer `json:"answers"`
}

// Quiz progress labels shown to recruiters
const (
	QuizStatusNotEligible = "not_eligible"
	QuizStatusNotTested   = "not_tested"
	QuizStatusCompleted   = "completed"
)

// ApplicationResponse is the recruiter view of a stored application
type ApplicationResponse struct {
	*types.Application
	QuizStatus string `json:"quizStatus"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Screening pipeline and its collaborators
	App     *application.Service
	AI      *ai.Service
	Store   store.Store
	Catalog *quiz.Catalog

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *hirescoreErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// Dependencies are the services the handlers call. AI may be nil when the
// LLM extraction path is disabled.
type Dependencies struct {
	App     *application.Service
	AI      *ai.Service
	Store   store.Store
	Catalog *quiz.Catalog
}

// NewServerConfig derives the server settings from the application configuration
func NewServerConfig(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *hirescoreErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			cfg.RateLimit.Window,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		App:            deps.App,
		AI:             deps.AI,
		Store:          deps.Store,
		Catalog:        deps.Catalog,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
