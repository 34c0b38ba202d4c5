package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	hirescoreErrors "hirescore/internal/errors"
)

const defaultHealthCheckTimeout = 5 * time.Second

// healthCheckTimeouts returns the store and AI model check timeouts
func (s *Server) healthCheckTimeouts() (store, model time.Duration) {
	store, model = defaultHealthCheckTimeout, defaultHealthCheckTimeout
	if s.AppConfig == nil {
		return store, model
	}
	hc := s.AppConfig.Observability.HealthCheck
	if hc.Timeout > 0 {
		store = hc.Timeout
	}
	if hc.AIModelCheckTimeout > 0 {
		model = hc.AIModelCheckTimeout
	}
	return store, model
}

// healthHandler reports store, extraction model and question bank status.
// An unreachable store makes the service unhealthy; an unavailable model only
// degrades it because extraction falls back to keyword scanning.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	storeTimeout, modelTimeout := s.healthCheckTimeouts()

	response := map[string]any{
		"status":  "healthy",
		"service": "hirescore",
		"version": s.Version,
	}
	statusCode := http.StatusOK

	if s.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
		err := s.Store.Ping(ctx)
		cancel()
		if err != nil {
			s.Logger.LogError(err, "Health check: store unreachable")
			response["store"] = map[string]any{"available": false, "error": err.Error()}
			response["status"] = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		} else {
			response["store"] = map[string]any{"available": true}
		}
	}

	extraction := map[string]any{"mode": "keyword"}
	if s.AI != nil {
		ctx, cancel := context.WithTimeout(r.Context(), modelTimeout)
		modelInfo := s.AI.GetModelInfo(ctx)
		cancel()

		extraction["mode"] = "llm"
		extraction["model"] = modelInfo
		extraction["circuit_breaker"] = s.AI.BreakerStats()
		if modelInfo == nil || !modelInfo.Available {
			extraction["fallback_active"] = true
			if statusCode == http.StatusOK {
				response["status"] = "degraded"
			}
		}
	}
	response["extraction"] = extraction

	if s.Catalog != nil {
		bank := s.Catalog.Bank()
		source := s.Catalog.Path()
		if source == "" {
			source = "embedded"
		}
		response["question_bank"] = map[string]any{
			"version":    bank.Version(),
			"source":     source,
			"categories": bank.Categories(),
		}
	}

	writeJSON(w, statusCode, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "hirescore",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"auth_enabled":           len(s.APIKeys) > 0,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
			"idle_window":      s.RateLimit.Window.String(),
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}
	defer func() {
		_ = r.Body.Close()
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message, code string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
		Code:    code,
	})
}

// writeAppError maps an application error to its HTTP status. Internal
// failures are logged and answered with a generic message.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := hirescoreErrors.AsAppError(err)
	if !ok {
		s.Logger.LogError(err, "Request failed", "endpoint", r.URL.Path)
		writeErrorResponse(w, "Internal error", "Something went wrong, please try again", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	switch appErr.Type {
	case hirescoreErrors.ErrorTypeValidation:
		writeErrorResponse(w, "Invalid request", appErr.Message, appErr.Code, http.StatusBadRequest)
	case hirescoreErrors.ErrorTypeNotFound:
		writeErrorResponse(w, "Not found", appErr.Message, appErr.Code, http.StatusNotFound)
	case hirescoreErrors.ErrorTypeConflict:
		writeErrorResponse(w, "Conflict", appErr.Message, appErr.Code, http.StatusConflict)
	case hirescoreErrors.ErrorTypeForbidden:
		writeErrorResponse(w, "Forbidden", appErr.Message, appErr.Code, http.StatusForbidden)
	default:
		s.Logger.LogError(err, "Request failed", "endpoint", r.URL.Path)
		writeErrorResponse(w, "Internal error", "Something went wrong, please try again", appErr.Code, http.StatusInternalServerError)
	}
}
