package server

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hirescore/internal/application"
	"hirescore/internal/observability"
	"hirescore/internal/types"
)

func (s *Server) startSpan(om *observability.ObservabilityManager, r *http.Request, name string) (*http.Request, trace.Span) {
	ctx, span := om.Tracer("hirescore.api").Start(r.Context(), name)
	return r.WithContext(ctx), span
}

func failSpan(span trace.Span, err error, errType string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, errType)
	span.SetAttributes(attribute.String("error.type", errType))
}

// createMatchHandler scores a supplied profile against a job without storing anything
func (s *Server) createMatchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, span := s.startSpan(om, r, "api.match")
		defer span.End()

		var req MatchRequest
		if err := parseJSONRequest(r, &req); err != nil {
			failSpan(span, err, "validation")
			writeErrorResponse(w, "Invalid request body", err.Error(), "INVALID_REQUEST", http.StatusBadRequest)
			return
		}

		report, err := s.App.Evaluate(r.Context(), req.Profile, req.Job)
		if err != nil {
			failSpan(span, err, "evaluation")
			s.writeAppError(w, r, err)
			return
		}

		span.SetAttributes(
			attribute.Int("match.final_score", report.Match.FinalScore),
			attribute.String("match.eligibility", string(report.Match.Eligibility)),
			attribute.Bool("match.test_eligible", report.TestEligible),
		)
		writeJSON(w, http.StatusOK, report)
	}
}

// createSubmitHandler screens a resume and stores the application
func (s *Server) createSubmitHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, span := s.startSpan(om, r, "api.submit_application")
		defer span.End()

		var req application.SubmitRequest
		if err := parseJSONRequest(r, &req); err != nil {
			failSpan(span, err, "validation")
			writeErrorResponse(w, "Invalid request body", err.Error(), "INVALID_REQUEST", http.StatusBadRequest)
			return
		}
		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("request.job_title", req.Job.Title),
		)

		app, err := s.App.Submit(r.Context(), req)
		if err != nil {
			failSpan(span, err, "submission")
			s.writeAppError(w, r, err)
			return
		}

		span.SetAttributes(
			attribute.String("application.id", app.ID),
			attribute.Int("application.final_score", app.Match.FinalScore),
		)
		w.Header().Set("Location", "/applications/"+app.ID)
		writeJSON(w, http.StatusCreated, newApplicationResponse(app))
	}
}

// createGetApplicationHandler returns the recruiter view of an application
func (s *Server) createGetApplicationHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, span := s.startSpan(om, r, "api.get_application")
		defer span.End()

		id := r.PathValue("id")
		span.SetAttributes(attribute.String("application.id", id))

		app, err := s.App.Get(r.Context(), id)
		if err != nil {
			failSpan(span, err, "lookup")
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newApplicationResponse(app))
	}
}

// createSubmitQuizHandler grades the quiz of a stored application
func (s *Server) createSubmitQuizHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, span := s.startSpan(om, r, "api.submit_quiz")
		defer span.End()

		id := r.PathValue("id")
		span.SetAttributes(attribute.String("application.id", id))

		var req QuizSubmissionRequest
		if err := parseJSONRequest(r, &req); err != nil {
			failSpan(span, err, "validation")
			writeErrorResponse(w, "Invalid request body", err.Error(), "INVALID_REQUEST", http.StatusBadRequest)
			return
		}

		report, err := s.App.SubmitQuiz(r.Context(), id, req.Answers)
		if err != nil {
			failSpan(span, err, "quiz")
			s.writeAppError(w, r, err)
			return
		}

		span.SetAttributes(
			attribute.String("quiz.category", report.Quiz.Category),
			attribute.Int("quiz.percentage", report.Quiz.PercentageScore),
		)
		writeJSON(w, http.StatusOK, report)
	}
}

// createQuestionsHandler serves the public quiz for a job title
func (s *Server) createQuestionsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := s.startSpan(om, r, "api.questions")
		defer span.End()

		jobTitle := strings.TrimSpace(r.URL.Query().Get("jobTitle"))
		if jobTitle == "" {
			writeErrorResponse(w, "Missing job title", "jobTitle query parameter is required", "INVALID_REQUEST", http.StatusBadRequest)
			return
		}

		sheet := s.App.Questions(jobTitle)
		span.SetAttributes(
			attribute.String("quiz.category", sheet.Category),
			attribute.String("quiz.resolved_by", sheet.Resolved),
		)
		writeJSON(w, http.StatusOK, sheet)
	}
}

// createVerifyHandler classifies claimed skills against positional answers
func (s *Server) createVerifyHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, span := s.startSpan(om, r, "api.verify")
		defer span.End()

		var req application.VerifyRequest
		if err := parseJSONRequest(r, &req); err != nil {
			failSpan(span, err, "validation")
			writeErrorResponse(w, "Invalid request body", err.Error(), "INVALID_REQUEST", http.StatusBadRequest)
			return
		}

		result := s.App.Verify(r.Context(), req)
		span.SetAttributes(
			attribute.Int("verification.verified", len(result.VerifiedSkills)),
			attribute.Int("verification.unverified", len(result.UnverifiedSkills)),
			attribute.Int("verification.untested", len(result.UntestedSkills)),
		)
		writeJSON(w, http.StatusOK, result)
	}
}

func newApplicationResponse(app *types.Application) ApplicationResponse {
	status := QuizStatusNotTested
	switch {
	case !app.TestEligible:
		status = QuizStatusNotEligible
	case app.QuizSubmittedAt != nil:
		status = QuizStatusCompleted
	}
	return ApplicationResponse{Application: app, QuizStatus: status}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	limit := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		limited := limit(next)
		return func(w http.ResponseWriter, r *http.Request) {
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

			limited(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				om.Metrics().RecordBusinessMetric(r.Context(), observability.MetricRateLimitHit, true,
					attribute.String("endpoint", r.Pattern),
					attribute.String("method", r.Method))
			}
		}
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
