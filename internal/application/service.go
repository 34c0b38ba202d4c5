// Package application runs the screening pipeline around the scoring core:
// extraction, matching, suggestions, the test gate, quizzes and persistence.
package application

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hirescore/internal/errors"
	"hirescore/internal/matching"
	"hirescore/internal/observability"
	"hirescore/internal/quiz"
	"hirescore/internal/store"
	"hirescore/internal/suggestions"
	"hirescore/internal/types"
	"hirescore/internal/verification"
)

// DefaultRankConcurrency bounds parallel extractions during ranking
const DefaultRankConcurrency = 4

var tracer = otel.Tracer("hirescore/application")

// ProfileExtractor turns resume text into a profile and never fails;
// the source tells which extractor answered.
type ProfileExtractor interface {
	Extract(ctx context.Context, input types.ExtractProfileInput) (types.CandidateProfile, types.ExtractionSource)
}

// SubmitRequest is a new application
type SubmitRequest struct {
	CandidateName string               `json:"candidateName"`
	ResumeText    string               `json:"resumeText" validate:"required"`
	Job           types.JobRequirement `json:"job" validate:"-"`
}

// Service coordinates the scoring core with extraction and storage
type Service struct {
	extractor       ProfileExtractor
	catalog         *quiz.Catalog
	store           store.Store
	logger          *errors.Logger
	metrics         *observability.Metrics
	validate        *validator.Validate
	rankConcurrency int
	now             func() time.Time
	newID           func() string
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records business metrics on m
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRankConcurrency sets how many resumes Rank screens at once
func WithRankConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.rankConcurrency = n
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the pipeline. st may be nil for stateless use (match, rank, verify).
func NewService(extractor ProfileExtractor, catalog *quiz.Catalog, st store.Store, logger *errors.Logger, opts ...Option) *Service {
	s := &Service{
		extractor:       extractor,
		catalog:         catalog,
		store:           st,
		logger:          logger,
		validate:        validator.New(),
		rankConcurrency: DefaultRankConcurrency,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate scores an already extracted profile against a job. The test gate
// is finalScore >= job.thresholdScore; the engine's eligibility bucket is
// reported alongside but does not decide access to the quiz.
func (s *Service) Evaluate(ctx context.Context, profile types.CandidateProfile, job types.JobRequirement) (types.ApplicationReport, error) {
	return s.evaluate(ctx, profile, types.ExtractionSourceProvided, job)
}

func (s *Service) evaluate(ctx context.Context, profile types.CandidateProfile, source types.ExtractionSource, job types.JobRequirement) (types.ApplicationReport, error) {
	result, err := matching.Match(profile, job)
	if err != nil {
		s.metrics.RecordBusinessMetric(ctx, observability.MetricApplicationScored, false)
		return types.ApplicationReport{}, err
	}

	report := types.ApplicationReport{
		JobTitle:         job.Title,
		Profile:          profile,
		ExtractionSource: source,
		Match:            result,
		Suggestions:      suggestions.Generate(result, profile, job),
		TestEligible:     result.MeetsThreshold,
	}
	if report.Suggestions == nil {
		report.Suggestions = []string{}
	}

	if report.TestEligible {
		bank := s.catalog.Bank()
		res := bank.Resolve(job.Title)
		report.TestCategory = res.Category
		report.TestAvailable = bank.HasCategory(res.Category)
	}

	s.metrics.RecordBusinessMetric(ctx, observability.MetricApplicationScored, true,
		attribute.String("eligibility", string(result.Eligibility)),
		attribute.Bool("test_eligible", report.TestEligible))
	s.metrics.RecordMatchScore(ctx, result.FinalScore,
		attribute.String("eligibility", string(result.Eligibility)))

	return report, nil
}

// Screen extracts a profile from resume text and evaluates it without saving
func (s *Service) Screen(ctx context.Context, resumeText string, job types.JobRequirement) (types.ApplicationReport, error) {
	if err := matching.ValidateJob(job); err != nil {
		return types.ApplicationReport{}, err
	}

	profile, source := s.extractor.Extract(ctx, types.ExtractProfileInput{ResumeText: resumeText, Job: job})
	return s.evaluate(ctx, profile, source, job)
}

// Submit screens a resume and persists the application with its analysis.
// Extraction problems never fail a submission; storage problems do.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*types.Application, error) {
	ctx, span := tracer.Start(ctx, "application.submit")
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "resume text and job are required", err)
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	report, err := s.Screen(ctx, req.ResumeText, req.Job)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "screening failed")
		return nil, err
	}

	report.ID = s.newID()
	report.CandidateName = req.CandidateName
	report.CreatedAt = s.now()

	app := &types.Application{
		ApplicationReport: report,
		Job:               req.Job,
		ResumeText:        req.ResumeText,
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.logger.LogError(err, "Failed to persist application", "job_title", req.Job.Title)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("application.id", app.ID),
		attribute.Int("application.final_score", app.Match.FinalScore),
		attribute.String("application.extraction_source", string(app.ExtractionSource)),
	)
	s.logger.Info("Application submitted",
		"application_id", app.ID,
		"final_score", app.Match.FinalScore,
		"eligibility", app.Match.Eligibility,
		"test_eligible", app.TestEligible,
		"extraction_source", app.ExtractionSource)

	return app, nil
}

// Get loads an application for recruiter review
func (s *Service) Get(ctx context.Context, id string) (*types.Application, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	return s.store.GetApplication(ctx, id)
}

// SubmitQuiz grades the quiz of a gated application, verifies its claimed
// skills and stores both. Each application accepts one submission.
func (s *Service) SubmitQuiz(ctx context.Context, id string, answers []types.QuizAnswer) (types.QuizSubmissionReport, error) {
	ctx, span := tracer.Start(ctx, "application.submit_quiz",
		trace.WithAttributes(attribute.String("application.id", id)))
	defer span.End()

	if err := s.validateAnswers(answers); err != nil {
		return types.QuizSubmissionReport{}, err
	}

	app, err := s.Get(ctx, id)
	if err != nil {
		return types.QuizSubmissionReport{}, err
	}
	if !app.TestEligible {
		return types.QuizSubmissionReport{}, errors.NewForbiddenError(errors.ErrCodeTestNotAvailable,
			"this application did not reach the score required for the test", nil).
			WithContext("application_id", id).
			WithContext("final_score", app.Match.FinalScore).
			WithContext("threshold_score", app.Match.ThresholdScore)
	}
	if app.QuizSubmittedAt != nil {
		return types.QuizSubmissionReport{}, errors.NewConflictError(errors.ErrCodeQuizAlreadySubmitted,
			"quiz already submitted for this application", nil).WithContext("application_id", id)
	}

	bank := s.catalog.Bank()
	result, err := bank.ScoreCategory(app.TestCategory, answers)
	if err != nil {
		return types.QuizSubmissionReport{}, err
	}
	questions, _ := bank.Questions(app.TestCategory)
	verified := verification.Verify(bank, app.Profile.Skills, app.TestCategory,
		quiz.AnswersByPosition(questions, answers))

	if err := s.store.SaveQuizResult(ctx, id, result, verified, s.now()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return types.QuizSubmissionReport{}, err
	}

	s.recordQuizMetrics(ctx, result, verified)
	s.logger.Info("Quiz submitted",
		"application_id", id,
		"category", result.Category,
		"score", result.PercentageScore,
		"verified", len(verified.VerifiedSkills),
		"unverified", len(verified.UnverifiedSkills),
		"untested", len(verified.UntestedSkills))

	return types.QuizSubmissionReport{ApplicationID: id, Quiz: result, Verification: verified}, nil
}

// Questions returns the public quiz for a job title
func (s *Service) Questions(jobTitle string) types.QuestionSheet {
	return s.catalog.Bank().SelectQuestions(jobTitle)
}

// ScoreQuiz grades answers for a job title without any application
func (s *Service) ScoreQuiz(ctx context.Context, jobTitle string, answers []types.QuizAnswer) (types.QuizResult, error) {
	if err := s.validateAnswers(answers); err != nil {
		return types.QuizResult{}, err
	}
	bank := s.catalog.Bank()
	result, err := bank.ScoreCategory(bank.Resolve(jobTitle).Category, answers)
	if err != nil {
		return types.QuizResult{}, err
	}
	s.metrics.RecordBusinessMetric(ctx, observability.MetricQuizScored, true,
		attribute.String("category", result.Category))
	s.metrics.RecordQuizScore(ctx, result.PercentageScore, attribute.String("category", result.Category))
	return result, nil
}

// VerifyRequest is a stateless verification. Category wins over JobTitle;
// with neither, the bank's default category is used.
type VerifyRequest struct {
	ClaimedSkills []string `json:"claimedSkills"`
	Category      string   `json:"category"`
	JobTitle      string   `json:"jobTitle"`
	Answers       []int    `json:"answers"`
}

// Verify classifies claimed skills against positional answers
func (s *Service) Verify(ctx context.Context, req VerifyRequest) types.SkillVerification {
	bank := s.catalog.Bank()
	category := req.Category
	if category == "" {
		category = bank.Resolve(req.JobTitle).Category
	}

	result := verification.Verify(bank, req.ClaimedSkills, category, req.Answers)
	s.recordVerificationMetrics(ctx, result)
	return result
}

func (s *Service) validateAnswers(answers []types.QuizAnswer) error {
	for i, a := range answers {
		if err := s.validate.Struct(a); err != nil {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"every answer needs a questionId and a non-negative selectedOption", err).
				WithContext("answer_index", i)
		}
	}
	return nil
}

func (s *Service) requireStore() error {
	if s.store == nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "no application store configured", nil)
	}
	return nil
}

func (s *Service) recordQuizMetrics(ctx context.Context, result types.QuizResult, verified types.SkillVerification) {
	s.metrics.RecordBusinessMetric(ctx, observability.MetricQuizScored, true,
		attribute.String("category", result.Category))
	s.metrics.RecordQuizScore(ctx, result.PercentageScore, attribute.String("category", result.Category))
	s.recordVerificationMetrics(ctx, verified)
}

func (s *Service) recordVerificationMetrics(ctx context.Context, v types.SkillVerification) {
	for status, n := range map[types.VerificationStatus]int{
		types.SkillVerified:   len(v.VerifiedSkills),
		types.SkillUnverified: len(v.UnverifiedSkills),
		types.SkillUntested:   len(v.UntestedSkills),
	} {
		s.metrics.RecordBusinessCount(ctx, observability.MetricSkillVerification, true, int64(n),
			attribute.String("status", string(status)))
	}
}
