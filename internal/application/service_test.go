package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirescore/internal/errors"
	"hirescore/internal/extraction"
	"hirescore/internal/quiz"
	"hirescore/internal/store"
	"hirescore/internal/types"
)

// fakeExtractor returns a fixed profile per resume text
type fakeExtractor struct {
	mu       sync.Mutex
	profiles map[string]types.CandidateProfile
	calls    int
}

func (f *fakeExtractor) Extract(_ context.Context, input types.ExtractProfileInput) (types.CandidateProfile, types.ExtractionSource) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.profiles[input.ResumeText], types.ExtractionSourceLLM
}

func socJob() types.JobRequirement {
	return types.JobRequirement{
		Title:           "SOC Analyst",
		Skills:          []string{"SIEM", "Nmap"},
		Knowledge:       []string{"Network protocols"},
		Tasks:           []string{"Monitor alerts"},
		ExperienceRange: &types.ExperienceRange{Min: 0, Max: 2},
		Weights:         &types.Weights{Skills: 0.5, Knowledge: 0.3, Tasks: 0.2},
	}
}

func socAnalystProfile() types.CandidateProfile {
	return types.CandidateProfile{
		YearsOfExperience: 1,
		Skills:            []string{"siem"},
		KnowledgeKeywords: []string{"network protocols and architecture"},
		TaskKeywords:      []string{"monitor security alerts"},
	}
}

func newTestService(t *testing.T, extractor ProfileExtractor) (*Service, *store.MemoryStore) {
	t.Helper()
	bank, err := quiz.DefaultBank()
	require.NoError(t, err)

	st := store.NewMemoryStore()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(extractor, quiz.NewStaticCatalog(bank, errors.NewNopLogger()), st, errors.NewNopLogger(),
		WithClock(func() time.Time { return fixed }))
	return svc, st
}

func TestEvaluateScoresAndGatesProfile(t *testing.T) {
	svc, _ := newTestService(t, &fakeExtractor{})

	report, err := svc.Evaluate(context.Background(), socAnalystProfile(), socJob())
	require.NoError(t, err)

	assert.Equal(t, 50, report.Match.SkillMatch.Percentage)
	assert.Equal(t, 100, report.Match.KnowledgeMatch.Percentage)
	assert.Equal(t, 100, report.Match.TaskMatch.Percentage)
	assert.Equal(t, 75, report.Match.FinalScore)
	assert.Equal(t, types.Eligible, report.Match.Eligibility)
	assert.True(t, report.TestEligible)
	assert.True(t, report.TestAvailable)
	assert.Equal(t, "soc_analyst", report.TestCategory)
	assert.Equal(t, types.ExtractionSourceProvided, report.ExtractionSource)
	assert.NotEmpty(t, report.Suggestions)
	assert.LessOrEqual(t, len(report.Suggestions), 5)
}

func TestEvaluateGateUsesJobThreshold(t *testing.T) {
	svc, _ := newTestService(t, &fakeExtractor{})
	job := socJob()
	job.ThresholdScore = 80

	report, err := svc.Evaluate(context.Background(), socAnalystProfile(), job)
	require.NoError(t, err)

	// bucket says eligible but the job's own gate is higher
	assert.Equal(t, types.Eligible, report.Match.Eligibility)
	assert.False(t, report.TestEligible)
	assert.False(t, report.TestAvailable)
	assert.Empty(t, report.TestCategory)
}

func TestEvaluateRejectsMalformedJob(t *testing.T) {
	svc, _ := newTestService(t, &fakeExtractor{})
	job := socJob()
	job.Weights = nil

	_, err := svc.Evaluate(context.Background(), socAnalystProfile(), job)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidJob))
}

func TestSubmitPersistsApplication(t *testing.T) {
	extractor := &fakeExtractor{profiles: map[string]types.CandidateProfile{"resume": socAnalystProfile()}}
	svc, st := newTestService(t, extractor)

	app, err := svc.Submit(context.Background(), SubmitRequest{CandidateName: "Alex", ResumeText: "resume", Job: socJob()})
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, types.ExtractionSourceLLM, app.ExtractionSource)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), app.CreatedAt)

	stored, err := st.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex", stored.CandidateName)
	assert.Equal(t, "resume", stored.ResumeText)
	assert.Equal(t, 75, stored.Match.FinalScore)
}

func TestSubmitValidation(t *testing.T) {
	extractor := &fakeExtractor{}
	svc, _ := newTestService(t, extractor)

	_, err := svc.Submit(context.Background(), SubmitRequest{Job: socJob()})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))

	job := socJob()
	job.ExperienceRange = nil
	_, err = svc.Submit(context.Background(), SubmitRequest{ResumeText: "resume", Job: job})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidJob))
	assert.Zero(t, extractor.calls, "malformed jobs are rejected before extraction")
}

func TestSubmitWithKeywordFallback(t *testing.T) {
	fallback := extraction.NewFailoverExtractor(nil, time.Second, errors.NewNopLogger(), nil)
	svc, _ := newTestService(t, fallback)

	resume := "SOC analyst with 2 years of experience. Skilled in SIEM and Nmap.\nStudied network protocols."
	app, err := svc.Submit(context.Background(), SubmitRequest{ResumeText: resume, Job: socJob()})
	require.NoError(t, err)
	assert.Equal(t, types.ExtractionSourceFallback, app.ExtractionSource)
	assert.Equal(t, 2, app.Profile.YearsOfExperience)
	assert.Equal(t, 100, app.Match.SkillMatch.Percentage)
}

func TestSubmitQuiz(t *testing.T) {
	profile := socAnalystProfile()
	profile.Skills = []string{"SIEM", "Nmap", "Python"}
	extractor := &fakeExtractor{profiles: map[string]types.CandidateProfile{"resume": profile}}
	svc, _ := newTestService(t, extractor)
	ctx := context.Background()

	app, err := svc.Submit(ctx, SubmitRequest{ResumeText: "resume", Job: socJob()})
	require.NoError(t, err)
	require.True(t, app.TestEligible)

	answers := []types.QuizAnswer{
		{QuestionID: "soc-1", SelectedOption: 1},
		{QuestionID: "soc-4", SelectedOption: 0},
		{QuestionID: "unknown", SelectedOption: 2},
	}
	report, err := svc.SubmitQuiz(ctx, app.ID, answers)
	require.NoError(t, err)

	assert.Equal(t, app.ID, report.ApplicationID)
	assert.Equal(t, "soc_analyst", report.Quiz.Category)
	assert.Equal(t, 17, report.Quiz.PercentageScore)
	assert.Equal(t, []string{"unknown"}, report.Quiz.IgnoredAnswers)
	assert.Equal(t, []string{"SIEM"}, report.Verification.VerifiedSkills)
	assert.Equal(t, []string{"Nmap"}, report.Verification.UnverifiedSkills)
	assert.Equal(t, []string{"Python"}, report.Verification.UntestedSkills)

	got, err := svc.Get(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Verification)
	assert.Equal(t, report.Verification.VerifiedSkills, got.Verification.VerifiedSkills)

	_, err = svc.SubmitQuiz(ctx, app.ID, answers)
	assert.True(t, errors.HasCode(err, errors.ErrCodeQuizAlreadySubmitted))
}

func TestSubmitQuizGated(t *testing.T) {
	extractor := &fakeExtractor{profiles: map[string]types.CandidateProfile{"weak": {}}}
	svc, _ := newTestService(t, extractor)
	ctx := context.Background()

	app, err := svc.Submit(ctx, SubmitRequest{ResumeText: "weak", Job: socJob()})
	require.NoError(t, err)
	assert.False(t, app.TestEligible)

	_, err = svc.SubmitQuiz(ctx, app.ID, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeForbidden))
	assert.True(t, errors.HasCode(err, errors.ErrCodeTestNotAvailable))
}

func TestSubmitQuizErrors(t *testing.T) {
	svc, _ := newTestService(t, &fakeExtractor{})
	ctx := context.Background()

	_, err := svc.SubmitQuiz(ctx, "missing", nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeApplicationNotFound))

	_, err = svc.SubmitQuiz(ctx, "missing", []types.QuizAnswer{{QuestionID: "", SelectedOption: 1}})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}

func TestStatelessServiceHasNoStore(t *testing.T) {
	bank, err := quiz.DefaultBank()
	require.NoError(t, err)
	svc := NewService(&fakeExtractor{}, quiz.NewStaticCatalog(bank, errors.NewNopLogger()), nil, errors.NewNopLogger())

	_, err = svc.Get(context.Background(), "id")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func TestQuestionsHideAnswers(t *testing.T) {
	svc, _ := newTestService(t, &fakeExtractor{})

	sheet := svc.Questions("Pentester")
	assert.Equal(t, "penetration_tester", sheet.Category)
	assert.Equal(t, quiz.ResolvedByMapping, sheet.Resolved)
	assert.NotEmpty(t, sheet.Questions)

	unknown := svc.Questions("Chief Happiness Officer")
	assert.Equal(t, "cybersecurity_general", unknown.Category)
	assert.Equal(t, quiz.ResolvedByDefault, unknown.Resolved)
}

func TestScoreQuiz(t *testing.T) {
	svc, _ := newTestService(t, &fakeExtractor{})

	result, err := svc.ScoreQuiz(context.Background(), "SOC Analyst", []types.QuizAnswer{
		{QuestionID: "soc-1", SelectedOption: 1},
		{QuestionID: "soc-1", SelectedOption: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "soc_analyst", result.Category)
	assert.Equal(t, 10, result.EarnedPoints)
	assert.Equal(t, 60, result.MaxPoints)
}

func TestVerifyAllWrongIsUnverified(t *testing.T) {
	svc, _ := newTestService(t, &fakeExtractor{})

	// log analysis maps to soc-1, soc-2 and soc-3; all answered wrong
	result := svc.Verify(context.Background(), VerifyRequest{
		ClaimedSkills: []string{"Log Analysis"},
		Category:      "soc_analyst",
		Answers:       []int{0, 1, 1},
	})
	assert.Equal(t, []string{"Log Analysis"}, result.UnverifiedSkills)
	detail := result.VerificationDetails["Log Analysis"]
	assert.Equal(t, types.SkillUnverified, detail.Status)
	assert.Equal(t, 0, detail.Percentage)
}

func TestVerifyResolvesJobTitle(t *testing.T) {
	svc, _ := newTestService(t, &fakeExtractor{})

	result := svc.Verify(context.Background(), VerifyRequest{ClaimedSkills: []string{"SIEM"}, JobTitle: "Security Analyst", Answers: []int{1}})
	assert.Equal(t, "soc_analyst", result.Category)
	assert.Equal(t, []string{"SIEM"}, result.VerifiedSkills)
}
