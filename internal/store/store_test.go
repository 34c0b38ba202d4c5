package store

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirescore/internal/config"
	"hirescore/internal/errors"
	"hirescore/internal/types"
)

func sampleApplication() *types.Application {
	return &types.Application{
		ApplicationReport: types.ApplicationReport{
			ID:               uuid.NewString(),
			CandidateName:    "Dana Reyes",
			JobTitle:         "Backend Engineer",
			ExtractionSource: types.ExtractionSourceFallback,
			Profile: types.CandidateProfile{
				YearsOfExperience: 4,
				Skills:            []string{"Go", "SQL"},
				KnowledgeKeywords: []string{},
				TaskKeywords:      []string{},
				Certifications:    []string{},
				JobTitles:         []string{},
			},
			Match: types.MatchResult{
				FinalScore:     72,
				Eligibility:    types.Borderline,
				ThresholdScore: 60,
				MeetsThreshold: true,
			},
			Suggestions:   []string{"Add Docker experience"},
			TestEligible:  true,
			TestAvailable: true,
			TestCategory:  "backend",
			CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
		},
		Job: types.JobRequirement{
			Title:           "Backend Engineer",
			Skills:          []string{"Go", "SQL", "Docker"},
			ExperienceRange: &types.ExperienceRange{Min: 2, Max: 6},
			Weights:         &types.Weights{Skills: 0.5, Knowledge: 0.3, Tasks: 0.2},
		},
		ResumeText: "Go developer with 4 years of experience",
	}
}

func sampleQuiz() (types.QuizResult, types.SkillVerification) {
	quiz := types.QuizResult{Category: "backend", PercentageScore: 80, EarnedPoints: 8, MaxPoints: 10}
	verification := types.SkillVerification{
		Category:         "backend",
		TestAvailable:    true,
		VerifiedSkills:   []string{"Go"},
		UnverifiedSkills: []string{},
		UntestedSkills:   []string{"SQL"},
		VerificationDetails: map[string]types.VerificationDetail{
			"Go": {Status: types.SkillVerified, CorrectAnswers: 2, TotalQuestions: 2, Percentage: 100},
		},
	}
	return quiz, verification
}

// testStoreContract runs the behaviour every Store implementation shares
func testStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		app := sampleApplication()
		require.NoError(t, s.CreateApplication(ctx, app))

		got, err := s.GetApplication(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, app.ID, got.ID)
		assert.Equal(t, app.CandidateName, got.CandidateName)
		assert.Equal(t, app.Job.Skills, got.Job.Skills)
		assert.Equal(t, app.Profile.Skills, got.Profile.Skills)
		assert.Equal(t, 72, got.Match.FinalScore)
		assert.Equal(t, types.Borderline, got.Match.Eligibility)
		assert.Equal(t, app.Suggestions, got.Suggestions)
		assert.True(t, got.TestEligible)
		assert.Equal(t, "backend", got.TestCategory)
		assert.Nil(t, got.Quiz)
		assert.Nil(t, got.QuizSubmittedAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.GetApplication(ctx, uuid.NewString())
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeApplicationNotFound))
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		_, err := s.GetApplication(ctx, "not-a-uuid")
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	})

	t.Run("quiz saved once", func(t *testing.T) {
		app := sampleApplication()
		require.NoError(t, s.CreateApplication(ctx, app))
		quiz, verification := sampleQuiz()
		at := time.Now().UTC().Truncate(time.Millisecond)

		require.NoError(t, s.SaveQuizResult(ctx, app.ID, quiz, verification, at))

		got, err := s.GetApplication(ctx, app.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Quiz)
		assert.Equal(t, 80, got.Quiz.PercentageScore)
		require.NotNil(t, got.Verification)
		assert.Equal(t, []string{"Go"}, got.Verification.VerifiedSkills)
		require.NotNil(t, got.QuizSubmittedAt)
		assert.True(t, at.Equal(*got.QuizSubmittedAt))

		err = s.SaveQuizResult(ctx, app.ID, quiz, verification, at)
		assert.True(t, errors.HasCode(err, errors.ErrCodeQuizAlreadySubmitted))
		assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
	})

	t.Run("quiz for unknown application", func(t *testing.T) {
		quiz, verification := sampleQuiz()
		err := s.SaveQuizResult(ctx, uuid.NewString(), quiz, verification, time.Now())
		assert.True(t, errors.HasCode(err, errors.ErrCodeApplicationNotFound))
	})

	t.Run("concurrent submissions accept exactly one", func(t *testing.T) {
		app := sampleApplication()
		require.NoError(t, s.CreateApplication(ctx, app))
		quiz, verification := sampleQuiz()

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.SaveQuizResult(ctx, app.ID, quiz, verification, time.Now()); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, succeeded)
	})
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	app := sampleApplication()
	require.NoError(t, s.CreateApplication(context.Background(), app))

	got, err := s.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	got.CandidateName = "changed"

	again, err := s.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana Reyes", again.CandidateName)
}

func TestMemoryStoreDuplicateID(t *testing.T) {
	s := NewMemoryStore()
	app := sampleApplication()
	require.NoError(t, s.CreateApplication(context.Background(), app))
	err := s.CreateApplication(context.Background(), app)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStorage))
}

func TestOpenDrivers(t *testing.T) {
	logger := errors.NewNopLogger()

	s, err := Open(context.Background(), config.StoreConfig{Driver: "memory"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(context.Background(), config.StoreConfig{Driver: "sqlite"}, logger)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(schemaSQL)
	require.Len(t, stmts, 4)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS applications")
	assert.Contains(t, stmts[3], "skill_verifications")
}

func TestPostgresStore(t *testing.T) {
	databaseURL := os.Getenv("HIRESCORE_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("HIRESCORE_TEST_DATABASE_URL not set, skipping Postgres store tests")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, databaseURL, 4)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Ping(ctx))

	testStoreContract(t, s)
}
