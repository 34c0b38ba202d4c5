package quiz

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hirescore/internal/errors"
	"hirescore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBankYAML = `
version: "test-1"
defaultCategory: general
titleMappings:
  Security Analyst: soc_analyst
categories:
  soc_analyst:
    - id: q1
      question: Which tool correlates logs?
      options: [SIEM, Nmap, Burp, Git]
      correct: 0
      points: 10
      validatesSkills: [log analysis, SIEM]
    - id: q2
      question: Which Windows event ID is a failed logon?
      options: ["4624", "4625"]
      correct: 1
      points: 5
      validatesSkills: [log analysis]
  penetration_tester:
    - id: p1
      question: Which scan is stealthier?
      options: [SYN, Connect]
      correct: 0
      points: 10
  general:
    - id: g1
      question: What does the A in CIA stand for?
      options: [Audit, Availability]
      correct: 1
      points: 10
`

func testBank(t *testing.T) *Bank {
	t.Helper()
	bank, err := ParseBank([]byte(testBankYAML))
	require.NoError(t, err)
	return bank
}

func TestResolveChain(t *testing.T) {
	bank := testBank(t)

	tests := []struct {
		title      string
		category   string
		resolvedBy string
	}{
		{"Security Analyst", "soc_analyst", ResolvedByMapping},
		{"  security   ANALYST ", "soc_analyst", ResolvedByMapping},
		{"Penetration Tester", "penetration_tester", ResolvedByCategory},
		{"soc analyst", "soc_analyst", ResolvedByCategory},
		{"Pastry Chef", "general", ResolvedByDefault},
		{"", "general", ResolvedByDefault},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			res := bank.Resolve(tt.title)
			assert.Equal(t, tt.category, res.Category)
			assert.Equal(t, tt.resolvedBy, res.ResolvedBy)
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "senior_soc_analyst", NormalizeTitle(" Senior SOC  Analyst "))
	assert.Equal(t, "red-team_operator", NormalizeTitle("Red-Team Operator"))
}

func TestSelectQuestionsStripsAnswers(t *testing.T) {
	bank := testBank(t)

	sheet := bank.SelectQuestions("Security Analyst")
	assert.Equal(t, "soc_analyst", sheet.Category)
	require.Len(t, sheet.Questions, 2)
	assert.Equal(t, "q1", sheet.Questions[0].ID)
	assert.Equal(t, []string{"SIEM", "Nmap", "Burp", "Git"}, sheet.Questions[0].Options)

	sheet.Questions[0].Options[0] = "tampered"
	again := bank.SelectQuestions("Security Analyst")
	assert.Equal(t, "SIEM", again.Questions[0].Options[0], "bank must not be mutable through served questions")
}

func TestScore(t *testing.T) {
	bank := testBank(t)
	questions, ok := bank.Questions("soc_analyst")
	require.True(t, ok)

	t.Run("all correct", func(t *testing.T) {
		result := Score(questions, []types.QuizAnswer{{QuestionID: "q1", SelectedOption: 0}, {QuestionID: "q2", SelectedOption: 1}})
		assert.Equal(t, 100, result.PercentageScore)
		assert.Equal(t, 15, result.EarnedPoints)
		assert.Equal(t, 15, result.MaxPoints)
	})

	t.Run("weighted by points", func(t *testing.T) {
		result := Score(questions, []types.QuizAnswer{{QuestionID: "q1", SelectedOption: 3}, {QuestionID: "q2", SelectedOption: 1}})
		assert.Equal(t, 33, result.PercentageScore)
		assert.False(t, result.PerQuestionResults[0].Correct)
		assert.True(t, result.PerQuestionResults[1].Correct)
	})

	t.Run("unknown question id is ignored", func(t *testing.T) {
		withUnknown := Score(questions, []types.QuizAnswer{
			{QuestionID: "q1", SelectedOption: 0},
			{QuestionID: "zz-99", SelectedOption: 2},
		})
		without := Score(questions, []types.QuizAnswer{{QuestionID: "q1", SelectedOption: 0}})

		assert.Equal(t, without.EarnedPoints, withUnknown.EarnedPoints)
		assert.Equal(t, without.MaxPoints, withUnknown.MaxPoints)
		assert.Equal(t, 67, withUnknown.PercentageScore)
		assert.Equal(t, []string{"zz-99"}, withUnknown.IgnoredAnswers)
	})

	t.Run("first answer per question wins", func(t *testing.T) {
		result := Score(questions, []types.QuizAnswer{{QuestionID: "q1", SelectedOption: 2}, {QuestionID: "q1", SelectedOption: 0}})
		assert.Equal(t, 0, result.EarnedPoints)
		require.NotNil(t, result.PerQuestionResults[0].SelectedOption)
		assert.Equal(t, 2, *result.PerQuestionResults[0].SelectedOption)
		assert.False(t, result.PerQuestionResults[1].Answered)
	})

	t.Run("no questions", func(t *testing.T) {
		result := Score(nil, []types.QuizAnswer{{QuestionID: "q1"}})
		assert.Equal(t, 0, result.PercentageScore)
		assert.Equal(t, 0, result.MaxPoints)
	})
}

func TestScoreCategoryUnknown(t *testing.T) {
	_, err := testBank(t).ScoreCategory("marketing", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoQuestionBank))
}

func TestAnswersByPosition(t *testing.T) {
	questions, _ := testBank(t).Questions("soc_analyst")
	got := AnswersByPosition(questions, []types.QuizAnswer{{QuestionID: "q2", SelectedOption: 1}, {QuestionID: "nope", SelectedOption: 0}})
	assert.Equal(t, []int{-1, 1}, got)
}

func TestNewBankRejectsInvalidDefinitions(t *testing.T) {
	valid := func() Definition {
		return Definition{
			DefaultCategory: "general",
			Categories: map[string][]types.QuizQuestion{
				"general": {{ID: "g1", Question: "?", Options: []string{"a", "b"}, Correct: 0, Points: 1}},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(d *Definition)
	}{
		{"missing default category", func(d *Definition) { d.DefaultCategory = "nope" }},
		{"mapping to unknown category", func(d *Definition) { d.TitleMappings = map[string]string{"x": "nope"} }},
		{"correct out of range", func(d *Definition) { d.Categories["general"][0].Correct = 5 }},
		{"zero points", func(d *Definition) { d.Categories["general"][0].Points = 0 }},
		{"duplicate id", func(d *Definition) {
			d.Categories["general"] = append(d.Categories["general"], d.Categories["general"][0])
		}},
		{"empty category", func(d *Definition) { d.Categories["empty"] = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid()
			tt.mutate(&def)
			_, err := NewBank(def)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidQuestionBank))
		})
	}

	_, err := NewBank(valid())
	assert.NoError(t, err)
}

func TestDefaultBankLoads(t *testing.T) {
	bank, err := DefaultBank()
	require.NoError(t, err)

	assert.Equal(t, "cybersecurity_general", bank.DefaultCategory())
	assert.Contains(t, bank.Categories(), "soc_analyst")
	assert.Equal(t, "soc_analyst", bank.Resolve("Security Analyst").Category)
	assert.Equal(t, "penetration_tester", bank.Resolve("Pentester").Category)
	assert.Equal(t, "incident_responder", bank.Resolve("Incident Responder").Category)
	assert.Equal(t, ResolvedByDefault, bank.Resolve("Chief Happiness Officer").ResolvedBy)
}

func TestCatalogReloadKeepsPreviousBankOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testBankYAML), 0o600))

	catalog, err := NewCatalog(path, errors.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "test-1", catalog.Bank().Version())

	require.NoError(t, os.WriteFile(path, []byte("categories: ["), 0o600))
	assert.Error(t, catalog.Reload())
	assert.Equal(t, "test-1", catalog.Bank().Version())

	updated := []byte("version: \"test-2\"\n" + testBankYAML[len("\nversion: \"test-1\"\n"):])
	require.NoError(t, os.WriteFile(path, updated, 0o600))
	require.NoError(t, catalog.Reload())
	assert.Equal(t, "test-2", catalog.Bank().Version())
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testBankYAML), 0o600))

	catalog, err := NewCatalog(path, errors.NewNopLogger())
	require.NoError(t, err)

	watcher, err := NewWatcher(catalog, 20*time.Millisecond, errors.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	defer func() { _ = watcher.Stop() }()

	updated := []byte("version: \"test-3\"\n" + testBankYAML[len("\nversion: \"test-1\"\n"):])
	require.NoError(t, os.WriteFile(path, updated, 0o600))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.Eventually(t, func() bool {
		return catalog.Bank().Version() == "test-3"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testBankYAML), 0o600))

	catalog, err := NewCatalog(path, errors.NewNopLogger())
	require.NoError(t, err)

	watcher, err := NewWatcher(catalog, 20*time.Millisecond, errors.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	require.NoError(t, watcher.Stop())
	require.NoError(t, watcher.Start())

	updated := []byte("version: \"test-4\"\n" + testBankYAML[len("\nversion: \"test-1\"\n"):])
	require.NoError(t, os.WriteFile(path, updated, 0o600))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.Eventually(t, func() bool {
		return catalog.Bank().Version() == "test-4"
	}, 5*time.Second, 20*time.Millisecond)

	assert.NotPanics(t, func() {
		assert.NoError(t, watcher.Stop())
		assert.NoError(t, watcher.Stop())
	})
}

func TestNewWatcherRequiresFile(t *testing.T) {
	bank, err := DefaultBank()
	require.NoError(t, err)
	_, err = NewWatcher(NewStaticCatalog(bank, errors.NewNopLogger()), 0, errors.NewNopLogger())
	assert.Error(t, err)
}
