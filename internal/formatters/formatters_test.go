package formatters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirescore/internal/types"
)

func sampleApplication() types.ApplicationReport {
	return types.ApplicationReport{
		ID:               "app-1",
		CandidateName:    "Kim",
		JobTitle:         "SOC Analyst",
		ExtractionSource: types.ExtractionSourceFallback,
		Match: types.MatchResult{
			SkillMatch:      types.CategoryMatch{Percentage: 50, Matched: []string{"SIEM"}, Missing: []string{"Nmap"}},
			KnowledgeMatch:  types.CategoryMatch{Percentage: 100, Matched: []string{"Network protocols"}},
			TaskMatch:       types.CategoryMatch{Percentage: 100, Matched: []string{"Monitor alerts"}},
			ExperienceMatch: types.ExperienceMatch{Status: types.ExperienceInRange, Flag: types.FlagGreen},
			FinalScore:      75,
			Eligibility:     types.Eligible,
			ThresholdScore:  60,
			MeetsThreshold:  true,
			Warnings:        []string{},
		},
		Suggestions:   []string{"Develop hands-on experience with Nmap"},
		TestEligible:  true,
		TestAvailable: true,
		TestCategory:  "soc_analyst",
	}
}

func TestFormatApplication(t *testing.T) {
	registry := NewFormatterRegistry()

	text, err := registry.Format(sampleApplication(), "text")
	require.NoError(t, err)
	assert.Contains(t, text, "=== MATCH REPORT: SOC ANALYST ===")
	assert.Contains(t, text, "Final Score: 75/100")
	assert.Contains(t, text, "Test Category: soc_analyst")
	assert.Contains(t, text, "  1. Develop hands-on experience with Nmap")

	md, err := registry.Format(sampleApplication(), "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "# Match Report: SOC Analyst")
	assert.Contains(t, md, "- **Eligibility:** eligible")
	assert.Contains(t, md, "## Warnings\n\n- none")
}

func TestFormatApplicationPointer(t *testing.T) {
	app := &types.Application{ApplicationReport: sampleApplication()}
	out, err := GlobalRegistry.Format(app, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Candidate: Kim")
}

func TestFormatJSON(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleApplication(), "json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "SOC Analyst", decoded["jobTitle"])
}

func TestFormatRankingTable(t *testing.T) {
	report := types.RankingReport{
		JobTitle: "SOC Analyst",
		Candidates: []types.RankedCandidate{
			{Rank: 1, Name: "Kim", FinalScore: 88, Eligibility: types.Eligible, TestEligible: true},
			{Rank: 2, Name: "Bob", FinalScore: 12, Eligibility: types.NotEligible},
		},
	}

	md, err := GlobalRegistry.Format(report, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "| # | Candidate | Score |")
	assert.Contains(t, md, "| 1 | Kim | 88 | eligible | yes |")

	text, err := GlobalRegistry.Format(&report, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Kim")
	assert.Contains(t, text, "not_eligible")
}

func TestFormatVerification(t *testing.T) {
	v := types.SkillVerification{
		Category:         "soc_analyst",
		TestAvailable:    true,
		VerifiedSkills:   []string{"SIEM"},
		UnverifiedSkills: []string{},
		UntestedSkills:   []string{"Python"},
		VerificationDetails: map[string]types.VerificationDetail{
			"SIEM":   {Status: types.SkillVerified, CorrectAnswers: 1, TotalQuestions: 3, Percentage: 33},
			"Python": {Status: types.SkillUntested, Reason: "no quiz question covers this skill"},
		},
	}

	out, err := GlobalRegistry.Format(v, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "SIEM: 1/3 correct (33%)")
	assert.Contains(t, out, "--- Not Tested ---")
	assert.Contains(t, out, "Python (no quiz question covers this skill)")
}

func TestFormatQuestionSheetHasNoAnswers(t *testing.T) {
	sheet := types.QuestionSheet{
		JobTitle: "SOC Analyst",
		Category: "soc_analyst",
		Resolved: "category",
		Questions: []types.PublicQuestion{
			{ID: "soc-1", Question: "Which tool correlates logs?", Options: []string{"IDS", "SIEM"}, Points: 10},
		},
	}

	out, err := GlobalRegistry.Format(sheet, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "1. [soc-1] Which tool correlates logs? (10 pts)")
	assert.Contains(t, out, "1) SIEM")
}

func TestFormatQuizResult(t *testing.T) {
	selected := 1
	q := types.QuizResult{
		Category: "soc_analyst", PercentageScore: 50, EarnedPoints: 10, MaxPoints: 20,
		PerQuestionResults: []types.QuestionResult{
			{QuestionID: "soc-1", Answered: true, SelectedOption: &selected, Correct: true, PointsEarned: 10, PointsPossible: 10},
			{QuestionID: "soc-2", PointsPossible: 10},
		},
		IgnoredAnswers: []string{"bogus"},
	}

	out, err := GlobalRegistry.Format(types.QuizSubmissionReport{ApplicationID: "app-1", Quiz: q}, "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "50% (10/20 points)")
	assert.Contains(t, out, "| soc-2 | - | no | 0/10 |")
	assert.Contains(t, out, "- bogus")
}

func TestUnknownFormat(t *testing.T) {
	_, err := GlobalRegistry.Format(sampleApplication(), "xml")
	assert.Error(t, err)
	assert.Equal(t, []string{"json", "markdown", "text"}, GlobalRegistry.GetSupportedFormats())
}
