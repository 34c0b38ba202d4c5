// Package verification cross-checks skills claimed on a resume against
// quiz performance.
package verification

import (
	"math"
	"slices"

	"hirescore/internal/textmatch"
	"hirescore/internal/types"
)

const (
	reasonNoBank     = "no test available for this role"
	reasonNoQuestion = "no quiz question covers this skill"
	reasonNoneRight  = "all related questions were answered incorrectly"
)

// QuestionSource looks up the question list of a test category
type QuestionSource interface {
	Questions(category string) ([]types.QuizQuestion, bool)
}

type questionRef struct {
	index   int
	correct int
}

type skillEntry struct {
	name string
	refs []questionRef
}

// Verify classifies every claimed skill as verified, unverified or untested.
// answers holds the selected option per question position; missing or
// negative entries count as unanswered.
func Verify(source QuestionSource, claimedSkills []string, category string, answers []int) types.SkillVerification {
	claimed := textmatch.Dedupe(claimedSkills)
	result := types.SkillVerification{
		Category:            category,
		VerifiedSkills:      []string{},
		UnverifiedSkills:    []string{},
		UntestedSkills:      []string{},
		VerificationDetails: make(map[string]types.VerificationDetail, len(claimed)),
	}

	questions, ok := source.Questions(category)
	if !ok || len(questions) == 0 {
		for _, skill := range claimed {
			result.UntestedSkills = append(result.UntestedSkills, skill)
			result.VerificationDetails[skill] = types.VerificationDetail{Status: types.SkillUntested, Reason: reasonNoBank}
		}
		return result
	}
	result.TestAvailable = true

	index := buildIndex(questions)
	for _, skill := range claimed {
		detail := verifySkill(skill, index, questions, answers)
		result.VerificationDetails[skill] = detail

		switch detail.Status {
		case types.SkillVerified:
			result.VerifiedSkills = append(result.VerifiedSkills, skill)
		case types.SkillUnverified:
			result.UnverifiedSkills = append(result.UnverifiedSkills, skill)
		default:
			result.UntestedSkills = append(result.UntestedSkills, skill)
		}
	}

	return result
}

// buildIndex maps each skill named in validatesSkills to the questions
// that test it, in first-seen order.
func buildIndex(questions []types.QuizQuestion) []skillEntry {
	var entries []skillEntry
	position := make(map[string]int)

	for i, q := range questions {
		for _, skill := range q.ValidatesSkills {
			key := textmatch.Normalize(skill)
			if key == "" {
				continue
			}
			pos, ok := position[key]
			if !ok {
				pos = len(entries)
				position[key] = pos
				entries = append(entries, skillEntry{name: skill})
			}
			entries[pos].refs = append(entries[pos].refs, questionRef{index: i, correct: q.Correct})
		}
	}
	return entries
}

func verifySkill(skill string, index []skillEntry, questions []types.QuizQuestion, answers []int) types.VerificationDetail {
	var (
		matchedSkills []string
		refs          []questionRef
		seen          = make(map[int]bool)
	)

	for _, entry := range index {
		if !textmatch.Fuzzy(skill, entry.name) {
			continue
		}
		matchedSkills = append(matchedSkills, entry.name)
		for _, ref := range entry.refs {
			if !seen[ref.index] {
				seen[ref.index] = true
				refs = append(refs, ref)
			}
		}
	}

	if len(refs) == 0 {
		return types.VerificationDetail{Status: types.SkillUntested, Reason: reasonNoQuestion}
	}

	slices.SortFunc(refs, func(a, b questionRef) int { return a.index - b.index })

	detail := types.VerificationDetail{
		MatchedSkills:  matchedSkills,
		TotalQuestions: len(refs),
		Questions:      make([]types.QuestionEvidence, 0, len(refs)),
	}
	for _, ref := range refs {
		correct := ref.index < len(answers) && answers[ref.index] >= 0 && answers[ref.index] == ref.correct
		if correct {
			detail.CorrectAnswers++
		}
		q := questions[ref.index]
		detail.Questions = append(detail.Questions, types.QuestionEvidence{
			QuestionID: q.ID,
			Question:   q.Question,
			Correct:    correct,
		})
	}

	detail.Percentage = int(math.Round(float64(detail.CorrectAnswers) / float64(detail.TotalQuestions) * 100))
	if detail.CorrectAnswers > 0 {
		detail.Status = types.SkillVerified
	} else {
		detail.Status = types.SkillUnverified
		detail.Reason = reasonNoneRight
	}
	return detail
}
