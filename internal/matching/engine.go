// Package matching scores a candidate profile against a job requirement.
package matching

import (
	"fmt"
	"math"

	"hirescore/internal/textmatch"
	"hirescore/internal/types"
)

// Eligibility bucket boundaries
const (
	BorderlineScore = 60
	EligibleScore   = 75

	// OverqualifiedMargin is how far past the maximum years a candidate may go
	OverqualifiedMargin = 3

	lowSkillPercent     = 50
	lowKnowledgePercent = 40
)

// Match computes category overlaps, the weighted final score and the
// eligibility bucket. It fails only when the job is malformed.
func Match(profile types.CandidateProfile, job types.JobRequirement) (types.MatchResult, error) {
	if err := ValidateJob(job); err != nil {
		return types.MatchResult{}, err
	}

	result := types.MatchResult{
		SkillMatch:      matchCategory(job.Skills, profile.Skills, textmatch.Equal),
		KnowledgeMatch:  matchCategory(job.Knowledge, profile.KnowledgeKeywords, textmatch.Fuzzy),
		TaskMatch:       matchCategory(job.Tasks, profile.TaskKeywords, textmatch.TaskMatch),
		ExperienceMatch: matchExperience(profile.YearsOfExperience, *job.ExperienceRange),
		ThresholdScore:  job.EffectiveThreshold(),
		Warnings:        []string{},
	}

	result.FinalScore = FinalScore(result.SkillMatch.Percentage, result.KnowledgeMatch.Percentage,
		result.TaskMatch.Percentage, *job.Weights)
	result.Eligibility = EligibilityFor(result.FinalScore)
	result.MeetsThreshold = result.FinalScore >= result.ThresholdScore

	if result.ExperienceMatch.Status != types.ExperienceInRange {
		result.Warnings = append(result.Warnings, result.ExperienceMatch.Message)
	}
	if result.SkillMatch.Percentage < lowSkillPercent {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skill match is %d%%, below %d%%", result.SkillMatch.Percentage, lowSkillPercent))
	}
	if result.KnowledgeMatch.Percentage < lowKnowledgePercent {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Knowledge match is %d%%, below %d%%", result.KnowledgeMatch.Percentage, lowKnowledgePercent))
	}

	return result, nil
}

// FinalScore is the weighted sum of the category percentages, rounded and clamped to [0,100]
func FinalScore(skillPct, knowledgePct, taskPct int, w types.Weights) int {
	score := math.Round(float64(skillPct)*w.Skills + float64(knowledgePct)*w.Knowledge + float64(taskPct)*w.Tasks)
	switch {
	case math.IsNaN(score) || score < 0:
		return 0
	case score > 100:
		return 100
	}
	return int(score)
}

// EligibilityFor buckets a final score
func EligibilityFor(score int) types.Eligibility {
	switch {
	case score < BorderlineScore:
		return types.NotEligible
	case score < EligibleScore:
		return types.Borderline
	default:
		return types.Eligible
	}
}

// Percentage returns round(matched/total*100). An empty requirement list is fully met.
func Percentage(matched, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(matched) / float64(total) * 100))
}

func matchCategory(required, candidate []string, same func(required, candidate string) bool) types.CategoryMatch {
	required = textmatch.Dedupe(required)
	m := types.CategoryMatch{
		Matched: []string{},
		Missing: []string{},
	}

	for _, req := range required {
		found := false
		for _, c := range candidate {
			if same(req, c) {
				found = true
				break
			}
		}
		if found {
			m.Matched = append(m.Matched, req)
		} else {
			m.Missing = append(m.Missing, req)
		}
	}

	m.Percentage = Percentage(len(m.Matched), len(required))
	return m
}

func matchExperience(years int, r types.ExperienceRange) types.ExperienceMatch {
	if years < 0 {
		years = 0
	}

	m := types.ExperienceMatch{
		CandidateYears: years,
		RequiredMin:    r.Min,
		RequiredMax:    r.Max,
	}

	switch {
	case years < r.Min:
		m.Status = types.ExperienceBelowMinimum
		m.Flag = types.FlagRed
		m.YearsShort = r.Min - years
		m.Message = fmt.Sprintf("Candidate has %d %s of experience, %d %s short of the %d-year minimum",
			years, yearsWord(years), m.YearsShort, yearsWord(m.YearsShort), r.Min)
	case years > r.Max+OverqualifiedMargin:
		m.Status = types.ExperienceOverqualified
		m.Flag = types.FlagYellow
		m.YearsOver = years - r.Max
		m.Message = fmt.Sprintf("Candidate has %d years of experience, %d over the %d-year maximum and may be overqualified",
			years, m.YearsOver, r.Max)
	default:
		m.Status = types.ExperienceInRange
		m.Flag = types.FlagGreen
		m.Message = fmt.Sprintf("Candidate's %d %s of experience fits the %d-%d year range",
			years, yearsWord(years), r.Min, r.Max)
	}
	return m
}

func yearsWord(n int) string {
	if n == 1 {
		return "year"
	}
	return "years"
}
