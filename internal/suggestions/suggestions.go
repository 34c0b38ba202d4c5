// Package suggestions turns matching gaps into improvement advice for a candidate.
package suggestions

import (
	"fmt"
	"strings"

	"hirescore/internal/matching"
	"hirescore/internal/textmatch"
	"hirescore/internal/types"
)

// MaxSuggestions caps the list; lower priority advice is dropped first
const MaxSuggestions = 5

const (
	maxSkillSuggestions     = 3
	maxKnowledgeSuggestions = 2
	maxTaskSuggestions      = 2

	// educationExperienceYears is the minimum required experience at which
	// a weak education background is worth mentioning
	educationExperienceYears = 3
)

// certificationRule recommends certifications for titles containing any keyword
type certificationRule struct {
	keywords       []string
	certifications []string
}

// Rules are checked in order; the first keyword hit wins.
var certificationRules = []certificationRule{
	{keywords: []string{"pentester", "penetration", "pen tester", "ethical hacker", "red team"}, certifications: []string{"CEH", "OSCP", "GPEN"}},
	{keywords: []string{"analyst", "soc"}, certifications: []string{"CompTIA Security+", "CompTIA CySA+", "CEH"}},
	{keywords: []string{"incident", "forensic", "responder"}, certifications: []string{"GCIH", "GCFA", "CompTIA CySA+"}},
	{keywords: []string{"engineer", "architect"}, certifications: []string{"CISSP", "CCSP", "CompTIA Security+"}},
	{keywords: []string{"cloud"}, certifications: []string{"CCSK", "AWS Certified Security", "CCSP"}},
	{keywords: []string{"manager", "director", "lead"}, certifications: []string{"CISM", "CISSP", "CRISC"}},
}

var defaultCertifications = []string{"CompTIA Security+", "CompTIA Network+", "ISC2 CC"}

var degreeKeywords = []string{"bachelor", "master", "phd", "ph.d", "doctorate", "degree", "b.sc", "m.sc", "bsc", "msc", "b.s.", "m.s.", "b.tech", "m.tech"}

// Generate returns at most MaxSuggestions suggestions ordered by priority:
// experience gap, missing skills, missing knowledge, missing tasks,
// certifications, education, then a foundations reminder for low scores.
func Generate(result types.MatchResult, profile types.CandidateProfile, job types.JobRequirement) []string {
	var out []string

	if exp := result.ExperienceMatch; exp.Status == types.ExperienceBelowMinimum {
		out = append(out, fmt.Sprintf("Gain %d more %s of relevant experience to reach the %d-year minimum for %s",
			exp.YearsShort, plural(exp.YearsShort, "year", "years"), exp.RequiredMin, job.Title))
	}

	for _, skill := range head(result.SkillMatch.Missing, maxSkillSuggestions) {
		out = append(out, fmt.Sprintf("Develop hands-on experience with %s and list it explicitly on your resume", skill))
	}
	for _, area := range head(result.KnowledgeMatch.Missing, maxKnowledgeSuggestions) {
		out = append(out, fmt.Sprintf("Strengthen your knowledge of %s", area))
	}
	for _, task := range head(result.TaskMatch.Missing, maxTaskSuggestions) {
		out = append(out, fmt.Sprintf("Describe or gain experience with tasks such as \"%s\"", task))
	}

	if certs := RecommendCertifications(job.Title, profile.Certifications); len(certs) > 0 {
		out = append(out, fmt.Sprintf("Consider earning certifications such as %s", strings.Join(certs, ", ")))
	}

	if job.ExperienceRange != nil && job.ExperienceRange.Min >= educationExperienceYears && WeakEducation(profile.Education) {
		out = append(out, "Consider a relevant degree or formal training in cybersecurity or computer science to support this senior role")
	}

	if result.FinalScore < matching.BorderlineScore {
		out = append(out, fmt.Sprintf("Build foundational skills for %s through labs, online courses and practical projects", job.Title))
	}

	return truncate(out, MaxSuggestions)
}

// RecommendCertifications looks up certifications for a job title and drops
// those the candidate already holds.
func RecommendCertifications(title string, held []string) []string {
	certs := defaultCertifications
	normalized := textmatch.Normalize(title)
	for _, rule := range certificationRules {
		if containsAny(normalized, rule.keywords) {
			certs = rule.certifications
			break
		}
	}

	out := make([]string, 0, len(certs))
	for _, c := range certs {
		if !holds(held, c) {
			out = append(out, c)
		}
	}
	return out
}

// WeakEducation reports whether an education string lacks any degree
func WeakEducation(education string) bool {
	normalized := textmatch.Normalize(education)
	if normalized == "" {
		return true
	}
	return !containsAny(normalized, degreeKeywords)
}

func holds(held []string, cert string) bool {
	for _, h := range held {
		if textmatch.Fuzzy(h, cert) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func truncate(items []string, n int) []string {
	out := make([]string, 0, n)
	for _, s := range items {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
