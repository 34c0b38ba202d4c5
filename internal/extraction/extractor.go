// Package extraction turns raw resume text into a CandidateProfile, either
// through a language model or through a deterministic keyword scan.
package extraction

import (
	"context"
	"strings"

	"hirescore/internal/textmatch"
	"hirescore/internal/types"
)

// Extractor produces a candidate profile for one resume and job
type Extractor interface {
	Extract(ctx context.Context, input types.ExtractProfileInput) (types.CandidateProfile, error)
}

// maxYears bounds yearsOfExperience from any extractor
const maxYears = 70

// Clean trims and dedupes every list so the profile is safe to match against
func Clean(p types.CandidateProfile) types.CandidateProfile {
	p.Skills = nonNil(textmatch.Dedupe(p.Skills))
	p.KnowledgeKeywords = nonNil(textmatch.Dedupe(p.KnowledgeKeywords))
	p.TaskKeywords = nonNil(textmatch.Dedupe(p.TaskKeywords))
	p.Certifications = nonNil(textmatch.Dedupe(p.Certifications))
	p.JobTitles = nonNil(textmatch.Dedupe(p.JobTitles))
	p.Education = strings.TrimSpace(p.Education)
	p.YearsOfExperience = min(max(p.YearsOfExperience, 0), maxYears)
	return p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
