package extraction

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"hirescore/internal/suggestions"
	"hirescore/internal/textmatch"
	"hirescore/internal/types"
)

var (
	yearsPattern     = regexp.MustCompile(`(?i)\b(\d{1,2})\s*\+?\s*(?:years?|yrs?)\b`)
	sentenceSplitter = regexp.MustCompile(`[\n\r;•●▪|]+|\.\s+`)
)

// Longer names first so "CompTIA Security+" wins over "Security+"
var knownCertifications = []string{
	"AWS Certified Security",
	"CompTIA Security+",
	"CompTIA Network+",
	"CompTIA CySA+",
	"CompTIA PenTest+",
	"Security+",
	"Network+",
	"CySA+",
	"PenTest+",
	"ISC2 CC",
	"CISSP",
	"CISM",
	"CISA",
	"CRISC",
	"CCSP",
	"CCSK",
	"OSCP",
	"OSCE",
	"GPEN",
	"GCIH",
	"GCFA",
	"GSEC",
	"CEH",
	"CCNA",
}

var knownJobTitles = []string{
	"SOC Analyst",
	"Security Analyst",
	"Cybersecurity Analyst",
	"Threat Analyst",
	"Threat Hunter",
	"Penetration Tester",
	"Ethical Hacker",
	"Security Engineer",
	"Security Architect",
	"Security Consultant",
	"Incident Responder",
	"Forensic Analyst",
	"Network Administrator",
	"System Administrator",
	"Network Engineer",
	"IT Support",
	"Help Desk",
}

// KeywordExtractor scans resume text for the job's own terms. It never fails
// and gives the same answer for the same input.
type KeywordExtractor struct{}

// NewKeywordExtractor returns the deterministic fallback extractor
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract implements Extractor
func (k *KeywordExtractor) Extract(_ context.Context, input types.ExtractProfileInput) (types.CandidateProfile, error) {
	return k.Scan(input.ResumeText, input.Job), nil
}

// Scan builds a profile from text against job
func (k *KeywordExtractor) Scan(text string, job types.JobRequirement) types.CandidateProfile {
	sentences := splitSentences(text)

	profile := types.CandidateProfile{
		YearsOfExperience: scanYears(text),
		Skills:            termsIn(text, job.Skills),
		KnowledgeKeywords: termsIn(text, job.Knowledge),
		TaskKeywords:      tasksIn(sentences, job.Tasks),
		Education:         scanEducation(splitLines(text)),
		Certifications:    scanCertifications(text),
		JobTitles:         termsIn(text, append([]string{job.Title}, knownJobTitles...)),
	}
	return Clean(profile)
}

// scanYears returns the largest "N years" / "N+ yrs" figure in text
func scanYears(text string) int {
	best := 0
	for _, m := range yearsPattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best && n <= maxYears {
			best = n
		}
	}
	return best
}

func termsIn(text string, terms []string) []string {
	var found []string
	for _, term := range terms {
		if textmatch.ContainsTerm(text, term) {
			found = append(found, term)
		}
	}
	return found
}

// tasksIn keeps the job's task phrases that some resume sentence covers
func tasksIn(sentences, tasks []string) []string {
	var found []string
	for _, task := range tasks {
		for _, s := range sentences {
			if textmatch.TaskMatch(task, s) {
				found = append(found, task)
				break
			}
		}
	}
	return found
}

// scanEducation returns the first line that names a degree
func scanEducation(lines []string) string {
	const maxLen = 160
	for _, s := range lines {
		if !suggestions.WeakEducation(s) {
			return truncateRunes(s, maxLen)
		}
	}
	return ""
}

func scanCertifications(text string) []string {
	var found []string
	for _, cert := range knownCertifications {
		if !textmatch.ContainsTerm(text, cert) || coveredBy(found, cert) {
			continue
		}
		found = append(found, cert)
	}
	return found
}

func coveredBy(found []string, cert string) bool {
	for _, f := range found {
		if textmatch.Fuzzy(f, cert) {
			return true
		}
	}
	return false
}

func splitSentences(text string) []string {
	return nonEmpty(sentenceSplitter.Split(text, -1))
}

func splitLines(text string) []string {
	return nonEmpty(strings.Split(text, "\n"))
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
