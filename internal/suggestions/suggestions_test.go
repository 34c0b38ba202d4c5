package suggestions

import (
	"testing"

	"hirescore/internal/matching"
	"hirescore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analystJob(minYears int) types.JobRequirement {
	return types.JobRequirement{
		Title:           "Security Analyst",
		Skills:          []string{"SIEM", "Nmap", "Wireshark", "Splunk"},
		Knowledge:       []string{"Network protocols", "Cryptography", "Malware analysis"},
		Tasks:           []string{"Monitor security alerts", "Write incident reports", "Tune detection rules"},
		ExperienceRange: &types.ExperienceRange{Min: minYears, Max: minYears + 3},
		Weights:         &types.Weights{Skills: 0.5, Knowledge: 0.3, Tasks: 0.2},
	}
}

func TestGeneratePriorityOrderAndTruncation(t *testing.T) {
	job := analystJob(5)
	profile := types.CandidateProfile{YearsOfExperience: 2}

	result, err := matching.Match(profile, job)
	require.NoError(t, err)

	got := Generate(result, profile, job)
	require.Len(t, got, MaxSuggestions)
	assert.Contains(t, got[0], "Gain 3 more years")
	assert.Contains(t, got[1], "SIEM")
	assert.Contains(t, got[2], "Nmap")
	assert.Contains(t, got[3], "Wireshark")
	assert.Contains(t, got[4], "Network protocols")
	for _, s := range got {
		assert.NotContains(t, s, "Splunk", "only the top three missing skills are suggested")
	}
}

func TestGenerateFallsThroughToCertificationsAndEducation(t *testing.T) {
	job := analystJob(3)
	profile := types.CandidateProfile{
		YearsOfExperience: 4,
		Skills:            []string{"SIEM", "Nmap", "Wireshark", "Splunk"},
		KnowledgeKeywords: []string{"network protocols", "cryptography", "malware analysis"},
		TaskKeywords:      []string{"monitor security alerts"},
		Certifications:    []string{"Security+"},
	}

	result, err := matching.Match(profile, job)
	require.NoError(t, err)

	got := Generate(result, profile, job)
	require.Len(t, got, 4)
	assert.Contains(t, got[0], "Write incident reports")
	assert.Contains(t, got[1], "Tune detection rules")
	assert.Equal(t, "Consider earning certifications such as CompTIA CySA+, CEH", got[2])
	assert.Contains(t, got[3], "degree")
}

func TestGenerateFoundationsForLowScore(t *testing.T) {
	job := analystJob(0)
	job.Skills = nil
	job.Knowledge = nil
	job.Tasks = []string{"Monitor security alerts"}
	job.Weights = &types.Weights{Tasks: 1}
	profile := types.CandidateProfile{Education: "B.Sc. Computer Science", Certifications: []string{"CompTIA Security+", "CySA+", "CEH"}}

	result, err := matching.Match(profile, job)
	require.NoError(t, err)
	require.Equal(t, 0, result.FinalScore)

	got := Generate(result, profile, job)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "Monitor security alerts")
	assert.Contains(t, got[1], "Build foundational skills")
}

func TestGenerateEmptyForPerfectCandidate(t *testing.T) {
	job := analystJob(1)
	profile := types.CandidateProfile{
		YearsOfExperience: 2,
		Skills:            job.Skills,
		KnowledgeKeywords: job.Knowledge,
		TaskKeywords:      job.Tasks,
		Certifications:    []string{"CompTIA Security+", "CompTIA CySA+", "CEH"},
	}

	result, err := matching.Match(profile, job)
	require.NoError(t, err)
	assert.Empty(t, Generate(result, profile, job))
}

func TestRecommendCertifications(t *testing.T) {
	tests := []struct {
		title string
		held  []string
		want  []string
	}{
		{"SOC Analyst", nil, []string{"CompTIA Security+", "CompTIA CySA+", "CEH"}},
		{"Senior Pentester", nil, []string{"CEH", "OSCP", "GPEN"}},
		{"Penetration Tester", []string{"oscp"}, []string{"CEH", "GPEN"}},
		{"Barista", nil, defaultCertifications},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, RecommendCertifications(tt.title, tt.held))
		})
	}
}

func TestWeakEducation(t *testing.T) {
	assert.True(t, WeakEducation(""))
	assert.True(t, WeakEducation("High school diploma"))
	assert.False(t, WeakEducation("Bachelor of Science in Information Security"))
	assert.False(t, WeakEducation("MSc Cyber Security"))
}
