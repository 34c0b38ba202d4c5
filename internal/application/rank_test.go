package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirescore/internal/errors"
	"hirescore/internal/types"
)

func TestRankOrdersByScoreThenName(t *testing.T) {
	strong := socAnalystProfile()
	strong.Skills = []string{"SIEM", "Nmap"}
	extractor := &fakeExtractor{profiles: map[string]types.CandidateProfile{
		"strong": strong,
		"mid":    socAnalystProfile(),
		"weak":   {},
	}}
	svc, _ := newTestService(t, extractor)

	report, err := svc.Rank(context.Background(), socJob(), []Resume{
		{Name: "zoe", Text: "mid"},
		{Name: "bob", Text: "weak"},
		{Name: "amy", Text: "mid"},
		{Name: "kim", Text: "strong", Source: "kim.txt"},
	})
	require.NoError(t, err)

	require.Len(t, report.Candidates, 4)
	names := make([]string, len(report.Candidates))
	for i, c := range report.Candidates {
		names[i] = c.Name
		assert.Equal(t, i+1, c.Rank)
	}
	assert.Equal(t, []string{"kim", "amy", "zoe", "bob"}, names)
	assert.Equal(t, 100, report.Candidates[0].FinalScore)
	assert.Equal(t, "kim.txt", report.Candidates[0].Source)
	assert.Equal(t, 60, report.ThresholdScore)
	assert.False(t, report.Candidates[3].TestEligible)
	assert.Equal(t, 4, extractor.calls)
}

func TestRankRejectsMalformedJob(t *testing.T) {
	svc, _ := newTestService(t, &fakeExtractor{})
	job := socJob()
	job.Weights = &types.Weights{Skills: 0.5, Knowledge: 0.5, Tasks: 0.5}

	_, err := svc.Rank(context.Background(), job, []Resume{{Name: "a", Text: "x"}})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidJob))
}

func TestRankEmpty(t *testing.T) {
	svc, _ := newTestService(t, &fakeExtractor{})
	report, err := svc.Rank(context.Background(), socJob(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Candidates)
}
