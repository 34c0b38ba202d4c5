package application

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"hirescore/internal/matching"
	"hirescore/internal/types"
)

// Resume is one candidate in a ranking run
type Resume struct {
	Name   string
	Source string
	Text   string
}

// Rank screens every resume against job concurrently and orders them by
// final score, highest first, then by name.
func (s *Service) Rank(ctx context.Context, job types.JobRequirement, resumes []Resume) (types.RankingReport, error) {
	if err := matching.ValidateJob(job); err != nil {
		return types.RankingReport{}, err
	}

	ranked := make([]types.RankedCandidate, len(resumes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.rankConcurrency)
	for i, r := range resumes {
		g.Go(func() error {
			report, err := s.Screen(gctx, r.Text, job)
			if err != nil {
				return err
			}
			ranked[i] = rankedFrom(r, report)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.RankingReport{}, err
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].FinalScore != ranked[b].FinalScore {
			return ranked[a].FinalScore > ranked[b].FinalScore
		}
		return ranked[a].Name < ranked[b].Name
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	s.logger.Info("Ranking complete", "job_title", job.Title, "candidates", len(ranked))

	return types.RankingReport{
		JobTitle:       job.Title,
		ThresholdScore: job.EffectiveThreshold(),
		Candidates:     ranked,
	}, nil
}

func rankedFrom(r Resume, report types.ApplicationReport) types.RankedCandidate {
	m := report.Match
	return types.RankedCandidate{
		Name:             r.Name,
		Source:           r.Source,
		FinalScore:       m.FinalScore,
		Eligibility:      m.Eligibility,
		TestEligible:     report.TestEligible,
		SkillPercent:     m.SkillMatch.Percentage,
		KnowledgePercent: m.KnowledgeMatch.Percentage,
		TaskPercent:      m.TaskMatch.Percentage,
		Experience:       m.ExperienceMatch.Status,
		ExtractionSource: report.ExtractionSource,
		Warnings:         m.Warnings,
		Suggestions:      report.Suggestions,
	}
}
