package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"hirescore/internal/application"
	"hirescore/internal/common"
	"hirescore/internal/export"
	"hirescore/internal/types"
	"hirescore/internal/utils"

	"github.com/spf13/cobra"
)

type rankInput struct {
	job     types.JobRequirement
	resumes []application.Resume
}

func newRankCmd() *cobra.Command {
	var (
		cmdConfig common.CommandConfig
		xlsxPath  string
	)

	cmd := &cobra.Command{
		Use:   "rank [job-file] [resume-file-or-dir...]",
		Short: "Rank many resumes against one job requirement",
		Long: `Screen every resume against a job requirement and order the candidates
by final score, highest first. Directory arguments contribute every .txt or
.md file directly inside them; the candidate name is the file name without
its extension.

Use --xlsx to also write the ranking as a spreadsheet with summary,
ranking and feedback sheets.`,
		Args:    cobra.MinimumNArgs(2),
		PreRunE: resolveFormat(&cmdConfig),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := commandEnv(cmd)
			if err != nil {
				return err
			}

			files, err := expandResumeArgs(args[1:])
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no resume files found in %v", args[1:])
			}

			p, err := newPipeline(cmd.Context(), cfg, logger, pipelineOptions{})
			if err != nil {
				return err
			}
			defer p.Close()

			paths := append([]string{args[0]}, files...)
			createInput := func(contents []string) (rankInput, error) {
				var in rankInput
				if err := common.Decode(args[0], []byte(contents[0]), &in.job); err != nil {
					return in, fmt.Errorf("cannot parse job file %s: %w", args[0], err)
				}
				for i, text := range contents[1:] {
					in.resumes = append(in.resumes, application.Resume{
						Name:   utils.FileStem(files[i]),
						Source: files[i],
						Text:   text,
					})
				}
				return in, nil
			}

			logDetails := func(in rankInput, c common.CommandConfig) {
				logger.Info("Starting ranking",
					"job_title", in.job.Title,
					"resumes", len(in.resumes),
					"concurrency", cfg.App.RankConcurrency,
					"output_format", c.OutputFormat)
			}

			operation := func(ctx context.Context, in rankInput) (types.RankingReport, error) {
				report, err := p.app.Rank(ctx, in.job, in.resumes)
				if err != nil || xlsxPath == "" {
					return report, err
				}
				saved, err := export.SaveRanking(report, xlsxPath, time.Now())
				if err != nil {
					return report, err
				}
				logger.Info("Ranking spreadsheet written", "file", saved)
				return report, nil
			}

			cmdConfig.Stdout = cmd.OutOrStdout()
			if err := common.RunCommand(cmd.Context(), logger, cmdConfig, paths, createInput, operation, logDetails); err != nil {
				return fmt.Errorf("failed to rank candidates: %w", err)
			}
			return nil
		},
	}

	addOutputFlags(cmd, &cmdConfig)
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the ranking to this .xlsx file")
	return cmd
}

// expandResumeArgs replaces directories with the text files they contain
func expandResumeArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		inDir, err := utils.ListTextFiles(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, inDir...)
	}
	return files, nil
}
