package cli

import (
	"context"
	"fmt"

	"hirescore/internal/common"
	"hirescore/internal/types"

	"github.com/spf13/cobra"
)

type matchInput struct {
	job     types.JobRequirement
	resume  string
	profile *types.CandidateProfile
}

func newMatchCmd() *cobra.Command {
	var (
		cmdConfig   common.CommandConfig
		profileMode bool
	)

	cmd := &cobra.Command{
		Use:   "match [job-file] [resume-or-profile-file]",
		Short: "Score a resume against a job requirement",
		Long: `Score a candidate against a job requirement file (YAML or JSON).

The second file is plain resume text by default. Its fields are extracted
with the configured model, falling back to keyword scanning. With --profile
the second file is an already extracted candidate profile (YAML or JSON).

The report contains the per-category breakdown, the final score, the
eligibility bucket, improvement suggestions and whether the skill test
is unlocked.`,
		Args:    cobra.ExactArgs(2),
		PreRunE: resolveFormat(&cmdConfig),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := commandEnv(cmd)
			if err != nil {
				return err
			}

			p, err := newPipeline(cmd.Context(), cfg, logger, pipelineOptions{})
			if err != nil {
				return err
			}
			defer p.Close()

			createInput := func(contents []string) (matchInput, error) {
				var in matchInput
				if err := common.Decode(args[0], []byte(contents[0]), &in.job); err != nil {
					return in, fmt.Errorf("cannot parse job file %s: %w", args[0], err)
				}
				if !profileMode {
					in.resume = contents[1]
					return in, nil
				}
				var profile types.CandidateProfile
				if err := common.Decode(args[1], []byte(contents[1]), &profile); err != nil {
					return in, fmt.Errorf("cannot parse profile file %s: %w", args[1], err)
				}
				in.profile = &profile
				return in, nil
			}

			logDetails := func(in matchInput, c common.CommandConfig) {
				logger.Info("Starting match",
					"job_title", in.job.Title,
					"profile_mode", in.profile != nil,
					"resume_chars", len(in.resume),
					"output_format", c.OutputFormat)
			}

			operation := func(ctx context.Context, in matchInput) (types.ApplicationReport, error) {
				if in.profile != nil {
					return p.app.Evaluate(ctx, *in.profile, in.job)
				}
				return p.app.Screen(ctx, in.resume, in.job)
			}

			cmdConfig.Stdout = cmd.OutOrStdout()
			if err := common.RunCommand(cmd.Context(), logger, cmdConfig, args, createInput, operation, logDetails); err != nil {
				return fmt.Errorf("failed to match candidate: %w", err)
			}
			return nil
		},
	}

	addOutputFlags(cmd, &cmdConfig)
	cmd.Flags().BoolVar(&profileMode, "profile", false, "Treat the second file as an extracted candidate profile")
	return cmd
}
