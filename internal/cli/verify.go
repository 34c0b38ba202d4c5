package cli

import (
	"hirescore/internal/application"
	"hirescore/internal/common"

	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	var (
		cmdConfig common.CommandConfig
		req       application.VerifyRequest
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check claimed skills against test answers",
		Long: `Classify each claimed skill as verified, unverified or untested using the
answers given to a category's test. Answers are the selected option per
question, in bank order; a negative value marks an unanswered question.

--category selects the test directly; otherwise --job-title is resolved
to a category and, failing both, the default category is used.`,
		Args:    cobra.NoArgs,
		PreRunE: resolveFormat(&cmdConfig),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := commandEnv(cmd)
			if err != nil {
				return err
			}
			svc, err := newBankService(cfg, logger)
			if err != nil {
				return err
			}

			result := svc.Verify(cmd.Context(), req)
			logger.Info("Skill verification completed",
				"category", result.Category,
				"verified", len(result.VerifiedSkills),
				"unverified", len(result.UnverifiedSkills),
				"untested", len(result.UntestedSkills))

			return common.NewOutputHandlerTo(cmd.OutOrStdout(), logger).HandleOutput(result, cmdConfig)
		},
	}

	addOutputFlags(cmd, &cmdConfig)
	cmd.Flags().StringSliceVar(&req.ClaimedSkills, "skills", nil, "Claimed skills, comma separated")
	cmd.Flags().StringVar(&req.Category, "category", "", "Test category")
	cmd.Flags().StringVar(&req.JobTitle, "job-title", "", "Job title resolved to a test category")
	cmd.Flags().IntSliceVar(&req.Answers, "answers", nil, "Selected option per question, comma separated")
	_ = cmd.MarkFlagRequired("skills")
	return cmd
}
