package cli

import (
	"context"
	"fmt"
	"strings"

	"hirescore/internal/application"
	"hirescore/internal/common"
	"hirescore/internal/config"
	"hirescore/internal/errors"
	"hirescore/internal/quiz"
	"hirescore/internal/types"

	"github.com/spf13/cobra"
)

// newBankService is a service that needs only the question bank
func newBankService(cfg *config.Config, logger *errors.Logger) (*application.Service, error) {
	catalog, err := quiz.NewCatalog(cfg.Quiz.BankFile, logger)
	if err != nil {
		return nil, err
	}
	return application.NewService(nil, catalog, nil, logger), nil
}

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Inspect and grade the role skill tests",
	}
	cmd.AddCommand(newQuizQuestionsCmd())
	cmd.AddCommand(newQuizScoreCmd())
	return cmd
}

func newQuizQuestionsCmd() *cobra.Command {
	var cmdConfig common.CommandConfig

	cmd := &cobra.Command{
		Use:   "questions [job-title]",
		Short: "Show the public test questions for a job title",
		Long: `Resolve a job title to its test category and print the questions a
candidate would see. Correct answers and the skills each question
validates are never shown.`,
		Args:    cobra.MinimumNArgs(1),
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

			sheet := svc.Questions(strings.Join(args, " "))
			logger.Info("Resolved quiz category",
				"job_title", sheet.JobTitle,
				"category", sheet.Category,
				"resolved_by", sheet.Resolved)

			return common.NewOutputHandlerTo(cmd.OutOrStdout(), logger).HandleOutput(sheet, cmdConfig)
		},
	}

	addOutputFlags(cmd, &cmdConfig)
	return cmd
}

func newQuizScoreCmd() *cobra.Command {
	var (
		cmdConfig common.CommandConfig
		jobTitle  string
	)

	cmd := &cobra.Command{
		Use:   "score [answers-file]",
		Short: "Grade a list of answers for a job title",
		Long: `Grade answers (a YAML or JSON list of questionId/selectedOption pairs)
against the test for --job-title. Unanswered questions score zero,
answers to unknown questions are listed as ignored and the first answer
to a question wins.`,
		Args:    cobra.ExactArgs(1),
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

			createInput := func(contents []string) ([]types.QuizAnswer, error) {
				var answers []types.QuizAnswer
				if err := common.Decode(args[0], []byte(contents[0]), &answers); err != nil {
					return nil, fmt.Errorf("cannot parse answers file %s: %w", args[0], err)
				}
				return answers, nil
			}

			operation := func(ctx context.Context, answers []types.QuizAnswer) (types.QuizResult, error) {
				return svc.ScoreQuiz(ctx, jobTitle, answers)
			}

			cmdConfig.Stdout = cmd.OutOrStdout()
			return common.RunCommand(cmd.Context(), logger, cmdConfig, args, createInput, operation, nil)
		},
	}

	addOutputFlags(cmd, &cmdConfig)
	cmd.Flags().StringVar(&jobTitle, "job-title", "", "Job title whose test the answers belong to")
	_ = cmd.MarkFlagRequired("job-title")
	return cmd
}
