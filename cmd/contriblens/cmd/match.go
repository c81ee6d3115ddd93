package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/internal/match"
	"github.com/contriblens/contriblens/internal/output"
)

func newMatchCmd() *cobra.Command {
	var (
		limit    int
		minScore float64
		format   string
	)

	cmd := &cobra.Command{
		Use:   "match <user-id>",
		Short: "Match open opportunities to a contributor profile",
		Long: `Score open opportunities against a contributor profile across six
factors: skills, languages, interests, difficulty, availability, and
experience. Results include per-factor breakdowns, match reasons, and
warnings about likely friction.

Examples:
  contriblens match user-42
  contriblens match user-42 --min-score 0.5 --limit 5 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.Context(), cmd, args[0], limit, minScore, format)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", match.DefaultTopN, "Maximum number of results")
	cmd.Flags().Float64Var(&minScore, "min-score", match.DefaultMinimumScore, "Minimum total score in [0,1]")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runMatch(ctx context.Context, cmd *cobra.Command, userID string, limit int, minScore float64, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, closeStore, err := openPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	results, err := p.MatchForUser(ctx, userID, minScore, limit)
	if err != nil {
		return err
	}

	return printResults(output.New(cmd.OutOrStdout()), results, format)
}
