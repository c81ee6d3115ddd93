package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/internal/output"
	"github.com/contriblens/contriblens/internal/signal"
)

func newHealthCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "health <repo-id>",
		Short: "Report repository maintenance health",
		Long: `Score a repository's maintenance health from its activity, community
engagement, documentation, and contributor friendliness signals, with
notable strengths and weaknesses called out.

Examples:
  contriblens health repo-1
  contriblens health repo-1 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(cmd.Context(), cmd, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runHealth(ctx context.Context, cmd *cobra.Command, repoID string, format string) error {
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

	snapshot, err := p.Health(ctx, repoID)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	if strings.EqualFold(format, "json") {
		return out.JSON(snapshot)
	}

	printHealth(out, snapshot)
	return nil
}

func printHealth(out *output.Writer, s signal.HealthSnapshot) {
	out.Statusf(statusIcon(s.Status), "%s is %s (%.2f)", s.FullName, s.Status, s.Score())
	out.Newline()

	for _, c := range s.Breakdown.Components {
		out.Detail(fmt.Sprintf("%-25s %s %.2f", c.Name, output.Bar(c.Score, scoreBarWidth), c.Score))
	}

	if len(s.Strengths) > 0 {
		out.Newline()
		for _, strength := range s.Strengths {
			out.Detail("+ " + strength)
		}
	}
	if len(s.Weaknesses) > 0 {
		out.Newline()
		for _, weakness := range s.Weaknesses {
			out.Detail("! " + weakness)
		}
	}

	out.Newline()
	out.Detail(fmt.Sprintf("Opportunities: %d total, %d open", s.TotalOpportunities, s.OpenOpportunities))
	if s.AvgCompletionHours > 0 {
		out.Detail(fmt.Sprintf("Average completion time: %.1fh", s.AvgCompletionHours))
	}
}

func statusIcon(status signal.HealthStatus) string {
	switch status {
	case signal.HealthExcellent, signal.HealthGood:
		return "✓"
	case signal.HealthFair:
		return "⚠"
	default:
		return "✗"
	}
}
