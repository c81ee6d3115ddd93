package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/internal/output"
)

func newTrendingCmd() *cobra.Command {
	var (
		window        time.Duration
		minEngagement float64
		limit         int
		format        string
	)

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "List opportunities trending in a recent window",
		Long: `Rank opportunities by recent engagement. Applications and views are
weighted into an engagement score and discounted by age within the
window, so fresh activity outranks equally sized older activity.

Examples:
  contriblens trending
  contriblens trending --window 24h --limit 5
  contriblens trending --min-engagement 10 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrending(cmd.Context(), cmd, window, minEngagement, limit, format)
		},
	}

	cmd.Flags().DurationVarP(&window, "window", "w", 0, "Engagement window (default from config)")
	cmd.Flags().Float64Var(&minEngagement, "min-engagement", -1, "Minimum engagement floor (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runTrending(ctx context.Context, cmd *cobra.Command, window time.Duration, minEngagement float64, limit int, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if window <= 0 {
		window = time.Duration(cfg.Trending.WindowHours) * time.Hour
	}
	if minEngagement < 0 {
		minEngagement = cfg.Trending.MinEngagement
	}

	p, closeStore, err := openPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	results, err := p.Trending(ctx, window, minEngagement, limit)
	if err != nil {
		return err
	}

	return printResults(output.New(cmd.OutOrStdout()), results, format)
}
