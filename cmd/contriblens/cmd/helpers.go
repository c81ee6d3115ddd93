package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/contriblens/contriblens/internal/config"
	"github.com/contriblens/contriblens/internal/match"
	"github.com/contriblens/contriblens/internal/output"
	"github.com/contriblens/contriblens/internal/pipeline"
	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/store"
)

const scoreBarWidth = 20

// openPipeline opens the configured store and assembles the ranking
// pipeline on top of it. The returned closer releases the store lock.
func openPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, func() error, error) {
	indexed, err := store.OpenIndexedStore(ctx, cfg.Store.Dir,
		store.WithStoreLogger(slog.Default()))
	if err != nil {
		return nil, nil, err
	}

	cached := store.NewCachedStore(indexed, cfg.Store.CacheSize)

	matcher, err := match.NewMatcher(cfg.FactorWeights())
	if err != nil {
		_ = cached.Close()
		return nil, nil, err
	}

	p := pipeline.New(cached,
		pipeline.WithLogger(slog.Default()),
		pipeline.WithMatcher(matcher),
		pipeline.WithTrendingConfig(cfg.TrendingSignal()),
	)
	return p, cached.Close, nil
}

// printResults renders ranked results either as indented JSON or as a
// human-readable list with score bars and explanations.
func printResults(out *output.Writer, results []score.MatchResult, format string) error {
	if strings.EqualFold(format, "json") {
		return out.JSON(results)
	}

	if len(results) == 0 {
		out.Status("○", "No results")
		return nil
	}

	for i, r := range results {
		total := r.Breakdown.Total
		out.Item(i+1, fmt.Sprintf("%-32s %s %.3f", r.CandidateID, output.Bar(total, scoreBarWidth), total))
		for _, reason := range r.Reasons {
			out.Detail("+ " + reason)
		}
		for _, warning := range r.Warnings {
			out.Detail("! " + warning)
		}
	}
	return nil
}

// validateFormat rejects output formats other than text and json.
func validateFormat(format string) error {
	switch strings.ToLower(format) {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected text or json)", format)
	}
}
