package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/internal/output"
	"github.com/contriblens/contriblens/internal/rank"
	"github.com/contriblens/contriblens/internal/score"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit         int
	threshold     float64
	textWeight    float64
	vectorWeight  float64
	embeddingFile string
	format        string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search opportunities by relevance",
		Long: `Search indexed opportunities with hybrid relevance ranking.

Lexical text coverage and embedding similarity are blended into one
score per opportunity. An optional query embedding is read from a JSON
file (a flat array of numbers) produced by your embedding provider.

Examples:
  contriblens search "fix flaky TypeScript tests"
  contriblens search "documentation" --limit 5 --threshold 0.4
  contriblens search "parser" --embedding-file query.json --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", -1, "Minimum combined score in [0,1] (default from config)")
	cmd.Flags().Float64Var(&opts.textWeight, "text-weight", -1, "Lexical signal weight (default from config)")
	cmd.Flags().Float64Var(&opts.vectorWeight, "vector-weight", -1, "Embedding signal weight (default from config)")
	cmd.Flags().StringVar(&opts.embeddingFile, "embedding-file", "", "JSON file holding the query embedding")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	spec := rank.QuerySpec{
		SearchText:          query,
		Weights:             cfg.SearchWeights(),
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
		ResultLimit:         cfg.Search.MaxResults,
	}
	if opts.limit > 0 {
		spec.ResultLimit = opts.limit
	}
	if opts.threshold >= 0 {
		spec.SimilarityThreshold = opts.threshold
	}
	if opts.textWeight >= 0 || opts.vectorWeight >= 0 {
		spec.Weights = overrideWeights(spec.Weights, opts.textWeight, opts.vectorWeight)
	}

	if opts.embeddingFile != "" {
		embedding, err := readEmbedding(opts.embeddingFile)
		if err != nil {
			return err
		}
		spec.Embedding = embedding
	}

	p, closeStore, err := openPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	results, err := p.Search(ctx, spec)
	if err != nil {
		return err
	}

	return printResults(output.New(cmd.OutOrStdout()), results, opts.format)
}

// overrideWeights applies flag overrides onto the configured weight pair.
// A negative flag value means the flag was not set.
func overrideWeights(base score.WeightPair, text, vector float64) score.WeightPair {
	if text >= 0 {
		base.Text = text
	}
	if vector >= 0 {
		base.Vector = vector
	}
	return base
}

// readEmbedding loads a query embedding from a JSON array file.
func readEmbedding(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read embedding file: %w", err)
	}
	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return nil, fmt.Errorf("parse embedding file %s: %w", path, err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding file %s holds an empty vector", path)
	}
	return embedding, nil
}
