package mcp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/contriblens/contriblens/internal/pipeline"
	"github.com/contriblens/contriblens/internal/rank"
	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/signal"
	"github.com/contriblens/contriblens/internal/store"
	"github.com/contriblens/contriblens/pkg/version"
)

// Defaults applied when a tool call omits optional parameters.
const (
	defaultLimit        = 10
	defaultMinScore     = 0.3
	defaultWindowHours  = 168
	defaultTextWeight   = 0.35
	defaultVectorWeight = 0.65
)

// Server bridges MCP clients with the ranking pipeline.
type Server struct {
	mcp      *mcp.Server
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// NewServer creates an MCP server over the pipeline.
func NewServer(p *pipeline.Pipeline, logger *slog.Logger) (*Server, error) {
	if p == nil {
		return nil, errors.New("pipeline is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{pipeline: p, logger: logger}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "contriblens",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// SearchInput is the search_opportunities tool input.
type SearchInput struct {
	Query        string    `json:"query,omitempty" jsonschema:"free-text search query"`
	Embedding    []float32 `json:"embedding,omitempty" jsonschema:"precomputed query embedding"`
	TextWeight   *float64  `json:"text_weight,omitempty" jsonschema:"lexical signal weight, default 0.35"`
	VectorWeight *float64  `json:"vector_weight,omitempty" jsonschema:"vector signal weight, default 0.65"`
	Threshold    float64   `json:"threshold,omitempty" jsonschema:"minimum combined score in [0,1]"`
	Limit        int       `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

// MatchInput is the match_user tool input. MinScore is a pointer so an
// explicit zero floor is distinguishable from an omitted parameter.
type MatchInput struct {
	UserID   string   `json:"user_id" jsonschema:"profile id to match against"`
	MinScore *float64 `json:"min_score,omitempty" jsonschema:"minimum match score, default 0.3"`
	Limit    int      `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

// GetInput is the get_opportunity tool input.
type GetInput struct {
	ID string `json:"id" jsonschema:"opportunity id to fetch"`
}

// TrendingInput is the trending_opportunities tool input.
type TrendingInput struct {
	WindowHours   int     `json:"window_hours,omitempty" jsonschema:"recency window in hours, default 168"`
	MinEngagement float64 `json:"min_engagement,omitempty" jsonschema:"engagement noise floor"`
	Limit         int     `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

// HealthInput is the repo_health tool input.
type HealthInput struct {
	RepoID string `json:"repo_id" jsonschema:"repository id to assess"`
}

// ResultsOutput wraps a ranked result list.
type ResultsOutput struct {
	Results []score.MatchResult `json:"results" jsonschema:"ranked results with score breakdowns"`
}

// HealthOutput wraps a health snapshot.
type HealthOutput struct {
	Snapshot signal.HealthSnapshot `json:"snapshot" jsonschema:"repository health snapshot"`
}

// GetOutput wraps a single opportunity.
type GetOutput struct {
	Opportunity *store.Opportunity `json:"opportunity" jsonschema:"the requested opportunity"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_opportunities",
		Description: "Hybrid relevance search over contribution opportunities. Blends keyword matching with embedding similarity; every result carries a score breakdown.",
	}, s.searchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "match_user",
		Description: "Personalized opportunity matching for one user profile: six weighted factors with human-readable reasons and warnings per result.",
	}, s.matchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "trending_opportunities",
		Description: "Opportunities ranked by recency-decayed engagement (applications and views) within a time window.",
	}, s.trendingHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "repo_health",
		Description: "Repository health snapshot: aggregate quality score, status bucket, strengths, weaknesses, and opportunity counters.",
	}, s.healthHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_opportunity",
		Description: "Fetch one opportunity by id, including its text, difficulty, skills, engagement counters, and timestamps.",
	}, s.getHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", 5))
}

func (s *Server) searchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult, ResultsOutput, error,
) {
	if input.Query == "" && len(input.Embedding) == 0 {
		return nil, ResultsOutput{}, NewInvalidParamsError("query or embedding is required")
	}

	weights := score.WeightPair{Text: defaultTextWeight, Vector: defaultVectorWeight}
	if input.TextWeight != nil {
		weights.Text = *input.TextWeight
	}
	if input.VectorWeight != nil {
		weights.Vector = *input.VectorWeight
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	results, err := s.pipeline.Search(ctx, rank.QuerySpec{
		SearchText:          input.Query,
		Embedding:           input.Embedding,
		Weights:             weights,
		SimilarityThreshold: input.Threshold,
		ResultLimit:         limit,
	})
	if err != nil {
		return nil, ResultsOutput{}, MapError(err)
	}
	return nil, ResultsOutput{Results: results}, nil
}

func (s *Server) matchHandler(ctx context.Context, _ *mcp.CallToolRequest, input MatchInput) (
	*mcp.CallToolResult, ResultsOutput, error,
) {
	if input.UserID == "" {
		return nil, ResultsOutput{}, NewInvalidParamsError("user_id parameter is required")
	}
	minScore := defaultMinScore
	if input.MinScore != nil {
		minScore = *input.MinScore
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	results, err := s.pipeline.MatchForUser(ctx, input.UserID, minScore, limit)
	if err != nil {
		return nil, ResultsOutput{}, MapError(err)
	}
	return nil, ResultsOutput{Results: results}, nil
}

func (s *Server) trendingHandler(ctx context.Context, _ *mcp.CallToolRequest, input TrendingInput) (
	*mcp.CallToolResult, ResultsOutput, error,
) {
	windowHours := input.WindowHours
	if windowHours <= 0 {
		windowHours = defaultWindowHours
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	results, err := s.pipeline.Trending(ctx,
		time.Duration(windowHours)*time.Hour, input.MinEngagement, limit)
	if err != nil {
		return nil, ResultsOutput{}, MapError(err)
	}
	return nil, ResultsOutput{Results: results}, nil
}

func (s *Server) healthHandler(ctx context.Context, _ *mcp.CallToolRequest, input HealthInput) (
	*mcp.CallToolResult, HealthOutput, error,
) {
	if input.RepoID == "" {
		return nil, HealthOutput{}, NewInvalidParamsError("repo_id parameter is required")
	}

	snapshot, err := s.pipeline.Health(ctx, input.RepoID)
	if err != nil {
		return nil, HealthOutput{}, MapError(err)
	}
	return nil, HealthOutput{Snapshot: snapshot}, nil
}

func (s *Server) getHandler(ctx context.Context, _ *mcp.CallToolRequest, input GetInput) (
	*mcp.CallToolResult, GetOutput, error,
) {
	if input.ID == "" {
		return nil, GetOutput{}, NewInvalidParamsError("id parameter is required")
	}

	opp, err := s.pipeline.Get(ctx, input.ID)
	if err != nil {
		return nil, GetOutput{}, MapError(err)
	}
	return nil, GetOutput{Opportunity: opp}, nil
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server starting", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Info("MCP server stopped")
	return nil
}
