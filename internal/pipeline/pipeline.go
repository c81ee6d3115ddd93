// Package pipeline exposes the boundary operations of the ranking core:
// Search, MatchForUser, Trending, Health, and Get. It retrieves candidate
// batches from the CandidateStore collaborator, invokes the pure scorers,
// and re-applies thresholds and limits on top of whatever pre-filtering the
// store already did.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/contriblens/contriblens/internal/errors"
	"github.com/contriblens/contriblens/internal/match"
	"github.com/contriblens/contriblens/internal/rank"
	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/signal"
	"github.com/contriblens/contriblens/internal/store"
)

// overFetchFactor widens the store-side pre-limit relative to the caller's
// result limit so the threshold re-applied here still has enough candidates
// to choose from.
const overFetchFactor = 4

// Pipeline orchestrates candidate retrieval and scoring. The scorers it
// holds are stateless, so one pipeline serves concurrent requests.
type Pipeline struct {
	store       store.CandidateStore
	ranker      *rank.Ranker
	matcher     *match.Matcher
	health      *signal.HealthScorer
	trendingCfg signal.TrendingConfig
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMatcher replaces the default six-factor matcher, letting callers
// inject an alternate weight configuration.
func WithMatcher(m *match.Matcher) Option {
	return func(p *Pipeline) { p.matcher = m }
}

// WithTrendingConfig replaces the default trending coefficients.
func WithTrendingConfig(cfg signal.TrendingConfig) Option {
	return func(p *Pipeline) { p.trendingCfg = cfg }
}

// WithClock replaces the wall clock used for trending recency.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline over the given store.
func New(s store.CandidateStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:       s,
		ranker:      rank.NewRanker(),
		matcher:     match.NewDefaultMatcher(),
		health:      signal.NewHealthScorer(),
		trendingCfg: signal.DefaultTrendingConfig(),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Search runs the hybrid ranker over store candidates. The query is
// validated before the store is consulted, and the threshold and limit are
// applied here even when the store pre-filtered.
func (p *Pipeline) Search(ctx context.Context, q rank.QuerySpec) ([]score.MatchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	hint := store.QueryHint{
		Text:      q.SearchText,
		Embedding: q.Embedding,
		Limit:     q.ResultLimit * overFetchFactor,
	}
	candidates, err := p.store.FetchCandidates(ctx, hint)
	if err != nil {
		return nil, err
	}

	results, err := p.ranker.Rank(candidates, q)
	if err != nil {
		return nil, err
	}
	p.logger.DebugContext(ctx, "search complete",
		"candidates", len(candidates),
		"results", len(results),
		"threshold", q.SimilarityThreshold)
	return results, nil
}

// MatchForUser resolves the profile by id and ranks all open store
// candidates against it. An unknown user id is a not-found error, never an
// empty list.
func (p *Pipeline) MatchForUser(ctx context.Context, userID string, minScore float64, limit int) ([]score.MatchResult, error) {
	if limit <= 0 {
		return nil, errors.Newf(errors.CodeConfigInvalidLimit,
			"result limit must be positive, got %d", limit)
	}
	if minScore < 0 || minScore > 1 {
		return nil, errors.Newf(errors.CodeConfigInvalidRange,
			"minimum score must be within [0,1], got %.3f", minScore)
	}

	profile, err := p.store.FetchProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	candidates, err := p.store.FetchCandidates(ctx, store.QueryHint{})
	if err != nil {
		return nil, err
	}

	open := make([]*store.Opportunity, 0, len(candidates))
	for _, c := range candidates {
		if c.IsOpen() {
			open = append(open, c)
		}
	}

	ranked := p.matcher.RankOpportunities(profile, open)
	results := match.TopN(match.FilterByMinimumScore(ranked, minScore), limit)
	p.logger.DebugContext(ctx, "match complete",
		"user", userID,
		"candidates", len(open),
		"results", len(results))
	return results, nil
}

// Get resolves one opportunity by id. Single-id lookups are the store's
// hottest call in interactive use and go through its FetchByID cache. An
// unknown id is a not-found error.
func (p *Pipeline) Get(ctx context.Context, id string) (*store.Opportunity, error) {
	if id == "" {
		return nil, errors.Newf(errors.CodeConfigInvalidRange,
			"opportunity id must not be empty")
	}

	opp, err := p.store.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.logger.DebugContext(ctx, "get complete", "id", id)
	return opp, nil
}

// Trending ranks store candidates by recency-decayed engagement within the
// given window.
func (p *Pipeline) Trending(ctx context.Context, window time.Duration, minEngagement float64, limit int) ([]score.MatchResult, error) {
	cfg := p.trendingCfg
	cfg.MinEngagement = minEngagement
	scorer, err := signal.NewTrendingScorer(cfg)
	if err != nil {
		return nil, err
	}

	candidates, err := p.store.FetchCandidates(ctx, store.QueryHint{})
	if err != nil {
		return nil, err
	}

	results, err := scorer.Score(candidates, p.now(), window, limit)
	if err != nil {
		return nil, err
	}
	p.logger.DebugContext(ctx, "trending complete",
		"window", window,
		"candidates", len(candidates),
		"results", len(results))
	return results, nil
}

// Health assembles the health snapshot for one repository. An unknown
// repository id is a not-found error, never an empty snapshot.
func (p *Pipeline) Health(ctx context.Context, repoID string) (signal.HealthSnapshot, error) {
	repo, err := p.store.FetchRepository(ctx, repoID)
	if err != nil {
		return signal.HealthSnapshot{}, err
	}
	opportunities, err := p.store.FetchRepositoryOpportunities(ctx, repoID)
	if err != nil {
		return signal.HealthSnapshot{}, err
	}

	snapshot := p.health.Score(repo, opportunities)
	p.logger.DebugContext(ctx, "health complete",
		"repo", repoID,
		"status", snapshot.Status,
		"opportunities", snapshot.TotalOpportunities)
	return snapshot, nil
}
