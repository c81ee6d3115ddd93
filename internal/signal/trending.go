// Package signal computes composite scores over candidate engagement and
// repository quality: trending (engagement weighted by recency) and health
// (aggregate of tracked quality sub-scores). Both scorers are pure; candidate
// retrieval and not-found handling belong to the pipeline layer.
package signal

import (
	"fmt"
	"sort"
	"time"

	"github.com/contriblens/contriblens/internal/errors"
	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/store"
)

// TrendingConfig sets the engagement coefficients and the noise floor.
// Applications weigh more than views: applying is a stronger signal of
// interest than a page load.
type TrendingConfig struct {
	ApplicationWeight float64 `yaml:"application_weight"`
	ViewWeight        float64 `yaml:"view_weight"`
	MinEngagement     float64 `yaml:"min_engagement"`
}

// DefaultTrendingConfig returns the canonical coefficients.
func DefaultTrendingConfig() TrendingConfig {
	return TrendingConfig{
		ApplicationWeight: 3.0,
		ViewWeight:        1.0,
		MinEngagement:     0,
	}
}

// Validate checks the coefficient invariants.
func (c TrendingConfig) Validate() error {
	if c.ApplicationWeight < 0 || c.ViewWeight < 0 || c.MinEngagement < 0 {
		return errors.Newf(errors.CodeConfigInvalidWeights,
			"trending coefficients must be non-negative: applications=%.2f views=%.2f floor=%.2f",
			c.ApplicationWeight, c.ViewWeight, c.MinEngagement)
	}
	if c.ApplicationWeight == 0 && c.ViewWeight == 0 {
		return errors.New(errors.CodeConfigInvalidWeights,
			"application and view weights cannot both be zero", nil)
	}
	return nil
}

// TrendingScorer ranks candidates by recency-decayed engagement. Stateless
// apart from the injected configuration; safe for concurrent use.
type TrendingScorer struct {
	cfg TrendingConfig
}

// NewTrendingScorer creates a scorer with the given coefficients.
func NewTrendingScorer(cfg TrendingConfig) (*TrendingScorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TrendingScorer{cfg: cfg}, nil
}

// Config returns the configured coefficients.
func (s *TrendingScorer) Config() TrendingConfig {
	return s.cfg
}

// Score ranks the candidates created within [now-window, now] by engagement
// decayed linearly with age: a factor of 1.0 for brand-new candidates down
// to 0.5 at the window boundary. Candidates outside the window, with zero
// engagement, or under the MinEngagement floor are excluded. Results are sorted
// descending with input order preserved on ties and truncated to limit.
func (s *TrendingScorer) Score(candidates []*store.Opportunity, now time.Time, window time.Duration, limit int) ([]score.MatchResult, error) {
	if limit <= 0 {
		return nil, errors.Newf(errors.CodeConfigInvalidLimit,
			"result limit must be positive, got %d", limit)
	}
	if window <= 0 {
		return nil, errors.Newf(errors.CodeConfigInvalidRange,
			"trending window must be positive, got %s", window)
	}

	type scored struct {
		opp        *store.Opportunity
		engagement float64
		recency    float64
		value      float64
	}

	kept := make([]scored, 0, len(candidates))
	maxEngagement := 0.0
	for _, c := range candidates {
		age := now.Sub(c.CreatedAt)
		if age < 0 || age > window {
			continue
		}
		engagement := float64(c.ApplicationCount)*s.cfg.ApplicationWeight +
			float64(c.ViewCount)*s.cfg.ViewWeight
		if engagement < s.cfg.MinEngagement || engagement <= 0 {
			continue
		}
		recency := 1.0 - 0.5*(age.Seconds()/window.Seconds())
		kept = append(kept, scored{
			opp:        c,
			engagement: engagement,
			recency:    recency,
			value:      engagement * recency,
		})
		if engagement > maxEngagement {
			maxEngagement = engagement
		}
	}

	// Ordering uses the raw decayed value; the breakdown reports engagement
	// normalized against the batch maximum, which is order-preserving.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].value > kept[j].value
	})
	if len(kept) > limit {
		kept = kept[:limit]
	}

	results := make([]score.MatchResult, 0, len(kept))
	for _, k := range kept {
		normalized := 0.0
		if maxEngagement > 0 {
			normalized = k.engagement / maxEngagement
		}
		breakdown := score.NewBreakdown(
			score.Component{Name: score.ComponentEngagement, Score: normalized, Weight: k.recency},
			score.Component{Name: score.ComponentRecency, Score: k.recency, Weight: 0},
		)
		results = append(results, score.MatchResult{
			CandidateID: k.opp.ID,
			Breakdown:   breakdown,
			Reasons: []string{fmt.Sprintf("%d applications and %d views in the window",
				k.opp.ApplicationCount, k.opp.ViewCount)},
		})
	}
	return results, nil
}
