package match

import (
	"sort"

	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/store"
)

const (
	// DefaultMinimumScore is the recommended floor for surfacing a match.
	DefaultMinimumScore = 0.3

	// DefaultTopN is the recommended result page size.
	DefaultTopN = 10
)

// RankOpportunities scores every opportunity against the profile and
// returns results sorted by total score, highest first. Ties keep the
// input order, so repeated calls over the same slice are identical.
func (m *Matcher) RankOpportunities(user *store.UserProfile, opps []*store.Opportunity) []score.MatchResult {
	results := make([]score.MatchResult, 0, len(opps))
	for _, opp := range opps {
		results = append(results, m.Score(user, opp))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	return results
}

// FilterByMinimumScore returns the results at or above the threshold,
// preserving order. An empty result is a valid outcome, never an error.
func FilterByMinimumScore(results []score.MatchResult, minimum float64) []score.MatchResult {
	filtered := make([]score.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Score() >= minimum {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// TopN truncates results to at most n entries. Non-positive n yields an
// empty slice.
func TopN(results []score.MatchResult, n int) []score.MatchResult {
	if n <= 0 {
		return nil
	}
	if len(results) <= n {
		return results
	}
	return results[:n]
}
