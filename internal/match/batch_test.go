package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/store"
)

func TestRankOpportunities_SortsByScoreDescending(t *testing.T) {
	// Given one well-matched and one poorly-matched opportunity
	user := profile(store.TierIntermediate, "Go")
	good := opportunity("good", store.TierIntermediate)
	good.RequiredSkills = []string{"Go"}
	good.Technologies = []string{"Go"}
	bad := opportunity("bad", store.TierExpert)
	bad.RequiredSkills = []string{"Haskell", "Erlang"}
	bad.Technologies = []string{"Haskell"}

	// When ranking with the bad one first
	results := NewDefaultMatcher().RankOpportunities(user, []*store.Opportunity{bad, good})

	// Then the well-matched opportunity comes out on top
	require.Len(t, results, 2)
	assert.Equal(t, "good", results[0].CandidateID)
	assert.Equal(t, "bad", results[1].CandidateID)
	assert.GreaterOrEqual(t, results[0].Score(), results[1].Score())
}

func TestRankOpportunities_TiesKeepInputOrder(t *testing.T) {
	// Given two identical opportunities under different ids
	user := profile(store.TierIntermediate, "Go")
	first := opportunity("first", store.TierIntermediate)
	second := opportunity("second", store.TierIntermediate)

	// When ranking twice
	a := NewDefaultMatcher().RankOpportunities(user, []*store.Opportunity{first, second})
	b := NewDefaultMatcher().RankOpportunities(user, []*store.Opportunity{first, second})

	// Then the tie preserves input order and both runs agree
	require.Len(t, a, 2)
	assert.Equal(t, "first", a[0].CandidateID)
	assert.Equal(t, a, b)
}

func TestFilterByMinimumScore_HighThresholdYieldsEmpty(t *testing.T) {
	// Given a batch of ordinary matches
	user := profile(store.TierIntermediate, "Go")
	opps := []*store.Opportunity{
		opportunity("a", store.TierIntermediate),
		opportunity("b", store.TierAdvanced),
	}
	results := NewDefaultMatcher().RankOpportunities(user, opps)

	// When filtering with a near-impossible threshold
	filtered := FilterByMinimumScore(results, 0.99)

	// Then the result is empty, not an error
	assert.Empty(t, filtered)
}

func TestFilterByMinimumScore_KeepsOrder(t *testing.T) {
	// Given ranked results
	user := profile(store.TierIntermediate, "Go")
	good := opportunity("good", store.TierIntermediate)
	good.RequiredSkills = []string{"Go"}
	good.Technologies = []string{"Go"}
	bad := opportunity("bad", store.TierExpert)
	bad.RequiredSkills = []string{"Haskell"}
	results := NewDefaultMatcher().RankOpportunities(user, []*store.Opportunity{good, bad})

	// When filtering at the default floor
	filtered := FilterByMinimumScore(results, DefaultMinimumScore)

	// Then surviving entries keep their ranked order
	for i := 1; i < len(filtered); i++ {
		assert.GreaterOrEqual(t, filtered[i-1].Score(), filtered[i].Score())
	}
	assert.Contains(t, idsOf(filtered), "good")
}

func TestTopN_Truncates(t *testing.T) {
	// Given more results than the page size
	user := profile(store.TierIntermediate, "Go")
	opps := make([]*store.Opportunity, 0, DefaultTopN+5)
	for i := 0; i < DefaultTopN+5; i++ {
		opps = append(opps, opportunity(string(rune('a'+i)), store.TierIntermediate))
	}
	results := NewDefaultMatcher().RankOpportunities(user, opps)

	// When taking the default page
	page := TopN(results, DefaultTopN)

	// Then the page is exactly the size asked for
	assert.Len(t, page, DefaultTopN)

	// And a non-positive n yields nothing
	assert.Empty(t, TopN(results, 0))
	assert.Empty(t, TopN(results, -1))
}

func idsOf(results []score.MatchResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.CandidateID)
	}
	return ids
}
