package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contriblens/contriblens/internal/errors"
	"github.com/contriblens/contriblens/internal/rank"
	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/store"
)

// fakeStore is an in-test CandidateStore recording the hints it receives.
type fakeStore struct {
	opportunities []*store.Opportunity
	repositories  map[string]*store.Repository
	profiles      map[string]*store.UserProfile
	lastHint      store.QueryHint
	byIDCalls     int
}

func (f *fakeStore) FetchCandidates(_ context.Context, hint store.QueryHint) ([]*store.Opportunity, error) {
	f.lastHint = hint
	return f.opportunities, nil
}

func (f *fakeStore) FetchByID(_ context.Context, id string) (*store.Opportunity, error) {
	f.byIDCalls++
	for _, o := range f.opportunities {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, errors.NotFoundError("opportunity", id)
}

func (f *fakeStore) FetchRepository(_ context.Context, id string) (*store.Repository, error) {
	if r, ok := f.repositories[id]; ok {
		return r, nil
	}
	return nil, errors.NotFoundError("repository", id)
}

func (f *fakeStore) FetchRepositoryOpportunities(_ context.Context, repoID string) ([]*store.Opportunity, error) {
	var out []*store.Opportunity
	for _, o := range f.opportunities {
		if o.RepoID == repoID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) FetchProfile(_ context.Context, id string) (*store.UserProfile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, errors.NotFoundError("profile", id)
}

func (f *fakeStore) Close() error { return nil }

func candidate(id, title string, created time.Time) *store.Opportunity {
	return &store.Opportunity{
		ID:        id,
		RepoID:    "repo-1",
		Title:     title,
		CreatedAt: created,
	}
}

func TestSearch_ValidatesBeforeTouchingStore(t *testing.T) {
	// Given a query with an invalid weight pair
	fs := &fakeStore{}
	p := New(fs)
	q := rank.QuerySpec{ResultLimit: 10}

	// When searching
	_, err := p.Search(context.Background(), q)

	// Then validation fails and the store is never consulted
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalidWeights, errors.GetCode(err))
	assert.True(t, fs.lastHint.IsEmpty())
}

func TestSearch_ReappliesThresholdAndLimitOverStorePrefilter(t *testing.T) {
	// Given a store that returns more candidates than the limit, unfiltered
	now := time.Now()
	fs := &fakeStore{opportunities: []*store.Opportunity{
		candidate("hit-1", "Fix TypeScript type errors in search module", now),
		candidate("hit-2", "TypeScript type checking improvements", now),
		candidate("noise", "Update project logo", now),
	}}
	p := New(fs)
	q := rank.QuerySpec{
		SearchText:          "TypeScript type errors",
		Weights:             score.WeightPair{Text: 1.0},
		SimilarityThreshold: 0.5,
		ResultLimit:         1,
	}

	// When searching
	results, err := p.Search(context.Background(), q)
	require.NoError(t, err)

	// Then noise is filtered, the limit truncates, and the hint carried
	// the query for the store's pre-filter
	require.Len(t, results, 1)
	assert.Equal(t, "hit-1", results[0].CandidateID)
	assert.Equal(t, "TypeScript type errors", fs.lastHint.Text)
	assert.Equal(t, 1*overFetchFactor, fs.lastHint.Limit)
}

func TestMatchForUser_UnknownProfileIsNotFound(t *testing.T) {
	// Given a store without the requested profile
	fs := &fakeStore{profiles: map[string]*store.UserProfile{}}
	p := New(fs)

	// When matching
	_, err := p.MatchForUser(context.Background(), "ghost", 0.3, 10)

	// Then the caller can distinguish "no user" from "no matches"
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestMatchForUser_ValidatesParameters(t *testing.T) {
	fs := &fakeStore{}
	p := New(fs)

	_, err := p.MatchForUser(context.Background(), "user-1", 0.3, 0)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalidLimit, errors.GetCode(err))

	_, err = p.MatchForUser(context.Background(), "user-1", 1.5, 10)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalidRange, errors.GetCode(err))
}

func TestMatchForUser_RanksOpenCandidatesOnly(t *testing.T) {
	// Given one open and one completed opportunity
	now := time.Now()
	done := now.Add(-time.Hour)
	open := candidate("open", "Improve Go test coverage", now)
	open.RequiredSkills = []string{"Go"}
	open.Technologies = []string{"Go"}
	closed := candidate("closed", "Improve Go docs", now)
	closed.CompletedAt = &done

	fs := &fakeStore{
		opportunities: []*store.Opportunity{open, closed},
		profiles: map[string]*store.UserProfile{
			"user-1": {
				ID:                 "user-1",
				SkillLevel:         store.TierIntermediate,
				PreferredLanguages: []string{"Go"},
				AvailabilityHours:  10,
				ExperienceMonths:   18,
			},
		},
	}
	p := New(fs)

	// When matching with no score floor
	results, err := p.MatchForUser(context.Background(), "user-1", 0, 10)
	require.NoError(t, err)

	// Then the completed opportunity never appears
	require.Len(t, results, 1)
	assert.Equal(t, "open", results[0].CandidateID)
}

func TestTrending_OrdersByDecayedEngagement(t *testing.T) {
	// Given candidates with different engagement inside the window
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	hot := candidate("hot", "hot", now.Add(-time.Hour))
	hot.ApplicationCount = 10
	warm := candidate("warm", "warm", now.Add(-time.Hour))
	warm.ViewCount = 5
	stale := candidate("stale", "stale", now.Add(-100*time.Hour))
	stale.ApplicationCount = 100

	fs := &fakeStore{opportunities: []*store.Opportunity{warm, stale, hot}}
	p := New(fs, WithClock(func() time.Time { return now }))

	// When asking for a two-day trending window
	results, err := p.Trending(context.Background(), 48*time.Hour, 0, 10)
	require.NoError(t, err)

	// Then the stale candidate is excluded and order follows engagement
	require.Len(t, results, 2)
	assert.Equal(t, "hot", results[0].CandidateID)
	assert.Equal(t, "warm", results[1].CandidateID)
}

func TestHealth_UnknownRepositoryIsNotFound(t *testing.T) {
	fs := &fakeStore{repositories: map[string]*store.Repository{}}
	p := New(fs)

	_, err := p.Health(context.Background(), "ghost")

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestHealth_AssemblesSnapshotFromStore(t *testing.T) {
	// Given a repository with quality scores and two opportunities
	now := time.Now()
	open := candidate("open", "open", now)
	done := candidate("done", "done", now)
	started := now.Add(-20 * time.Hour)
	finished := now.Add(-10 * time.Hour)
	done.StartedAt = &started
	done.CompletedAt = &finished

	fs := &fakeStore{
		opportunities: []*store.Opportunity{open, done},
		repositories: map[string]*store.Repository{
			"repo-1": {
				ID:       "repo-1",
				FullName: "contriblens/example",
				Quality: store.QualityScores{
					Activity:                0.9,
					Community:               0.9,
					Documentation:           0.9,
					ContributorFriendliness: 0.9,
				},
			},
		},
	}
	p := New(fs)

	// When fetching health
	snapshot, err := p.Health(context.Background(), "repo-1")
	require.NoError(t, err)

	// Then the snapshot combines quality scores with derived counters
	assert.Equal(t, "contriblens/example", snapshot.FullName)
	assert.InDelta(t, 0.9, snapshot.Score(), 1e-9)
	assert.Equal(t, 2, snapshot.TotalOpportunities)
	assert.Equal(t, 1, snapshot.OpenOpportunities)
	assert.InDelta(t, 10.0, snapshot.AvgCompletionHours, 1e-9)
}

func TestGet_ReturnsOpportunityByID(t *testing.T) {
	fs := &fakeStore{opportunities: []*store.Opportunity{
		candidate("opp-1", "Fix parser diagnostics", time.Now()),
	}}
	p := New(fs)

	opp, err := p.Get(context.Background(), "opp-1")
	require.NoError(t, err)
	assert.Equal(t, "opp-1", opp.ID)
}

func TestGet_RejectsEmptyID(t *testing.T) {
	fs := &fakeStore{}
	p := New(fs)

	_, err := p.Get(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalidRange, errors.GetCode(err))
	assert.Zero(t, fs.byIDCalls)
}

func TestGet_UnknownIDIsNotFound(t *testing.T) {
	fs := &fakeStore{}
	p := New(fs)

	_, err := p.Get(context.Background(), "ghost")

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestGet_RepeatLookupsHitTheCachedStore(t *testing.T) {
	// Given a pipeline over the cached store decorator
	fs := &fakeStore{opportunities: []*store.Opportunity{
		candidate("opp-1", "Fix parser diagnostics", time.Now()),
	}}
	p := New(store.NewCachedStore(fs, 10))

	// When fetching the same id twice
	first, err := p.Get(context.Background(), "opp-1")
	require.NoError(t, err)
	second, err := p.Get(context.Background(), "opp-1")
	require.NoError(t, err)

	// Then the inner store is consulted once and both calls agree
	assert.Equal(t, 1, fs.byIDCalls)
	assert.Equal(t, first, second)
}
