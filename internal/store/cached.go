package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default number of opportunities kept hot.
const DefaultCacheSize = 1000

// CachedStore wraps a CandidateStore with an LRU cache over FetchByID,
// the hottest call in interactive use. Batch fetches pass through
// untouched so corpus order and pre-filtering stay the inner store's
// responsibility.
type CachedStore struct {
	inner CandidateStore
	cache *lru.Cache[string, *Opportunity]
}

// NewCachedStore wraps the store with an id cache of the given size.
func NewCachedStore(inner CandidateStore, cacheSize int) *CachedStore {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, _ := lru.New[string, *Opportunity](cacheSize)
	return &CachedStore{inner: inner, cache: cache}
}

// FetchByID returns the cached opportunity when present. Not-found errors
// are never cached; an id may appear after a re-index.
func (c *CachedStore) FetchByID(ctx context.Context, id string) (*Opportunity, error) {
	if opp, ok := c.cache.Get(id); ok {
		return opp, nil
	}
	opp, err := c.inner.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, opp)
	return opp, nil
}

// Invalidate drops cached entries, all of them when ids is empty.
func (c *CachedStore) Invalidate(ids ...string) {
	if len(ids) == 0 {
		c.cache.Purge()
		return
	}
	for _, id := range ids {
		c.cache.Remove(id)
	}
}

// FetchCandidates passes through to the inner store.
func (c *CachedStore) FetchCandidates(ctx context.Context, hint QueryHint) ([]*Opportunity, error) {
	return c.inner.FetchCandidates(ctx, hint)
}

// FetchRepository passes through to the inner store.
func (c *CachedStore) FetchRepository(ctx context.Context, id string) (*Repository, error) {
	return c.inner.FetchRepository(ctx, id)
}

// FetchRepositoryOpportunities passes through to the inner store.
func (c *CachedStore) FetchRepositoryOpportunities(ctx context.Context, repoID string) ([]*Opportunity, error) {
	return c.inner.FetchRepositoryOpportunities(ctx, repoID)
}

// FetchProfile passes through to the inner store.
func (c *CachedStore) FetchProfile(ctx context.Context, id string) (*UserProfile, error) {
	return c.inner.FetchProfile(ctx, id)
}

// Close closes the inner store.
func (c *CachedStore) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}
