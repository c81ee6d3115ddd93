package store

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contriblens/contriblens/internal/errors"
)

// countingStore counts FetchByID calls reaching the inner store.
type countingStore struct {
	*MemoryStore
	fetches atomic.Int64
}

func (c *countingStore) FetchByID(ctx context.Context, id string) (*Opportunity, error) {
	c.fetches.Add(1)
	return c.MemoryStore.FetchByID(ctx, id)
}

func TestCachedStore_ServesRepeatFetchesFromCache(t *testing.T) {
	// Given a cached store over a counting inner store
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	inner.PutOpportunity(&Opportunity{ID: "opp-1", Title: "cached"})
	cached := NewCachedStore(inner, 10)
	ctx := context.Background()

	// When fetching the same id three times
	for i := 0; i < 3; i++ {
		opp, err := cached.FetchByID(ctx, "opp-1")
		require.NoError(t, err)
		assert.Equal(t, "cached", opp.Title)
	}

	// Then only the first fetch reached the inner store
	assert.Equal(t, int64(1), inner.fetches.Load())
}

func TestCachedStore_DoesNotCacheNotFound(t *testing.T) {
	// Given an id that appears after the first miss
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	cached := NewCachedStore(inner, 10)
	ctx := context.Background()

	_, err := cached.FetchByID(ctx, "late")
	require.True(t, errors.IsNotFound(err))

	// When the opportunity shows up in the store
	inner.PutOpportunity(&Opportunity{ID: "late"})

	// Then the next fetch finds it
	opp, err := cached.FetchByID(ctx, "late")
	require.NoError(t, err)
	assert.Equal(t, "late", opp.ID)
}

func TestCachedStore_InvalidateDropsEntries(t *testing.T) {
	// Given a warmed cache
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	inner.PutOpportunity(&Opportunity{ID: "opp-1"})
	cached := NewCachedStore(inner, 10)
	ctx := context.Background()

	_, err := cached.FetchByID(ctx, "opp-1")
	require.NoError(t, err)

	// When invalidating the id
	cached.Invalidate("opp-1")

	// Then the next fetch goes back to the inner store
	_, err = cached.FetchByID(ctx, "opp-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.fetches.Load())
}
