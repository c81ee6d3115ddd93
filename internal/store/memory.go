package store

import (
	"context"
	"sync"

	"github.com/contriblens/contriblens/internal/errors"
)

// MemoryStore is an in-memory CandidateStore. It serves a loaded corpus
// directly and backs tests; FetchCandidates ignores the hint and returns
// the full corpus in load order, leaving all filtering to the pipeline.
type MemoryStore struct {
	mu            sync.RWMutex
	opportunities []*Opportunity
	byID          map[string]*Opportunity
	repositories  map[string]*Repository
	profiles      map[string]*UserProfile
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:         make(map[string]*Opportunity),
		repositories: make(map[string]*Repository),
		profiles:     make(map[string]*UserProfile),
	}
}

// PutOpportunity adds or replaces one opportunity. New ids append to the
// corpus order; existing ids keep their position.
func (m *MemoryStore) PutOpportunity(opp *Opportunity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byID[opp.ID]; ok {
		for i, o := range m.opportunities {
			if o == existing {
				m.opportunities[i] = opp
				break
			}
		}
	} else {
		m.opportunities = append(m.opportunities, opp)
	}
	m.byID[opp.ID] = opp
}

// PutRepository adds or replaces one repository.
func (m *MemoryStore) PutRepository(repo *Repository) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repositories[repo.ID] = repo
}

// PutProfile adds or replaces one user profile.
func (m *MemoryStore) PutProfile(profile *UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = profile
}

// FetchCandidates returns the full corpus in load order.
func (m *MemoryStore) FetchCandidates(_ context.Context, _ QueryHint) ([]*Opportunity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Opportunity, len(m.opportunities))
	copy(out, m.opportunities)
	return out, nil
}

// FetchByID returns one opportunity or a not-found error.
func (m *MemoryStore) FetchByID(_ context.Context, id string) (*Opportunity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if opp, ok := m.byID[id]; ok {
		return opp, nil
	}
	return nil, errors.NotFoundError("opportunity", id)
}

// FetchRepository returns one repository or a not-found error.
func (m *MemoryStore) FetchRepository(_ context.Context, id string) (*Repository, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if repo, ok := m.repositories[id]; ok {
		return repo, nil
	}
	return nil, errors.NotFoundError("repository", id)
}

// FetchRepositoryOpportunities returns the repository's opportunities in
// corpus order. An unknown repository yields an empty slice, not an error;
// existence is FetchRepository's concern.
func (m *MemoryStore) FetchRepositoryOpportunities(_ context.Context, repoID string) ([]*Opportunity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Opportunity
	for _, opp := range m.opportunities {
		if opp.RepoID == repoID {
			out = append(out, opp)
		}
	}
	return out, nil
}

// FetchProfile returns one user profile or a not-found error.
func (m *MemoryStore) FetchProfile(_ context.Context, id string) (*UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if profile, ok := m.profiles[id]; ok {
		return profile, nil
	}
	return nil, errors.NotFoundError("profile", id)
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

// Count returns the number of opportunities loaded.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.opportunities)
}
