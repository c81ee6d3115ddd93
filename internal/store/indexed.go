package store

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"
)

// lockFileName guards a store directory against concurrent writers.
const lockFileName = ".contriblens.lock"

// defaultPrefilterLimit caps each pre-filter when the hint carries no cap.
const defaultPrefilterLimit = 200

// IndexedStore combines SQLite persistence with the Bleve and HNSW
// pre-filters. Hinted fetches run both pre-filters concurrently and union
// their hits; one failing pre-filter degrades to the other instead of
// failing the fetch. A directory lock is held for the store's lifetime so
// two processes never index the same directory at once.
type IndexedStore struct {
	db      *SQLiteStore
	lexical *LexicalIndex
	vectors *VectorIndex
	lock    *flock.Flock
	logger  *slog.Logger
}

// IndexedStoreOption configures an IndexedStore.
type IndexedStoreOption func(*IndexedStore)

// WithStoreLogger sets the structured logger. Defaults to slog.Default().
func WithStoreLogger(logger *slog.Logger) IndexedStoreOption {
	return func(s *IndexedStore) { s.logger = logger }
}

// OpenIndexedStore opens (or creates) an indexed store rooted at dir. The
// database persists under the directory; both pre-filter indexes are
// rebuilt in memory from it, so they never drift from the persisted corpus.
func OpenIndexedStore(ctx context.Context, dir string, opts ...IndexedStoreOption) (*IndexedStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("store directory %s is locked by another process", dir)
	}

	db, err := NewSQLiteStore(filepath.Join(dir, "contriblens.db"))
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	s := &IndexedStore{
		db:      db,
		vectors: NewVectorIndex(VectorIndexConfig{}),
		lock:    lock,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.lexical, err = NewLexicalIndex("")
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	if err := s.rebuildIndexes(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// rebuildIndexes repopulates both pre-filters from the database.
func (s *IndexedStore) rebuildIndexes(ctx context.Context) error {
	opportunities, err := s.db.FetchCandidates(ctx, QueryHint{})
	if err != nil {
		return err
	}
	if err := s.indexOpportunities(ctx, opportunities); err != nil {
		return err
	}
	s.logger.Debug("store indexes rebuilt",
		"opportunities", len(opportunities),
		"vectors", s.vectors.Count())
	return nil
}

func (s *IndexedStore) indexOpportunities(ctx context.Context, opportunities []*Opportunity) error {
	if err := s.lexical.Index(ctx, opportunities); err != nil {
		return err
	}
	var ids []string
	var vectors [][]float32
	for _, opp := range opportunities {
		if len(opp.Embedding) > 0 {
			ids = append(ids, opp.ID)
			vectors = append(vectors, opp.Embedding)
		}
	}
	return s.vectors.Add(ctx, ids, vectors)
}

// Ingest persists a corpus batch and indexes it.
func (s *IndexedStore) Ingest(ctx context.Context, c *Corpus) error {
	if err := s.db.PutRepositories(ctx, c.Repositories); err != nil {
		return err
	}
	if err := s.db.PutProfiles(ctx, c.Profiles); err != nil {
		return err
	}
	if err := s.db.PutOpportunities(ctx, c.Opportunities); err != nil {
		return err
	}
	if err := s.indexOpportunities(ctx, c.Opportunities); err != nil {
		return err
	}
	s.logger.Info("corpus ingested",
		"opportunities", len(c.Opportunities),
		"repositories", len(c.Repositories),
		"profiles", len(c.Profiles))
	return nil
}

// FetchCandidates returns the full corpus for empty hints. For hinted
// fetches it runs the lexical and ANN pre-filters concurrently, unions the
// hits (lexical order first), and resolves them against the database.
func (s *IndexedStore) FetchCandidates(ctx context.Context, hint QueryHint) ([]*Opportunity, error) {
	if hint.IsEmpty() {
		return s.db.FetchCandidates(ctx, hint)
	}

	limit := hint.Limit
	if limit <= 0 {
		limit = defaultPrefilterLimit
	}

	var lexicalIDs, vectorIDs []string
	var lexicalErr, vectorErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if hint.Text == "" {
			return nil
		}
		lexicalIDs, lexicalErr = s.lexical.Search(gctx, hint.Text, limit)
		// A failed pre-filter degrades to the other signal.
		return nil
	})
	g.Go(func() error {
		if len(hint.Embedding) == 0 {
			return nil
		}
		vectorIDs, vectorErr = s.vectors.Search(gctx, hint.Embedding, limit)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if lexicalErr != nil && vectorErr != nil {
		return nil, goerrors.Join(lexicalErr, vectorErr)
	}
	if lexicalErr != nil {
		s.logger.Warn("lexical pre-filter failed, using vector hits only", "error", lexicalErr)
	}
	if vectorErr != nil {
		s.logger.Warn("vector pre-filter failed, using lexical hits only", "error", vectorErr)
	}

	seen := make(map[string]struct{}, len(lexicalIDs)+len(vectorIDs))
	ids := make([]string, 0, len(lexicalIDs)+len(vectorIDs))
	for _, id := range append(lexicalIDs, vectorIDs...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	out := make([]*Opportunity, 0, len(ids))
	for _, id := range ids {
		opp, err := s.db.FetchByID(ctx, id)
		if err != nil {
			// An index hit missing from the database means the indexes
			// are ahead of a concurrent delete; skip it.
			continue
		}
		out = append(out, opp)
	}
	return out, nil
}

// FetchByID returns one opportunity or a not-found error.
func (s *IndexedStore) FetchByID(ctx context.Context, id string) (*Opportunity, error) {
	return s.db.FetchByID(ctx, id)
}

// FetchRepository returns one repository or a not-found error.
func (s *IndexedStore) FetchRepository(ctx context.Context, id string) (*Repository, error) {
	return s.db.FetchRepository(ctx, id)
}

// FetchRepositoryOpportunities returns the repository's opportunities.
func (s *IndexedStore) FetchRepositoryOpportunities(ctx context.Context, repoID string) ([]*Opportunity, error) {
	return s.db.FetchRepositoryOpportunities(ctx, repoID)
}

// FetchProfile returns one user profile or a not-found error.
func (s *IndexedStore) FetchProfile(ctx context.Context, id string) (*UserProfile, error) {
	return s.db.FetchProfile(ctx, id)
}

// Close releases the indexes, the database, and the directory lock.
func (s *IndexedStore) Close() error {
	var errs []error
	if s.lexical != nil {
		errs = append(errs, s.lexical.Close())
	}
	errs = append(errs, s.vectors.Close(), s.db.Close())
	if s.lock != nil {
		errs = append(errs, s.lock.Unlock())
	}
	return goerrors.Join(errs...)
}
