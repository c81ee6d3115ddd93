package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// lexicalField is the single indexed field: title and description joined.
const lexicalField = "content"

// LexicalIndex is the Bleve-backed keyword pre-filter over opportunity
// text. It narrows the candidate batch before ranking; the ranker's own
// trigram scoring stays authoritative.
type LexicalIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// lexicalDocument is the document shape handed to Bleve.
type lexicalDocument struct {
	Content string `json:"content"`
}

// NewLexicalIndex creates or opens a Bleve index at path. An empty path
// creates an in-memory index.
func NewLexicalIndex(path string) (*LexicalIndex, error) {
	mapping := bleve.NewIndexMapping()

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(mapping)
	} else {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			return nil, fmt.Errorf("create index directory: %w", mkErr)
		}
		idx, err = bleve.Open(path)
		if err != nil {
			idx, err = bleve.New(path, mapping)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open lexical index: %w", err)
	}

	return &LexicalIndex{index: idx, path: path}, nil
}

// Index adds or replaces the opportunities in the index.
func (l *LexicalIndex) Index(ctx context.Context, opportunities []*Opportunity) error {
	if len(opportunities) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("lexical index is closed")
	}

	batch := l.index.NewBatch()
	for _, opp := range opportunities {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := lexicalDocument{Content: opp.SearchText()}
		if err := batch.Index(opp.ID, doc); err != nil {
			return fmt.Errorf("index opportunity %s: %w", opp.ID, err)
		}
	}
	if err := l.index.Batch(batch); err != nil {
		return fmt.Errorf("apply index batch: %w", err)
	}
	return nil
}

// Delete removes opportunities from the index.
func (l *LexicalIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("lexical index is closed")
	}

	batch := l.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return l.index.Batch(batch)
}

// Search returns up to limit opportunity ids matching the query text, in
// relevance order. An empty query matches nothing.
func (l *LexicalIndex) Search(ctx context.Context, queryText string, limit int) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, fmt.Errorf("lexical index is closed")
	}
	if queryText == "" || limit <= 0 {
		return nil, nil
	}

	matchQuery := bleve.NewMatchQuery(queryText)
	matchQuery.SetField(lexicalField)

	request := bleve.NewSearchRequest(matchQuery)
	request.Size = limit

	result, err := l.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Count returns the number of indexed documents.
func (l *LexicalIndex) Count() (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return 0, fmt.Errorf("lexical index is closed")
	}
	return l.index.DocCount()
}

// Close releases the index.
func (l *LexicalIndex) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.index.Close()
}
