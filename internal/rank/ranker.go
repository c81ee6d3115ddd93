// Package rank implements hybrid relevance ranking: a lexical similarity
// signal and a vector-embedding similarity signal blended into one combined
// score under caller-supplied weights, with threshold filtering and
// bounded, deterministic output.
//
// Everything in this package is a pure function of its inputs: no I/O,
// no logging, no shared state. Degraded per-candidate data (missing
// embeddings, empty text) is absorbed via documented defaults; only
// caller mistakes in the QuerySpec produce errors.
package rank

import (
	"math"
	"sort"
	"strings"

	"github.com/contriblens/contriblens/internal/errors"
	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/store"
)

// NeutralTextScore is the lexical contribution when either side carries no
// text: a query without search text, or a candidate whose title and
// description are both empty. The midpoint of the similarity range keeps
// text-weighted scoring from treating "no text" as either a perfect or a
// zero match, so such pairs rank on the vector signal.
const NeutralTextScore = 0.5

// QuerySpec describes one ranking request. Constructed per request,
// never persisted.
type QuerySpec struct {
	// SearchText is the optional free-text query.
	SearchText string

	// Embedding is the optional query embedding, produced by the caller's
	// embedding provider. The ranker never computes embeddings.
	Embedding []float32

	// Weights blends the two signals. Pairs summing above 1 are
	// normalized so the combined score stays in [0,1].
	Weights score.WeightPair

	// SimilarityThreshold drops candidates whose combined score falls
	// below it. Must be within [0,1].
	SimilarityThreshold float64

	// ResultLimit bounds the output size. Must be positive.
	ResultLimit int
}

// Validate fails fast on caller mistakes, before any per-candidate work.
func (q QuerySpec) Validate() error {
	if err := q.Weights.Validate(); err != nil {
		return err
	}
	if q.ResultLimit <= 0 {
		return errors.Newf(errors.CodeConfigInvalidLimit,
			"result limit must be positive, got %d", q.ResultLimit)
	}
	if q.SimilarityThreshold < 0 || q.SimilarityThreshold > 1 {
		return errors.Newf(errors.CodeConfigInvalidRange,
			"similarity threshold must be within [0,1], got %.3f", q.SimilarityThreshold)
	}
	return nil
}

// Ranker blends lexical and vector similarity into one relevance score.
// Stateless and safe for concurrent use.
type Ranker struct{}

// NewRanker creates a hybrid ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank scores every candidate against the query, drops those below the
// similarity threshold, sorts descending by combined score (ties keep the
// candidates' original order), and truncates to the result limit.
func (r *Ranker) Rank(candidates []*store.Opportunity, q QuerySpec) ([]score.MatchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	weights := q.Weights.Normalized()
	queryText := strings.TrimSpace(q.SearchText)
	queryGrams := trigrams(queryText)

	results := make([]score.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		text := textSimilarity(queryText, queryGrams, c.SearchText())
		vec := vectorSimilarity(q.Embedding, c.Embedding)

		breakdown := score.NewBreakdown(
			score.Component{Name: score.ComponentText, Score: text, Weight: weights.Text},
			score.Component{Name: score.ComponentVector, Score: vec, Weight: weights.Vector},
		)
		if breakdown.Total < q.SimilarityThreshold {
			continue
		}
		results = append(results, score.MatchResult{
			CandidateID: c.ID,
			Breakdown:   breakdown,
		})
	}

	// Stable sort: equal scores keep corpus order, so repeated calls on
	// the same input are byte-identical.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Breakdown.Total > results[j].Breakdown.Total
	})

	if len(results) > q.ResultLimit {
		results = results[:q.ResultLimit]
	}
	return results, nil
}

// textSimilarity measures how much of the query's trigram set appears in
// the candidate text, in [0,1]. A query that is a verbatim substring of
// the candidate scores 1.0. Absent search text and text-less candidates
// both contribute NeutralTextScore, so candidates without text rank on
// their vector signal. Queries shorter than one trigram fall back to
// case-insensitive containment.
func textSimilarity(query string, queryGrams map[string]struct{}, text string) float64 {
	if query == "" {
		return NeutralTextScore
	}
	if strings.TrimSpace(text) == "" {
		return NeutralTextScore
	}
	if len(queryGrams) == 0 {
		// Query too short for trigrams.
		if strings.Contains(strings.ToLower(text), strings.ToLower(query)) {
			return 1.0
		}
		return 0.0
	}

	textGrams := trigrams(text)
	if len(textGrams) == 0 {
		return 0.0
	}

	matched := 0
	for g := range queryGrams {
		if _, ok := textGrams[g]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryGrams))
}

// trigrams returns the set of character trigrams of s, lowercased with
// runs of whitespace collapsed to single spaces.
func trigrams(s string) map[string]struct{} {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	runes := []rune(s)
	if len(runes) < 3 {
		return nil
	}
	grams := make(map[string]struct{}, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = struct{}{}
	}
	return grams
}

// vectorSimilarity is cosine similarity (1 - cosine distance) clamped to
// [0,1]. Missing embeddings or mismatched dimensions score 0: graceful
// degradation, not an error.
func vectorSimilarity(query, candidate []float32) float64 {
	if len(query) == 0 || len(candidate) == 0 || len(query) != len(candidate) {
		return 0.0
	}
	return score.Clamp01(cosineSimilarity(query, candidate))
}

// cosineSimilarity computes the cosine of the angle between a and b,
// in [-1,1]. Zero vectors yield 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
