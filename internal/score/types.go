// Package score provides the shared value types for ranking and matching:
// bounded unit scores, weight pairs, weight configurations, and explainable
// score breakdowns. All types are request-scoped values with no hidden state.
package score

import (
	"math"

	"github.com/contriblens/contriblens/internal/errors"
)

// Component names used in score breakdowns.
const (
	ComponentText   = "text_similarity"
	ComponentVector = "vector_similarity"

	ComponentEngagement = "engagement"
	ComponentRecency    = "recency"

	ComponentActivity      = "activity"
	ComponentCommunity     = "community"
	ComponentDocumentation = "documentation"
	ComponentFriendliness  = "contributor_friendliness"

	ComponentSkill        = "skill_match"
	ComponentLanguage     = "language_match"
	ComponentInterest     = "interest_match"
	ComponentDifficulty   = "difficulty_fit"
	ComponentAvailability = "availability_fit"
	ComponentExperience   = "experience_fit"
)

// Clamp01 bounds v to the unit interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// WeightPair holds the lexical/vector weights for hybrid ranking.
// Both weights must be non-negative and at least one must be positive.
type WeightPair struct {
	Text   float64
	Vector float64
}

// DefaultWeightPair returns the default hybrid weights, favoring the
// vector signal for natural-language queries.
func DefaultWeightPair() WeightPair {
	return WeightPair{Text: 0.35, Vector: 0.65}
}

// Validate checks the weight pair invariants.
func (w WeightPair) Validate() error {
	if w.Text < 0 || w.Vector < 0 {
		return errors.Newf(errors.CodeConfigInvalidWeights,
			"weights must be non-negative: text=%.3f vector=%.3f", w.Text, w.Vector)
	}
	if w.Text == 0 && w.Vector == 0 {
		return errors.New(errors.CodeConfigInvalidWeights,
			"text and vector weights cannot both be zero", nil)
	}
	return nil
}

// Normalized scales the pair so the weights sum to at most 1, keeping the
// combined score a convex combination. Pairs already summing to <= 1 are
// returned unchanged so callers can deliberately under-weight both signals.
func (w WeightPair) Normalized() WeightPair {
	sum := w.Text + w.Vector
	if sum <= 1 {
		return w
	}
	return WeightPair{Text: w.Text / sum, Vector: w.Vector / sum}
}

// Component is one named, bounded sub-score with its weight.
type Component struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// Breakdown is an explainable score: ordered named sub-scores plus the
// weighted total. Component order is fixed by the producer so repeated
// calls yield identical output.
type Breakdown struct {
	Components []Component `json:"components"`
	Total      float64     `json:"total_score"`
}

// NewBreakdown builds a breakdown from components, clamping every sub-score
// to [0,1] and computing the weighted total (also clamped).
func NewBreakdown(components ...Component) Breakdown {
	total := 0.0
	out := make([]Component, len(components))
	for i, c := range components {
		c.Score = Clamp01(c.Score)
		out[i] = c
		total += c.Score * c.Weight
	}
	return Breakdown{Components: out, Total: Clamp01(total)}
}

// Component returns the named sub-score, or false if absent.
func (b Breakdown) Component(name string) (float64, bool) {
	for _, c := range b.Components {
		if c.Name == name {
			return c.Score, true
		}
	}
	return 0, false
}

// MatchResult is the output unit of both the hybrid ranker and the
// personalized matcher: a candidate id, its score breakdown, and ordered
// human-readable reasons and warnings. Recomputed on every call.
type MatchResult struct {
	CandidateID string    `json:"candidate_id"`
	Breakdown   Breakdown `json:"breakdown"`
	Reasons     []string  `json:"match_reasons,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
}

// Score returns the total score for sorting.
func (m MatchResult) Score() float64 {
	return m.Breakdown.Total
}

// FactorWeights is the fixed weight configuration for the six-factor
// personalized matcher. Weights must sum to 1.0. It is injected into the
// matcher at construction, never a mutable global.
type FactorWeights struct {
	Skill        float64 `yaml:"skill" json:"skill"`
	Language     float64 `yaml:"language" json:"language"`
	Interest     float64 `yaml:"interest" json:"interest"`
	Difficulty   float64 `yaml:"difficulty" json:"difficulty"`
	Availability float64 `yaml:"availability" json:"availability"`
	Experience   float64 `yaml:"experience" json:"experience"`
}

// DefaultFactorWeights returns the canonical production configuration.
func DefaultFactorWeights() FactorWeights {
	return FactorWeights{
		Skill:        0.25,
		Language:     0.20,
		Interest:     0.15,
		Difficulty:   0.15,
		Availability: 0.15,
		Experience:   0.10,
	}
}

// Sum returns the total of all six weights.
func (f FactorWeights) Sum() float64 {
	return f.Skill + f.Language + f.Interest + f.Difficulty + f.Availability + f.Experience
}

// Validate checks that all weights are non-negative and sum to 1.0
// within floating-point tolerance.
func (f FactorWeights) Validate() error {
	for _, w := range []float64{f.Skill, f.Language, f.Interest, f.Difficulty, f.Availability, f.Experience} {
		if w < 0 {
			return errors.New(errors.CodeConfigInvalidWeights,
				"factor weights must be non-negative", nil)
		}
	}
	if math.Abs(f.Sum()-1.0) > 1e-9 {
		return errors.Newf(errors.CodeConfigInvalidWeights,
			"factor weights must sum to 1.0, got %.6f", f.Sum())
	}
	return nil
}
