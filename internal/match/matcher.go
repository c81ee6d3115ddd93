// Package match implements personalized opportunity matching: six
// independent sub-scores combined under a fixed weight configuration,
// with deterministic human-readable reasons and warnings.
//
// Scoring is pure and total: degraded candidate data (missing skills,
// unknown estimated hours) falls back to documented defaults instead of
// erroring, so one bad record never interrupts a batch.
package match

import (
	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/store"
)

// Matcher scores opportunities against user profiles. Stateless apart
// from the injected weight configuration; safe for concurrent use.
type Matcher struct {
	weights score.FactorWeights
}

// NewMatcher creates a matcher with the given weight configuration.
// The weights must sum to 1.0.
func NewMatcher(weights score.FactorWeights) (*Matcher, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{weights: weights}, nil
}

// NewDefaultMatcher creates a matcher with the canonical production weights.
func NewDefaultMatcher() *Matcher {
	m, err := NewMatcher(score.DefaultFactorWeights())
	if err != nil {
		// DefaultFactorWeights is validated by its own tests; this cannot
		// happen outside a broken build.
		panic("match: default factor weights invalid: " + err.Error())
	}
	return m
}

// Weights returns the configured weight set.
func (m *Matcher) Weights() score.FactorWeights {
	return m.weights
}

// Score computes the six-factor match of one opportunity against one user
// profile, with reasons and warnings. Never errors.
func (m *Matcher) Score(user *store.UserProfile, opp *store.Opportunity) score.MatchResult {
	skill := skillMatch(user, opp)
	language := languageMatch(user, opp)
	interest := interestMatch(user, opp)
	difficulty := difficultyFit(user, opp)
	availability := availabilityFit(user, opp)
	experience := experienceFit(user, opp)

	breakdown := score.NewBreakdown(
		score.Component{Name: score.ComponentSkill, Score: skill, Weight: m.weights.Skill},
		score.Component{Name: score.ComponentLanguage, Score: language, Weight: m.weights.Language},
		score.Component{Name: score.ComponentInterest, Score: interest, Weight: m.weights.Interest},
		score.Component{Name: score.ComponentDifficulty, Score: difficulty, Weight: m.weights.Difficulty},
		score.Component{Name: score.ComponentAvailability, Score: availability, Weight: m.weights.Availability},
		score.Component{Name: score.ComponentExperience, Score: experience, Weight: m.weights.Experience},
	)

	return score.MatchResult{
		CandidateID: opp.ID,
		Breakdown:   breakdown,
		Reasons:     buildReasons(user, opp, breakdown),
		Warnings:    buildWarnings(user, opp, breakdown),
	}
}
