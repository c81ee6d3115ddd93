package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contriblens/contriblens/internal/errors"
	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/store"
)

func profile(level store.Tier, langs ...string) *store.UserProfile {
	return &store.UserProfile{
		ID:                 "user-1",
		SkillLevel:         level,
		PreferredLanguages: langs,
		AvailabilityHours:  10,
		ExperienceMonths:   18,
	}
}

func opportunity(id string, difficulty store.Tier) *store.Opportunity {
	return &store.Opportunity{
		ID:             id,
		RepoID:         "repo-1",
		Title:          "Improve parser diagnostics",
		Description:    "Better error messages in the parser",
		Category:       "developer tools",
		Difficulty:     difficulty,
		EstimatedHours: 8,
	}
}

func TestNewMatcher_RejectsInvalidWeights(t *testing.T) {
	// Given weights that do not sum to 1.0
	bad := score.FactorWeights{Skill: 0.5, Language: 0.5, Interest: 0.5}

	// When constructing a matcher
	_, err := NewMatcher(bad)

	// Then construction fails with a weight configuration error
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalidWeights, errors.GetCode(err))
}

func TestScore_ExactSkillAndLanguageMatch(t *testing.T) {
	// Given a user whose languages exactly cover the requirements
	user := profile(store.TierIntermediate, "TypeScript", "React")
	opp := opportunity("opp-1", store.TierIntermediate)
	opp.RequiredSkills = []string{"TypeScript", "React"}
	opp.Technologies = []string{"TypeScript", "React"}

	// When scoring the opportunity
	result := NewDefaultMatcher().Score(user, opp)

	// Then skill and language sub-scores are perfect
	skill, ok := result.Breakdown.Component(score.ComponentSkill)
	require.True(t, ok)
	assert.Equal(t, 1.0, skill)

	language, ok := result.Breakdown.Component(score.ComponentLanguage)
	require.True(t, ok)
	assert.Equal(t, 1.0, language)
}

func TestScore_ExpertOpportunityWarnsIntermediateUser(t *testing.T) {
	// Given an expert-tier opportunity and an intermediate user
	user := profile(store.TierIntermediate, "Go")
	opp := opportunity("opp-1", store.TierExpert)

	// When scoring
	result := NewDefaultMatcher().Score(user, opp)

	// Then difficulty fit is low and a challenge warning is attached
	difficulty, ok := result.Breakdown.Component(score.ComponentDifficulty)
	require.True(t, ok)
	assert.Less(t, difficulty, 0.3)
	assert.True(t, containsMessage(result.Warnings, "may be more challenging"),
		"warnings: %v", result.Warnings)
}

func TestScore_BeginnerOpportunityWarnsExpertUser(t *testing.T) {
	// Given a beginner-tier opportunity and an expert user
	user := profile(store.TierExpert, "Go")
	user.ExperienceMonths = 96
	opp := opportunity("opp-1", store.TierBeginner)

	// When scoring
	result := NewDefaultMatcher().Score(user, opp)

	// Then the warning names the too-easy direction
	assert.True(t, containsMessage(result.Warnings, "may be too easy"),
		"warnings: %v", result.Warnings)
}

func TestScore_TotalIsBounded(t *testing.T) {
	// Given extreme profile and opportunity combinations
	users := []*store.UserProfile{
		profile(store.TierBeginner),
		profile(store.TierExpert, "Go", "Rust", "TypeScript"),
		{ID: "empty"},
	}
	opps := []*store.Opportunity{
		opportunity("a", store.TierBeginner),
		opportunity("b", store.TierExpert),
		{ID: "bare"},
	}

	m := NewDefaultMatcher()
	for _, u := range users {
		for _, o := range opps {
			// When scoring any pairing
			result := m.Score(u, o)

			// Then the total stays inside the unit interval
			assert.GreaterOrEqual(t, result.Score(), 0.0)
			assert.LessOrEqual(t, result.Score(), 1.0)
		}
	}
}

func TestScore_ReasonsForBeginnerFriendlyWork(t *testing.T) {
	// Given a beginner user and a mentored good first issue
	user := profile(store.TierBeginner, "Python")
	user.ExperienceMonths = 2
	opp := opportunity("opp-1", store.TierBeginner)
	opp.GoodFirstIssue = true
	opp.MentorshipAvailable = true
	opp.HelpWanted = true
	opp.Priority = store.PriorityHigh

	// When scoring
	result := NewDefaultMatcher().Score(user, opp)

	// Then each beginner-friendly flag yields a reason
	assert.True(t, containsMessage(result.Reasons, "good first issue"), "reasons: %v", result.Reasons)
	assert.True(t, containsMessage(result.Reasons, "Mentorship"), "reasons: %v", result.Reasons)
	assert.True(t, containsMessage(result.Reasons, "asking for help"), "reasons: %v", result.Reasons)
	assert.True(t, containsMessage(result.Reasons, "High-priority"), "reasons: %v", result.Reasons)
}

func TestScore_AvailabilityWarningNamesHours(t *testing.T) {
	// Given a user with far less time than the estimate
	user := profile(store.TierIntermediate, "Go")
	user.AvailabilityHours = 3
	opp := opportunity("opp-1", store.TierIntermediate)
	opp.EstimatedHours = 20

	// When scoring
	result := NewDefaultMatcher().Score(user, opp)

	// Then the warning includes both concrete hour figures
	assert.True(t, containsMessage(result.Warnings, "3h/week"), "warnings: %v", result.Warnings)
	assert.True(t, containsMessage(result.Warnings, "20h/week"), "warnings: %v", result.Warnings)
}

func containsMessage(messages []string, fragment string) bool {
	for _, m := range messages {
		if strings.Contains(m, fragment) {
			return true
		}
	}
	return false
}
