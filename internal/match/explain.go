package match

import (
	"fmt"

	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/store"
)

// Explanation thresholds. Reasons fire when a sub-score is strong,
// warnings when it is weak. Both lists are rule-ordered, so the same
// input always yields the same strings in the same order.
const (
	strongSkillThreshold      = 0.7
	strongLanguageThreshold   = 0.7
	strongInterestThreshold   = 0.7
	strongDifficultyThreshold = 0.8

	weakSkillThreshold    = 0.3
	weakLanguageThreshold = 0.3
	// weakDifficultyThreshold covers both the much-harder (0.2) and
	// much-easier (0.4) piecewise outcomes, with direction-specific text.
	weakDifficultyThreshold   = 0.45
	weakAvailabilityThreshold = 0.5
)

func buildReasons(user *store.UserProfile, opp *store.Opportunity, b score.Breakdown) []string {
	var reasons []string

	if s, _ := b.Component(score.ComponentSkill); s > strongSkillThreshold {
		reasons = append(reasons, "Strong overlap with the required skills")
	}
	if s, _ := b.Component(score.ComponentLanguage); s > strongLanguageThreshold {
		reasons = append(reasons, "The tech stack matches your preferred languages")
	}
	if s, _ := b.Component(score.ComponentInterest); s > strongInterestThreshold {
		reasons = append(reasons, "Aligned with your declared interests")
	}
	if s, _ := b.Component(score.ComponentDifficulty); s > strongDifficultyThreshold {
		reasons = append(reasons, "Difficulty matches your skill level")
	}

	if opp.GoodFirstIssue && user.SkillLevel == store.TierBeginner {
		reasons = append(reasons, "Marked as a good first issue")
	}
	if opp.MentorshipAvailable {
		reasons = append(reasons, "Mentorship is available")
	}
	if opp.HelpWanted {
		reasons = append(reasons, "Maintainers are actively asking for help")
	}
	if opp.Priority == store.PriorityCritical || opp.Priority == store.PriorityHigh {
		reasons = append(reasons, "High-priority work for the project")
	}

	return reasons
}

func buildWarnings(user *store.UserProfile, opp *store.Opportunity, b score.Breakdown) []string {
	var warnings []string

	if s, _ := b.Component(score.ComponentSkill); s < weakSkillThreshold {
		warnings = append(warnings, "Few of the required skills match your profile")
	}
	if s, _ := b.Component(score.ComponentLanguage); s < weakLanguageThreshold {
		warnings = append(warnings, "The tech stack is outside your preferred languages")
	}

	if s, _ := b.Component(score.ComponentDifficulty); s < weakDifficultyThreshold {
		if int(opp.Difficulty) > int(user.SkillLevel) {
			warnings = append(warnings, fmt.Sprintf(
				"This %s opportunity may be more challenging than your %s skill level",
				opp.Difficulty, user.SkillLevel))
		} else {
			warnings = append(warnings, fmt.Sprintf(
				"This %s opportunity may be too easy for your %s skill level",
				opp.Difficulty, user.SkillLevel))
		}
	}

	if s, _ := b.Component(score.ComponentAvailability); s < weakAvailabilityThreshold {
		if opp.EstimatedHours > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"You have %.0fh/week available but this opportunity estimates %.0fh/week",
				user.AvailabilityHours, opp.EstimatedHours))
		} else {
			warnings = append(warnings, "Your available hours may not be enough for this opportunity")
		}
	}

	return warnings
}
