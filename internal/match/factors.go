package match

import (
	"strings"

	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/store"
)

// Defaults applied when candidate or profile data is missing. These keep
// under-specified records competitive instead of penalizing them.
const (
	// neutralScore is used when a factor has nothing to compare:
	// no required skills, no technologies, no declared interests.
	neutralScore = 0.5

	// unknownEstimateScore assumes reasonable scope when an opportunity
	// carries no effort estimate.
	unknownEstimateScore = 0.8

	// zeroAvailabilityScore floors availability fit when the user reports
	// no available hours, regardless of the estimate.
	zeroAvailabilityScore = 0.2

	// exactSkillBonus is added per exact (not substring) skill match.
	exactSkillBonus = 0.1

	// newcomerExperienceMonths is the cutoff below which a good-first-issue
	// opportunity forces a perfect experience fit.
	newcomerExperienceMonths = 6
)

// skillMatch scores the overlap of the opportunity's required skills
// against the user's preferred languages/skills. Substring matches count
// toward the ratio in both directions; exact matches earn a small bonus.
func skillMatch(user *store.UserProfile, opp *store.Opportunity) float64 {
	if len(opp.RequiredSkills) == 0 {
		return neutralScore
	}
	if len(user.PreferredLanguages) == 0 {
		return 0.0
	}

	matched := 0
	exact := 0
	for _, required := range opp.RequiredSkills {
		req := strings.ToLower(strings.TrimSpace(required))
		if req == "" {
			continue
		}
		for _, have := range user.PreferredLanguages {
			h := strings.ToLower(strings.TrimSpace(have))
			if h == "" {
				continue
			}
			if h == req {
				matched++
				exact++
				break
			}
			if strings.Contains(req, h) || strings.Contains(h, req) {
				matched++
				break
			}
		}
	}

	ratio := float64(matched) / float64(len(opp.RequiredSkills))
	return score.Clamp01(ratio + float64(exact)*exactSkillBonus)
}

// languageMatch scores the overlap of the opportunity's technologies
// against the user's preferred languages.
func languageMatch(user *store.UserProfile, opp *store.Opportunity) float64 {
	if len(opp.Technologies) == 0 || len(user.PreferredLanguages) == 0 {
		return neutralScore
	}

	preferred := make(map[string]struct{}, len(user.PreferredLanguages))
	for _, l := range user.PreferredLanguages {
		preferred[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}

	matched := 0
	for _, tech := range opp.Technologies {
		if _, ok := preferred[strings.ToLower(strings.TrimSpace(tech))]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(opp.Technologies))
}

// interestMatch gives partial credit when the opportunity's category
// matches a declared interest and proportional credit for interest
// keywords appearing in the description.
func interestMatch(user *store.UserProfile, opp *store.Opportunity) float64 {
	if len(user.Interests) == 0 {
		return neutralScore
	}

	const categoryBonus = 0.4

	category := strings.ToLower(opp.Category)
	description := strings.ToLower(opp.Description)

	categoryHit := false
	mentioned := 0
	for _, interest := range user.Interests {
		in := strings.ToLower(strings.TrimSpace(interest))
		if in == "" {
			continue
		}
		if category != "" && (strings.Contains(category, in) || strings.Contains(in, category)) {
			categoryHit = true
		}
		if description != "" && strings.Contains(description, in) {
			mentioned++
		}
	}

	s := (1.0 - categoryBonus) * float64(mentioned) / float64(len(user.Interests))
	if categoryHit {
		s += categoryBonus
	}
	return score.Clamp01(s)
}

// difficultyFit is a piecewise function of the signed tier distance
// between the opportunity's difficulty and the user's skill level.
// One tier harder beats one tier easier to encourage growth.
func difficultyFit(user *store.UserProfile, opp *store.Opportunity) float64 {
	switch dist := int(opp.Difficulty) - int(user.SkillLevel); {
	case dist == 0:
		return 1.0
	case dist == 1:
		return 0.8
	case dist == -1:
		return 0.7
	case dist > 1:
		return 0.2
	default:
		return 0.4
	}
}

// availabilityFit maps the ratio of the user's weekly availability to the
// opportunity's estimated hours through fixed bands.
func availabilityFit(user *store.UserProfile, opp *store.Opportunity) float64 {
	if user.AvailabilityHours <= 0 {
		return zeroAvailabilityScore
	}
	if opp.EstimatedHours <= 0 {
		return unknownEstimateScore
	}

	switch ratio := user.AvailabilityHours / opp.EstimatedHours; {
	case ratio >= 2.0:
		return 1.0
	case ratio >= 1.5:
		return 0.9
	case ratio >= 1.0:
		return 0.8
	case ratio >= 0.7:
		return 0.6
	case ratio >= 0.5:
		return 0.4
	default:
		return 0.2
	}
}

// experienceRange is the [min, ideal, max] months-of-experience window for
// one difficulty tier.
type experienceRange struct {
	min, ideal, max int
}

var experienceRanges = map[store.Tier]experienceRange{
	store.TierBeginner:     {min: 0, ideal: 3, max: 12},
	store.TierIntermediate: {min: 6, ideal: 18, max: 48},
	store.TierAdvanced:     {min: 18, ideal: 42, max: 96},
	store.TierExpert:       {min: 36, ideal: 84, max: 240},
}

// experienceFit scores the user's experience against the window the
// opportunity's difficulty tier defines. Good-first-issue opportunities
// override to a perfect fit for newcomers. Inside the window the score
// decays linearly from 1.0 at the ideal to 0.5 at the nearer boundary;
// under-experience scores 0.3 and overqualification a mild 0.4.
func experienceFit(user *store.UserProfile, opp *store.Opportunity) float64 {
	if opp.GoodFirstIssue && user.ExperienceMonths < newcomerExperienceMonths {
		return 1.0
	}

	r, ok := experienceRanges[opp.Difficulty]
	if !ok {
		r = experienceRanges[store.TierIntermediate]
	}

	months := user.ExperienceMonths
	switch {
	case months < r.min:
		return 0.3
	case months > r.max:
		return 0.4
	case months <= r.ideal:
		span := r.ideal - r.min
		if span == 0 {
			return 1.0
		}
		return 1.0 - 0.5*float64(r.ideal-months)/float64(span)
	default:
		span := r.max - r.ideal
		if span == 0 {
			return 1.0
		}
		return 1.0 - 0.5*float64(months-r.ideal)/float64(span)
	}
}
