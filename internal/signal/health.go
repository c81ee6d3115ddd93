package signal

import (
	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/store"
)

// HealthStatus is the qualitative bucket for an aggregate health score.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthPoor      HealthStatus = "poor"
)

// Bucket boundaries for the aggregate score and the strength/weakness tags.
const (
	excellentThreshold = 0.8
	goodThreshold      = 0.6
	fairThreshold      = 0.4

	strengthThreshold = 0.75
	weaknessThreshold = 0.40
)

// HealthSnapshot is the point-in-time health assessment of one repository:
// the aggregate score with its per-signal breakdown, a qualitative status,
// strength/weakness tags, and derived opportunity counters.
type HealthSnapshot struct {
	RepoID             string          `json:"repo_id"`
	FullName           string          `json:"full_name"`
	Breakdown          score.Breakdown `json:"breakdown"`
	Status             HealthStatus    `json:"status"`
	Strengths          []string        `json:"key_strengths,omitempty"`
	Weaknesses         []string        `json:"key_weaknesses,omitempty"`
	TotalOpportunities int             `json:"total_opportunities"`
	OpenOpportunities  int             `json:"open_opportunities"`
	AvgCompletionHours float64         `json:"avg_completion_hours"`
}

// Score returns the aggregate health score.
func (h HealthSnapshot) Score() float64 {
	return h.Breakdown.Total
}

// healthSignal pairs a quality sub-score with its tag texts.
type healthSignal struct {
	name     string
	strength string
	weakness string
}

// Signal order is fixed so snapshots of the same repository are identical
// across calls.
var healthSignals = []healthSignal{
	{score.ComponentActivity, "active development", "low recent activity"},
	{score.ComponentCommunity, "welcoming community", "little community engagement"},
	{score.ComponentDocumentation, "well documented", "sparse documentation"},
	{score.ComponentFriendliness, "friendly to new contributors", "hard for new contributors"},
}

// HealthScorer aggregates a repository's tracked quality sub-scores into
// one explainable snapshot. Pure; resolving the repository and its
// opportunities from the store is the caller's job.
type HealthScorer struct{}

// NewHealthScorer creates a health scorer.
func NewHealthScorer() *HealthScorer {
	return &HealthScorer{}
}

// Score aggregates the repository's four quality sub-scores into their
// unweighted mean, buckets it into a status, tags sub-scores at or above
// 0.75 as strengths and below 0.40 as weaknesses, and derives opportunity
// counters. Average completion hours covers only opportunities with both a
// start and a completion timestamp.
func (s *HealthScorer) Score(repo *store.Repository, opportunities []*store.Opportunity) HealthSnapshot {
	q := repo.Quality
	values := []float64{q.Activity, q.Community, q.Documentation, q.ContributorFriendliness}

	components := make([]score.Component, len(healthSignals))
	for i, sig := range healthSignals {
		components[i] = score.Component{
			Name:   sig.name,
			Score:  values[i],
			Weight: 1.0 / float64(len(healthSignals)),
		}
	}
	breakdown := score.NewBreakdown(components...)

	var strengths, weaknesses []string
	for i, sig := range healthSignals {
		v := breakdown.Components[i].Score
		switch {
		case v >= strengthThreshold:
			strengths = append(strengths, sig.strength)
		case v < weaknessThreshold:
			weaknesses = append(weaknesses, sig.weakness)
		}
	}

	open := 0
	completed := 0
	totalHours := 0.0
	for _, opp := range opportunities {
		if opp.IsOpen() {
			open++
		}
		if opp.StartedAt != nil && opp.CompletedAt != nil {
			completed++
			totalHours += opp.CompletedAt.Sub(*opp.StartedAt).Hours()
		}
	}
	avgHours := 0.0
	if completed > 0 {
		avgHours = totalHours / float64(completed)
	}

	return HealthSnapshot{
		RepoID:             repo.ID,
		FullName:           repo.FullName,
		Breakdown:          breakdown,
		Status:             statusOf(breakdown.Total),
		Strengths:          strengths,
		Weaknesses:         weaknesses,
		TotalOpportunities: len(opportunities),
		OpenOpportunities:  open,
		AvgCompletionHours: avgHours,
	}
}

func statusOf(total float64) HealthStatus {
	switch {
	case total >= excellentThreshold:
		return HealthExcellent
	case total >= goodThreshold:
		return HealthGood
	case total >= fairThreshold:
		return HealthFair
	default:
		return HealthPoor
	}
}
