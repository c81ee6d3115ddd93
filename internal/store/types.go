// Package store provides the candidate store: persistence (SQLite), the
// lexical pre-filter index (Bleve), and the approximate-nearest-neighbor
// pre-filter (HNSW). The ranking core treats all of this as one collaborator
// behind the CandidateStore interface; the store's pre-filters are an
// optimization, never authoritative: the pipeline re-applies thresholds
// and limits on whatever the store returns.
package store

import (
	"context"
	"strings"
	"time"
)

// Tier is the shared ordered scale for opportunity difficulty and user
// skill level: beginner < intermediate < advanced < expert. Keeping it a
// closed enum makes tier-distance arithmetic exact and exhaustive.
type Tier int

const (
	TierBeginner Tier = iota
	TierIntermediate
	TierAdvanced
	TierExpert
)

var tierNames = [...]string{"beginner", "intermediate", "advanced", "expert"}

// String returns the lowercase tier name.
func (t Tier) String() string {
	if t < TierBeginner || t > TierExpert {
		return "unknown"
	}
	return tierNames[t]
}

// ParseTier parses a tier name case-insensitively.
// Unknown names return (TierIntermediate, false) so under-specified corpus
// data degrades to the middle of the scale instead of aborting a batch.
func ParseTier(s string) (Tier, bool) {
	for i, name := range tierNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Tier(i), true
		}
	}
	return TierIntermediate, false
}

// Priority labels carried on opportunities. Free-form values beyond these
// are kept but never generate match reasons.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
)

// QualityScores are the independently tracked repository health sub-scores,
// each in [0,1].
type QualityScores struct {
	Activity                float64 `yaml:"activity" json:"activity"`
	Community               float64 `yaml:"community" json:"community"`
	Documentation           float64 `yaml:"documentation" json:"documentation"`
	ContributorFriendliness float64 `yaml:"contributor_friendliness" json:"contributor_friendliness"`
}

// Opportunity is one contribution opportunity candidate. Immutable for the
// duration of a ranking call.
type Opportunity struct {
	ID          string `yaml:"id" json:"id"`
	RepoID      string `yaml:"repo_id" json:"repo_id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`

	Difficulty     Tier     `yaml:"-" json:"difficulty"`
	RequiredSkills []string `yaml:"required_skills" json:"required_skills"`
	Technologies   []string `yaml:"technologies" json:"technologies"`

	// EstimatedHours is the expected weekly effort; 0 means unknown.
	EstimatedHours float64 `yaml:"estimated_hours" json:"estimated_hours"`

	GoodFirstIssue      bool   `yaml:"good_first_issue" json:"good_first_issue"`
	MentorshipAvailable bool   `yaml:"mentorship_available" json:"mentorship_available"`
	HelpWanted          bool   `yaml:"help_wanted" json:"help_wanted"`
	Priority            string `yaml:"priority" json:"priority"`

	ApplicationCount int `yaml:"application_count" json:"application_count"`
	ViewCount        int `yaml:"view_count" json:"view_count"`

	// Embedding is the precomputed semantic vector for title+description.
	// Nil when the external embedding provider has not processed this
	// opportunity yet; ranking degrades gracefully.
	Embedding []float32 `yaml:"embedding" json:"embedding,omitempty"`

	CreatedAt   time.Time  `yaml:"created_at" json:"created_at"`
	StartedAt   *time.Time `yaml:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `yaml:"completed_at" json:"completed_at,omitempty"`
}

// IsOpen reports whether the opportunity has not been completed.
func (o *Opportunity) IsOpen() bool {
	return o.CompletedAt == nil
}

// SearchText returns the lexical text fields joined for similarity scoring.
func (o *Opportunity) SearchText() string {
	if o.Description == "" {
		return o.Title
	}
	return o.Title + " " + o.Description
}

// Repository is a tracked open-source repository with quality sub-scores.
type Repository struct {
	ID          string        `yaml:"id" json:"id"`
	FullName    string        `yaml:"full_name" json:"full_name"`
	Description string        `yaml:"description" json:"description"`
	Quality     QualityScores `yaml:"quality" json:"quality"`
	UpdatedAt   time.Time     `yaml:"updated_at" json:"updated_at"`
}

// UserProfile is the per-request personalization profile.
type UserProfile struct {
	ID                 string   `yaml:"id" json:"id"`
	SkillLevel         Tier     `yaml:"-" json:"skill_level"`
	PreferredLanguages []string `yaml:"preferred_languages" json:"preferred_languages"`
	Interests          []string `yaml:"interests" json:"interests"`

	// AvailabilityHours is weekly availability; must be >= 0.
	AvailabilityHours float64 `yaml:"availability_hours" json:"availability_hours"`

	// ExperienceMonths is total contribution experience; must be >= 0.
	ExperienceMonths int `yaml:"experience_months" json:"experience_months"`
}

// QueryHint tells the store what the caller is about to rank so it can
// pre-filter and pre-limit. Either field may be empty; an empty hint means
// "give me everything".
type QueryHint struct {
	// Text is the free-text query for the lexical pre-filter.
	Text string

	// Embedding is the query embedding for the ANN pre-filter.
	Embedding []float32

	// Limit caps how many candidates the store should return per signal.
	// Zero means no store-side cap.
	Limit int
}

// IsEmpty reports whether the hint carries no pre-filter signal.
func (h QueryHint) IsEmpty() bool {
	return strings.TrimSpace(h.Text) == "" && len(h.Embedding) == 0
}

// CandidateStore is the narrow collaborator interface the ranking pipeline
// consumes. Absent ids yield a not-found error, never a nil result.
type CandidateStore interface {
	// FetchCandidates returns candidates for ranking, optionally
	// pre-filtered by the hint. The result order is the store's corpus
	// order for empty hints and pre-filter relevance order otherwise.
	FetchCandidates(ctx context.Context, hint QueryHint) ([]*Opportunity, error)

	// FetchByID returns one opportunity or a not-found error.
	FetchByID(ctx context.Context, id string) (*Opportunity, error)

	// FetchRepository returns one repository or a not-found error.
	FetchRepository(ctx context.Context, id string) (*Repository, error)

	// FetchRepositoryOpportunities returns all opportunities belonging to
	// a repository, in corpus order.
	FetchRepositoryOpportunities(ctx context.Context, repoID string) ([]*Opportunity, error)

	// FetchProfile returns one user profile or a not-found error.
	FetchProfile(ctx context.Context, id string) (*UserProfile, error)

	// Close releases store resources.
	Close() error
}
