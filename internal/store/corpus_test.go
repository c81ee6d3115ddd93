package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpusYAML = `
repositories:
  - id: repo-1
    full_name: contriblens/example
    description: Example project
    quality:
      activity: 0.9
      community: 0.7
      documentation: 0.6
      contributor_friendliness: 0.8

opportunities:
  - id: opp-1
    repo_id: repo-1
    title: Fix TypeScript type errors
    description: The search module has unchecked any types
    category: bugfix
    difficulty: intermediate
    required_skills: [TypeScript]
    technologies: [TypeScript, React]
    estimated_hours: 6
    good_first_issue: true
    application_count: 4
    view_count: 20
  - id: opp-2
    repo_id: repo-1
    title: Write contributor guide
    difficulty: mysterious

profiles:
  - id: user-1
    skill_level: advanced
    preferred_languages: [TypeScript, Go]
    interests: [developer tools]
    availability_hours: 8
    experience_months: 30
`

func TestParseCorpus_MapsTierNames(t *testing.T) {
	// When parsing a corpus document
	c, err := ParseCorpus([]byte(corpusYAML))
	require.NoError(t, err)

	// Then entities decode with difficulty and skill level as enums
	require.Len(t, c.Opportunities, 2)
	assert.Equal(t, TierIntermediate, c.Opportunities[0].Difficulty)
	assert.True(t, c.Opportunities[0].GoodFirstIssue)
	assert.Equal(t, []string{"TypeScript", "React"}, c.Opportunities[0].Technologies)

	// And unknown difficulty names degrade to intermediate
	assert.Equal(t, TierIntermediate, c.Opportunities[1].Difficulty)

	require.Len(t, c.Profiles, 1)
	assert.Equal(t, TierAdvanced, c.Profiles[0].SkillLevel)

	require.Len(t, c.Repositories, 1)
	assert.InDelta(t, 0.9, c.Repositories[0].Quality.Activity, 1e-9)
}

func TestParseCorpus_RejectsMissingIDs(t *testing.T) {
	_, err := ParseCorpus([]byte("opportunities:\n  - title: no id here\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}

func TestMemoryStoreFromCorpus(t *testing.T) {
	// Given a parsed corpus
	c, err := ParseCorpus([]byte(corpusYAML))
	require.NoError(t, err)

	// When loading it into a memory store
	m := MemoryStoreFromCorpus(c)

	// Then every entity is servable
	assert.Equal(t, 2, m.Count())

	ctx := context.Background()
	opp, err := m.FetchByID(ctx, "opp-1")
	require.NoError(t, err)
	assert.Equal(t, "repo-1", opp.RepoID)

	repo, err := m.FetchRepository(ctx, "repo-1")
	require.NoError(t, err)
	assert.Equal(t, "contriblens/example", repo.FullName)

	profile, err := m.FetchProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 30, profile.ExperienceMonths)
}
