package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCorpusYAML = `repositories:
  - id: repo-1
    full_name: acme/search-engine
    description: Hybrid search engine
    quality:
      activity: 0.9
      community: 0.8
      documentation: 0.7
      contributor_friendliness: 0.9
opportunities:
  - id: opp-ts
    repo_id: repo-1
    title: Fix TypeScript type errors in search module
    description: Strict mode surfaces implicit any in the query parser
    category: developer tools
    difficulty: intermediate
    required_skills: [TypeScript]
    technologies: [TypeScript, Node.js]
    estimated_hours: 6
    good_first_issue: true
    application_count: 4
    view_count: 40
  - id: opp-docs
    repo_id: repo-1
    title: Rewrite the contributor onboarding guide
    description: The setup instructions are outdated
    category: documentation
    difficulty: beginner
    estimated_hours: 3
profiles:
  - id: user-1
    skill_level: intermediate
    preferred_languages: [TypeScript]
    interests: [developer tools]
    availability_hours: 10
    experience_months: 18
`

// setupWorkspace writes a corpus file and a config pointing the store at a
// temp directory, returning the config dir and corpus path.
func setupWorkspace(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.yaml")
	require.NoError(t, os.WriteFile(corpusPath, []byte(testCorpusYAML), 0o644))

	configYAML := fmt.Sprintf("version: 1\nstore:\n  dir: %s\n", filepath.Join(dir, "store"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".contriblens.yaml"), []byte(configYAML), 0o644))

	return dir, corpusPath
}

// execute runs the root command with the given args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Help_ListsSubcommands(t *testing.T) {
	// When: requesting help
	out, err := execute(t, "--help")

	// Then: every subcommand is listed
	require.NoError(t, err)
	for _, sub := range []string{"index", "get", "search", "match", "trending", "health", "serve", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestRootCmd_IndexThenSearch(t *testing.T) {
	// Given: an indexed corpus
	cfgDir, corpusPath := setupWorkspace(t)

	out, err := execute(t, "index", corpusPath, "--config-dir", cfgDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 2 opportunities")

	// When: searching for the TypeScript opportunity
	out, err = execute(t, "search", "TypeScript type errors", "--config-dir", cfgDir)

	// Then: the matching opportunity leads the results
	require.NoError(t, err)
	assert.Contains(t, out, "opp-ts")
}

func TestRootCmd_MatchOutputsRankedOpportunities(t *testing.T) {
	// Given: an indexed corpus
	cfgDir, corpusPath := setupWorkspace(t)
	_, err := execute(t, "index", corpusPath, "--config-dir", cfgDir)
	require.NoError(t, err)

	// When: matching the seeded profile with JSON output
	out, err := execute(t, "match", "user-1", "--config-dir", cfgDir, "--format", "json")

	// Then: the TypeScript opportunity is among the matches
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.NotEmpty(t, results)

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r["candidate_id"].(string))
	}
	assert.Contains(t, ids, "opp-ts")
}

func TestRootCmd_GetShowsOpportunity(t *testing.T) {
	// Given: an indexed corpus
	cfgDir, corpusPath := setupWorkspace(t)
	_, err := execute(t, "index", corpusPath, "--config-dir", cfgDir)
	require.NoError(t, err)

	// When: fetching one opportunity by id
	out, err := execute(t, "get", "opp-ts", "--config-dir", cfgDir)

	// Then: its text and repository are printed
	require.NoError(t, err)
	assert.Contains(t, out, "Fix TypeScript type errors")
	assert.Contains(t, out, "repo-1")
}

func TestRootCmd_GetUnknownIDFails(t *testing.T) {
	cfgDir, corpusPath := setupWorkspace(t)
	_, err := execute(t, "index", corpusPath, "--config-dir", cfgDir)
	require.NoError(t, err)

	_, err = execute(t, "get", "opp-missing", "--config-dir", cfgDir)
	require.Error(t, err)
}

func TestRootCmd_HealthReportsRepository(t *testing.T) {
	// Given: an indexed corpus
	cfgDir, corpusPath := setupWorkspace(t)
	_, err := execute(t, "index", corpusPath, "--config-dir", cfgDir)
	require.NoError(t, err)

	// When: requesting repository health as JSON
	out, err := execute(t, "health", "repo-1", "--config-dir", cfgDir, "--format", "json")

	// Then: the snapshot names the repository and counts its opportunities
	require.NoError(t, err)

	var snapshot map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &snapshot))
	assert.Equal(t, "acme/search-engine", snapshot["full_name"])
	assert.EqualValues(t, 2, snapshot["total_opportunities"])
}

func TestRootCmd_HealthUnknownRepoFails(t *testing.T) {
	// Given: an indexed corpus
	cfgDir, corpusPath := setupWorkspace(t)
	_, err := execute(t, "index", corpusPath, "--config-dir", cfgDir)
	require.NoError(t, err)

	// When: asking for a repository that was never ingested
	_, err = execute(t, "health", "repo-missing", "--config-dir", cfgDir)

	// Then: the command fails
	require.Error(t, err)
}

func TestRootCmd_UnknownFormatRejected(t *testing.T) {
	cfgDir, corpusPath := setupWorkspace(t)
	_, err := execute(t, "index", corpusPath, "--config-dir", cfgDir)
	require.NoError(t, err)

	_, err = execute(t, "search", "anything", "--config-dir", cfgDir, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
