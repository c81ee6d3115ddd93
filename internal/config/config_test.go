package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contriblens/contriblens/internal/errors"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ".contriblens", cfg.Store.Dir)
	assert.InDelta(t, 0.35, cfg.Search.TextWeight, 1e-9)
	assert.InDelta(t, 0.65, cfg.Search.VectorWeight, 1e-9)
	assert.Equal(t, 168, cfg.Trending.WindowHours)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	// Given a project config file
	dir := t.TempDir()
	content := `
version: 1
search:
  text_weight: 0.5
  vector_weight: 0.5
  similarity_threshold: 0.2
  max_results: 25
trending:
  application_weight: 2.0
  view_weight: 1.0
  window_hours: 72
matcher:
  weights:
    skill: 0.30
    language: 0.20
    interest: 0.10
    difficulty: 0.15
    availability: 0.15
    experience: 0.10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	// When loading
	cfg, err := Load(dir)
	require.NoError(t, err)

	// Then file values replace defaults
	assert.InDelta(t, 0.5, cfg.Search.TextWeight, 1e-9)
	assert.Equal(t, 25, cfg.Search.MaxResults)
	assert.Equal(t, 72, cfg.Trending.WindowHours)
	assert.InDelta(t, 0.30, cfg.FactorWeights().Skill, 1e-9)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	// Given a file value and an environment override
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte("search:\n  max_results: 25\n"), 0o644))
	t.Setenv("CONTRIBLENS_MAX_RESULTS", "7")
	t.Setenv("CONTRIBLENS_LOG_LEVEL", "debug")

	// When loading
	cfg, err := Load(dir)
	require.NoError(t, err)

	// Then the environment wins
	assert.Equal(t, 7, cfg.Search.MaxResults)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode string
	}{
		{
			"both weights zero",
			"search:\n  text_weight: 0\n  vector_weight: 0\n",
			errors.CodeConfigInvalidWeights,
		},
		{
			"threshold out of range",
			"search:\n  text_weight: 0.5\n  vector_weight: 0.5\n  similarity_threshold: 1.5\n  max_results: 10\n",
			errors.CodeConfigInvalidRange,
		},
		{
			"non-positive limit",
			"search:\n  text_weight: 0.5\n  vector_weight: 0.5\n  max_results: 0\n",
			errors.CodeConfigInvalidLimit,
		},
		{
			"matcher weights off by sum",
			"matcher:\n  weights:\n    skill: 0.9\n    language: 0.9\n",
			errors.CodeConfigInvalidWeights,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
				[]byte(tt.content), 0o644))

			_, err := Load(dir)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}
