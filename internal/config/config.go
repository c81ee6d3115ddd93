// Package config loads the .contriblens.yaml project configuration with
// CONTRIBLENS_* environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/contriblens/contriblens/internal/errors"
	"github.com/contriblens/contriblens/internal/score"
	"github.com/contriblens/contriblens/internal/signal"
)

// ConfigFileName is the project configuration file name.
const ConfigFileName = ".contriblens.yaml"

// Config is the complete contriblens configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Store    StoreConfig    `yaml:"store"`
	Search   SearchConfig   `yaml:"search"`
	Trending TrendingConfig `yaml:"trending"`
	Matcher  MatcherConfig  `yaml:"matcher"`
	Server   ServerConfig   `yaml:"server"`
}

// StoreConfig configures the candidate store.
type StoreConfig struct {
	// Dir is the store directory (database, lock file).
	Dir string `yaml:"dir"`

	// CacheSize is the FetchByID LRU capacity.
	CacheSize int `yaml:"cache_size"`
}

// SearchConfig configures hybrid search defaults.
type SearchConfig struct {
	// TextWeight and VectorWeight blend the two relevance signals.
	TextWeight   float64 `yaml:"text_weight"`
	VectorWeight float64 `yaml:"vector_weight"`

	// SimilarityThreshold drops low-relevance results, within [0,1].
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	// MaxResults is the default result limit.
	MaxResults int `yaml:"max_results"`
}

// TrendingConfig configures the trending scorer defaults.
type TrendingConfig struct {
	ApplicationWeight float64 `yaml:"application_weight"`
	ViewWeight        float64 `yaml:"view_weight"`
	MinEngagement     float64 `yaml:"min_engagement"`
	WindowHours       int     `yaml:"window_hours"`
}

// MatcherConfig optionally overrides the six factor weights. A zero value
// keeps the canonical production weights.
type MatcherConfig struct {
	Weights *score.FactorWeights `yaml:"weights"`
}

// ServerConfig configures the MCP server and logging.
type ServerConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default returns the canonical configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Store: StoreConfig{
			Dir:       ".contriblens",
			CacheSize: 1000,
		},
		Search: SearchConfig{
			TextWeight:          0.35,
			VectorWeight:        0.65,
			SimilarityThreshold: 0.0,
			MaxResults:          10,
		},
		Trending: TrendingConfig{
			ApplicationWeight: 3.0,
			ViewWeight:        1.0,
			MinEngagement:     0,
			WindowHours:       168,
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// Load reads the configuration for a directory: defaults, then the file if
// present, then environment overrides. A missing file is not an error.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, errors.ConfigError(fmt.Sprintf("read %s", path), err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.ConfigError(fmt.Sprintf("parse %s", path), err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies CONTRIBLENS_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CONTRIBLENS_STORE_DIR"); v != "" {
		c.Store.Dir = v
	}
	if v := os.Getenv("CONTRIBLENS_TEXT_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.TextWeight = f
		}
	}
	if v := os.Getenv("CONTRIBLENS_VECTOR_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.VectorWeight = f
		}
	}
	if v := os.Getenv("CONTRIBLENS_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("CONTRIBLENS_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("CONTRIBLENS_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("CONTRIBLENS_LOG_FILE"); v != "" {
		c.Server.LogFile = v
	}
}

// Validate checks the invariants the scorers will enforce again at call
// time, so a bad file fails at startup instead of on the first request.
func (c *Config) Validate() error {
	if err := c.SearchWeights().Validate(); err != nil {
		return err
	}
	if c.Search.SimilarityThreshold < 0 || c.Search.SimilarityThreshold > 1 {
		return errors.Newf(errors.CodeConfigInvalidRange,
			"similarity threshold must be within [0,1], got %.3f", c.Search.SimilarityThreshold)
	}
	if c.Search.MaxResults <= 0 {
		return errors.Newf(errors.CodeConfigInvalidLimit,
			"max results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Trending.WindowHours <= 0 {
		return errors.Newf(errors.CodeConfigInvalidRange,
			"trending window must be positive, got %d hours", c.Trending.WindowHours)
	}
	if err := c.TrendingSignal().Validate(); err != nil {
		return err
	}
	if c.Matcher.Weights != nil {
		if err := c.Matcher.Weights.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SearchWeights returns the configured hybrid weight pair.
func (c *Config) SearchWeights() score.WeightPair {
	return score.WeightPair{Text: c.Search.TextWeight, Vector: c.Search.VectorWeight}
}

// TrendingSignal returns the configured trending coefficients.
func (c *Config) TrendingSignal() signal.TrendingConfig {
	return signal.TrendingConfig{
		ApplicationWeight: c.Trending.ApplicationWeight,
		ViewWeight:        c.Trending.ViewWeight,
		MinEngagement:     c.Trending.MinEngagement,
	}
}

// FactorWeights returns the matcher weights, falling back to the canonical
// configuration when no override is set.
func (c *Config) FactorWeights() score.FactorWeights {
	if c.Matcher.Weights != nil {
		return *c.Matcher.Weights
	}
	return score.DefaultFactorWeights()
}
