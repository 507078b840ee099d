// Package config loads the tunable constants of the retrieval core from a
// YAML file, with environment-variable overrides and built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the complete tunable surface of the retrieval core.
type Config struct {
	Version   int             `yaml:"version"`
	Store     StoreConfig     `yaml:"store"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Retriever RetrieverConfig `yaml:"retriever"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	Embed     EmbedConfig     `yaml:"embed"`
}

// StoreConfig configures the on-disk index layout.
type StoreConfig struct {
	// BaseDir holds projects/<project_id>.db and sessions.db.
	// Default: $HOME/.codebase-qa-agent
	BaseDir string `yaml:"base_dir"`
	// CacheSize bounds the number of open project handles kept warm in the LRU.
	CacheSize int `yaml:"cache_size"`
}

// ExtractorConfig configures symbol/keyword/chunk extraction.
type ExtractorConfig struct {
	TopNKeywords  int `yaml:"top_n_keywords"`
	MaxChunkLines int `yaml:"max_chunk_lines"`
}

// RetrieverConfig configures the hybrid scorer.
type RetrieverConfig struct {
	MinScore                    float64 `yaml:"min_score"`
	MaxContextChars             int     `yaml:"max_context_chars"`
	SymbolBoost                 float64 `yaml:"symbol_boost"`
	DenseScoreFloor             float64 `yaml:"dense_score_floor"`
	DenseBoostMultiplier        float64 `yaml:"dense_boost_multiplier"`
	TopFiles                    int     `yaml:"top_files"`
	QueryTopNKeywords           int     `yaml:"query_top_n_keywords"`
	ConfidenceNormalizerConstant float64 `yaml:"confidence_normalizer_constant"`
	ConfidenceHighThreshold     float64 `yaml:"confidence_high_threshold"`
	ConfidenceMediumThreshold   float64 `yaml:"confidence_medium_threshold"`
	FollowUpTurnWindow          int     `yaml:"follow_up_turn_window"`
	HistoryPromptWindow         int     `yaml:"history_prompt_window"`
}

// WatcherConfig configures the debounced filesystem watcher.
type WatcherConfig struct {
	DebounceSeconds float64 `yaml:"debounce_seconds"`
}

// EmbedConfig configures the optional dense-embedding path.
type EmbedConfig struct {
	Dimensions int  `yaml:"dimensions"`
	UseHNSW    bool `yaml:"use_hnsw"`
}

// Default returns the built-in defaults, matching spec.md's stated
// constants exactly.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Version: 1,
		Store: StoreConfig{
			BaseDir:   filepath.Join(home, ".codebase-qa-agent"),
			CacheSize: 16,
		},
		Extractor: ExtractorConfig{
			TopNKeywords:  20,
			MaxChunkLines: 60,
		},
		Retriever: RetrieverConfig{
			MinScore:                     0.5,
			MaxContextChars:              24_000,
			SymbolBoost:                  5.0,
			DenseScoreFloor:              0.3,
			DenseBoostMultiplier:         3.0,
			TopFiles:                     5,
			QueryTopNKeywords:            10,
			ConfidenceNormalizerConstant: 5.0,
			ConfidenceHighThreshold:      0.3,
			ConfidenceMediumThreshold:    0.1,
			FollowUpTurnWindow:           2,
			HistoryPromptWindow:          3,
		},
		Watcher: WatcherConfig{
			DebounceSeconds: 2.0,
		},
		Embed: EmbedConfig{
			Dimensions: 384,
			UseHNSW:    true,
		},
	}
}

// Load reads a YAML config file at path, applying it on top of Default(),
// then applies environment-variable overrides. A missing file is not an
// error — Default() is returned as-is (with env overrides applied).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CODEQA_BASE_DIR"); v != "" {
		c.Store.BaseDir = v
	}
	if v := os.Getenv("CODEQA_MIN_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Retriever.MinScore = f
		}
	}
	if v := os.Getenv("CODEQA_MAX_CONTEXT_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retriever.MaxContextChars = n
		}
	}
	if v := os.Getenv("CODEQA_DEBOUNCE_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Watcher.DebounceSeconds = f
		}
	}
}
