package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix viper uses for automatic env binding
const EnvPrefix = "GIT_TIMELINE"

// Config holds all configuration settings
type Config struct {
	Repo    RepoConfig    `yaml:"repo" mapstructure:"repo"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Enrich  EnrichConfig  `yaml:"enrich" mapstructure:"enrich"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// RepoConfig controls which history is walked and how it is bucketed
type RepoConfig struct {
	Path        string `yaml:"path" mapstructure:"path"`
	MaxCommits  int    `yaml:"max_commits" mapstructure:"max_commits"`
	Manifest    string `yaml:"manifest" mapstructure:"manifest"`
	Timezone    string `yaml:"timezone" mapstructure:"timezone"`
	DiffContext int    `yaml:"diff_context" mapstructure:"diff_context"` // unified context lines for manifest diffs
}

// ScoringConfig carries the domain scoring weights. They are heuristics
// tuned by example, not correctness invariants.
type ScoringConfig struct {
	FolderBase        float64 `yaml:"folder_base" mapstructure:"folder_base"`
	DepthBonus        float64 `yaml:"depth_bonus" mapstructure:"depth_bonus"`
	BusinessBonus     float64 `yaml:"business_bonus" mapstructure:"business_bonus"`
	TermBase          float64 `yaml:"term_base" mapstructure:"term_base"`
	RepeatedTermBonus float64 `yaml:"repeated_term_bonus" mapstructure:"repeated_term_bonus"`
	OccurrenceWeight  float64 `yaml:"occurrence_weight" mapstructure:"occurrence_weight"`
	DepthLogWeight    float64 `yaml:"depth_log_weight" mapstructure:"depth_log_weight"`
	MinScore          float64 `yaml:"min_score" mapstructure:"min_score"`
	MinSegmentLength  int     `yaml:"min_segment_length" mapstructure:"min_segment_length"`
	MinTermLength     int     `yaml:"min_term_length" mapstructure:"min_term_length"`
	MaxFeatureEvents  int     `yaml:"max_feature_events" mapstructure:"max_feature_events"`
}

// EnrichConfig configures the optional package description lookup
type EnrichConfig struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	RegistryURL string        `yaml:"registry_url" mapstructure:"registry_url"`
	RateLimit   float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CachePath   string        `yaml:"cache_path" mapstructure:"cache_path"`
	Workers     int           `yaml:"workers" mapstructure:"workers"`
}

// StorageConfig selects where run history is kept
type StorageConfig struct {
	Type        string `yaml:"type" mapstructure:"type"` // "sqlite", "postgres", "none"
	LocalPath   string `yaml:"local_path" mapstructure:"local_path"`
	PostgresDSN string `yaml:"postgres_dsn" mapstructure:"postgres_dsn"`
}

// LoggingConfig configures internal/logging
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// DefaultScoring returns the tuned scoring weights
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		FolderBase:        1.0,
		DepthBonus:        0.5,
		BusinessBonus:     2.0,
		TermBase:          1.0,
		RepeatedTermBonus: 3.0,
		OccurrenceWeight:  0.5,
		DepthLogWeight:    0.5,
		MinScore:          3.0,
		MinSegmentLength:  3,
		MinTermLength:     3,
		MaxFeatureEvents:  3,
	}
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Repo: RepoConfig{
			Path:        ".",
			MaxCommits:  200,
			Manifest:    "package.json",
			Timezone:    "UTC",
			DiffContext: 100000,
		},
		Scoring: DefaultScoring(),
		Enrich: EnrichConfig{
			Enabled:     false,
			RegistryURL: "https://registry.npmjs.org",
			RateLimit:   5,
			Timeout:     3 * time.Second,
			CachePath:   filepath.Join(homeDir, ".git-timeline", "descriptions.db"),
			Workers:     4,
		},
		Storage: StorageConfig{
			Type:      "sqlite",
			LocalPath: filepath.Join(homeDir, ".git-timeline", "history.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from file, .env files and the environment.
// Defaults from Default() fill anything left unset.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	// Unmarshal only overwrites keys present in the file, so pre-filling
	// from Default() keeps every unset value at its default.
	cfg := Default()

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".git-timeline")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".git-timeline"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence. godotenv never
// overrides variables already present, so earlier files win.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".git-timeline", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies flat environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if p := os.Getenv("GIT_TIMELINE_REPO"); p != "" {
		cfg.Repo.Path = expandPath(p)
	}
	if n := os.Getenv("GIT_TIMELINE_MAX_COMMITS"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			cfg.Repo.MaxCommits = v
		}
	}
	if tz := os.Getenv("GIT_TIMELINE_TIMEZONE"); tz != "" {
		cfg.Repo.Timezone = tz
	}
	if url := os.Getenv("NPM_REGISTRY_URL"); url != "" {
		cfg.Enrich.RegistryURL = url
	}
	if e := os.Getenv("GIT_TIMELINE_ENRICH"); e != "" {
		cfg.Enrich.Enabled = e == "true" || e == "1"
	}
	if t := os.Getenv("STORAGE_TYPE"); t != "" {
		cfg.Storage.Type = t
	}
	if p := os.Getenv("LOCAL_DB_PATH"); p != "" {
		cfg.Storage.LocalPath = expandPath(p)
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Storage.PostgresDSN = dsn
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Repo.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Repo.Timezone)
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("repo", c.Repo)
	v.Set("scoring", c.Scoring)
	v.Set("enrich", c.Enrich)
	v.Set("storage", c.Storage)
	v.Set("logging", c.Logging)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
