// Package config provides configuration loading from environment variables,
// with an optional YAML overlay file.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Matching defaults. Score thresholds and window sizing are tunable, not
// contracts.
const (
	DefaultScoreFloor         = 0.6
	DefaultMaxResultsPerField = 3
	DefaultStepFraction       = 0.5
	DefaultMaxUploadBytes     = 16 << 20
)

// Config holds all configuration for the evidence MCP server.
type Config struct {
	// Storage
	UploadsDir  string `yaml:"uploads_dir"`  // UPLOADS_DIR, default "uploads"
	JSONDir     string `yaml:"json_dir"`     // JSON_DIR, default "json"
	KeepUploads bool   `yaml:"keep_uploads"` // KEEP_UPLOADS, default true
	DocCacheMax int    `yaml:"doc_cache_max"` // DOC_CACHE_MAX, default 64

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"` // MAX_UPLOAD_BYTES, default 16 MiB

	// Evidence linking
	ScoreFloor         float64       `yaml:"score_floor"`           // SCORE_FLOOR, default 0.6
	MaxResultsPerField int           `yaml:"max_results_per_field"` // MAX_RESULTS_PER_FIELD, default 3
	WindowStepFraction float64       `yaml:"window_step_fraction"`  // WINDOW_STEP_FRACTION, default 0.5
	Concurrency        int           `yaml:"concurrency"`           // CONCURRENCY, default NumCPU
	Deadline           time.Duration `yaml:"-"`                     // DEADLINE_MS, default 0 (none)

	// Logging
	LogLevel      string `yaml:"log_level"`       // LOG_LEVEL, default "info"
	LogFile       string `yaml:"log_file"`        // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"` // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    `yaml:"log_max_backups"` // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    `yaml:"log_max_age_days"` // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   `yaml:"log_compress"`    // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible
// defaults, then applies the YAML overlay named by EVIDENCE_MCP_CONFIG, if
// set. File values win over environment values.
func Load() (*Config, error) {
	cfg := &Config{
		UploadsDir:  getEnvString("UPLOADS_DIR", "uploads"),
		JSONDir:     getEnvString("JSON_DIR", "json"),
		KeepUploads: getEnvBool("KEEP_UPLOADS", true),
		DocCacheMax: getEnvInt("DOC_CACHE_MAX", 64),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),

		ScoreFloor:         getEnvFloat("SCORE_FLOOR", DefaultScoreFloor),
		MaxResultsPerField: getEnvInt("MAX_RESULTS_PER_FIELD", DefaultMaxResultsPerField),
		WindowStepFraction: getEnvFloat("WINDOW_STEP_FRACTION", DefaultStepFraction),
		Concurrency:        getEnvInt("CONCURRENCY", runtime.NumCPU()),
		Deadline:           getEnvDurationMs("DEADLINE_MS", 0),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}

	if path := os.Getenv("EVIDENCE_MCP_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.validate()
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.ScoreFloor <= 0 || c.ScoreFloor > 1 {
		return fmt.Errorf("score floor %v not in (0,1]", c.ScoreFloor)
	}
	if c.WindowStepFraction <= 0 || c.WindowStepFraction > 1 {
		return fmt.Errorf("window step fraction %v not in (0,1]", c.WindowStepFraction)
	}
	if c.MaxResultsPerField < 1 {
		return fmt.Errorf("max results per field %d < 1", c.MaxResultsPerField)
	}
	if c.UploadsDir == "" || c.JSONDir == "" {
		return fmt.Errorf("uploads and json directories must be set")
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMs)) * time.Millisecond
}
