package config

import (
	stderrors "errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "ask_analytics/errors"
)

// Config holds the lh3 API profile plus analysis settings. It is built once
// by Load and passed explicitly through fetcher, statistics, and renderer.
type Config struct {
	Scheme     string
	Server     string
	Timezone   string
	APIVersion string
	Username   string
	Password   string

	// Location is the resolved Timezone; every time bucket uses it.
	Location *time.Location

	OutputDir         string
	RequestTimeoutSec int
	TopOperators      int
	PeakBuckets       int
	CacheDBPath       string
	ExportDir         string
	StrictConfig      bool
}

type fileConfig struct {
	OutputDir         string `yaml:"output_dir"`
	RequestTimeoutSec *int   `yaml:"request_timeout_sec"`
	TopOperators      *int   `yaml:"top_operators"`
	PeakBuckets       *int   `yaml:"peak_buckets"`
	CacheDBPath       string `yaml:"cache_db_path"`
	ExportDir         string `yaml:"export_dir"`
}

const (
	defaultScheme      = "https"
	defaultAPIVersion  = "v2"
	defaultTimezone    = "UTC"
	defaultOutputDir   = "."
	defaultTimeoutSec  = 30
	defaultTopOps      = 5
	defaultPeakBuckets = 3
	defaultCacheDB     = "chat_cache.db"
)

// Load reads the lh3 profile files, applies environment overrides and the
// optional YAML overrides file, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Scheme:            defaultScheme,
		APIVersion:        defaultAPIVersion,
		Timezone:          defaultTimezone,
		OutputDir:         defaultOutputDir,
		RequestTimeoutSec: defaultTimeoutSec,
		TopOperators:      defaultTopOps,
		PeakBuckets:       defaultPeakBuckets,
		CacheDBPath:       defaultCacheDB,
		StrictConfig:      parseBoolEnv("STRICT_CONFIG"),
	}

	profileDir := getEnv("LH3_CONFIG_DIR", defaultProfileDir())
	configPath := filepath.Join(profileDir, "config")
	credsPath := filepath.Join(profileDir, "credentials")

	profile, err := parseINIFile(configPath)
	if err != nil {
		return cfg, &apperrors.ConfigurationError{Path: configPath, Err: err}
	}
	creds, err := parseINIFile(credsPath)
	if err != nil {
		return cfg, &apperrors.ConfigurationError{Path: credsPath, Err: err}
	}

	cfg.Scheme = firstNonEmpty(os.Getenv("LH3_SCHEME"), profile["scheme"], cfg.Scheme)
	cfg.Server = firstNonEmpty(os.Getenv("LH3_SERVER"), profile["server"])
	cfg.Timezone = firstNonEmpty(os.Getenv("LH3_TIMEZONE"), profile["timezone"], cfg.Timezone)
	cfg.APIVersion = firstNonEmpty(os.Getenv("LH3_API_VERSION"), profile["version"], cfg.APIVersion)
	cfg.Username = firstNonEmpty(os.Getenv("LH3_USERNAME"), creds["username"])
	cfg.Password = firstNonEmpty(os.Getenv("LH3_PASSWORD"), creds["password"])

	overridesPath := getEnv("ASK_ANALYTICS_CONFIG", "ask_analytics.yaml")
	fileCfg, fileErr := loadFileConfig(overridesPath)
	if fileErr != nil && !os.IsNotExist(fileErr) {
		if cfg.StrictConfig {
			return cfg, &apperrors.ConfigurationError{Path: overridesPath, Err: fileErr}
		}
		log.Printf("overrides load failed (%s): %v (using defaults)", overridesPath, fileErr)
	}
	cfg = applyFileOverrides(cfg, fileCfg)

	cfg.OutputDir = firstNonEmpty(os.Getenv("ASK_OUTPUT_DIR"), cfg.OutputDir)
	cfg.CacheDBPath = firstNonEmpty(os.Getenv("ASK_CACHE_DB"), cfg.CacheDBPath)
	cfg.ExportDir = firstNonEmpty(os.Getenv("ASK_EXPORT_DIR"), cfg.ExportDir)

	if v, ok, err := parseIntEnv("ASK_REQUEST_TIMEOUT_SEC"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid ASK_REQUEST_TIMEOUT_SEC: %w", err)
		}
		log.Printf("invalid ASK_REQUEST_TIMEOUT_SEC: %v (using default)", err)
	} else if ok && v > 0 {
		cfg.RequestTimeoutSec = v
	}
	if v, ok, err := parseIntEnv("ASK_TOP_OPERATORS"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid ASK_TOP_OPERATORS: %w", err)
		}
		log.Printf("invalid ASK_TOP_OPERATORS: %v (using default)", err)
	} else if ok && v > 0 {
		cfg.TopOperators = v
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, &apperrors.ConfigurationError{
			Path: configPath,
			Err:  fmt.Errorf("%w: %q", apperrors.ErrUnknownTimezone, cfg.Timezone),
		}
	}
	cfg.Location = loc

	if err := validateConfig(cfg); err != nil {
		return cfg, &apperrors.ConfigurationError{Path: profileDir, Err: err}
	}
	return cfg, nil
}

func defaultProfileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lh3"
	}
	return filepath.Join(home, ".lh3")
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, stderrors.New("empty overrides file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFileOverrides(base Config, override fileConfig) Config {
	if strings.TrimSpace(override.OutputDir) != "" {
		base.OutputDir = strings.TrimSpace(override.OutputDir)
	}
	if override.RequestTimeoutSec != nil && *override.RequestTimeoutSec > 0 {
		base.RequestTimeoutSec = *override.RequestTimeoutSec
	}
	if override.TopOperators != nil && *override.TopOperators > 0 {
		base.TopOperators = *override.TopOperators
	}
	if override.PeakBuckets != nil && *override.PeakBuckets > 0 {
		base.PeakBuckets = *override.PeakBuckets
	}
	if strings.TrimSpace(override.CacheDBPath) != "" {
		base.CacheDBPath = strings.TrimSpace(override.CacheDBPath)
	}
	if strings.TrimSpace(override.ExportDir) != "" {
		base.ExportDir = strings.TrimSpace(override.ExportDir)
	}
	return base
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Server) == "" {
		return fmt.Errorf("%w: server", apperrors.ErrMissingKey)
	}
	if strings.TrimSpace(cfg.Username) == "" {
		return fmt.Errorf("%w: username", apperrors.ErrMissingKey)
	}
	if strings.TrimSpace(cfg.Password) == "" {
		return fmt.Errorf("%w: password", apperrors.ErrMissingKey)
	}
	if cfg.Scheme != "http" && cfg.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https (got %q)", cfg.Scheme)
	}
	if cfg.RequestTimeoutSec <= 0 {
		return stderrors.New("request timeout must be positive")
	}
	return nil
}

// BaseURL returns the API root for the configured profile.
func (c Config) BaseURL() string {
	return fmt.Sprintf("%s://%s/api/%s", c.Scheme, c.Server, c.APIVersion)
}

// RequestTimeout returns the per-request timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return false
}

func parseIntEnv(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	val, err := strconv.Atoi(raw)
	return val, true, err
}
