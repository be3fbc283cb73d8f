package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "JAVAINDEX_"

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables already set win; a missing file is not an error.
func LoadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("failed to load env file", "path", path, "error", err)
	}
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: JAVAINDEX_[SECTION]_[KEY] (e.g., JAVAINDEX_INDEX_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	// Repos: a comma-separated root list replaces the configured repos.
	if val, ok := os.LookupEnv(envPrefix + "REPOS"); ok {
		slog.Debug("applying env override", "key", envPrefix+"REPOS", "value", val)
		cfg.Repos = nil
		for _, root := range strings.Split(val, ",") {
			if root = strings.TrimSpace(root); root != "" {
				cfg.Repos = append(cfg.Repos, Repo{Root: root})
			}
		}
	}

	// Index
	setEnvInt(&cfg.Index.Workers, envPrefix+"INDEX_WORKERS")
	setEnvFloat64(&cfg.Index.RateLimit, envPrefix+"INDEX_RATE_LIMIT")
	setEnvInt(&cfg.Index.Burst, envPrefix+"INDEX_BURST")
	setEnvInt(&cfg.Index.CacheSize, envPrefix+"INDEX_CACHE_SIZE")
	setEnvInt64(&cfg.Index.MaxFileBytes, envPrefix+"INDEX_MAX_FILE_BYTES")
	setEnvBool(&cfg.Index.IncludeTests, envPrefix+"INDEX_INCLUDE_TESTS")

	// Database
	setEnvString(&cfg.DB.Path, envPrefix+"DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, envPrefix+"DB_BUSY_TIMEOUT")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, envPrefix+"WATCH_DEBOUNCE")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, envPrefix+"OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Address, envPrefix+"OBSERVABILITY_ADDRESS")
	setEnvBool(&cfg.Observability.EnableTracing, envPrefix+"OBSERVABILITY_ENABLE_TRACING")
	setEnvString(&cfg.Observability.OTLPEndpoint, envPrefix+"OBSERVABILITY_OTLP_ENDPOINT")
	setEnvString(&cfg.Observability.ServiceName, envPrefix+"OBSERVABILITY_SERVICE_NAME")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvInt64(target *int64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
