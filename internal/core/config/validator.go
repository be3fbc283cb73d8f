package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"javaindex/internal/core/config/helpers"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateRepos(cfg *Config) error {
	if len(cfg.Repos) == 0 {
		return fmt.Errorf("at least one repo must be configured")
	}
	seenIDs := make(map[string]bool, len(cfg.Repos))
	roots := make([]string, 0, len(cfg.Repos))
	for i, repo := range cfg.Repos {
		ref := fmt.Sprintf("repos[%d]", i)
		if strings.TrimSpace(repo.Root) == "" {
			return fmt.Errorf("%s.root must not be empty", ref)
		}
		if strings.TrimSpace(repo.ID) == "" {
			return fmt.Errorf("%s.id must not be empty", ref)
		}
		if seenIDs[repo.ID] {
			return fmt.Errorf("duplicate repo id %q", repo.ID)
		}
		seenIDs[repo.ID] = true

		root := filepath.Clean(repo.Root)
		for j, other := range roots {
			if helpers.IsPathOverlap(root, other) {
				return fmt.Errorf("%s.root %q overlaps repos[%d].root %q", ref, repo.Root, j, other)
			}
		}
		roots = append(roots, root)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d] %q is not a valid pattern: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("exclude.files[%d] %q is not a valid pattern: %w", i, pattern, err)
		}
	}
	for i, name := range cfg.Exclude.Types {
		if strings.TrimSpace(name) == "" || helpers.HasWildcard(name) {
			return fmt.Errorf("exclude.types[%d] %q must be a fully qualified type name", i, name)
		}
	}
	return nil
}

func validateIndex(cfg *Config) error {
	if cfg.Index.Workers < 1 || cfg.Index.Workers > 256 {
		return fmt.Errorf("index.workers must be between 1 and 256")
	}
	if cfg.Index.RateLimit < 0 {
		return fmt.Errorf("index.rate_limit must not be negative")
	}
	if cfg.Index.Burst < 1 {
		return fmt.Errorf("index.burst must be >= 1")
	}
	if cfg.Index.CacheSize < 1 {
		return fmt.Errorf("index.cache_size must be >= 1")
	}
	if cfg.Index.MaxFileBytes < 1 {
		return fmt.Errorf("index.max_file_bytes must be >= 1")
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	if info, err := os.Stat(cfg.DB.Path); err == nil && info.IsDir() {
		return fmt.Errorf("db.path %q is a directory", cfg.DB.Path)
	}
	if cfg.DB.BusyTimeout < 0 {
		return fmt.Errorf("db.busy_timeout must not be negative")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 || cfg.Watch.Debounce > time.Minute {
		return fmt.Errorf("watch.debounce must be between 0 and 1m")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	obs := cfg.Observability
	if obs.Enabled && strings.TrimSpace(obs.Address) == "" {
		return fmt.Errorf("observability.address must not be empty when observability.enabled=true")
	}
	if obs.EnableTracing && strings.TrimSpace(obs.ServiceName) == "" {
		return fmt.Errorf("observability.service_name must not be empty when tracing is enabled")
	}
	return nil
}

// Validate reports every problem with cfg, in section order.
func Validate(cfg *Config) []error {
	var errs []error

	for _, check := range []func(*Config) error{
		validateVersion,
		validateRepos,
		validateExclude,
		validateIndex,
		validateDatabase,
		validateWatch,
		validateObservability,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}

	errs = append(errs, validatePaths(cfg)...)
	return errs
}

func validatePaths(cfg *Config) []error {
	var errs []error
	for i, repo := range cfg.Repos {
		if strings.TrimSpace(repo.Root) == "" {
			continue
		}
		info, err := os.Stat(repo.Root)
		if err != nil {
			errs = append(errs, fmt.Errorf("repos[%d].root %q does not exist", i, repo.Root))
			continue
		}
		if !info.IsDir() {
			errs = append(errs, fmt.Errorf("repos[%d].root %q is not a directory", i, repo.Root))
		}
	}
	return errs
}
