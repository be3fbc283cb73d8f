package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultFile = "javaindex.toml"

type Config struct {
	Version       int           `toml:"version"`
	Repos         []Repo        `toml:"repos"`
	Exclude       Exclude       `toml:"exclude"`
	Index         Index         `toml:"index"`
	DB            Database      `toml:"db"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

// Repo is one source tree to index. ID defaults to the root's base name.
type Repo struct {
	ID   string `toml:"id"`
	Root string `toml:"root"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
	Types []string `toml:"types"` // Fully qualified names never recorded
}

type Index struct {
	Workers      int     `toml:"workers"`
	RateLimit    float64 `toml:"rate_limit"` // files per second, 0 = unlimited
	Burst        int     `toml:"burst"`
	CacheSize    int     `toml:"cache_size"`
	MaxFileBytes int64   `toml:"max_file_bytes"`
	IncludeTests bool    `toml:"include_tests"`
}

type Database struct {
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Address       string `toml:"address"`
	EnableTracing bool   `toml:"enable_tracing"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	ServiceName   string `toml:"service_name"`
}

// Load reads a TOML config, applies .env and environment overrides, fills
// defaults and validates the result. Relative paths are resolved against the
// config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	LoadDotEnv(filepath.Join(filepath.Dir(path), ".env"))
	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	resolvePaths(&cfg, filepath.Dir(path))

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errs[0]
	}
	return &cfg, nil
}

// Default returns a validated-shape config indexing the given roots.
func Default(roots ...string) *Config {
	cfg := &Config{}
	for _, root := range roots {
		cfg.Repos = append(cfg.Repos, Repo{Root: root})
	}
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	for i := range cfg.Repos {
		repo := &cfg.Repos[i]
		repo.Root = strings.TrimSpace(repo.Root)
		repo.ID = strings.TrimSpace(repo.ID)
		if repo.ID == "" && repo.Root != "" {
			repo.ID = filepath.Base(filepath.Clean(repo.Root))
		}
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "target", "build", "out", "node_modules"}
	}

	if cfg.Index.Workers <= 0 {
		cfg.Index.Workers = runtime.NumCPU()
	}
	if cfg.Index.Burst <= 0 {
		cfg.Index.Burst = cfg.Index.Workers
	}
	if cfg.Index.CacheSize <= 0 {
		cfg.Index.CacheSize = 4096
	}
	if cfg.Index.MaxFileBytes <= 0 {
		cfg.Index.MaxFileBytes = 2 << 20
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "data/javaindex.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = "127.0.0.1:9464"
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "javaindex"
	}
}

func resolvePaths(cfg *Config, base string) {
	for i := range cfg.Repos {
		if cfg.Repos[i].Root != "" {
			cfg.Repos[i].Root = ResolveRelative(base, cfg.Repos[i].Root)
		}
	}
	cfg.DB.Path = ResolveRelative(base, cfg.DB.Path)
}

// ResolveRelative joins value onto base unless value is already absolute.
func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}
