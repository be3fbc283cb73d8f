// # internal/core/config/config_test.go
package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "core"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "web"), 0o755))

	path := writeConfig(t, dir, `
[[repos]]
root = "src/core"

[[repos]]
id = "frontend"
root = "src/web"

[exclude]
dirs = [".git", "generated*"]
files = ["**/*Generated.java"]
types = ["java.lang.Object"]

[index]
workers = 4
rate_limit = 50.0
max_file_bytes = 1024

[db]
path = "state/index.db"
busy_timeout = "2s"

[watch]
debounce = "1s"

[observability]
enabled = true
enable_tracing = true
otlp_endpoint = "localhost:4317"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Repos, 2)
	assert.Equal(t, "core", cfg.Repos[0].ID)
	assert.Equal(t, filepath.Join(dir, "src", "core"), cfg.Repos[0].Root)
	assert.Equal(t, "frontend", cfg.Repos[1].ID)

	assert.Equal(t, []string{".git", "generated*"}, cfg.Exclude.Dirs)
	assert.Equal(t, []string{"java.lang.Object"}, cfg.Exclude.Types)

	assert.Equal(t, 4, cfg.Index.Workers)
	assert.Equal(t, 4, cfg.Index.Burst)
	assert.Equal(t, 50.0, cfg.Index.RateLimit)
	assert.Equal(t, int64(1024), cfg.Index.MaxFileBytes)
	assert.Equal(t, 4096, cfg.Index.CacheSize)

	assert.Equal(t, filepath.Join(dir, "state", "index.db"), cfg.DB.Path)
	assert.Equal(t, 2*time.Second, cfg.DB.BusyTimeout)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)

	assert.True(t, cfg.Observability.EnableTracing)
	assert.Equal(t, "127.0.0.1:9464", cfg.Observability.Address)
	assert.Equal(t, "javaindex", cfg.Observability.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	path := writeConfig(t, dir, `
[[repos]]
root = "."
`)
	t.Setenv("JAVAINDEX_INDEX_WORKERS", "3")
	t.Setenv("JAVAINDEX_WATCH_DEBOUNCE", "250ms")
	t.Setenv("JAVAINDEX_OBSERVABILITY_ENABLED", "TRUE")
	t.Setenv("JAVAINDEX_INDEX_BURST", "not-a-number")
	t.Setenv("JAVAINDEX_REPOS", other+", ")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Index.Workers)
	assert.Equal(t, 3, cfg.Index.Burst)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.True(t, cfg.Observability.Enabled)
	require.Len(t, cfg.Repos, 1)
	assert.Equal(t, filepath.Clean(other), cfg.Repos[0].Root)
}

func TestLoad_DotEnv(t *testing.T) {
	const key = "JAVAINDEX_DB_PATH"
	// Register restoration of the original state, then make sure the
	// variable is absent so the .env file can set it.
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	dir := t.TempDir()
	path := writeConfig(t, dir, `
[[repos]]
root = "."
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-dotenv.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from-dotenv.db"), cfg.DB.Path)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	dir := t.TempDir()
	_, err = Load(writeConfig(t, dir, `repos = "nope`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, dir, `version = 1`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one repo")
}

func TestDefault(t *testing.T) {
	cfg := Default("/tmp/project")
	require.Len(t, cfg.Repos, 1)
	assert.Equal(t, "project", cfg.Repos[0].ID)
	assert.Equal(t, runtime.NumCPU(), cfg.Index.Workers)
	assert.Equal(t, "data/javaindex.db", cfg.DB.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
}

func TestValidate(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "version", mutate: func(c *Config) { c.Version = 2 }, want: "unsupported config version"},
		{name: "duplicate id", mutate: func(c *Config) {
			c.Repos = append(c.Repos, Repo{ID: c.Repos[0].ID, Root: t.TempDir()})
		}, want: "duplicate repo id"},
		{name: "overlap", mutate: func(c *Config) {
			c.Repos = append(c.Repos, Repo{ID: "nested", Root: nested})
		}, want: "overlaps"},
		{name: "missing root", mutate: func(c *Config) { c.Repos[0].Root = filepath.Join(root, "gone") }, want: "does not exist"},
		{name: "file root", mutate: func(c *Config) { c.Repos[0].Root = file }, want: "is not a directory"},
		{name: "bad dir glob", mutate: func(c *Config) { c.Exclude.Dirs = []string{"[unclosed"} }, want: "exclude.dirs[0]"},
		{name: "wildcard type", mutate: func(c *Config) { c.Exclude.Types = []string{"java.util.*"} }, want: "exclude.types[0]"},
		{name: "workers", mutate: func(c *Config) { c.Index.Workers = 0 }, want: "index.workers"},
		{name: "rate", mutate: func(c *Config) { c.Index.RateLimit = -1 }, want: "index.rate_limit"},
		{name: "db dir", mutate: func(c *Config) { c.DB.Path = root }, want: "is a directory"},
		{name: "debounce", mutate: func(c *Config) { c.Watch.Debounce = time.Hour }, want: "watch.debounce"},
		{name: "observability", mutate: func(c *Config) {
			c.Observability.Enabled = true
			c.Observability.Address = " "
		}, want: "observability.address"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default(root)
			cfg.DB.Path = filepath.Join(t.TempDir(), "index.db")
			tc.mutate(cfg)
			errs := Validate(cfg)
			if tc.want == "" {
				assert.Empty(t, errs)
				return
			}
			var msgs []string
			for _, err := range errs {
				msgs = append(msgs, err.Error())
			}
			assert.Contains(t, strings.Join(msgs, "\n"), tc.want)
		})
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[[repos]]\nroot = \".\"\n")

	reloaded := make(chan *Config, 4)
	w := NewWatcher(path, func(cfg *Config) { reloaded <- cfg })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[[repos]]\nroot = \".\"\n\n[index]\nworkers = 7\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 7, cfg.Index.Workers)
	case <-time.After(3 * time.Second):
		t.Fatal("expected config reload")
	}
}
