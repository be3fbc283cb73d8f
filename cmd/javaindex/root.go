package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"javaindex/internal/core/app"
	"javaindex/internal/core/config"
	"javaindex/internal/engine/parser"
	"javaindex/internal/engine/store"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "javaindex",
		Short:         "Index where Java types are used across repositories",
		Version:       VERSION,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			colorMode, _ := cmd.Flags().GetString("color")
			setupLogging(cmd.ErrOrStderr(), verbose)
			switch colorMode {
			case "on":
				color.NoColor = false
			case "off":
				color.NoColor = true
			case "auto":
			default:
				return fmt.Errorf("unknown color mode %q (auto|on|off)", colorMode)
			}
			return nil
		},
	}

	root.PersistentFlags().String("config", config.DefaultFile, "path to config file")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	root.AddCommand(newIndexCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newResolveCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newStatsCmd())
	return root
}

func setupLogging(out io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

// loadConfig reads --config. Positional roots, when given, replace the
// configured repos; without a config file they are the only repos. Repos are
// validated only when needRepos is set.
func loadConfig(cmd *cobra.Command, roots []string, needRepos bool) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config"):
		slog.Debug("no config file, using defaults", "path", path)
		cfg = config.Default()
		path = ""
	default:
		return nil, "", fmt.Errorf("load config: %w", err)
	}

	if len(roots) > 0 {
		cfg.Repos = nil
		for _, root := range roots {
			abs, err := filepath.Abs(root)
			if err != nil {
				return nil, "", err
			}
			cfg.Repos = append(cfg.Repos, config.Repo{ID: filepath.Base(abs), Root: abs})
		}
	}
	if needRepos {
		if errs := config.Validate(cfg); len(errs) > 0 {
			return nil, "", errs[0]
		}
	}
	return cfg, path, nil
}

// runtime bundles the long-lived pieces a command needs.
type runtime struct {
	cfg     *config.Config
	parser  *parser.Parser
	store   *store.SQLiteStore
	indexer *app.Indexer
}

func openRuntime(cfg *config.Config) (*runtime, error) {
	st, err := store.Open(cfg.DB.Path, cfg.DB.BusyTimeout)
	if err != nil {
		return nil, err
	}
	p := parser.NewParser(parser.DefaultJavaSpec())
	ix, err := app.New(cfg, p, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return &runtime{cfg: cfg, parser: p, store: st, indexer: ix}, nil
}

func (r *runtime) Close() error {
	return r.store.Close()
}
