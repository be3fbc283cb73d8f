package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"javaindex/internal/core/app"
	"javaindex/internal/core/config"
	"javaindex/internal/engine/parser"
	"javaindex/internal/shared/observability"

	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [flags] [root...]",
		Short: "Index all configured repositories once",
		RunE:  runIndex,
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args, true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.InitTracing(ctx, tracingConfig(cfg))
	if err != nil {
		return err
	}
	defer flushTracing(shutdown)

	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	summary, err := rt.indexer.IndexRepos(ctx)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}
	writeSummary(cmd.OutOrStdout(), summary)
	return nil
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [flags] [root...]",
		Short: "Index once, then re-index files as they change",
		RunE:  runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig(cmd, args, true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.InitTracing(ctx, tracingConfig(cfg))
	if err != nil {
		return err
	}
	defer flushTracing(shutdown)

	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	if cfg.Observability.Enabled {
		srv := observability.NewServer(cfg.Observability.Address, app.NewHealthService(rt.indexer))
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("start observability server: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(stopCtx)
		}()
	}

	summary, err := rt.indexer.IndexRepos(ctx)
	if err != nil {
		return fmt.Errorf("initial index failed: %w", err)
	}
	writeSummary(cmd.OutOrStdout(), summary)

	w, err := rt.indexer.StartWatcher(ctx)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	if cfgPath != "" && len(args) == 0 {
		cw := config.NewWatcher(cfgPath, func(next *config.Config) {
			if err := rt.indexer.Reconfigure(next); err != nil {
				slog.Warn("config reload rejected", "error", err)
				return
			}
			w.SetDebounce(next.Watch.Debounce)
			slog.Info("config reloaded", "path", cfgPath)
		})
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config hot reload disabled", "error", err)
		} else {
			defer cw.Stop()
		}
	}

	slog.Info("watching for changes", "repos", len(cfg.Repos))
	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [flags] FILE",
		Short: "Print bindings and resolved type names for one Java file",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}
	cmd.Flags().String("format", "text", "output format (text|json|yaml)")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	cfg, _, err := loadConfig(cmd, nil, false)
	if err != nil {
		return err
	}

	report, err := app.ResolveFile(parser.NewParser(parser.DefaultJavaSpec()), args[0], cfg.Exclude.Types)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}
	return writeReport(cmd.OutOrStdout(), report, format)
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [flags] TYPE",
		Short: "List files using a fully qualified type, best score first",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}
	cmd.Flags().Int("limit", 20, "maximum number of files (0 for all)")
	cmd.Flags().String("format", "text", "output format (text|json|yaml)")
	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to get limit flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	cfg, _, err := loadConfig(cmd, nil, false)
	if err != nil {
		return err
	}
	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	usages, err := rt.indexer.Query(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}
	return writeUsages(cmd.OutOrStdout(), args[0], usages, format)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index size and the last run",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	cmd.Flags().String("format", "text", "output format (text|json|yaml)")
	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	cfg, _, err := loadConfig(cmd, nil, false)
	if err != nil {
		return err
	}
	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	stats, err := rt.indexer.Stats(cmd.Context())
	if err != nil {
		return err
	}
	return writeStats(cmd.OutOrStdout(), stats, format)
}

func tracingConfig(cfg *config.Config) observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:      cfg.Observability.EnableTracing,
		ServiceName:  cfg.Observability.ServiceName,
		OTLPEndpoint: cfg.Observability.OTLPEndpoint,
	}
}

func flushTracing(shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Warn("failed to flush traces", "error", err)
	}
}
