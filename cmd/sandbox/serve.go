// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandboxgame/sandbox/internal/config"
	"github.com/sandboxgame/sandbox/internal/content"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/observability"
	"github.com/sandboxgame/sandbox/internal/reload"
	"github.com/sandboxgame/sandbox/pkg/errutil"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load content and keep it loaded",
		Long: `Loads every enabled mod, serves metrics and health probes, and
with --watch reloads all content whenever a mod file changes. Runs
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	config.BindFlags(cmd.Flags())
	config.BindServeFlags(cmd.Flags())
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		loader     *content.Loader
		srv        *observability.Server
		dbOpts     []def.Option
		loaderOpts []content.LoaderOption
	)
	if cfg.MetricsAddr != "" {
		srv = observability.NewServer(cfg.MetricsAddr, func() bool { return loader.Ready() })
		dbOpts = append(dbOpts, def.WithObserver(srv.Metrics()))
		loaderOpts = append(loaderOpts, content.WithRecorder(srv.Metrics()))
	}
	loader = newLoader(cfg, dbOpts, loaderOpts...)

	if srv != nil {
		errCh, err := srv.Start()
		if err != nil {
			return err
		}
		go monitorServerErrors(ctx, cancel, errCh, "observability")
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				slog.Warn("error stopping observability server", "error", err)
			}
		}()
	}

	if err := loader.Load(ctx); err != nil {
		if !cfg.Watch {
			return err
		}
		errutil.LogError(slog.Default(), "initial content load failed, waiting for changes", err)
	} else {
		slog.Info("content loaded", "defs", loader.Database().Len(), "content_errors", len(loader.ContentErrors()))
	}

	if !cfg.Watch {
		<-ctx.Done()
		slog.Info("shutdown complete")
		return nil
	}

	w, err := reload.New(cfg.ModsDir, loader,
		reload.WithDebounce(cfg.WatchDebounce),
		reload.WithIgnore(cfg.IgnoreGlobs()...),
		reload.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}
	slog.Info("watching for content changes", "dir", cfg.ModsDir)
	if err := w.Run(ctx); err != nil {
		return err
	}
	slog.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels the context when a server fails. It exits
// when either an error is received, the channel is closed, or the context
// is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
