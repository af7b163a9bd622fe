// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sandboxgame/sandbox/internal/config"
	"github.com/sandboxgame/sandbox/internal/content"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the sandbox CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Sandbox - load, check and serve game content",
		Long: `Sandbox loads game definitions from mods, resolves every
cross-reference between them, and reports content errors.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/sandbox/settings.yaml)")
	cmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (json or text)")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewDumpCmd())
	cmd.AddCommand(NewLintCmd())
	cmd.AddCommand(NewServeCmd())

	return cmd
}

// loadConfig reads settings for cmd and installs the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logging.SetDefault("sandbox", version, cfg.LogFormat, cfg.Level(), cmd.ErrOrStderr())
	return cfg, nil
}

// newLoader builds a database and a loader configured from cfg.
func newLoader(cfg *config.Config, dbOpts []def.Option, loaderOpts ...content.LoaderOption) *content.Loader {
	logger := slog.Default()
	dbOpts = append([]def.Option{
		def.WithLogger(logger),
		def.WithExtension(cfg.Extension),
		def.WithIgnore(cfg.IgnoreGlobs()...),
	}, dbOpts...)

	loaderOpts = append([]content.LoaderOption{
		content.WithEngineVersion(cfg.Engine()),
		content.WithEnabled(cfg.Mods),
		content.WithStrict(cfg.Strict),
		content.WithVerifyAssets(cfg.VerifyAssets),
		content.WithLogger(logger),
	}, loaderOpts...)

	return content.NewLoader(cfg.ModsDir, def.NewDatabase(dbOpts...), loaderOpts...)
}
