// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/sandboxgame/sandbox/internal/config"
	"github.com/sandboxgame/sandbox/internal/schema"
)

// listConfig holds configuration for the list command.
type listConfig struct {
	kind  string
	match string
	long  bool
}

// Validate checks that the configuration is valid.
func (cfg *listConfig) Validate() error {
	if cfg.kind != "" && !slices.Contains(schema.Kinds(), cfg.kind) {
		return oops.Code("UNKNOWN_KIND").With("kind", cfg.kind).Errorf("unknown kind %q", cfg.kind)
	}
	return nil
}

// NewListCmd creates the list subcommand.
func NewListCmd() *cobra.Command {
	cfg := &listConfig{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the names of resolved definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			settings, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runList(cmd, settings, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.kind, "kind", "", "only list definitions of this kind (e.g. ItemDefs)")
	cmd.Flags().StringVar(&cfg.match, "match", "", "only list names matching this glob (e.g. 'Item_*')")
	cmd.Flags().BoolVarP(&cfg.long, "long", "l", false, "also print kind and source file")
	config.BindFlags(cmd.Flags())

	return cmd
}

func runList(cmd *cobra.Command, settings *config.Config, cfg *listConfig) error {
	var match glob.Glob
	if cfg.match != "" {
		g, err := glob.Compile(cfg.match)
		if err != nil {
			return oops.Code("MATCH_INVALID").With("match", cfg.match).Wrapf(err, "compile --match pattern")
		}
		match = g
	}

	loader := newLoader(settings, nil)
	if err := loader.Load(cmd.Context()); err != nil {
		return err
	}
	db := loader.Database()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, name := range db.Names() {
		kind, file, _ := db.Source(name)
		if cfg.kind != "" && kind != cfg.kind {
			continue
		}
		if match != nil && !match.Match(name) {
			continue
		}
		if cfg.long {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", name, kind, file)
		} else {
			_, _ = fmt.Fprintln(w, name)
		}
	}
	return w.Flush()
}
