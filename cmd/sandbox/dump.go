// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/sandboxgame/sandbox/internal/config"
	"github.com/sandboxgame/sandbox/internal/def"
)

// NewDumpCmd creates the dump subcommand.
func NewDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump KIND NAME",
		Short: "Print one resolved definition as YAML",
		Long: `Loads every enabled mod and writes one definition back out in
the data file layout, with defaults filled in:
  sandbox dump ItemDefs Item_Axe`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runDump(cmd, cfg, args[0], args[1])
		},
	}
	config.BindFlags(cmd.Flags())
	return cmd
}

func runDump(cmd *cobra.Command, cfg *config.Config, kind, name string) error {
	loader := newLoader(cfg, nil)
	if err := loader.Load(cmd.Context()); err != nil {
		return err
	}
	db := loader.Database()

	d, err := def.Get[def.Def](db, name)
	if err != nil {
		return err
	}
	if got, _, _ := db.Source(name); got != kind {
		return oops.Code("DEF_WRONG_KIND").With("def", name).With("kind", kind).With("actual_kind", got).
			Errorf("%s is one of the %s, not %s", name, got, kind)
	}

	data, err := def.Marshal(kind, d)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
