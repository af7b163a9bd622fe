// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sandboxgame/sandbox/internal/config"
	"github.com/sandboxgame/sandbox/pkg/errutil"
)

// NewCheckCmd creates the check subcommand.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load and resolve every enabled mod",
		Long: `Loads every enabled mod, resolves all cross-references and
reports content errors. Exits non-zero on a fatal error, or on any
content error with --strict.

Useful in CI pipelines to catch broken content early:
  sandbox check --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runCheck(cmd, cfg)
		},
	}
	config.BindFlags(cmd.Flags())
	return cmd
}

func runCheck(cmd *cobra.Command, cfg *config.Config) error {
	loader := newLoader(cfg, nil)
	loadErr := loader.Load(cmd.Context())

	out := cmd.OutOrStdout()
	errs := loader.ContentErrors()
	printContentErrors(out, errs)

	if loadErr != nil {
		return loadErr
	}

	mods := loader.Mods()
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Manifest.Name + "@" + m.Manifest.Version
	}
	_, _ = fmt.Fprintf(out, "loaded %d definitions from %d mods %v with %d content errors\n",
		loader.Database().Len(), len(mods), names, len(errs))
	return nil
}

// printContentErrors writes one line per error, then a count per code.
func printContentErrors(out io.Writer, errs []error) {
	if len(errs) == 0 {
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, err := range errs {
		code := errutil.Code(err)
		if code == "" {
			code = errutil.UncodedError
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", code, err)
	}
	_ = w.Flush()

	counts := errutil.CountCodes(errs...)
	for _, code := range errutil.SortedCodes(counts) {
		_, _ = fmt.Fprintf(out, "%s: %d\n", code, counts[code])
	}
}
