// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package main

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/sandboxgame/sandbox/internal/config"
	"github.com/sandboxgame/sandbox/internal/content"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/defs"
	"github.com/sandboxgame/sandbox/internal/schema"
)

// NewLintCmd creates the lint subcommand.
func NewLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [FILES...]",
		Short: "Check data files one at a time",
		Long: `Checks data files and mod manifests against their JSON Schema,
then parses each data file on its own and reports content errors.
References between files are not resolved; use check for that.

Without arguments every manifest and data file under the mods
directory is linted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runLint(cmd, cfg, args)
		},
	}
	config.BindFlags(cmd.Flags())
	return cmd
}

func runLint(cmd *cobra.Command, cfg *config.Config, files []string) error {
	if len(files) == 0 {
		var err error
		if files, err = modFiles(cfg.ModsDir, cfg.Extension, cfg.IgnoreGlobs()); err != nil {
			return err
		}
	}

	kinds := make(map[string]def.Kind)
	for _, k := range defs.Kinds() {
		kinds[k.Name] = k
	}

	out := cmd.OutOrStdout()
	var problems, bad int
	for _, f := range files {
		errs := lintFile(f, kinds)
		if len(errs) > 0 {
			bad++
		}
		for _, err := range errs {
			problems++
			printProblem(out, f, err)
		}
	}

	if problems > 0 {
		return oops.Code("LINT_FAILED").With("problems", problems).With("files", bad).
			Errorf("%d problems in %d of %d files", problems, bad, len(files))
	}
	_, _ = fmt.Fprintf(out, "%d files ok\n", len(files))
	return nil
}

func printProblem(out io.Writer, file string, err error) {
	for _, line := range strings.Split(schema.FormatError(err), "\n") {
		_, _ = fmt.Fprintf(out, "%s: %s\n", file, line)
	}
}

// lintFile returns every problem found in one file.
func lintFile(path string, kinds map[string]def.Kind) []error {
	data, err := os.ReadFile(path) //nolint:gosec // linting user-named files is the point
	if err != nil {
		return []error{oops.Code("FILE_READ_FAILED").With("file", path).Wrapf(err, "read file")}
	}

	if filepath.Base(path) == content.ManifestFile {
		if err := schema.ValidateManifest(data); err != nil {
			return []error{err}
		}
		if _, err := content.ParseManifest(data); err != nil {
			return []error{err}
		}
		return nil
	}

	if err := schema.Validate(data); err != nil {
		return []error{err}
	}
	root, err := schema.RootKey(data)
	if err != nil {
		return []error{err}
	}

	scratch := def.NewDatabase(def.WithLogger(slog.New(slog.DiscardHandler)))
	if err := kinds[root].LoadData(scratch, data, path); err != nil {
		return []error{err}
	}
	return scratch.ContentErrors()
}

// modFiles lists every manifest and data file of every mod under modsDir.
func modFiles(modsDir, ext string, ignore []glob.Glob) ([]string, error) {
	entries, err := os.ReadDir(modsDir)
	if err != nil {
		return nil, oops.Code("DIR_READ_FAILED").With("dir", modsDir).Wrapf(err, "read mods directory")
	}

	skip := func(name string) bool {
		for _, g := range ignore {
			if g.Match(name) {
				return true
			}
		}
		return false
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() || skip(entry.Name()) {
			continue
		}
		modDir := filepath.Join(modsDir, entry.Name())
		if _, err := os.Stat(filepath.Join(modDir, content.ManifestFile)); err == nil {
			files = append(files, filepath.Join(modDir, content.ManifestFile))
		}

		defsDir := filepath.Join(modDir, content.DefsDir)
		err := filepath.WalkDir(defsDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) && path == defsDir {
					return filepath.SkipDir
				}
				return err
			}
			if path != defsDir && skip(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && strings.EqualFold(strings.TrimPrefix(filepath.Ext(path), "."), ext) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, oops.Code("DIR_READ_FAILED").With("dir", defsDir).Wrapf(err, "walk definitions directory")
		}
	}
	return files, nil
}
