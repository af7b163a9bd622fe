// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

// Command gen-schema generates the JSON Schema files for mod manifests and
// every data file kind.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sandboxgame/sandbox/internal/logging"
	"github.com/sandboxgame/sandbox/internal/schema"
)

func main() {
	out := flag.String("out", "schemas", "output directory")
	flag.Parse()

	logger := logging.Setup("gen-schema", "dev", logging.FormatText, slog.LevelInfo, nil)
	paths, err := generate(*out)
	if err != nil {
		logger.Error("generating schemas", "error", err)
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Printf("Generated %s\n", p)
	}
}

// generate writes one schema per kind plus the manifest schema into dir
// and returns the written paths.
func generate(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	write := func(name string, data []byte) (string, error) {
		path := filepath.Join(dir, name+".schema.json")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
		return path, nil
	}

	manifest, err := schema.GenerateManifestSchema()
	if err != nil {
		return nil, err
	}
	path, err := write(schema.ManifestKey, manifest)
	if err != nil {
		return nil, err
	}
	paths := []string{path}

	for _, kind := range schema.Kinds() {
		data, err := schema.GenerateSchema(kind)
		if err != nil {
			return nil, err
		}
		if path, err = write(kind, data); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
