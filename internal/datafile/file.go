// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

// Package datafile binds Go values to hierarchical YAML data files.
//
// A type takes part by implementing Saveable: its Expose method calls Var,
// VarOr, Seq and Map for each persisted field. The same method serves three
// activities. Loading reads fields from the parsed tree, Saving writes them
// back out, and PostLoadInit gives records one pass to recompute derived
// fields after everything has loaded.
//
// Problems in the data are split in two tiers. Content errors (a missing
// required key, a malformed value, a wrongly shaped node) are logged with
// file and key context and collected on the Activity while loading goes on.
// Invariant violations reported with Node.Fatalf stop the activity.
package datafile

import (
	"bytes"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// Indent is the indentation width of saved files.
const Indent = 4

// Option configures a load or save call.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger diagnostics are written to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load reads the file at path and binds the entry under rootKey into v,
// running Loading and then PostLoadInit. It returns the fatal error if one
// occurred, otherwise the joined content errors.
func Load(path, rootKey string, v Saveable, opts ...Option) error {
	data, err := os.ReadFile(path) //nolint:gosec // data files are chosen by the operator
	if err != nil {
		return oops.Code("FILE_READ_FAILED").With("file", path).Wrapf(err, "read data file")
	}
	if _, err := Parse(data, path, rootKey, v, opts...); err != nil {
		return err
	}
	_, err = Init(path, rootKey, v, opts...)
	return err
}

// Unmarshal is Load over bytes already in memory.
func Unmarshal(data []byte, rootKey string, v Saveable, opts ...Option) error {
	const path = "<memory>"
	if _, err := Parse(data, path, rootKey, v, opts...); err != nil {
		return err
	}
	_, err := Init(path, rootKey, v, opts...)
	return err
}

// Parse runs only the Loading activity over data. path is used for
// diagnostics. The returned Activity carries every content error; the
// returned error is Activity.Err.
//
// Unparseable YAML and a missing root key are content errors: the file
// contributes nothing but callers loading many files can carry on.
func Parse(data []byte, path, rootKey string, v Saveable, opts ...Option) (*Activity, error) {
	o := buildOptions(opts)
	a := NewActivity(Loading, path, o.logger)

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		a.addError(oops.
			Code("YAML_INVALID").
			With("file", path).
			Wrapf(err, "parse data file %q", path))
		return a, a.Err()
	}

	top := documentRoot(&doc)
	root := newRootNode(a, top)
	if top != nil && !isNull(top) && top.Kind != yaml.MappingNode {
		root.Errorf("document root is a %s, not a map", kindName(top))
		return a, a.Err()
	}

	val := root.lookup(rootKey)
	if val == nil {
		a.addError(oops.
			Code("ROOT_KEY_MISSING").
			With("file", path).
			With("key", rootKey).
			Errorf("root key %q not found in data file %q", rootKey, path))
		return a, a.Err()
	}

	loadSaveable(root, rootKey, val, v, nil)
	return a, a.Err()
}

// Init runs only the PostLoadInit activity over v, which is bound under
// key for diagnostics.
func Init(path, key string, v Saveable, opts ...Option) (*Activity, error) {
	o := buildOptions(opts)
	a := NewActivity(PostLoadInit, path, o.logger)
	root := newRootNode(a, nil)
	v.Expose(root.child(key, nil))
	return a, a.Err()
}

// Marshal runs the Saving activity over v and returns the document with v
// under rootKey.
func Marshal(rootKey string, v Saveable, opts ...Option) ([]byte, error) {
	return marshal("<memory>", rootKey, v, opts)
}

// Save writes v under rootKey to the file at path.
func Save(path, rootKey string, v Saveable, opts ...Option) error {
	data, err := marshal(path, rootKey, v, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return oops.Code("FILE_WRITE_FAILED").With("file", path).Wrapf(err, "write data file")
	}
	return nil
}

func marshal(path, rootKey string, v Saveable, opts []Option) ([]byte, error) {
	o := buildOptions(opts)
	a := NewActivity(Saving, path, o.logger)
	root := newRootNode(a, nil)
	root.put(rootKey, saveSaveable(root, rootKey, v))
	if a.Failed() {
		return nil, a.Err()
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(Indent)
	if err := enc.Encode(root.out); err != nil {
		return nil, oops.Code("YAML_ENCODE_FAILED").With("file", path).Wrapf(err, "encode data file")
	}
	if err := enc.Close(); err != nil {
		return nil, oops.Code("YAML_ENCODE_FAILED").With("file", path).Wrapf(err, "encode data file")
	}
	return buf.Bytes(), nil
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	return resolveAlias(doc.Content[0])
}
