// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

// Package content discovers mods and loads their records into a
// definition database in a fixed order.
package content

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the manifest at the root of every mod.
const ManifestFile = "mod.yaml"

// DefsDir is the directory inside a mod that holds one directory per kind.
const DefsDir = "defs"

// Manifest represents a mod.yaml file.
type Manifest struct {
	Name         string   `yaml:"name" json:"name" jsonschema:"pattern=^[a-z]([a-z0-9-]*[a-z0-9])?$,maxLength=64"`
	Version      string   `yaml:"version" json:"version"`
	Engine       string   `yaml:"engine,omitempty" json:"engine,omitempty"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	version *semver.Version
	engine  *semver.Constraints
}

// maxNameLength is the maximum allowed length for mod names.
const maxNameLength = 64

// namePattern validates mod names: must start with lowercase letter,
// followed by lowercase letters, digits, or hyphens.
// Cannot end with a hyphen. Single character names are allowed.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseManifest parses and validates a mod.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, oops.Code("MOD_INVALID").Errorf("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, oops.Code("MOD_INVALID").Wrapf(err, "invalid YAML")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest constraints and parses the version fields.
func (m *Manifest) Validate() error {
	errb := oops.Code("MOD_INVALID").With("mod", m.Name)

	if m.Name == "" || !namePattern.MatchString(m.Name) {
		return errb.Errorf("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return errb.Errorf("name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}

	if m.Version == "" {
		return errb.Errorf("version is required")
	}
	v, err := semver.StrictNewVersion(m.Version)
	if err != nil {
		return errb.Wrapf(err, "version %q is not a semantic version", m.Version)
	}
	m.version = v

	m.engine = nil
	if m.Engine != "" {
		c, err := semver.NewConstraint(m.Engine)
		if err != nil {
			return errb.Wrapf(err, "engine constraint %q is invalid", m.Engine)
		}
		m.engine = c
	}

	for _, dep := range m.Dependencies {
		if dep == m.Name {
			return errb.Errorf("mod depends on itself")
		}
		if !namePattern.MatchString(dep) {
			return errb.Errorf("dependency %q is not a valid mod name", dep)
		}
	}

	return nil
}

// SemVer returns the parsed version. It is nil until Validate succeeds.
func (m *Manifest) SemVer() *semver.Version {
	return m.version
}

// Supports reports whether the mod accepts the given engine version. A mod
// without an engine constraint accepts every version, and so does every
// mod when the engine version is unknown.
func (m *Manifest) Supports(engine *semver.Version) bool {
	if m.engine == nil || engine == nil {
		return true
	}
	return m.engine.Check(engine)
}
