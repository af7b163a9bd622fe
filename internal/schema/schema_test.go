// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package schema_test

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandboxgame/sandbox/internal/schema"
	"github.com/sandboxgame/sandbox/pkg/errutil"
)

const baseMod = "../../testdata/mods/base"

func TestGenerateSchema(t *testing.T) {
	data, err := schema.GenerateSchema("ItemDefs")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, schema.SchemaID("ItemDefs"), doc["$id"])
	assert.Contains(t, doc, "$schema")
	assert.Equal(t, []any{"ItemDefs"}, doc["required"])
	assert.Equal(t, false, doc["additionalProperties"])

	for _, field := range []string{`"list"`, `"defName"`, `"label"`, `"description"`} {
		assert.Contains(t, string(data), field)
	}
}

func TestGenerateSchema_UnknownKind(t *testing.T) {
	_, err := schema.GenerateSchema("SpellDefs")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "SCHEMA_UNKNOWN_KIND")
}

func TestGenerateSchema_EveryKind(t *testing.T) {
	kinds := schema.Kinds()
	require.Len(t, kinds, 20)

	for _, kind := range kinds {
		_, err := schema.GenerateSchema(kind)
		assert.NoError(t, err, kind)
	}
}

func TestGenerateManifestSchema(t *testing.T) {
	data, err := schema.GenerateManifestSchema()
	require.NoError(t, err)

	s := string(data)
	for _, field := range []string{`"name"`, `"version"`, `"engine"`, `"dependencies"`, `"$schema"`} {
		assert.Contains(t, s, field)
	}
	assert.Contains(t, s, schema.SchemaID(schema.ManifestKey))
}

func TestValidate_BaseMod(t *testing.T) {
	var files int
	err := filepath.WalkDir(filepath.Join(baseMod, "defs"), func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NoError(t, schema.Validate(data), path)
		files++
		return nil
	})
	require.NoError(t, err)
	assert.Positive(t, files)
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		code string
	}{
		{"empty", "", "SCHEMA_INVALID"},
		{"malformed", "ItemDefs: [unclosed", "YAML_INVALID"},
		{"two roots", "ItemDefs: {list: []}\nSoundDefs: {list: []}\n", "SCHEMA_INVALID"},
		{"unknown kind", "SpellDefs: {list: []}\n", "SCHEMA_UNKNOWN_KIND"},
		{"missing list", "ItemDefs: {}\n", "SCHEMA_INVALID"},
		{"missing defName", "ItemDefs:\n    list:\n        - label: axe\n", "SCHEMA_INVALID"},
		{"empty defName", "ItemDefs:\n    list:\n        - defName: ''\n", "SCHEMA_INVALID"},
		{"label not a string", "ItemDefs:\n    list:\n        - defName: Item_Axe\n          label: [a]\n", "SCHEMA_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate([]byte(tt.yaml))
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestValidate_ExtraKeysAllowed(t *testing.T) {
	err := schema.Validate([]byte(`
SoundDefs:
    list:
        - defName: Sound_Step
          path: sounds/step.ogg
          volumeRandomRange: {from: 0.8, to: 1}
`))
	assert.NoError(t, err)
}

func TestRootKey(t *testing.T) {
	key, err := schema.RootKey([]byte("SoundDefs:\n    list: []\n"))
	require.NoError(t, err)
	assert.Equal(t, "SoundDefs", key)

	_, err = schema.RootKey([]byte("- a\n- b\n"))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "SCHEMA_INVALID")

	_, err = schema.RootKey([]byte("a: [\n"))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "YAML_INVALID")
}

func TestValidateManifest(t *testing.T) {
	data, err := os.ReadFile(filepath.Join(baseMod, "mod.yaml"))
	require.NoError(t, err)
	require.NoError(t, schema.ValidateManifest(data))

	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", "version: 1.0.0\n"},
		{"missing version", "name: base\n"},
		{"uppercase name", "name: Base\nversion: 1.0.0\n"},
		{"name too long", "name: " + strings.Repeat("a", 65) + "\nversion: 1.0.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.ValidateManifest([]byte(tt.yaml))
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "SCHEMA_INVALID")
		})
	}
}

func TestResetCache(t *testing.T) {
	data := []byte("ItemDefs: {list: []}\n")
	require.NoError(t, schema.Validate(data))

	schema.ResetCache()

	assert.NoError(t, schema.Validate(data), "recompiles after reset")
}

func TestFormatError(t *testing.T) {
	assert.Empty(t, schema.FormatError(nil))
	assert.Equal(t, "plain", schema.FormatError(errors.New("plain")))

	err := schema.Validate([]byte("ItemDefs:\n    list:\n        - label: axe\n"))
	require.Error(t, err)

	msg := schema.FormatError(err)
	assert.Contains(t, msg, "defName")
	assert.NotContains(t, msg, "jsonschema validation failed")
}
