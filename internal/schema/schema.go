// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

// Package schema generates JSON Schemas for mod manifests and data files
// and lints YAML documents against them.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/sandboxgame/sandbox/internal/content"
	"github.com/sandboxgame/sandbox/internal/defs"
)

const baseID = "https://sandboxgame.dev/schemas/"

// ManifestKey names the manifest schema in the cache and in SchemaID.
const ManifestKey = "mod"

// Record is the part of a record every kind shares. Other keys are
// allowed and checked by the loader.
type Record struct {
	DefName     string `json:"defName" jsonschema:"minLength=1,description=Unique name other records refer to"`
	Label       string `json:"label,omitempty" jsonschema:"description=Display name"`
	Description string `json:"description,omitempty"`
}

// List is the body under a data file's root key.
type List struct {
	List []Record `json:"list"`
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*jschema.Schema{}
)

// Kinds returns the kind names a schema can be generated for.
func Kinds() []string {
	kinds := defs.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.Name
	}
	return names
}

// SchemaID returns the $id of the schema for kind, or of the manifest
// schema for ManifestKey.
func SchemaID(kind string) string {
	return baseID + kind + ".schema.json"
}

// GenerateSchema generates the JSON Schema of one kind's data files.
func GenerateSchema(kind string) ([]byte, error) {
	if !slices.Contains(Kinds(), kind) {
		return nil, unknownKind(kind)
	}

	r := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	body := r.Reflect(&List{})
	body.Version = ""

	props := jsonschema.NewProperties()
	props.Set(kind, body)

	schema := &jsonschema.Schema{
		Version:              jsonschema.Version,
		ID:                   jsonschema.ID(SchemaID(kind)),
		Title:                kind,
		Description:          fmt.Sprintf("Data file holding %s records", kind),
		Type:                 "object",
		Properties:           props,
		Required:             []string{kind},
		AdditionalProperties: jsonschema.FalseSchema,
	}
	return marshal(schema)
}

// GenerateManifestSchema generates the JSON Schema of mod.yaml.
func GenerateManifestSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&content.Manifest{})

	schema.ID = jsonschema.ID(SchemaID(ManifestKey))
	schema.Title = "Sandbox Mod Manifest"
	schema.Description = "Schema for " + content.ManifestFile + " manifest files"

	return marshal(schema)
}

func marshal(schema *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_GENERATE_FAILED").Wrapf(err, "marshal schema")
	}
	return data, nil
}

// Validate checks a data file against the schema of the kind named by its
// root key.
func Validate(data []byte) error {
	doc, err := parse(data)
	if err != nil {
		return err
	}

	root, ok := doc.(map[string]any)
	if !ok || len(root) != 1 {
		return oops.Code("SCHEMA_INVALID").Errorf("data file must hold exactly one root key")
	}
	var kind string
	for k := range root {
		kind = k
	}
	return validate(kind, doc)
}

// RootKey returns the root key of a data file, which names its kind.
func RootKey(data []byte) (string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", oops.Code("YAML_INVALID").Wrapf(err, "invalid YAML")
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode || len(doc.Content[0].Content) != 2 {
		return "", oops.Code("SCHEMA_INVALID").Errorf("data file must hold exactly one root key")
	}
	return doc.Content[0].Content[0].Value, nil
}

// ValidateManifest checks mod.yaml data against the manifest schema.
func ValidateManifest(data []byte) error {
	doc, err := parse(data)
	if err != nil {
		return err
	}
	return validate(ManifestKey, doc)
}

func parse(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, oops.Code("SCHEMA_INVALID").Errorf("data is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, oops.Code("YAML_INVALID").Wrapf(err, "invalid YAML")
	}
	return convertToJSONTypes(doc), nil
}

func validate(kind string, doc any) error {
	sch, err := compiled(kind)
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return oops.Code("SCHEMA_INVALID").With("kind", kind).Wrapf(err, "schema validation failed")
	}
	return nil
}

// compiled returns the cached compiled schema or compiles it.
func compiled(kind string) (*jschema.Schema, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if sch, ok := cache[kind]; ok {
		return sch, nil
	}

	var (
		raw []byte
		err error
	)
	if kind == ManifestKey {
		raw, err = GenerateManifestSchema()
	} else {
		raw, err = GenerateSchema(kind)
	}
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(raw, &schemaData); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("kind", kind).Wrapf(err, "parse schema JSON")
	}

	c := jschema.NewCompiler()
	url := SchemaID(kind)
	if err := c.AddResource(url, schemaData); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("kind", kind).Wrapf(err, "add schema resource")
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("kind", kind).Wrapf(err, "compile schema")
	}

	cache[kind] = sch
	return sch, nil
}

// ResetCache clears the compiled schemas. Used for testing.
func ResetCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	clear(cache)
}

func unknownKind(kind string) error {
	return oops.Code("SCHEMA_UNKNOWN_KIND").With("kind", kind).
		Errorf("unknown kind %q, expected one of %s", kind, strings.Join(Kinds(), ", "))
}

// convertToJSONTypes converts YAML-parsed data to the types the validator
// accepts. Mappings with non-string keys get their keys printed.
func convertToJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = convertToJSONTypes(v)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[fmt.Sprint(k)] = convertToJSONTypes(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = convertToJSONTypes(v)
		}
		return result
	case string, int, int64, uint64, float64, bool, nil:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			var result any
			if err := json.Unmarshal(b, &result); err == nil {
				return result
			}
		}
		return fmt.Sprint(val)
	}
}

// FormatError formats a validation error for display, one problem per
// line.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var verr *jschema.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}

	lines := strings.Split(strings.TrimSpace(verr.Error()), "\n")
	if len(lines) > 1 && strings.HasPrefix(lines[0], "jsonschema validation failed") {
		lines = lines[1:]
	}
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(strings.TrimSpace(l), "- ")
	}
	return strings.Join(lines, "\n")
}
