// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package datafile

import (
	"encoding"
	"reflect"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// ParseBool reads a boolean the lenient way data files write them: "true"
// and "yes" in any case, or any text starting with a digit other than 0.
func ParseBool(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "true" || text == "yes" {
		return true
	}
	return text != "" && text[0] >= '1' && text[0] <= '9'
}

// decodeScalar decodes a scalar node into field, which must be a pointer.
// Numbers are parsed from their text regardless of the node tag so quoted
// numbers read the same as plain ones. Integers are plain decimal: a
// leading zero is not octal and base prefixes are rejected.
func decodeScalar(val *yaml.Node, field any) error {
	if u, ok := field.(encoding.TextUnmarshaler); ok {
		//nolint:wrapcheck // callers attach key context
		return u.UnmarshalText([]byte(val.Value))
	}

	rv := reflect.ValueOf(field).Elem()
	text := strings.TrimSpace(val.Value)

	switch rv.Kind() {
	case reflect.Bool:
		rv.SetBool(ParseBool(val.Value))
		return nil
	case reflect.String:
		rv.SetString(val.Value)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(text, 10, rv.Type().Bits())
		if err != nil {
			return oops.Wrapf(err, "not an integer")
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(text, 10, rv.Type().Bits())
		if err != nil {
			return oops.Wrapf(err, "not an unsigned integer")
		}
		rv.SetUint(u)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, rv.Type().Bits())
		if err != nil {
			// YAML spellings such as .inf and .nan.
			if decErr := val.Decode(field); decErr == nil {
				return nil
			}
			return oops.Wrapf(err, "not a number")
		}
		rv.SetFloat(f)
		return nil
	}

	if err := val.Decode(field); err != nil {
		return oops.Wrapf(err, "cannot decode %s", rv.Type())
	}
	return nil
}

// encodeScalar renders the value pointed to by field as a scalar node.
func encodeScalar(field any) (*yaml.Node, error) {
	if m, ok := field.(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()
		if err != nil {
			return nil, oops.Wrapf(err, "marshal text")
		}
		return stringNode(string(text)), nil
	}

	rv := reflect.ValueOf(field).Elem()

	switch rv.Kind() {
	case reflect.Bool:
		return plainNode(strconv.FormatBool(rv.Bool())), nil
	case reflect.String:
		return stringNode(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return plainNode(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return plainNode(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		return plainNode(strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits())), nil
	}

	var out yaml.Node
	if err := out.Encode(rv.Interface()); err != nil {
		return nil, oops.Wrapf(err, "cannot encode %s", rv.Type())
	}
	if out.Kind != yaml.ScalarNode {
		return nil, oops.Errorf("%s does not encode to a scalar", rv.Type())
	}
	return &out, nil
}

func plainNode(text string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: text}
}

// stringNode tags the value as a string so the emitter quotes text that
// would otherwise read back as another type. Multi-line printable text is
// written as a literal block.
func stringNode(text string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: text}
	if strings.Contains(text, "\n") && isPrintable(text) {
		n.Style = yaml.LiteralStyle
	}
	return n
}

func isPrintable(text string) bool {
	for _, r := range text {
		if r != '\n' && r != '\t' && (r < 0x20 || r == 0x7f) {
			return false
		}
	}
	return true
}
