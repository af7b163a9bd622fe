// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package datafile

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Var binds a required field under key.
//
// When loading, an absent key is a content error. A Saveable field
// recurses into its Expose method, any other field is decoded as a
// scalar.
func Var[T any](n *Node, field *T, key string) {
	bind(n, field, key, nil)
}

// VarOr binds a field under key with a default used when the key is
// absent. A malformed scalar also falls back to the default, with a
// warning.
func VarOr[T any](n *Node, field *T, key string, def T) {
	bind(n, field, key, &def)
}

// Seq binds a sequence under key. Loading clears the slice first; an
// absent, null or empty sequence leaves it nil without error.
func Seq[T any](n *Node, field *[]T, key string) {
	if n.activity.halted() {
		return
	}

	switch n.activity.typ {
	case Saving:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for i := range *field {
			if v := saveValue(n, elemKey(key, i), &(*field)[i]); v != nil {
				seq.Content = append(seq.Content, v)
			}
		}
		n.put(key, seq)
	case Loading:
		*field = nil
		val := n.lookup(key)
		if val == nil || isNull(val) {
			return
		}
		if val.Kind != yaml.SequenceNode {
			n.keyError(key, "expected a sequence, got a %s", kindName(val))
			return
		}
		if len(val.Content) == 0 {
			return
		}
		items := make([]T, len(val.Content))
		for i, elem := range val.Content {
			loadValue(n, elemKey(key, i), resolveAlias(elem), &items[i], nil)
		}
		*field = items
	case PostLoadInit:
		for i := range *field {
			initValue(n, elemKey(key, i), &(*field)[i])
		}
	}
}

// Map binds a mapping under key. Keys are decoded from their text form
// like scalars; saving writes keys in sorted text order. Loading clears
// the map first; an absent, null or empty map leaves it nil without error.
func Map[K comparable, V any](n *Node, field *map[K]V, key string) {
	if n.activity.halted() {
		return
	}

	switch n.activity.typ {
	case Saving:
		saveMap(n, field, key)
	case Loading:
		*field = nil
		val := n.lookup(key)
		if val == nil || isNull(val) {
			return
		}
		if val.Kind != yaml.MappingNode {
			n.keyError(key, "expected a map, got a %s", kindName(val))
			return
		}
		if len(val.Content) == 0 {
			return
		}
		c := n.child(key, val)
		out := make(map[K]V, len(val.Content)/2)
		texts := make(map[K]string, len(val.Content)/2)
		for i := 0; i+1 < len(val.Content); i += 2 {
			kn := resolveAlias(val.Content[i])
			if kn.Kind != yaml.ScalarNode {
				n.keyError(key, "map key is a %s, not a scalar", kindName(kn))
				continue
			}
			var k K
			if err := decodeScalar(kn, &k); err != nil {
				n.keyError(key, "malformed map key %q: %v", kn.Value, err)
				continue
			}
			if prev, dup := texts[k]; dup {
				n.keyError(key, "map key %q repeats key %q, keeping the first", kn.Value, prev)
				continue
			}
			texts[k] = kn.Value
			var v V
			loadValue(c, kn.Value, resolveAlias(val.Content[i+1]), &v, nil)
			out[k] = v
		}
		*field = out
	case PostLoadInit:
		c := n.child(key, nil)
		for k, v := range *field {
			initValue(c, fmt.Sprint(k), &v)
			(*field)[k] = v
		}
	}
}

func saveMap[K comparable, V any](n *Node, field *map[K]V, key string) {
	type entry struct {
		key   *yaml.Node
		value *yaml.Node
	}

	c := n.child(key, nil)
	entries := make([]entry, 0, len(*field))
	for k, v := range *field {
		kn, err := encodeScalar(&k)
		if err != nil {
			n.keyError(key, "cannot encode map key %v: %v", k, err)
			continue
		}
		vn := saveValue(c, kn.Value, &v)
		if vn == nil {
			continue
		}
		entries = append(entries, entry{key: kn, value: vn})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key.Value < entries[j].key.Value
	})

	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		m.Content = append(m.Content, e.key, e.value)
	}
	n.put(key, m)
}

func bind[T any](n *Node, field *T, key string, def *T) {
	if n.activity.halted() {
		return
	}

	switch n.activity.typ {
	case Saving:
		n.put(key, saveValue(n, key, field))
	case Loading:
		loadValue(n, key, n.lookup(key), field, def)
	case PostLoadInit:
		initValue(n, key, field)
	}
}

func elemKey(key string, i int) string {
	return fmt.Sprintf("%s[%d]", key, i)
}

// loadValue binds one source value into field. val is nil when the key is
// absent.
func loadValue[T any](n *Node, key string, val *yaml.Node, field *T, def *T) {
	if s, ok := any(field).(Saveable); ok {
		var reset func()
		if def != nil {
			reset = func() { *field = *def }
		}
		loadSaveable(n, key, val, s, reset)
		return
	}
	loadScalar(n, key, val, field, def)
}

// loadSaveable binds a mapping into s. A nil reset marks the value as
// required.
func loadSaveable(n *Node, key string, val *yaml.Node, s Saveable, reset func()) {
	if val == nil {
		if reset != nil {
			reset()
			return
		}
		n.keyError(key, "required value is missing")
		return
	}
	if isNull(val) {
		// A null record reads as an empty map so nested defaults apply and
		// nested required keys report on their own.
		val = nil
	} else if val.Kind != yaml.MappingNode {
		n.keyError(key, "expected a map, got a %s", kindName(val))
		return
	}
	s.Expose(n.child(key, val))
}

func loadScalar[T any](n *Node, key string, val *yaml.Node, field *T, def *T) {
	var zero T
	*field = zero

	if val == nil || isNull(val) {
		if def != nil {
			*field = *def
			return
		}
		n.keyError(key, "required value is missing")
		return
	}
	if val.Kind != yaml.ScalarNode {
		n.keyError(key, "expected a scalar, got a %s", kindName(val))
		return
	}
	if err := decodeScalar(val, field); err != nil {
		if def != nil {
			*field = *def
			n.activity.logger.Warn("malformed value replaced by default",
				"file", n.activity.filePath,
				"parent", n.Path(),
				"key", key,
				"value", val.Value,
				"error", err)
			return
		}
		*field = zero
		n.keyError(key, "malformed value %q: %v", val.Value, err)
	}
}

func saveValue[T any](n *Node, key string, field *T) *yaml.Node {
	if s, ok := any(field).(Saveable); ok {
		return saveSaveable(n, key, s)
	}
	v, err := encodeScalar(field)
	if err != nil {
		n.keyError(key, "cannot encode value: %v", err)
		return nil
	}
	return v
}

func saveSaveable(n *Node, key string, s Saveable) *yaml.Node {
	c := n.child(key, nil)
	s.Expose(c)
	return c.out
}

func initValue[T any](n *Node, key string, field *T) {
	if s, ok := any(field).(Saveable); ok {
		s.Expose(n.child(key, nil))
	}
}
