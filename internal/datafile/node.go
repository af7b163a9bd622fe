// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package datafile

import (
	"fmt"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// Saveable is implemented by every type that binds its fields through a
// Node. Expose runs once per activity and must call the binding functions
// (Var, VarOr, Seq, Map) for every persisted field.
type Saveable interface {
	Expose(n *Node)
}

// Node is a cursor over one record of a data file.
//
// During Loading src points at the record's mapping in the parsed tree
// (nil when the record is null). During Saving out collects the emitted
// mapping.
type Node struct {
	activity *Activity
	key      string
	path     string
	src      *yaml.Node
	out      *yaml.Node
}

func newRootNode(a *Activity, src *yaml.Node) *Node {
	n := &Node{activity: a, src: src}
	if a.typ == Saving {
		n.out = &yaml.Node{Kind: yaml.MappingNode}
	}
	return n
}

func (n *Node) child(key string, src *yaml.Node) *Node {
	c := &Node{
		activity: n.activity,
		key:      key,
		path:     joinPath(n.path, key),
		src:      src,
	}
	if n.activity.typ == Saving {
		c.out = &yaml.Node{Kind: yaml.MappingNode}
	}
	return c
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// Activity returns the activity this node belongs to.
func (n *Node) Activity() *Activity {
	return n.activity
}

// ActivityType returns the current activity type.
func (n *Node) ActivityType() ActivityType {
	return n.activity.typ
}

// Loading reports whether the node is reading source data.
func (n *Node) Loading() bool {
	return n.activity.typ == Loading
}

// Saving reports whether the node is writing data.
func (n *Node) Saving() bool {
	return n.activity.typ == Saving
}

// PostLoadInit reports whether the node is in the post-load pass.
func (n *Node) PostLoadInit() bool {
	return n.activity.typ == PostLoadInit
}

// Key returns the key this node was bound under.
func (n *Node) Key() string {
	return n.key
}

// Path returns the dotted key path from the file root to this node.
func (n *Node) Path() string {
	if n.path == "" {
		return "<root>"
	}
	return n.path
}

// Errorf records a recoverable content error against this node. Loading
// continues.
func (n *Node) Errorf(format string, args ...any) {
	n.activity.addError(oops.
		Code("CONTENT_ERROR").
		With("file", n.activity.filePath).
		With("path", n.Path()).
		Errorf("%s in %q of data file %q", fmt.Sprintf(format, args...), n.Path(), n.activity.filePath))
}

// Fatalf records an invariant violation. Every later binding in the same
// activity becomes a no-op and the whole load is aborted by its caller.
func (n *Node) Fatalf(format string, args ...any) {
	n.activity.setFatal(oops.
		Code("INVARIANT_VIOLATION").
		With("file", n.activity.filePath).
		With("path", n.Path()).
		Errorf("%s (%q in data file %q)", fmt.Sprintf(format, args...), n.Path(), n.activity.filePath))
}

// Warnf logs a warning for this node without affecting the error state.
func (n *Node) Warnf(format string, args ...any) {
	n.activity.logger.Warn(fmt.Sprintf(format, args...),
		"file", n.activity.filePath,
		"path", n.Path())
}

// keyError records a content error about key inside this node.
func (n *Node) keyError(key, format string, args ...any) {
	n.activity.addError(oops.
		Code("CONTENT_ERROR").
		With("file", n.activity.filePath).
		With("parent", n.Path()).
		With("key", key).
		Errorf("key %q in %q node in data file %q: %s",
			key, n.Path(), n.activity.filePath, fmt.Sprintf(format, args...)))
}

// lookup returns the value bound to key in the source mapping, or nil when
// the key is absent.
func (n *Node) lookup(key string) *yaml.Node {
	if n.src == nil || n.src.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.src.Content); i += 2 {
		if n.src.Content[i].Value == key {
			return resolveAlias(n.src.Content[i+1])
		}
	}
	return nil
}

// put appends key: v to the output mapping.
func (n *Node) put(key string, v *yaml.Node) {
	if n.out == nil || v == nil {
		return
	}
	n.out.Content = append(n.out.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		v)
}

func resolveAlias(v *yaml.Node) *yaml.Node {
	for v != nil && v.Kind == yaml.AliasNode {
		v = v.Alias
	}
	return v
}

func isNull(v *yaml.Node) bool {
	return v.Kind == yaml.ScalarNode && v.ShortTag() == "!!null"
}

func kindName(v *yaml.Node) string {
	switch v.Kind {
	case yaml.MappingNode:
		return "map"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "node"
	}
}
