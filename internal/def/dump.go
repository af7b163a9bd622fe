// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package def

import "github.com/sandboxgame/sandbox/internal/datafile"

// saved wraps a record so a list of mixed records can be written.
type saved struct {
	Def
}

type savedList struct {
	items []saved
}

func (l *savedList) Expose(n *datafile.Node) {
	datafile.Seq(n, &l.items, "list")
}

// Marshal writes records in the data file layout, under rootKey.
func Marshal(rootKey string, defs ...Def) ([]byte, error) {
	list := savedList{items: make([]saved, len(defs))}
	for i, d := range defs {
		list.items[i] = saved{d}
	}
	return datafile.Marshal(rootKey, &list)
}
