// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

// Package def provides named, data-file-authored records and the database
// that loads them and resolves references between them.
//
// Loading runs in two phases. LoadFile and LoadDirectory parse records and
// keep their references as names. ResolveAll then hands every record a
// Resolver so it can turn names into handles and validate against other
// records, and finally runs the post-load pass. Lookups through the
// database only succeed once ResolveAll has completed.
package def

import (
	"unicode"
	"unicode/utf8"

	"github.com/sandboxgame/sandbox/internal/datafile"
)

// UndefinedName is what Name returns for a record whose defName was never
// set.
const UndefinedName = "[undefined]"

// Def is a named record held by a Database.
//
// Every implementation embeds Base.
type Def interface {
	datafile.Saveable

	// Name returns the unique defName.
	Name() string

	// OnLoadedAllDefs resolves the record's references. It is called
	// exactly once per load, after every record of every kind has been
	// parsed. It must not depend on other records having run their own
	// OnLoadedAllDefs.
	OnLoadedAllDefs(r *Resolver) error

	base() *Base
}

// Base holds the fields every record shares. Embed it in concrete records
// and call Base.Expose first from their Expose.
type Base struct {
	DefName     string
	Label       string
	Description string

	capitalizedLabel string
	capitalized      bool
}

// Expose binds defName, label and description.
func (b *Base) Expose(n *datafile.Node) {
	datafile.Var(n, &b.DefName, "defName")
	datafile.VarOr(n, &b.Label, "label", "")
	datafile.VarOr(n, &b.Description, "description", "")

	if n.Loading() && b.capitalized {
		b.capitalizedLabel = capitalize(b.Label)
	}
}

// Name returns the defName, or UndefinedName when it is empty.
func (b *Base) Name() string {
	if b.DefName == "" {
		return UndefinedName
	}
	return b.DefName
}

// OnLoadedAllDefs does nothing. Records with references override it.
func (b *Base) OnLoadedAllDefs(*Resolver) error {
	return nil
}

// CapitalizedLabel returns the label with its first letter upper-cased,
// computing it once.
func (b *Base) CapitalizedLabel() string {
	if !b.capitalized {
		b.capitalizedLabel = capitalize(b.Label)
		b.capitalized = true
	}
	return b.capitalizedLabel
}

// PeekCapitalizedLabel is CapitalizedLabel without memoizing: it returns
// the cached value when there is one and otherwise recomputes it.
func (b *Base) PeekCapitalizedLabel() string {
	if b.capitalized {
		return b.capitalizedLabel
	}
	return capitalize(b.Label)
}

func (b *Base) base() *Base {
	return b
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
