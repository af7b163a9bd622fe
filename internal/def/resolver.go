// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package def

import (
	"fmt"
	"log/slog"

	"github.com/samber/oops"
)

// Resolver gives records read access to the whole registry while
// ResolveAll runs. It stops working once ResolveAll returns.
type Resolver struct {
	db     *Database
	active bool
}

// Logger returns the database logger, for warnings about otherwise valid
// references.
func (r *Resolver) Logger() *slog.Logger {
	return r.db.logger.With("phase", PhaseResolving.String())
}

// Lookup returns the record called name as a T.
func Lookup[T Def](r *Resolver, name string) (T, error) {
	if r == nil || !r.active {
		var zero T
		return zero, oops.Code("DB_NOT_READY").With("def", name).Wrapf(ErrNotReady, "resolver used outside ResolveAll")
	}
	return lookup[T](r.db.defs, name)
}

// LookupOptional is Lookup that treats an empty name as "no record" and
// returns ok=false without an error.
func LookupOptional[T Def](r *Resolver, name string) (t T, ok bool, err error) {
	if name == "" {
		return t, false, nil
	}
	t, err = Lookup[T](r, name)
	if err != nil {
		return t, false, err
	}
	return t, true, nil
}

// LookupAll returns every record that is a T, sorted by name.
func LookupAll[T Def](r *Resolver) []T {
	if r == nil || !r.active {
		return nil
	}
	return filter[T](r.db.defs)
}

// Invalid reports a record that breaks one of its own rules. Returned from
// OnLoadedAllDefs it aborts ResolveAll.
func Invalid(d Def, format string, args ...any) error {
	return oops.
		Code("INVARIANT_VIOLATION").
		With("def", d.Name()).
		Errorf("%s: %s", d.Name(), fmt.Sprintf(format, args...))
}
