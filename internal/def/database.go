// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package def

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/pkg/errutil"
)

// DefaultExtension is the extension of data files picked up by
// LoadDirectory.
const DefaultExtension = "yaml"

// Phase is the lifecycle stage of a Database.
type Phase int

// Database phases.
const (
	PhaseLoading Phase = iota
	PhaseResolving
	PhaseReady
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseResolving:
		return "resolving"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer is notified of registry events. Implementations must be cheap;
// they are called with the database lock held.
type Observer interface {
	DefLoaded(kind string)
	DuplicateRejected(kind string)
	ContentErrors(kind string, n int)
}

type entry struct {
	def    Def
	kind   string
	source string
}

// Database owns every loaded record, keyed by defName.
//
// It is the only long-lived owner of records; references between records
// are names resolved to shared pointers. Database is safe for concurrent
// use, but loading and resolving are expected to run from a single
// goroutine.
type Database struct {
	mu          sync.RWMutex
	defs        map[string]*entry
	phase       Phase
	contentErrs []error

	logger   *slog.Logger
	ext      string
	ignore   []glob.Glob
	observer Observer
}

// Option configures a Database.
type Option func(*Database)

// WithLogger sets the logger for load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(db *Database) {
		db.logger = l
	}
}

// WithExtension sets the data file extension, without the leading dot.
func WithExtension(ext string) Option {
	return func(db *Database) {
		db.ext = strings.TrimPrefix(ext, ".")
	}
}

// WithIgnore skips files and directories whose base name matches any of
// the patterns during LoadDirectory.
func WithIgnore(patterns ...glob.Glob) Option {
	return func(db *Database) {
		db.ignore = append(db.ignore, patterns...)
	}
}

// WithObserver sets the registry event observer.
func WithObserver(o Observer) Option {
	return func(db *Database) {
		db.observer = o
	}
}

// CompileIgnore compiles base-name glob patterns for WithIgnore.
func CompileIgnore(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, oops.Code("IGNORE_PATTERN_INVALID").With("pattern", p).Wrapf(err, "compile ignore pattern")
		}
		out = append(out, g)
	}
	return out, nil
}

type nopObserver struct{}

func (nopObserver) DefLoaded(string)          {}
func (nopObserver) DuplicateRejected(string)  {}
func (nopObserver) ContentErrors(string, int) {}

// NewDatabase creates an empty database in the loading phase.
func NewDatabase(opts ...Option) *Database {
	db := &Database{
		defs:     make(map[string]*entry),
		logger:   slog.Default(),
		ext:      DefaultExtension,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Pointer constrains the pointer type of a record type T.
type Pointer[T any] interface {
	*T
	Def
}

// recordList is the shape of every data file: a "list" of records under
// the file's root key.
type recordList[T any] struct {
	items []T
}

func (l *recordList[T]) Expose(n *datafile.Node) {
	datafile.Seq(n, &l.items, "list")
}

// LoadFile parses the records under rootKey in the file at path and
// registers each one.
func LoadFile[T any, PT Pointer[T]](db *Database, path, rootKey string) error {
	data, err := os.ReadFile(path) //nolint:gosec // paths come from the content tree walk
	if err != nil {
		return oops.Code("FILE_READ_FAILED").With("file", path).Wrapf(err, "read definitions file")
	}
	return LoadData[T, PT](db, data, path, rootKey)
}

// LoadData is LoadFile over bytes already in memory; path is used for
// diagnostics.
//
// A record without defName is skipped. A record whose name is already
// registered is rejected with a logged error and the first one is kept.
// Content errors are collected on the database and loading goes on; an
// invariant violation is returned.
func LoadData[T any, PT Pointer[T]](db *Database, data []byte, path, rootKey string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.phase != PhaseLoading {
		return oops.Code("DB_FROZEN").With("file", path).With("phase", db.phase.String()).Wrap(ErrFrozen)
	}

	var list recordList[T]
	a, _ := datafile.Parse(data, path, rootKey, &list, datafile.WithLogger(db.logger))
	if fatal := a.Fatal(); fatal != nil {
		return oops.With("kind", rootKey).Wrapf(fatal, "load %s", path)
	}
	if errs := a.ContentErrors(); len(errs) > 0 {
		db.contentErrs = append(db.contentErrs, errs...)
		db.observer.ContentErrors(rootKey, len(errs))
	}

	for i := range list.items {
		db.register(PT(&list.items[i]), rootKey, path)
	}
	return nil
}

// LoadDirectory loads every data file under dir, recursively, in lexical
// order. A missing directory holds no records and is not an error.
func LoadDirectory[T any, PT Pointer[T]](db *Database, dir, rootKey string) error {
	files, err := db.dataFiles(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := LoadFile[T, PT](db, f, rootKey); err != nil {
			return err
		}
	}
	return nil
}

func (db *Database) dataFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			db.logger.Debug("no definitions directory", "dir", dir)
			return nil, nil
		}
		return nil, oops.Code("DIR_READ_FAILED").With("dir", dir).Wrapf(err, "stat definitions directory")
	}
	if !info.IsDir() {
		return nil, oops.Code("DIR_READ_FAILED").With("dir", dir).Errorf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && db.ignored(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if db.ignored(d.Name()) || !strings.EqualFold(strings.TrimPrefix(filepath.Ext(d.Name()), "."), db.ext) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, oops.Code("DIR_READ_FAILED").With("dir", dir).Wrapf(err, "walk definitions directory")
	}
	return files, nil
}

func (db *Database) ignored(name string) bool {
	for _, g := range db.ignore {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// register must be called with the lock held.
func (db *Database) register(d Def, kind, source string) {
	name := d.base().DefName
	if name == "" {
		// Parse already reported the missing defName.
		db.logger.Warn("skipping definition without defName", "kind", kind, "file", source)
		return
	}

	if prev, ok := db.defs[name]; ok {
		err := oops.
			Code("DEF_DUPLICATE").
			With("def", name).
			With("kind", kind).
			With("file", source).
			With("first_file", prev.source).
			Errorf("duplicate defName %q in %q, keeping the one from %q", name, source, prev.source)
		errutil.LogError(db.logger, "rejected duplicate definition", err)
		db.contentErrs = append(db.contentErrs, err)
		db.observer.DuplicateRejected(kind)
		return
	}

	db.defs[name] = &entry{def: d, kind: kind, source: source}
	db.observer.DefLoaded(kind)
}

// ResolveAll runs the second phase: every record's OnLoadedAllDefs, then
// the post-load pass over every record. Records are visited in name order.
// It can run once per load; the first error aborts it and leaves the
// database failed until DropAll.
func (db *Database) ResolveAll(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.phase != PhaseLoading {
		return oops.Code("DB_ALREADY_RESOLVED").With("phase", db.phase.String()).Wrap(ErrAlreadyResolved)
	}
	db.phase = PhaseResolving

	names := db.sortedNames()
	r := &Resolver{db: db, active: true}
	defer func() { r.active = false }()

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			db.phase = PhaseFailed
			return oops.Code("RESOLVE_CANCELLED").Wrap(err)
		}
		e := db.defs[name]
		if err := e.def.OnLoadedAllDefs(r); err != nil {
			db.phase = PhaseFailed
			return oops.
				With("def", name).
				With("kind", e.kind).
				With("file", e.source).
				Wrapf(err, "resolve %s %q", e.kind, name)
		}
	}

	for _, name := range names {
		e := db.defs[name]
		a, _ := datafile.Init(e.source, name, e.def, datafile.WithLogger(db.logger))
		if fatal := a.Fatal(); fatal != nil {
			db.phase = PhaseFailed
			return oops.
				With("def", name).
				With("kind", e.kind).
				Wrapf(fatal, "post-load init %s %q", e.kind, name)
		}
		if errs := a.ContentErrors(); len(errs) > 0 {
			db.contentErrs = append(db.contentErrs, errs...)
			db.observer.ContentErrors(e.kind, len(errs))
		}
	}

	db.phase = PhaseReady
	db.logger.Info("definitions resolved",
		"count", len(names),
		"content_errors", len(db.contentErrs))
	return nil
}

// DropAll clears the registry and returns the database to the loading
// phase. Handles obtained earlier stay valid but are no longer reachable
// by name.
func (db *Database) DropAll() {
	db.mu.Lock()
	defer db.mu.Unlock()

	count := len(db.defs)
	db.defs = make(map[string]*entry)
	db.contentErrs = nil
	db.phase = PhaseLoading
	db.logger.Info("dropped all definitions", "count", count)
}

// Phase returns the current phase.
func (db *Database) Phase() Phase {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.phase
}

// Ready reports whether lookups are possible.
func (db *Database) Ready() bool {
	return db.Phase() == PhaseReady
}

// Len returns the number of registered records.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.defs)
}

// Names returns every registered name, sorted.
func (db *Database) Names() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.sortedNames()
}

// Source returns the kind and file a record was loaded from.
func (db *Database) Source(name string) (kind, file string, ok bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	e, ok := db.defs[name]
	if !ok {
		return "", "", false
	}
	return e.kind, e.source, true
}

// ContentErrors returns a copy of every recoverable error collected since
// the last DropAll.
func (db *Database) ContentErrors() []error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]error, len(db.contentErrs))
	copy(out, db.contentErrs)
	return out
}

// Err returns the collected content errors joined, or nil.
func (db *Database) Err() error {
	return errors.Join(db.ContentErrors()...)
}

func (db *Database) sortedNames() []string {
	names := make([]string, 0, len(db.defs))
	for name := range db.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the record called name as a T. It fails before ResolveAll
// has completed, when the name is unknown, and when the record is not a T.
func Get[T Def](db *Database, name string) (T, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.phase != PhaseReady {
		var zero T
		return zero, oops.Code("DB_NOT_READY").With("def", name).With("phase", db.phase.String()).Wrap(ErrNotReady)
	}
	return lookup[T](db.defs, name)
}

// MustGet is Get for call sites where a missing record is a content bug.
// It panics on error.
func MustGet[T Def](db *Database, name string) T {
	t, err := Get[T](db, name)
	if err != nil {
		panic(err)
	}
	return t
}

// TryGet is Get for optional lookups.
func TryGet[T Def](db *Database, name string) (T, bool) {
	t, err := Get[T](db, name)
	return t, err == nil
}

// All returns every record that is a T, sorted by name. It returns nil
// before ResolveAll has completed.
func All[T Def](db *Database) []T {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.phase != PhaseReady {
		return nil
	}
	return filter[T](db.defs)
}

func lookup[T Def](defs map[string]*entry, name string) (T, error) {
	var zero T
	e, ok := defs[name]
	if !ok {
		return zero, oops.Code("DEF_NOT_FOUND").With("def", name).Wrapf(ErrNotFound, "definition %q", name)
	}
	t, ok := e.def.(T)
	if !ok {
		return zero, oops.
			Code("DEF_WRONG_TYPE").
			With("def", name).
			With("want", reflect.TypeFor[T]().String()).
			With("got", reflect.TypeOf(e.def).String()).
			Wrapf(ErrWrongType, "definition %q", name)
	}
	return t, nil
}

func filter[T Def](defs map[string]*entry) []T {
	var out []T
	for _, e := range defs {
		if t, ok := e.def.(T); ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}
