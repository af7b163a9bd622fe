// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package content

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/defs"
	"github.com/sandboxgame/sandbox/pkg/errutil"
)

// ModRef selects a mod by name in the settings' mods list.
type ModRef struct {
	Name    string `koanf:"name"`
	Enabled bool   `koanf:"enabled"`
}

// Mod is a discovered mod: its manifest and directory.
type Mod struct {
	Manifest *Manifest
	Dir      string
}

// Recorder receives the outcome of every full load.
type Recorder interface {
	LoadFinished(d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) LoadFinished(time.Duration, error) {}

// Loader loads the records of every enabled mod into a database.
type Loader struct {
	modsDir      string
	db           *def.Database
	kinds        []def.Kind
	enabled      []ModRef
	engine       *semver.Version
	strict       bool
	verifyAssets bool
	logger       *slog.Logger
	tracer       trace.Tracer
	recorder     Recorder

	// mu serializes loads.
	mu        sync.Mutex
	loaded    []*Mod
	assetErrs []error
	ready     atomic.Bool
}

// LoaderOption configures the Loader.
type LoaderOption func(*Loader)

// WithEngineVersion sets the engine version checked against mod
// constraints.
func WithEngineVersion(v *semver.Version) LoaderOption {
	return func(l *Loader) {
		l.engine = v
	}
}

// WithEnabled sets which mods load, in order. Without it every discovered
// mod loads, sorted by name.
func WithEnabled(mods []ModRef) LoaderOption {
	return func(l *Loader) {
		l.enabled = slices.Clone(mods)
	}
}

// WithKinds replaces the kind table. Defaults to defs.Kinds.
func WithKinds(kinds []def.Kind) LoaderOption {
	return func(l *Loader) {
		l.kinds = kinds
	}
}

// WithStrict makes content errors fail the load.
func WithStrict(strict bool) LoaderOption {
	return func(l *Loader) {
		l.strict = strict
	}
}

// WithVerifyAssets checks that every asset path named by a resource
// exists inside an enabled mod.
func WithVerifyAssets(verify bool) LoaderOption {
	return func(l *Loader) {
		l.verifyAssets = verify
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithTracer sets the tracer loads are recorded with.
func WithTracer(t trace.Tracer) LoaderOption {
	return func(l *Loader) {
		l.tracer = t
	}
}

// WithRecorder sets the recorder told about every full load.
func WithRecorder(r Recorder) LoaderOption {
	return func(l *Loader) {
		l.recorder = r
	}
}

// NewLoader creates a loader over modsDir that fills db.
func NewLoader(modsDir string, db *def.Database, opts ...LoaderOption) *Loader {
	l := &Loader{
		modsDir:  modsDir,
		db:       db,
		kinds:    defs.Kinds(),
		logger:   slog.Default(),
		tracer:   otel.Tracer("sandbox/content"),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Database returns the database the loader fills.
func (l *Loader) Database() *def.Database {
	return l.db
}

// Discover finds every valid mod in the mods directory, sorted by name.
// Directories without a valid manifest, and mods that do not support the
// engine version, are logged and skipped.
func (l *Loader) Discover(ctx context.Context) ([]*Mod, error) {
	_, span := l.tracer.Start(ctx, "content.Discover",
		trace.WithAttributes(attribute.String("mods.dir", l.modsDir)))
	defer span.End()

	entries, err := os.ReadDir(l.modsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		err = oops.Code("DIR_READ_FAILED").With("dir", l.modsDir).Wrapf(err, "read mods directory")
		span.RecordError(err)
		return nil, err
	}

	var mods []*Mod
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		modDir := filepath.Join(l.modsDir, entry.Name())
		data, err := os.ReadFile(filepath.Join(modDir, ManifestFile)) //nolint:gosec // path is built from ReadDir entries
		if err != nil {
			l.logger.Warn("skipping mod without manifest", "dir", entry.Name(), "error", err)
			continue
		}

		manifest, err := ParseManifest(data)
		if err != nil {
			errutil.LogWarn(l.logger, "skipping mod with invalid manifest", oops.With("dir", entry.Name()).Wrap(err))
			continue
		}

		if !manifest.Supports(l.engine) {
			l.logger.Warn("skipping mod that does not support this engine",
				"mod", manifest.Name,
				"engine", manifest.Engine,
				"engine_version", l.engine.String())
			continue
		}

		mods = append(mods, &Mod{Manifest: manifest, Dir: modDir})
	}

	sort.Slice(mods, func(i, j int) bool {
		return mods[i].Manifest.Name < mods[j].Manifest.Name
	})
	span.SetAttributes(attribute.Int("mods.count", len(mods)))
	return mods, nil
}

// Load runs LoadAll then ResolveAll and records the outcome.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Reload drops every record and loads again.
func (l *Loader) Reload(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ready.Store(false)
	l.db.DropAll()
	l.logger.Info("reloading content")
	return l.load(ctx)
}

func (l *Loader) load(ctx context.Context) (err error) {
	ctx, span := l.tracer.Start(ctx, "content.Load")
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		l.recorder.LoadFinished(time.Since(start), err)
	}()

	if err = l.LoadAll(ctx); err != nil {
		return err
	}
	return l.ResolveAll(ctx)
}

// LoadAll loads every kind of every enabled mod, in mod order then kind
// order. The first record loaded under a name wins across mods.
func (l *Loader) LoadAll(ctx context.Context) error {
	ctx, span := l.tracer.Start(ctx, "content.LoadAll")
	defer span.End()

	discovered, err := l.Discover(ctx)
	if err != nil {
		return err
	}
	order, err := l.order(discovered)
	if err != nil {
		span.RecordError(err)
		return err
	}

	for _, mod := range order {
		if err := ctx.Err(); err != nil {
			return oops.Code("LOAD_CANCELLED").Wrap(err)
		}
		if err := l.loadMod(ctx, mod); err != nil {
			span.RecordError(err)
			return err
		}
	}

	l.loaded = order
	span.SetAttributes(attribute.Int("defs.count", l.db.Len()))
	return nil
}

func (l *Loader) loadMod(ctx context.Context, mod *Mod) error {
	_, span := l.tracer.Start(ctx, "content.LoadMod",
		trace.WithAttributes(attribute.String("mod.name", mod.Manifest.Name)))
	defer span.End()

	before := l.db.Len()
	for _, kind := range l.kinds {
		dir := filepath.Join(mod.Dir, DefsDir, kind.Name)
		if err := kind.LoadDirectory(l.db, dir); err != nil {
			return oops.
				With("mod", mod.Manifest.Name).
				With("kind", kind.Name).
				Wrapf(err, "load mod %s", mod.Manifest.Name)
		}
	}

	l.logger.Info("loaded mod",
		"mod", mod.Manifest.Name,
		"version", mod.Manifest.Version,
		"defs", l.db.Len()-before)
	return nil
}

// order picks the mods to load. Every enabled mod must have been
// discovered, and must come after the mods it depends on.
func (l *Loader) order(discovered []*Mod) ([]*Mod, error) {
	byName := make(map[string]*Mod, len(discovered))
	for _, m := range discovered {
		byName[m.Manifest.Name] = m
	}

	var order []*Mod
	if len(l.enabled) == 0 {
		order = discovered
	} else {
		for _, ref := range l.enabled {
			if !ref.Enabled {
				continue
			}
			m, ok := byName[ref.Name]
			if !ok {
				return nil, oops.Code("MOD_NOT_FOUND").With("mod", ref.Name).With("dir", l.modsDir).
					Errorf("enabled mod %q was not found", ref.Name)
			}
			order = append(order, m)
		}
	}

	seen := make(map[string]bool, len(order))
	for _, m := range order {
		for _, dep := range m.Manifest.Dependencies {
			if !seen[dep] {
				return nil, oops.Code("MOD_DEPENDENCY").With("mod", m.Manifest.Name).With("dependency", dep).
					Errorf("mod %q depends on %q, which is not enabled before it", m.Manifest.Name, dep)
			}
		}
		seen[m.Manifest.Name] = true
	}
	return order, nil
}

// ResolveAll resolves the loaded records, then checks assets and, in
// strict mode, fails on any content error.
func (l *Loader) ResolveAll(ctx context.Context) error {
	ctx, span := l.tracer.Start(ctx, "content.ResolveAll")
	defer span.End()

	if err := l.db.ResolveAll(ctx); err != nil {
		span.RecordError(err)
		return err
	}

	l.assetErrs = nil
	if l.verifyAssets {
		l.assetErrs = l.checkAssets()
	}

	errs := l.ContentErrors()
	span.SetAttributes(attribute.Int("content_errors.count", len(errs)))
	if l.strict && len(errs) > 0 {
		// Not wrapped: the code of the joined errors would replace ours.
		err := oops.Code("CONTENT_ERRORS").
			With("count", len(errs)).
			With("codes", errutil.CountCodes(errs...)).
			Errorf("%d content errors in strict mode: %v", len(errs), errors.Join(errs...))
		span.RecordError(err)
		return err
	}

	l.ready.Store(true)
	return nil
}

// ContentErrors returns the database's content errors followed by missing
// asset errors.
func (l *Loader) ContentErrors() []error {
	return append(l.db.ContentErrors(), l.assetErrs...)
}

// Ready reports whether the last load completed.
func (l *Loader) Ready() bool {
	return l.ready.Load() && l.db.Ready()
}

// Mods returns the mods of the last load, in load order.
func (l *Loader) Mods() []*Mod {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.loaded)
}
