// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package def_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/pkg/errutil"
)

// Test record types: items with crafting ingredients and effects, which
// carry no references.

type ingredient struct {
	Item  def.Ref[*item]
	Count int
}

func (i *ingredient) Expose(n *datafile.Node) {
	datafile.Var(n, &i.Item, "itemDef")
	datafile.VarOr(n, &i.Count, "count", 1)
}

type item struct {
	def.Base
	MaxStack     int
	Recipe       []ingredient
	RepairedWith def.Ref[*item]
	Effect       def.Ref[*effect]

	recipeTotal int
}

func (it *item) Expose(n *datafile.Node) {
	it.Base.Expose(n)
	datafile.VarOr(n, &it.MaxStack, "maxStack", 1)
	datafile.Seq(n, &it.Recipe, "constructionRecipe")
	datafile.VarOr(n, &it.RepairedWith, "repairedWith", def.Ref[*item]{})
	datafile.VarOr(n, &it.Effect, "effectDef", def.Ref[*effect]{})

	if n.Loading() && it.MaxStack < 0 {
		n.Fatalf("maxStack can't be negative")
	}
	if n.PostLoadInit() {
		it.recipeTotal = 0
		for _, in := range it.Recipe {
			it.recipeTotal += in.Count
		}
	}
}

func (it *item) OnLoadedAllDefs(r *def.Resolver) error {
	for i := range it.Recipe {
		in := &it.Recipe[i]
		if err := in.Item.Resolve(r); err != nil {
			return err
		}
		if in.Count > in.Item.Get().MaxStack {
			return def.Invalid(it, "recipe needs %d %s, more than its max stack", in.Count, in.Item.Name)
		}
	}
	if err := it.RepairedWith.ResolveOptional(r); err != nil {
		return err
	}
	return it.Effect.ResolveOptional(r)
}

type effect struct {
	def.Base
	Duration float64
}

func (e *effect) Expose(n *datafile.Node) {
	e.Base.Expose(n)
	datafile.VarOr(n, &e.Duration, "duration", 0)
}

const (
	itemsKey   = "ItemDefs"
	effectsKey = "EffectDefs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newTestDB(opts ...def.Option) *def.Database {
	opts = append([]def.Option{def.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))}, opts...)
	return def.NewDatabase(opts...)
}

func TestDatabase_ResolvesReferencesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Items", "a.yaml"), `
ItemDefs:
    list:
        - defName: Wood
          label: wood
          maxStack: 50
`)
	writeFile(t, filepath.Join(dir, "Items", "b.yaml"), `
ItemDefs:
    list:
        - defName: Axe
          constructionRecipe:
              - itemDef: Wood
                count: 3
`)

	db := newTestDB()
	require.NoError(t, def.LoadDirectory[item](db, filepath.Join(dir, "Items"), itemsKey))
	require.NoError(t, db.ResolveAll(context.Background()))

	wood, err := def.Get[*item](db, "Wood")
	require.NoError(t, err)
	axe, err := def.Get[*item](db, "Axe")
	require.NoError(t, err)

	require.Len(t, axe.Recipe, 1)
	assert.Same(t, wood, axe.Recipe[0].Item.Get())
	assert.True(t, axe.Recipe[0].Item.IsResolved())
	assert.Equal(t, 3, axe.recipeTotal, "post-load pass runs after resolution")
	assert.Equal(t, "Wood", wood.CapitalizedLabel())
	assert.Empty(t, db.ContentErrors())
}

func TestDatabase_ForwardAndCircularReferences(t *testing.T) {
	db := newTestDB()
	require.NoError(t, def.LoadData[item](db, []byte(`
ItemDefs:
    list:
        - defName: Hammer
          repairedWith: Nail
        - defName: Nail
          repairedWith: Hammer
`), "items.yaml", itemsKey))
	require.NoError(t, db.ResolveAll(context.Background()))

	hammer := def.MustGet[*item](db, "Hammer")
	nail := def.MustGet[*item](db, "Nail")
	assert.Same(t, nail, hammer.RepairedWith.Get())
	assert.Same(t, hammer, nail.RepairedWith.Get())
}

func TestDatabase_DuplicateNameFirstWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "1.yaml"), `
ItemDefs:
    list:
        - defName: Wood
          maxStack: 10
`)
	writeFile(t, filepath.Join(dir, "2.yaml"), `
ItemDefs:
    list:
        - defName: Wood
          maxStack: 99
`)

	var logs bytes.Buffer
	db := def.NewDatabase(def.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, def.LoadDirectory[item](db, dir, itemsKey))
	require.NoError(t, db.ResolveAll(context.Background()))

	assert.Equal(t, 1, db.Len())
	assert.Equal(t, 10, def.MustGet[*item](db, "Wood").MaxStack)

	errs := db.ContentErrors()
	require.Len(t, errs, 1)
	errutil.AssertErrorCode(t, errs[0], "DEF_DUPLICATE")
	errutil.AssertErrorContext(t, errs[0], "first_file", filepath.Join(dir, "1.yaml"))
	assert.Contains(t, logs.String(), "rejected duplicate definition")

	_, file, ok := db.Source("Wood")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "1.yaml"), file)
}

func TestDatabase_InvariantViolationAbortsLoad(t *testing.T) {
	db := newTestDB()
	err := def.LoadData[item](db, []byte(`
ItemDefs:
    list:
        - defName: Broken
          maxStack: -1
`), "broken.yaml", itemsKey)

	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVARIANT_VIOLATION")
	assert.Equal(t, 0, db.Len())
}

func TestDatabase_ContentErrorsDoNotStopLoading(t *testing.T) {
	db := newTestDB()
	require.NoError(t, def.LoadData[item](db, []byte(`
ItemDefs:
    list:
        - label: nameless
        - defName: Stone
          maxStack: lots
        - defName: Stick
`), "items.yaml", itemsKey))
	require.NoError(t, db.ResolveAll(context.Background()))

	assert.Equal(t, []string{"Stick", "Stone"}, db.Names())
	assert.Equal(t, 1, def.MustGet[*item](db, "Stone").MaxStack, "malformed value falls back to the default")

	errs := db.ContentErrors()
	require.Len(t, errs, 1)
	errutil.AssertErrorCode(t, errs[0], "CONTENT_ERROR")
	errutil.AssertErrorContext(t, errs[0], "key", "defName")
	require.Error(t, db.Err())
}

func TestDatabase_MissingReferenceIsFatal(t *testing.T) {
	db := newTestDB()
	require.NoError(t, def.LoadData[item](db, []byte(`
ItemDefs:
    list:
        - defName: Axe
          constructionRecipe:
              - itemDef: Unobtainium
`), "items.yaml", itemsKey))

	err := db.ResolveAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, def.ErrNotFound)
	errutil.AssertErrorCode(t, err, "DEF_NOT_FOUND")
	errutil.AssertErrorContext(t, err, "file", "items.yaml")
	assert.Equal(t, def.PhaseFailed, db.Phase())

	_, err = def.Get[*item](db, "Axe")
	assert.ErrorIs(t, err, def.ErrNotReady)
}

func TestDatabase_CrossRecordValidation(t *testing.T) {
	db := newTestDB()
	require.NoError(t, def.LoadData[item](db, []byte(`
ItemDefs:
    list:
        - defName: Plank
          constructionRecipe:
              - itemDef: Log
                count: 5
        - defName: Log
          maxStack: 2
`), "items.yaml", itemsKey))

	err := db.ResolveAll(context.Background())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVARIANT_VIOLATION")
	assert.Contains(t, err.Error(), "more than its max stack")
}

func TestDatabase_WrongTypeReference(t *testing.T) {
	db := newTestDB()
	require.NoError(t, def.LoadData[effect](db, []byte(`
EffectDefs:
    list:
        - defName: Sparks
`), "effects.yaml", effectsKey))
	require.NoError(t, def.LoadData[item](db, []byte(`
ItemDefs:
    list:
        - defName: Torch
          repairedWith: Sparks
`), "items.yaml", itemsKey))

	err := db.ResolveAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, def.ErrWrongType)
	errutil.AssertErrorCode(t, err, "DEF_WRONG_TYPE")
}

func TestDatabase_TypeFilteredRetrieval(t *testing.T) {
	db := newTestDB()
	require.NoError(t, def.LoadData[effect](db, []byte(`
EffectDefs:
    list:
        - defName: Sparks
        - defName: Smoke
`), "effects.yaml", effectsKey))
	require.NoError(t, def.LoadData[item](db, []byte(`
ItemDefs:
    list:
        - defName: Torch
          effectDef: Smoke
`), "items.yaml", itemsKey))
	require.NoError(t, db.ResolveAll(context.Background()))

	effects := def.All[*effect](db)
	require.Len(t, effects, 2)
	assert.Equal(t, "Smoke", effects[0].Name())
	assert.Equal(t, "Sparks", effects[1].Name())

	assert.Len(t, def.All[def.Def](db), 3)
	assert.Len(t, def.All[*item](db), 1)

	torch := def.MustGet[*item](db, "Torch")
	assert.Same(t, effects[0], torch.Effect.Get())

	_, ok := def.TryGet[*item](db, "Nothing")
	assert.False(t, ok)
	_, ok = def.TryGet[*item](db, "Sparks")
	assert.False(t, ok)

	_, err := def.Get[*item](db, "Nothing")
	require.Error(t, err)
	assert.ErrorIs(t, err, def.ErrNotFound)
	assert.Panics(t, func() { def.MustGet[*item](db, "Nothing") })
}

func TestDatabase_LookupsBeforeResolve(t *testing.T) {
	db := newTestDB()
	require.NoError(t, def.LoadData[effect](db, []byte(`
EffectDefs:
    list:
        - defName: Sparks
`), "effects.yaml", effectsKey))

	_, err := def.Get[*effect](db, "Sparks")
	require.Error(t, err)
	assert.ErrorIs(t, err, def.ErrNotReady)
	errutil.AssertErrorCode(t, err, "DB_NOT_READY")
	assert.Nil(t, def.All[*effect](db))
	assert.Equal(t, def.PhaseLoading, db.Phase())
}

func TestDatabase_FrozenAfterResolve(t *testing.T) {
	db := newTestDB()
	require.NoError(t, db.ResolveAll(context.Background()))
	assert.True(t, db.Ready())

	err := def.LoadData[effect](db, []byte("EffectDefs: {list: []}"), "late.yaml", effectsKey)
	assert.ErrorIs(t, err, def.ErrFrozen)

	err = db.ResolveAll(context.Background())
	assert.ErrorIs(t, err, def.ErrAlreadyResolved)
}

func TestDatabase_DropAll(t *testing.T) {
	db := newTestDB()
	require.NoError(t, def.LoadData[effect](db, []byte(`
EffectDefs:
    list:
        - defName: Sparks
          duration: 2
`), "effects.yaml", effectsKey))
	require.NoError(t, db.ResolveAll(context.Background()))
	held := def.MustGet[*effect](db, "Sparks")

	db.DropAll()

	assert.Equal(t, def.PhaseLoading, db.Phase())
	assert.Equal(t, 0, db.Len())
	assert.Empty(t, db.ContentErrors())
	assert.InDelta(t, 2.0, held.Duration, 1e-9, "handles outlive the registry entry")

	require.NoError(t, db.ResolveAll(context.Background()))
	_, ok := def.TryGet[*effect](db, "Sparks")
	assert.False(t, ok)
}

func TestDatabase_ResolveAllHonoursContext(t *testing.T) {
	db := newTestDB()
	require.NoError(t, def.LoadData[effect](db, []byte(`
EffectDefs:
    list:
        - defName: Sparks
`), "effects.yaml", effectsKey))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := db.ResolveAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, def.PhaseFailed, db.Phase())
}

func TestLoadDirectory_FiltersAndIgnores(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "effects.yaml"), "EffectDefs:\n    list:\n        - defName: A\n")
	writeFile(t, filepath.Join(dir, "nested", "more.YAML"), "EffectDefs:\n    list:\n        - defName: B\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a data file")
	writeFile(t, filepath.Join(dir, "draft.yaml~"), "EffectDefs:\n    list:\n        - defName: C\n")
	writeFile(t, filepath.Join(dir, "wip", "x.yaml"), "EffectDefs:\n    list:\n        - defName: D\n")
	writeFile(t, filepath.Join(dir, "_old.yaml"), "EffectDefs:\n    list:\n        - defName: E\n")

	ignore, err := def.CompileIgnore([]string{"wip", "_*"})
	require.NoError(t, err)

	db := newTestDB(def.WithIgnore(ignore...))
	require.NoError(t, def.LoadDirectory[effect](db, dir, effectsKey))

	assert.Equal(t, []string{"A", "B"}, db.Names())
}

func TestLoadDirectory_MissingDirectoryIsEmpty(t *testing.T) {
	db := newTestDB()
	require.NoError(t, def.LoadDirectory[effect](db, filepath.Join(t.TempDir(), "absent"), effectsKey))
	assert.Equal(t, 0, db.Len())
}

func TestLoadFile_SyntaxErrorIsContentError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "EffectDefs: [unclosed")

	db := newTestDB()
	require.NoError(t, def.LoadFile[effect](db, path, effectsKey))

	errs := db.ContentErrors()
	require.Len(t, errs, 1)
	errutil.AssertErrorCode(t, errs[0], "YAML_INVALID")
}

func TestCompileIgnore_InvalidPattern(t *testing.T) {
	_, err := def.CompileIgnore([]string{"[unclosed"})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "IGNORE_PATTERN_INVALID")
}

type countingObserver struct {
	loaded, duplicates, contentErrs int
}

func (o *countingObserver) DefLoaded(string)              { o.loaded++ }
func (o *countingObserver) DuplicateRejected(string)      { o.duplicates++ }
func (o *countingObserver) ContentErrors(_ string, n int) { o.contentErrs += n }

func TestDatabase_Observer(t *testing.T) {
	obs := &countingObserver{}
	db := newTestDB(def.WithObserver(obs))
	require.NoError(t, def.LoadData[effect](db, []byte(`
EffectDefs:
    list:
        - defName: A
        - defName: A
        - defName: B
          duration: soon
        - label: nameless
`), "effects.yaml", effectsKey))

	assert.Equal(t, 2, obs.loaded)
	assert.Equal(t, 1, obs.duplicates)
	assert.Equal(t, 1, obs.contentErrs, "the missing defName")
}

func TestKind_LoadsWithoutConcreteType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "EffectDefs", "a.yaml"), "EffectDefs:\n    list:\n        - defName: A\n")

	kinds := []def.Kind{def.KindOf[effect](effectsKey), def.KindOf[item](itemsKey)}
	db := newTestDB()
	for _, k := range kinds {
		require.NoError(t, k.LoadDirectory(db, filepath.Join(dir, k.Name)))
	}
	require.NoError(t, kinds[1].LoadData(db, []byte("ItemDefs:\n    list:\n        - defName: I\n"), "mem.yaml"))
	require.NoError(t, db.ResolveAll(context.Background()))

	kind, _, ok := db.Source("A")
	require.True(t, ok)
	assert.Equal(t, effectsKey, kind)
	assert.Equal(t, itemsKey, kinds[1].String())
	assert.Len(t, def.All[*item](db), 1)
}

func TestMarshal_RoundTrip(t *testing.T) {
	db := newTestDB()
	require.NoError(t, def.LoadData[item](db, []byte(`
ItemDefs:
    list:
        - defName: Wood
          label: wood
          maxStack: 50
        - defName: Axe
          description: "chops: wood"
          constructionRecipe:
              - itemDef: Wood
                count: 3
`), "items.yaml", itemsKey))
	require.NoError(t, db.ResolveAll(context.Background()))

	data, err := def.Marshal(itemsKey, def.MustGet[*item](db, "Axe"), def.MustGet[*item](db, "Wood"))
	require.NoError(t, err)

	again := newTestDB()
	require.NoError(t, def.LoadData[item](again, data, "dump.yaml", itemsKey))
	require.NoError(t, again.ResolveAll(context.Background()))
	require.Empty(t, again.ContentErrors())

	axe := def.MustGet[*item](again, "Axe")
	assert.Equal(t, "chops: wood", axe.Description)
	require.Len(t, axe.Recipe, 1)
	assert.Equal(t, 3, axe.Recipe[0].Count)
	assert.Same(t, def.MustGet[*item](again, "Wood"), axe.Recipe[0].Item.Get())
	assert.Equal(t, 50, axe.Recipe[0].Item.Get().MaxStack)
}
