// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package datafile_test

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandboxgame/sandbox/internal/datafile"
	"github.com/sandboxgame/sandbox/internal/value"
	"github.com/sandboxgame/sandbox/pkg/errutil"
)

type part struct {
	Name  string
	Count int
}

func (p *part) Expose(n *datafile.Node) {
	datafile.Var(n, &p.Name, "name")
	datafile.VarOr(n, &p.Count, "count", 1)

	if n.Loading() && p.Count < 0 {
		n.Fatalf("count can't be negative")
	}
}

type record struct {
	Title   string
	Enabled bool
	Weight  float64
	Tags    []string
	Parts   []part
	Main    part
	Extra   part
	Levels  map[int]string
	Size    value.Vec2[int]
	Notes   string

	partCount int
	inits     int
}

func (r *record) Expose(n *datafile.Node) {
	datafile.Var(n, &r.Title, "title")
	datafile.VarOr(n, &r.Enabled, "enabled", true)
	datafile.VarOr(n, &r.Weight, "weight", 2.5)
	datafile.Seq(n, &r.Tags, "tags")
	datafile.Seq(n, &r.Parts, "parts")
	datafile.Var(n, &r.Main, "main")
	datafile.VarOr(n, &r.Extra, "extra", part{Name: "spare", Count: 3})
	datafile.Map(n, &r.Levels, "levels")
	datafile.VarOr(n, &r.Size, "size", value.Vec2[int]{X: 1, Y: 1})
	datafile.VarOr(n, &r.Notes, "notes", "")

	if n.PostLoadInit() {
		r.partCount = len(r.Parts)
		r.inits++
	}
}

func discard() datafile.Option {
	return datafile.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

const axe = `
Records:
    title: Axe
    enabled: yes
    tags: [sharp, tool]
    parts:
        - name: head
          count: 2
        - name: handle
    main:
        name: blade
    levels:
        1: one
        10: ten
`

func TestParse_BindsFieldsAndDefaults(t *testing.T) {
	var r record
	a, err := datafile.Parse([]byte(axe), "axe.yaml", "Records", &r, discard())
	require.NoError(t, err)
	assert.False(t, a.Failed())
	assert.Equal(t, datafile.Loading, a.Type())
	assert.Equal(t, "axe.yaml", a.FilePath())

	assert.Equal(t, "Axe", r.Title)
	assert.True(t, r.Enabled)
	assert.InDelta(t, 2.5, r.Weight, 1e-9)
	assert.Equal(t, []string{"sharp", "tool"}, r.Tags)
	assert.Equal(t, []part{{Name: "head", Count: 2}, {Name: "handle", Count: 1}}, r.Parts)
	assert.Equal(t, part{Name: "blade", Count: 1}, r.Main)
	assert.Equal(t, part{Name: "spare", Count: 3}, r.Extra)
	assert.Equal(t, map[int]string{1: "one", 10: "ten"}, r.Levels)
	assert.Equal(t, value.Vec2[int]{X: 1, Y: 1}, r.Size)

	// Post-load work has not run yet.
	assert.Equal(t, 0, r.inits)
}

func TestParse_MissingRequiredKeysAggregate(t *testing.T) {
	var r record
	a, err := datafile.Parse([]byte("Records:\n    enabled: no\n"), "broken.yaml", "Records", &r, discard())
	require.Error(t, err)

	errs := a.ContentErrors()
	require.Len(t, errs, 2, "both missing keys are reported in one pass")
	assert.Nil(t, a.Fatal())
	assert.False(t, r.Enabled, "loading continues past the first error")

	errutil.AssertErrorCode(t, errs[0], "CONTENT_ERROR")
	errutil.AssertErrorContext(t, errs[0], "key", "title")
	errutil.AssertErrorContext(t, errs[0], "parent", "Records")
	errutil.AssertErrorContext(t, errs[0], "file", "broken.yaml")
	assert.Contains(t, errs[0].Error(), "broken.yaml")
	errutil.AssertErrorContext(t, errs[1], "key", "main")
}

func TestParse_WrongShapeIsAnErrorNotADefault(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		key  string
	}{
		{
			name: "sequence where scalar expected",
			doc:  "Records:\n    title: Axe\n    main: {name: a}\n    weight: [1, 2]\n",
			key:  "weight",
		},
		{
			name: "scalar where map expected",
			doc:  "Records:\n    title: Axe\n    main: {name: a}\n    extra: 5\n",
			key:  "extra",
		},
		{
			name: "map where sequence expected",
			doc:  "Records:\n    title: Axe\n    main: {name: a}\n    tags: {a: b}\n",
			key:  "tags",
		},
		{
			name: "sequence where map expected",
			doc:  "Records:\n    title: Axe\n    main: {name: a}\n    levels: [a]\n",
			key:  "levels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r record
			a, err := datafile.Parse([]byte(tt.doc), "shape.yaml", "Records", &r, discard())
			require.Error(t, err)

			errs := a.ContentErrors()
			require.Len(t, errs, 1)
			errutil.AssertErrorContext(t, errs[0], "key", tt.key)
		})
	}
}

func TestParse_WrongShapeDoesNotApplyDefault(t *testing.T) {
	var r record
	_, err := datafile.Parse([]byte("Records:\n    title: Axe\n    main: {name: a}\n    weight: [1]\n"), "shape.yaml", "Records", &r, discard())
	require.Error(t, err)
	assert.Zero(t, r.Weight)
}

func TestParse_MalformedScalar(t *testing.T) {
	t.Run("with default falls back silently", func(t *testing.T) {
		var r record
		a, err := datafile.Parse([]byte("Records:\n    title: Axe\n    main: {name: a}\n    weight: heavy\n"), "w.yaml", "Records", &r, discard())
		require.NoError(t, err)
		assert.False(t, a.Failed())
		assert.InDelta(t, 2.5, r.Weight, 1e-9)
	})

	t.Run("without default is a content error", func(t *testing.T) {
		var p part
		a, err := datafile.Parse([]byte("Part:\n    name: x\n    count: lots\n"), "p.yaml", "Part", &p, discard())
		require.NoError(t, err, "count has a default")
		assert.False(t, a.Failed())
		assert.Equal(t, 1, p.Count)

		var v value.Vec2[int]
		a, err = datafile.Parse([]byte("Vec:\n    x: 1\n    y: two\n"), "v.yaml", "Vec", &v, discard())
		require.Error(t, err)
		require.Len(t, a.ContentErrors(), 1)
		errutil.AssertErrorContext(t, a.ContentErrors()[0], "key", "y")
	})

	t.Run("malformed map key", func(t *testing.T) {
		var r record
		a, err := datafile.Parse([]byte("Records:\n    title: Axe\n    main: {name: a}\n    levels: {abc: x, 2: two}\n"), "m.yaml", "Records", &r, discard())
		require.Error(t, err)
		assert.Len(t, a.ContentErrors(), 1)
		assert.Equal(t, map[int]string{2: "two"}, r.Levels)
	})
}

type counts struct {
	A int
	B int
	C uint16
	D int
}

func (c *counts) Expose(n *datafile.Node) {
	datafile.Var(n, &c.A, "a")
	datafile.VarOr(n, &c.B, "b", 1)
	datafile.VarOr(n, &c.C, "c", 7)
	datafile.VarOr(n, &c.D, "d", 3)
}

func TestParse_IntegersAreDecimal(t *testing.T) {
	var c counts
	a, err := datafile.Parse([]byte("Counts:\n    a: 010\n    b: 08\n    c: 007\n    d: -012\n"), "n.yaml", "Counts", &c, discard())
	require.NoError(t, err)
	assert.False(t, a.Failed())
	assert.Equal(t, counts{A: 10, B: 8, C: 7, D: -12}, c)

	tests := []struct {
		name string
		text string
	}{
		{"underscore separator", "1_000"},
		{"hex prefix", "0x10"},
		{"octal prefix", "0o10"},
		{"binary prefix", "0b10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c counts
			a, err := datafile.Parse([]byte("Counts:\n    a: "+tt.text+"\n"), "n.yaml", "Counts", &c, discard())
			require.Error(t, err)
			require.Len(t, a.ContentErrors(), 1)
			errutil.AssertErrorContext(t, a.ContentErrors()[0], "key", "a")
			assert.Zero(t, c.A)
		})
	}
}

func TestParse_MapKeysThatDecodeAlikeAreAnError(t *testing.T) {
	var r record
	a, err := datafile.Parse([]byte("Records:\n    title: Axe\n    main: {name: a}\n    levels: {1: one, 01: uno, 2: two}\n"), "m.yaml", "Records", &r, discard())
	require.Error(t, err)
	require.Len(t, a.ContentErrors(), 1)
	errutil.AssertErrorContext(t, a.ContentErrors()[0], "key", "levels")
	assert.Contains(t, a.ContentErrors()[0].Error(), `"01"`)
	assert.Equal(t, map[int]string{1: "one", 2: "two"}, r.Levels)
}

func TestParse_NullRecordReadsAsEmptyMap(t *testing.T) {
	var r record
	a, err := datafile.Parse([]byte("Records:\n    title: Axe\n    main: ~\n"), "null.yaml", "Records", &r, discard())
	require.Error(t, err)

	errs := a.ContentErrors()
	require.Len(t, errs, 1)
	errutil.AssertErrorContext(t, errs[0], "key", "name")
	errutil.AssertErrorContext(t, errs[0], "parent", "Records.main")
}

func TestParse_SequenceElementErrorsNameTheIndex(t *testing.T) {
	var r record
	a, err := datafile.Parse([]byte("Records:\n    title: Axe\n    main: {name: a}\n    parts:\n        - name: a\n        - count: 2\n"), "seq.yaml", "Records", &r, discard())
	require.Error(t, err)

	errs := a.ContentErrors()
	require.Len(t, errs, 1)
	errutil.AssertErrorContext(t, errs[0], "parent", "Records.parts[1]")
	require.Len(t, r.Parts, 2)
	assert.Equal(t, 2, r.Parts[1].Count)
}

func TestParse_SequenceAndMapAreCleared(t *testing.T) {
	r := record{
		Tags:   []string{"stale"},
		Levels: map[int]string{7: "stale"},
	}
	a, err := datafile.Parse([]byte("Records:\n    title: Axe\n    main: {name: a}\n"), "c.yaml", "Records", &r, discard())
	require.NoError(t, err)
	assert.False(t, a.Failed(), "absent sequences and maps are not errors")
	assert.Nil(t, r.Tags)
	assert.Nil(t, r.Levels)
}

func TestParse_FollowsAliases(t *testing.T) {
	doc := `
Records:
    title: Axe
    main: &blade
        name: blade
    extra: *blade
`
	var r record
	_, err := datafile.Parse([]byte(doc), "alias.yaml", "Records", &r, discard())
	require.NoError(t, err)
	assert.Equal(t, part{Name: "blade", Count: 1}, r.Extra)
}

func TestParse_FatalStopsTheActivity(t *testing.T) {
	doc := "Records:\n    title: Axe\n    parts:\n        - name: a\n          count: -1\n        - name: b\n"
	var r record
	a, err := datafile.Parse([]byte(doc), "fatal.yaml", "Records", &r, discard())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVARIANT_VIOLATION")
	errutil.AssertErrorContext(t, err, "path", "Records.parts[0]")
	assert.Equal(t, a.Fatal(), err)

	// main is missing, but bindings after the fatal error never ran.
	assert.Empty(t, a.ContentErrors())
	assert.True(t, a.Failed())
}

func TestParse_RootKey(t *testing.T) {
	var r record
	a, err := datafile.Parse([]byte("Other:\n    title: x\n"), "root.yaml", "Records", &r, discard())
	require.Error(t, err)
	require.Len(t, a.ContentErrors(), 1)
	errutil.AssertErrorCode(t, err, "ROOT_KEY_MISSING")

	_, err = datafile.Parse([]byte(""), "empty.yaml", "Records", &r, discard())
	errutil.AssertErrorCode(t, err, "ROOT_KEY_MISSING")

	_, err = datafile.Parse([]byte("Records: [\n"), "bad.yaml", "Records", &r, discard())
	errutil.AssertErrorCode(t, err, "YAML_INVALID")
}

func TestInit_RunsPostLoadInit(t *testing.T) {
	var r record
	_, err := datafile.Parse([]byte(axe), "axe.yaml", "Records", &r, discard())
	require.NoError(t, err)

	a, err := datafile.Init("axe.yaml", "Records", &r, discard())
	require.NoError(t, err)
	assert.Equal(t, datafile.PostLoadInit, a.Type())
	assert.Equal(t, 2, r.partCount)
	assert.Equal(t, 1, r.inits)
	assert.Equal(t, "Axe", r.Title, "post-load pass leaves scalars alone")
}

func TestMarshal_RoundTrip(t *testing.T) {
	orig := record{
		Title:   "123",
		Enabled: false,
		Weight:  0.1,
		Tags:    []string{"a", "yes", ""},
		Parts:   []part{{Name: "head", Count: 4}},
		Main:    part{Name: "blade", Count: 1},
		Extra:   part{Name: "spare", Count: 9},
		Levels:  map[int]string{10: "ten", 2: "two"},
		Size:    value.Vec2[int]{X: 3, Y: -2},
		Notes:   "line one\nline two",
	}

	data, err := datafile.Marshal("Records", &orig, discard())
	require.NoError(t, err)
	assert.Contains(t, string(data), "Records:")
	assert.Contains(t, string(data), "notes: |")

	var got record
	require.NoError(t, datafile.Unmarshal(data, "Records", &got, discard()))

	orig.partCount = 1
	orig.inits = 1
	assert.Equal(t, orig, got)
}

func TestSaveLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yaml")
	orig := record{
		Title: "Pickaxe",
		Main:  part{Name: "pick", Count: 2},
		Extra: part{Name: "spare", Count: 3},
		Size:  value.Vec2[int]{X: 1, Y: 2},
	}
	require.NoError(t, datafile.Save(path, "Records", &orig, discard()))

	var got record
	require.NoError(t, datafile.Load(path, "Records", &got, discard()))
	orig.inits = 1
	assert.Equal(t, orig, got)
}

func TestLoad_MissingFile(t *testing.T) {
	var r record
	err := datafile.Load(filepath.Join(t.TempDir(), "nope.yaml"), "Records", &r, discard())
	errutil.AssertErrorCode(t, err, "FILE_READ_FAILED")
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"Yes", true},
		{" yes ", true},
		{"1", true},
		{"9lives", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"on", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, datafile.ParseBool(tt.in))
		})
	}
}

func TestActivity_ErrorStateIsMonotonic(t *testing.T) {
	var r record
	a, _ := datafile.Parse([]byte("Records:\n    enabled: no\n"), "m.yaml", "Records", &r, discard())
	require.True(t, a.Failed())

	errs := a.ContentErrors()
	errs[0] = nil
	assert.NotNil(t, a.ContentErrors()[0], "callers get a copy")
	assert.True(t, a.Failed())
	assert.NotEqual(t, a.ID().String(), "")
}

func TestActivityType_String(t *testing.T) {
	assert.Equal(t, "saving", datafile.Saving.String())
	assert.Equal(t, "loading", datafile.Loading.String())
	assert.Equal(t, "post-load-init", datafile.PostLoadInit.String())
}
