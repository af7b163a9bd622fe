// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package content

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/resource"
)

// checkAssets returns one content error per asset path that no loaded mod
// provides.
func (l *Loader) checkAssets() []error {
	var errs []error
	for _, r := range def.All[resource.Resource](l.db) {
		for _, p := range r.ResourcePaths() {
			if p == "" || l.hasAsset(p) {
				continue
			}
			kind, file, _ := l.db.Source(r.Name())
			errs = append(errs, oops.
				Code("ASSET_MISSING").
				With("def", r.Name()).
				With("kind", kind).
				With("file", file).
				With("asset", p).
				Errorf("%s %q names missing asset %q", kind, r.Name(), p))
		}
	}
	return errs
}

func (l *Loader) hasAsset(p string) bool {
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return false
	}
	for _, mod := range l.loaded {
		if _, err := os.Stat(filepath.Join(mod.Dir, filepath.FromSlash(p))); err == nil {
			return true
		}
	}
	return false
}
