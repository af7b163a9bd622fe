// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

//go:build integration

package content_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/sandboxgame/sandbox/internal/content"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/defs"
	"github.com/sandboxgame/sandbox/internal/reload"
)

const plankItem = `
ItemDefs:
    list:
        - defName: Item_Wood
          label: overlay wood
          cachedCollisionShapeDef: Shape_SmallBox
          mass: 1
          modelDef: Model_Wood
          textureInInventory: textures/items/wood.png
        - defName: Item_Plank
          label: plank
          cachedCollisionShapeDef: Shape_SmallBox
          mass: 1
          modelDef: Model_Wood
          textureInInventory: textures/items/wood.png
          maxStack: 20
`

func newLoader(modsDir string) (*content.Loader, *def.Database) {
	logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
	db := def.NewDatabase(def.WithLogger(logger))
	return content.NewLoader(modsDir, db, content.WithLogger(logger)), db
}

var _ = Describe("Content loading", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("the base mod", func() {
		var db *def.Database

		BeforeEach(func() {
			var loader *content.Loader
			loader, db = newLoader(baseMods)
			Expect(loader.Load(ctx)).To(Succeed())
			Expect(loader.ContentErrors()).To(BeEmpty())
		})

		It("resolves references across files to the registered instances", func() {
			recipe := def.MustGet[*defs.CraftingRecipeDef](db, "CraftingRecipe_Axe")
			wood := def.MustGet[*defs.ItemDef](db, "Item_Wood")
			axe := def.MustGet[*defs.ItemDef](db, "Item_Axe")

			_, woodFile, _ := db.Source("Item_Wood")
			_, recipeFile, _ := db.Source("CraftingRecipe_Axe")
			Expect(woodFile).NotTo(Equal(recipeFile))

			Expect(recipe.Price.Items).NotTo(BeEmpty())
			Expect(recipe.Price.Items[0].Def.Get()).To(BeIdenticalTo(wood))
			Expect(recipe.CraftedItem.Get()).To(BeIdenticalTo(axe))
		})

		It("fills the well-known record cache", func() {
			cache, err := defs.NewCache(db)
			Expect(err).NotTo(HaveOccurred())
			Expect(cache.OnHitGenericEffect).NotTo(BeNil())
			Expect(cache.PlayersFaction).To(BeIdenticalTo(def.MustGet[*defs.FactionDef](db, "Faction_Players")))
			Expect(cache.CraftingRecipes).To(ContainElement(def.MustGet[*defs.CraftingRecipeDef](db, "CraftingRecipe_Axe")))
		})

		It("drops everything on DropAll", func() {
			db.DropAll()
			Expect(db.Len()).To(BeZero())
			Expect(db.Ready()).To(BeFalse())
		})
	})

	Describe("an overlay mod", func() {
		var modsDir string

		BeforeEach(func() {
			modsDir = copyBaseMods()
			writeFile(filepath.Join(modsDir, "overlay", content.ManifestFile),
				"name: overlay\nversion: 0.1.0\ndependencies: [base]\n")
			writeFile(filepath.Join(modsDir, "overlay", "defs", "ItemDefs", "planks.yaml"), plankItem)
		})

		It("adds new records and keeps the first of a duplicate", func() {
			loader, db := newLoader(modsDir)
			Expect(loader.Load(ctx)).To(Succeed())

			Expect(def.MustGet[*defs.ItemDef](db, "Item_Plank").MaxStack).To(Equal(20))
			Expect(def.MustGet[*defs.ItemDef](db, "Item_Wood").Label).To(Equal("wood"))
			Expect(loader.ContentErrors()).To(HaveLen(1))
			Expect(loader.ContentErrors()[0].Error()).To(ContainSubstring("Item_Wood"))
		})

		It("fails in strict mode", func() {
			logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
			db := def.NewDatabase(def.WithLogger(logger))
			loader := content.NewLoader(modsDir, db, content.WithLogger(logger), content.WithStrict(true))
			err := loader.Load(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("strict mode"))
		})

		It("is rejected when enabled before its dependency", func() {
			logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
			db := def.NewDatabase(def.WithLogger(logger))
			loader := content.NewLoader(modsDir, db,
				content.WithLogger(logger),
				content.WithEnabled([]content.ModRef{
					{Name: "overlay", Enabled: true},
					{Name: "base", Enabled: true},
				}))
			err := loader.Load(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("depends on"))
		})
	})

	Describe("watching a mods directory", func() {
		It("reloads when a data file is added", func(specCtx SpecContext) {
			modsDir := copyBaseMods()
			loader, db := newLoader(modsDir)
			Expect(loader.Load(ctx)).To(Succeed())
			_, found := def.TryGet[*defs.ItemDef](db, "Item_Plank")
			Expect(found).To(BeFalse())

			w, err := reload.New(modsDir, loader,
				reload.WithDebounce(50*time.Millisecond),
				reload.WithLogger(slog.New(slog.NewTextHandler(GinkgoWriter, nil))))
			Expect(err).NotTo(HaveOccurred())

			runCtx, cancel := context.WithCancel(specCtx)
			done := make(chan error, 1)
			go func() { done <- w.Run(runCtx) }()
			DeferCleanup(func() {
				cancel()
				Eventually(done).Should(Receive(BeNil()))
			})

			writeFile(filepath.Join(modsDir, "overlay", content.ManifestFile),
				"name: overlay\nversion: 0.1.0\ndependencies: [base]\n")
			writeFile(filepath.Join(modsDir, "overlay", "defs", "ItemDefs", "planks.yaml"), plankItem)

			Eventually(func() bool {
				_, ok := def.TryGet[*defs.ItemDef](db, "Item_Plank")
				return ok && db.Ready()
			}).WithTimeout(5 * time.Second).Should(BeTrue())
		}, SpecTimeout(10*time.Second))
	})
})
