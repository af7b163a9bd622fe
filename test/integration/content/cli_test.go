// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

//go:build integration

package content_test

import (
	"context"
	"os/exec"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

// sandbox runs the CLI from source with an isolated config home.
func sandbox(ctx context.Context, args ...string) (string, error) {
	modsDir, err := filepath.Abs(baseMods)
	Expect(err).NotTo(HaveOccurred())
	args = append(args, "--mods-dir", modsDir)

	cmd := exec.CommandContext(ctx, "go", append([]string{"run", "."}, args...)...)
	cmd.Dir = "../../../cmd/sandbox"
	cmd.Env = append(cmd.Environ(), "XDG_CONFIG_HOME="+GinkgoT().TempDir())
	out, err := cmd.CombinedOutput()
	return string(out), err
}

var _ = Describe("sandbox CLI", func() {
	It("checks the base mod", func(ctx SpecContext) {
		out, err := sandbox(ctx, "check", "--strict")
		Expect(err).NotTo(HaveOccurred(), "check failed: %s", out)
		Expect(out).To(ContainSubstring("base@1.0.0"))
		Expect(out).To(ContainSubstring("with 0 content errors"))
	})

	It("dumps a resolved record", func(ctx SpecContext) {
		out, err := sandbox(ctx, "dump", "ItemDefs", "Item_Axe")
		Expect(err).NotTo(HaveOccurred(), "dump failed: %s", out)
		Expect(out).To(ContainSubstring("defName: Item_Axe"))
	})
})
