package kotoricmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	kotoricmder "github.com/papercomputeco/kotori/cmd/kotori"
)

var _ = Describe("NewKotoriCmd", func() {
	It("registers every subcommand", func() {
		cmd := kotoricmder.NewKotoriCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"ask", "auth", "chat", "config", "history",
			"ingest", "init", "inspect", "serve", "version",
		))
	})

	It("has the global flags", func() {
		cmd := kotoricmder.NewKotoriCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().ShorthandLookup("d")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("passes --config-dir through to subcommands", func() {
		tmpDir := GinkgoT().TempDir()
		out := &bytes.Buffer{}

		cmd := kotoricmder.NewKotoriCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"history", "--config-dir", tmpDir})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No conversation history"))
	})

	It("prints the version", func() {
		out := &bytes.Buffer{}
		cmd := kotoricmder.NewKotoriCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"version"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Version: dev"))
	})
})
