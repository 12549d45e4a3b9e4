package configcmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/kotori/cmd/kotori/config"
	"github.com/papercomputeco/kotori/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))

		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
	})

	It("sets a value that is read back", func() {
		Expect(run("set", "llm.provider", "anthropic")).To(Succeed())

		cfger, err := config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.LLM.Provider).To(Equal("anthropic"))

		out.Reset()
		Expect(run("get", "llm.provider")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("anthropic"))
	})

	It("sets numeric values", func() {
		Expect(run("set", "embedding.dimensions", "1536")).To(Succeed())
		Expect(run("set", "embedding.dimensions", "many")).To(MatchError(ContainSubstring("invalid value")))
	})

	It("rejects unknown keys", func() {
		Expect(run("set", "storage.sqlite_path", "x")).To(MatchError(ContainSubstring("unknown config key")))
		Expect(run("get", "proxy.provider")).To(MatchError(ContainSubstring("unknown config key")))
	})

	It("lists every key", func() {
		Expect(run("list")).To(Succeed())
		for _, key := range config.ValidConfigKeys() {
			Expect(out.String()).To(ContainSubstring(key))
		}
		Expect(out.String()).To(ContainSubstring(`"kotori"`))
	})

	It("requires exact arguments", func() {
		Expect(run("set", "llm.provider")).NotTo(Succeed())
		Expect(run("get")).NotTo(Succeed())
	})
})
