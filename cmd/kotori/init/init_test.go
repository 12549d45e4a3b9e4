package initcmder_test

import (
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/kotori/cmd/kotori/init"
	"github.com/papercomputeco/kotori/pkg/config"
)

var _ = Describe("NewInitCmd", func() {
	It("rejects arguments", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Use).To(Equal("init"))
		Expect(cmd.Args(cmd, []string{})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"extra"})).NotTo(Succeed())
	})

	It("has a --preset flag", func() {
		f := initcmder.NewInitCmd().Flags().Lookup("preset")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("Init command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	run := func(args ...string) error {
		cmd := initcmder.NewInitCmd()
		cmd.SetOut(io.Discard)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	readConfig := func() *config.Config {
		data, err := os.ReadFile(filepath.Join(tmpDir, ".kotori", "config.toml"))
		Expect(err).NotTo(HaveOccurred())
		cfg := &config.Config{}
		Expect(toml.Unmarshal(data, cfg)).To(Succeed())
		return cfg
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
	})

	It("creates .kotori with a default config", func() {
		Expect(run()).To(Succeed())

		cfg := readConfig()
		Expect(cfg.LLM.Provider).To(Equal("groq"))
		Expect(cfg.Router.AgentName).To(Equal("kotori"))
		Expect(cfg.Memory.Collection).To(Equal("kotori_memory"))
	})

	It("writes the chosen preset", func() {
		Expect(run("--preset", "ollama")).To(Succeed())

		cfg := readConfig()
		Expect(cfg.LLM.Provider).To(Equal("ollama"))
		Expect(cfg.LLM.BaseURL).To(Equal("http://localhost:11434"))
	})

	It("rejects unknown presets without creating anything", func() {
		Expect(run("--preset", "bogus")).To(MatchError(ContainSubstring("unknown preset")))
		_, err := os.Stat(filepath.Join(tmpDir, ".kotori"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("leaves an existing config untouched", func() {
		Expect(run("--preset", "anthropic")).To(Succeed())
		Expect(run("--preset", "ollama")).To(Succeed())
		Expect(readConfig().LLM.Provider).To(Equal("anthropic"))
	})
})
