package servecmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	servecmder "github.com/papercomputeco/kotori/cmd/kotori/serve"
)

var _ = Describe("NewServeCmd", func() {
	It("registers server and pipeline flags", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))

		for _, name := range []string{"listen", "no-mcp", "eventstream-provider", "eventstream-brokers", "llm-provider", "vector-store-target", "log-file"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
		Expect(cmd.Flags().Lookup("listen").DefValue).To(Equal(":8081"))
	})

	It("rejects positional arguments", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Args(cmd, []string{"api"})).NotTo(Succeed())
	})
})
