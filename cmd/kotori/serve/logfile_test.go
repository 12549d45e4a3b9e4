package servecmder

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kotori/cmd/kotori/pipeline"
	"github.com/papercomputeco/kotori/pkg/logger"
)

var _ = Describe("attachLogFile", func() {
	It("leaves the logger alone without --log-file", func() {
		base := logger.Nop()
		o := pipeline.Options{Logger: base}

		closeLog, err := (&serveCommander{}).attachLogFile(&o)
		Expect(err).NotTo(HaveOccurred())
		closeLog()
		Expect(o.Logger).To(BeIdenticalTo(base))
	})

	It("writes debug records to the file while stdout stays at info", func() {
		var stdout bytes.Buffer
		path := filepath.Join(GinkgoT().TempDir(), "serve.jsonl")
		o := pipeline.Options{Logger: logger.New(logger.WithJSON(true), logger.WithWriter(&stdout))}

		closeLog, err := (&serveCommander{logFile: path}).attachLogFile(&o)
		Expect(err).NotTo(HaveOccurred())

		log := logger.Component(o.Logger, "router")
		log.Debug("routing decision", "intent", "emotional")
		log.Info("kotori ready")
		closeLog()

		Expect(stdout.String()).NotTo(ContainSubstring("routing decision"))
		Expect(stdout.String()).To(ContainSubstring("kotori ready"))

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		Expect(lines).To(HaveLen(2))

		var first map[string]any
		Expect(json.Unmarshal([]byte(lines[0]), &first)).To(Succeed())
		Expect(first["msg"]).To(Equal("routing decision"))
		Expect(first[logger.ComponentKey]).To(Equal("router"))
		Expect(first).To(HaveKey("source"))
	})

	It("fails when the file cannot be opened", func() {
		o := pipeline.Options{Logger: logger.Nop()}
		_, err := (&serveCommander{logFile: filepath.Join(GinkgoT().TempDir(), "missing", "x.log")}).attachLogFile(&o)
		Expect(err).To(MatchError(ContainSubstring("opening log file")))
	})
})
