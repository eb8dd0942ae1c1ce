package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rwx-research/lms-cli/internal/logger"
)

var _ = Describe("Setup", func() {
	It("writes json at the configured level", func() {
		var buf bytes.Buffer
		log, closer, err := logger.Setup(logger.Config{Level: slog.LevelInfo, Format: "json", Output: &buf})
		Expect(err).NotTo(HaveOccurred())
		defer closer.Close()

		log.Debug("hidden")
		logger.WithCommand(log, "courses list").Info("shown", slog.Int("count", 2))

		var entry map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
		Expect(entry).To(HaveKeyWithValue("msg", "shown"))
		Expect(entry).To(HaveKeyWithValue("command", "courses list"))
		Expect(entry).To(HaveKeyWithValue("count", float64(2)))
	})

	It("also writes to a log file", func() {
		var buf bytes.Buffer
		path := filepath.Join(GinkgoT().TempDir(), "logs", "lms.log")

		log, closer, err := logger.Setup(logger.Config{Level: slog.LevelWarn, Output: &buf, File: path})
		Expect(err).NotTo(HaveOccurred())

		log.Warn("session expired")
		Expect(closer.Close()).To(Succeed())

		contents, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(contents)).To(ContainSubstring("session expired"))
		Expect(buf.String()).To(ContainSubstring("session expired"))
	})

	It("rejects unknown formats", func() {
		_, _, err := logger.Setup(logger.Config{Format: "xml"})
		Expect(err).To(MatchError(`validation failed: unknown log format "xml"`))
	})
})

var _ = Describe("ParseLevel", func() {
	It("parses known levels and defaults to warn", func() {
		Expect(logger.ParseLevel("DEBUG")).To(Equal(slog.LevelDebug))
		Expect(logger.ParseLevel("info")).To(Equal(slog.LevelInfo))
		Expect(logger.ParseLevel("error")).To(Equal(slog.LevelError))
		Expect(logger.ParseLevel("")).To(Equal(slog.LevelWarn))
	})
})
