package messages_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/messages"
)

var _ = Describe("FormatUserMessage", func() {
	It("builds a string based on the available data", func() {
		Expect(messages.FormatUserMessage("message", nil, "")).To(Equal("message"))
		Expect(messages.FormatUserMessage("message", nil, "advice")).To(Equal("message\nadvice"))
		Expect(messages.FormatUserMessage("message", map[string]any{"title": "required", "due_at": "invalid"}, "advice")).To(Equal(`message
  due_at: invalid
  title: required
advice`))
	})
})

var _ = Describe("ForError", func() {
	It("advises signing in again when the session expired", func() {
		err := errors.WithStack(errors.ErrSessionExpired)
		Expect(messages.ForError(err, false)).To(Equal("Session expired. Please login again.\nRun `lms login` to sign in again."))
	})

	It("lists validation details", func() {
		httpErr := errors.NewHTTPError(400, "400 Bad Request", "Validasi gagal")
		httpErr.Details = map[string]any{"Title": "required"}

		err := errors.Wrap(httpErr, "unable to create course")
		Expect(messages.ForError(err, false)).To(Equal("unable to create course: Validasi gagal\n  Title: required"))
	})

	It("includes the stack trace in debug mode", func() {
		err := errors.New("boom")
		Expect(messages.ForError(err, true)).To(ContainSubstring("messages_test.go"))
	})
})
