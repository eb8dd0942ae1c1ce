package sessionstore_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rwx-research/lms-cli/internal/sessionstore"
)

var _ = Describe("MemoryBackend", func() {
	It("sets, gets and clears the session", func() {
		backend, err := sessionstore.NewMemoryBackend()
		Expect(err).NotTo(HaveOccurred())

		session, err := backend.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(session).To(Equal(""))

		Expect(backend.Set("the-session")).To(Succeed())

		session, err = backend.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(session).To(Equal("the-session"))

		Expect(backend.Clear()).To(Succeed())

		session, err = backend.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(session).To(Equal(""))
	})
})
