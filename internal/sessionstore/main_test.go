package sessionstore_test

import (
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rwx-research/lms-cli/internal/sessionstore"
)

var _ = Describe("Main", func() {
	Describe("Get", func() {
		It("prefers the provided session", func() {
			backend, err := sessionstore.NewMemoryBackend()
			Expect(err).NotTo(HaveOccurred())
			Expect(backend.Set("stored-session")).To(Succeed())

			session, err := sessionstore.Get(backend, "provided-session")
			Expect(err).NotTo(HaveOccurred())
			Expect(session).To(Equal("provided-session"))
		})

		It("falls back to the stored session", func() {
			backend, err := sessionstore.NewMemoryBackend()
			Expect(err).NotTo(HaveOccurred())
			Expect(backend.Set("stored-session")).To(Succeed())

			session, err := sessionstore.Get(backend, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(session).To(Equal("stored-session"))
		})
	})

	Describe("CookieJar", func() {
		It("scopes the session cookie to the app origin", func() {
			jar, err := sessionstore.CookieJar("http://localhost:3000", "", "abc123")
			Expect(err).NotTo(HaveOccurred())

			app, _ := url.Parse("http://localhost:3000/api/auth/token")
			cookies := jar.Cookies(app)
			Expect(cookies).To(HaveLen(1))
			Expect(cookies[0].Name).To(Equal(sessionstore.DefaultCookieName))
			Expect(cookies[0].Value).To(Equal("abc123"))

			backend, _ := url.Parse("http://backend.example.com/course")
			Expect(jar.Cookies(backend)).To(BeEmpty())
		})

		It("returns an empty jar without a session", func() {
			jar, err := sessionstore.CookieJar("http://localhost:3000", "custom", "")
			Expect(err).NotTo(HaveOccurred())

			app, _ := url.Parse("http://localhost:3000/")
			Expect(jar.Cookies(app)).To(BeEmpty())
		})
	})
})
