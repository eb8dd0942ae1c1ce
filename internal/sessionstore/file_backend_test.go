package sessionstore_test

import (
	"io"
	gofs "io/fs"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rwx-research/lms-cli/internal/fs"
	"github.com/rwx-research/lms-cli/internal/mocks"
	"github.com/rwx-research/lms-cli/internal/sessionstore"
)

var _ = Describe("FileBackend", func() {
	var mockFS *mocks.FileSystem

	BeforeEach(func() {
		mockFS = new(mocks.FileSystem)
	})

	Describe("Get", func() {
		Context("when the session file does not exist", func() {
			BeforeEach(func() {
				mockFS.MockOpen = func(name string) (fs.File, error) {
					Expect(name).To(Equal("some/dir/session"))
					return nil, gofs.ErrNotExist
				}
			})

			It("returns an empty session", func() {
				backend, err := sessionstore.NewFileBackend("some/dir", mockFS)
				Expect(err).NotTo(HaveOccurred())

				session, err := backend.Get()
				Expect(err).NotTo(HaveOccurred())
				Expect(session).To(Equal(""))
			})
		})

		Context("when the session file is otherwise unable to be opened", func() {
			BeforeEach(func() {
				mockFS.MockOpen = func(name string) (fs.File, error) {
					return nil, gofs.ErrPermission
				}
			})

			It("returns an error", func() {
				backend, err := sessionstore.NewFileBackend("some/dir", mockFS)
				Expect(err).NotTo(HaveOccurred())

				session, err := backend.Get()
				Expect(err.Error()).To(ContainSubstring("unable to open"))
				Expect(err).To(MatchError(gofs.ErrPermission))
				Expect(session).To(Equal(""))
			})
		})

		Context("when the session file has contents", func() {
			var file *mocks.File

			BeforeEach(func() {
				mockFS.MockOpen = func(name string) (fs.File, error) {
					file = mocks.NewFile("the-session\n")
					return file, nil
				}
			})

			It("returns the trimmed session and closes the file", func() {
				backend, err := sessionstore.NewFileBackend("some/dir", mockFS)
				Expect(err).NotTo(HaveOccurred())

				session, err := backend.Get()
				Expect(err).NotTo(HaveOccurred())
				Expect(session).To(Equal("the-session"))
				Expect(file.Closed).To(BeTrue())
			})
		})
	})

	Describe("Set", func() {
		Context("when creating the file errors", func() {
			BeforeEach(func() {
				mockFS.MockMkdirAll = func(path string) error {
					Expect(path).To(Equal("some/dir"))
					return nil
				}
				mockFS.MockCreate = func(name string) (fs.File, error) {
					Expect(name).To(Equal("some/dir/session"))
					return nil, gofs.ErrInvalid
				}
			})

			It("returns an error", func() {
				backend, err := sessionstore.NewFileBackend("some/dir", mockFS)
				Expect(err).NotTo(HaveOccurred())

				err = backend.Set("the-session")
				Expect(err.Error()).To(ContainSubstring("unable to create"))
				Expect(err).To(MatchError(gofs.ErrInvalid))
			})
		})

		Context("when the file is created", func() {
			var file *mocks.File

			BeforeEach(func() {
				mockFS.MockMkdirAll = func(path string) error {
					return nil
				}
				mockFS.MockCreate = func(name string) (fs.File, error) {
					file = mocks.NewFile("")
					return file, nil
				}
			})

			It("writes the session to the file", func() {
				backend, err := sessionstore.NewFileBackend("some/dir", mockFS)
				Expect(err).NotTo(HaveOccurred())

				Expect(backend.Set("the-session")).To(Succeed())

				bytes, err := io.ReadAll(file)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(bytes)).To(Equal("the-session"))
			})
		})
	})

	Describe("Clear", func() {
		It("removes the session file", func() {
			var removed string
			mockFS.MockRemove = func(name string) error {
				removed = name
				return nil
			}

			backend, err := sessionstore.NewFileBackend("some/dir", mockFS)
			Expect(err).NotTo(HaveOccurred())

			Expect(backend.Clear()).To(Succeed())
			Expect(removed).To(Equal("some/dir/session"))
		})
	})
})
