package mocks

import (
	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/fs"
)

type FileSystem struct {
	MockCreate   func(name string) (fs.File, error)
	MockOpen     func(name string) (fs.File, error)
	MockMkdirAll func(path string) error
	MockRemove   func(name string) error
}

func (f *FileSystem) Create(name string) (fs.File, error) {
	if f.MockCreate != nil {
		return f.MockCreate(name)
	}

	return nil, errors.New("MockCreate was not configured")
}

func (f *FileSystem) Open(name string) (fs.File, error) {
	if f.MockOpen != nil {
		return f.MockOpen(name)
	}

	return nil, errors.New("MockOpen was not configured")
}

func (f *FileSystem) MkdirAll(path string) error {
	if f.MockMkdirAll != nil {
		return f.MockMkdirAll(path)
	}

	return errors.New("MockMkdirAll was not configured")
}

func (f *FileSystem) Remove(name string) error {
	if f.MockRemove != nil {
		return f.MockRemove(name)
	}

	return errors.New("MockRemove was not configured")
}
