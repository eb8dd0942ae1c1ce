package fs

import (
	"os"

	"github.com/rwx-research/lms-cli/internal/errors"
)

type Local struct{}

// Create makes files readable by the owner only; they hold session credentials.
func (l Local) Create(name string) (File, error) {
	fd, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create %q", name)
	}

	return fd, nil
}

func (l Local) Open(name string) (File, error) {
	fd, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %q", name)
	}

	return fd, nil
}

func (l Local) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o700)
}

func (l Local) Remove(name string) error {
	err := os.Remove(name)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "unable to remove %q", name)
	}

	return nil
}
