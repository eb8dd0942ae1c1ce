package sessionstore

import (
	"fmt"
	"io"
	gofs "io/fs"
	"os"
	"os/user"
	"path"
	"strings"

	"github.com/rwx-research/lms-cli/internal/errors"
	"github.com/rwx-research/lms-cli/internal/fs"
)

const fileName = "session"

type FileBackend struct {
	Dir        string
	FileSystem fs.FileSystem
}

func NewFileBackend(dir string, filesystem fs.FileSystem) (*FileBackend, error) {
	dir, err := expandTilde(dir)
	if err != nil {
		return nil, err
	}

	return &FileBackend{Dir: dir, FileSystem: filesystem}, nil
}

func (f FileBackend) path() string {
	return path.Join(f.Dir, fileName)
}

func (f FileBackend) Get() (string, error) {
	filepath := f.path()
	fd, err := f.FileSystem.Open(filepath)
	if err != nil {
		if errors.Is(err, gofs.ErrNotExist) {
			return "", nil
		}

		return "", errors.Wrapf(err, "unable to open %q", filepath)
	}
	defer fd.Close()

	contents, err := io.ReadAll(fd)
	if err != nil {
		return "", errors.Wrapf(err, "error reading %q", filepath)
	}

	return strings.TrimSpace(string(contents)), nil
}

func (f FileBackend) Set(value string) error {
	if err := f.FileSystem.MkdirAll(f.Dir); err != nil {
		return errors.Wrapf(err, "unable to create %q", f.Dir)
	}

	filepath := f.path()
	fd, err := f.FileSystem.Create(filepath)
	if err != nil {
		return errors.Wrapf(err, "unable to create %q", filepath)
	}
	defer fd.Close()

	if _, err := io.WriteString(fd, value); err != nil {
		return errors.Wrapf(err, "unable to write session to %q", filepath)
	}

	return nil
}

func (f FileBackend) Clear() error {
	return f.FileSystem.Remove(f.path())
}

var tildeSlash = fmt.Sprintf("~%v", string(os.PathSeparator))

func expandTilde(dir string) (string, error) {
	if dir != "~" && !strings.HasPrefix(dir, tildeSlash) {
		return dir, nil
	}

	current, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "unable to determine the home directory")
	}

	if dir == "~" {
		return current.HomeDir, nil
	}

	return path.Join(current.HomeDir, strings.TrimPrefix(dir, tildeSlash)), nil
}
