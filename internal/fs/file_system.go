package fs

import "io"

type File interface {
	io.ReadWriteCloser
}

type FileSystem interface {
	Create(name string) (File, error)
	Open(name string) (File, error)
	MkdirAll(path string) error
	Remove(name string) error
}
