package mocks

import (
	"bytes"
)

// File is an in-memory file. Writes after Close still succeed; tests assert on Closed instead.
type File struct {
	*bytes.Buffer
	Closed bool
}

func NewFile(content string) *File {
	return &File{Buffer: bytes.NewBufferString(content)}
}

func (f *File) Close() error {
	f.Closed = true
	return nil
}
