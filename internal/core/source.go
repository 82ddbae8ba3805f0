package core

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Source is a file that can be read more than once. Analysis re-opens it for
// every pass.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
	Exists() (bool, error)
}

// FileSource reads a file from the local filesystem.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return filepath.Base(f.Path) }

func (f FileSource) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// Exists reports false for missing paths and directories. Other stat
// failures are returned as errors.
func (f FileSource) Exists() (bool, error) {
	info, err := os.Stat(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// BytesSource serves an in-memory file, such as an HTTP upload.
type BytesSource struct {
	FileName string
	Data     []byte
}

func (b BytesSource) Name() string { return b.FileName }

func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}

func (b BytesSource) Exists() (bool, error) { return b.Data != nil, nil }
