package fsio

import (
	"io/fs"
	"os"
	"path/filepath"
)

const (
	FilePerm = 0o644
	DirPerm  = 0o755
)

type Reader interface {
	ReadFile(name string) ([]byte, error)
	Lstat(name string) (os.FileInfo, error)
	Stat(name string) (os.FileInfo, error)
	ReadDir(name string) ([]os.DirEntry, error)
	WalkDir(root string, fn fs.WalkDirFunc) error
}

type Writer interface {
	MkdirAll(path string) error
	WriteFile(name string, data []byte) error
	AppendFile(name string, data []byte) error
	// CreateExclusive writes data to a new file and fails with an error
	// matching os.ErrExist when name is already present.
	CreateExclusive(name string, data []byte) error
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldPath, newPath string) error
}

type FS interface {
	Reader
	Writer
}

// Ensure OS implements the FS interface
var _ FS = &OS{}

type OS struct{}

func NewOS() *OS { return &OS{} }

func (*OS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (*OS) Lstat(name string) (os.FileInfo, error) { return os.Lstat(name) }

func (*OS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

func (*OS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

func (*OS) WalkDir(root string, fn fs.WalkDirFunc) error { return filepath.WalkDir(root, fn) }

func (*OS) MkdirAll(path string) error { return os.MkdirAll(path, DirPerm) }

func (*OS) WriteFile(name string, data []byte) error { return os.WriteFile(name, data, FilePerm) }

func (*OS) AppendFile(name string, data []byte) error {
	return writeWithFlags(name, data, os.O_CREATE|os.O_APPEND|os.O_WRONLY)
}

func (*OS) CreateExclusive(name string, data []byte) error {
	return writeWithFlags(name, data, os.O_CREATE|os.O_EXCL|os.O_WRONLY)
}

func (*OS) Remove(name string) error { return os.Remove(name) }

func (*OS) RemoveAll(path string) error { return os.RemoveAll(path) }

func (*OS) Rename(oldPath, newPath string) error { return os.Rename(oldPath, newPath) }

func writeWithFlags(name string, data []byte, flags int) error {
	f, err := os.OpenFile(name, flags, FilePerm)
	if err != nil {
		return err
	}

	defer func() {
		_ = f.Close()
	}()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return f.Close()
}
