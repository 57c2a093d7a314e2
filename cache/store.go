package cache

import (
	"errors"
	"os"
	"path/filepath"
)

//go:generate mockgen -destination=storemocks_test.go -package=cache_test github.com/kardolus/chatgpt-agent/cache Store
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Ensure FileStore implements the Store interface
var _ Store = &FileStore{}

// FileStore keeps one file per key and replaces values atomically.
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

func (f *FileStore) Get(key string) ([]byte, error) {
	return os.ReadFile(f.pathForKey(key))
}

func (f *FileStore) Set(key string, value []byte) error {
	if err := os.MkdirAll(f.baseDir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.baseDir, "."+key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(value); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	dst := f.pathForKey(key)
	err = os.Rename(tmpName, dst)
	// Windows refuses to rename over an existing file.
	if err != nil && (errors.Is(err, os.ErrExist) || errors.Is(err, os.ErrPermission)) {
		_ = os.Remove(dst)
		err = os.Rename(tmpName, dst)
	}
	return err
}

func (f *FileStore) Delete(key string) error {
	err := os.Remove(f.pathForKey(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// keys are sha256 hex
func (f *FileStore) pathForKey(key string) string {
	return filepath.Join(f.baseDir, key+".json")
}
