package history

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kardolus/chatgpt-agent/agent/types"
	"github.com/kardolus/chatgpt-agent/internal"
	"github.com/kardolus/chatgpt-agent/internal/fsio"
)

const (
	historyDirName = "history"
	threadExt      = ".json"
)

type History struct {
	types.Message
	Timestamp time.Time `json:"timestamp"`
}

//go:generate mockgen -destination=historymocks_test.go -package=history_test github.com/kardolus/chatgpt-agent/history Store
type Store interface {
	ReadThread(thread string) ([]History, error)
	WriteThread(thread string, entries []History) error
	DeleteThread(thread string) error
	ListThreads() ([]string, error)
}

// Ensure FileStore implements the Store interface
var _ Store = &FileStore{}

// FileStore keeps one JSON file per thread.
type FileStore struct {
	dir string
	fs  fsio.FS
}

// New stores threads under <data home>/history.
func New() (*FileStore, error) {
	dataHome, err := internal.GetDataHome()
	if err != nil {
		return nil, err
	}
	return NewFileStore(filepath.Join(dataHome, historyDirName)), nil
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, fs: fsio.NewOS()}
}

func (f *FileStore) ReadThread(thread string) ([]History, error) {
	buf, err := f.fs.ReadFile(f.pathFor(thread))
	if err != nil {
		return nil, err
	}

	var result []History
	if err := json.Unmarshal(buf, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (f *FileStore) WriteThread(thread string, entries []History) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	if err := f.fs.MkdirAll(f.dir); err != nil {
		return err
	}
	return f.fs.WriteFile(f.pathFor(thread), data)
}

// DeleteThread is idempotent.
func (f *FileStore) DeleteThread(thread string) error {
	err := f.fs.Remove(f.pathFor(thread))
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStore) ListThreads() ([]string, error) {
	entries, err := f.fs.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var result []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), threadExt) {
			continue
		}
		result = append(result, strings.TrimSuffix(e.Name(), threadExt))
	}
	sort.Strings(result)
	return result, nil
}

func (f *FileStore) pathFor(thread string) string {
	return filepath.Join(f.dir, filepath.Base(thread)+threadExt)
}
