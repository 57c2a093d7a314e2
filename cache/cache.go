package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/kardolus/chatgpt-agent/internal"
)

const threadsDirName = "threads"

type Cache struct {
	store Store
}

func New(store Store) *Cache {
	return &Cache{
		store: store,
	}
}

// NewDefault keeps entries under <cache home>/threads.
func NewDefault() (*Cache, error) {
	cacheHome, err := internal.GetCacheHome()
	if err != nil {
		return nil, err
	}
	return New(NewFileStore(filepath.Join(cacheHome, threadsDirName))), nil
}

func (c *Cache) GetThread(root string) (string, error) {
	raw, err := c.store.Get(hash(root))
	if err != nil {
		return "", err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", err
	}

	return entry.Thread, nil
}

func (c *Cache) SetThread(root, thread string) error {
	entry := Entry{
		Root:      root,
		Thread:    thread,
		UpdatedAt: time.Now(),
	}

	bytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return c.store.Set(hash(root), bytes)
}

func (c *Cache) DeleteThread(root string) error {
	return c.store.Delete(hash(root))
}

func hash(root string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return hex.EncodeToString(sum[:])
}
