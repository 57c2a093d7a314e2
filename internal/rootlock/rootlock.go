package rootlock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kardolus/chatgpt-agent/internal"
)

const lockDir = "locks"

// Lock is an exclusive advisory lock on a workspace root. Two agent runs
// against the same root block on each other; runs on different roots don't.
type Lock struct {
	path string
	f    *os.File
}

// PathFor returns the lock file used for root inside dir.
func PathFor(dir, root string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(dir, hex.EncodeToString(sum[:])+".lock")
}

// Acquire blocks until the lock for root is held. The lock file lives in
// the cache home.
func Acquire(root string) (*Lock, error) {
	cacheHome, err := internal.GetCacheHome()
	if err != nil {
		return nil, err
	}
	return AcquireIn(filepath.Join(cacheHome, lockDir), root)
}

func AcquireIn(dir, root string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	l := &Lock{path: PathFor(dir, root)}
	if err := l.lock(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Lock) Path() string { return l.path }

func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	return l.unlock()
}
