package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxAPIKeyFileBytes caps the size of api_key_file.
const MaxAPIKeyFileBytes int64 = 10 * 1024

var ErrInvalidAPIKeyFile = errors.New("invalid api key file")

// ReadAPIKeyFile returns the trimmed contents of the regular file at path.
// A leading ~ expands to the home directory.
func ReadAPIKeyFile(path string) (string, error) {
	clean := filepath.Clean(expandHome(path))

	f, err := os.Open(clean)
	if err != nil {
		return "", fmt.Errorf("open api key file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat api key file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrInvalidAPIKeyFile, clean)
	}
	if info.Size() > MaxAPIKeyFileBytes {
		return "", fmt.Errorf("%w: %s is larger than %d bytes", ErrInvalidAPIKeyFile, clean, MaxAPIKeyFileBytes)
	}

	// the file may grow between Stat and ReadAll
	data, err := io.ReadAll(io.LimitReader(f, MaxAPIKeyFileBytes+1))
	if err != nil {
		return "", fmt.Errorf("read api key file: %w", err)
	}
	if int64(len(data)) > MaxAPIKeyFileBytes {
		return "", fmt.Errorf("%w: %s is larger than %d bytes", ErrInvalidAPIKeyFile, clean, MaxAPIKeyFileBytes)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrInvalidAPIKeyFile, clean)
	}
	return key, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
