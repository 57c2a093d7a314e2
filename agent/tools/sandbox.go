package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrPathEscape    = errors.New("path escapes workspace root")
	ErrAlreadyExists = errors.New("already exists")
)

// Resolve maps target onto an absolute path under root. A leading "~" is
// expanded to the user's home directory and relative targets are joined to
// root. Unless allowOutsideRoot is set, the result must be root itself or
// nested under it. Resolution is lexical; symlinks are not followed.
func Resolve(root, target string, allowOutsideRoot bool) (string, error) {
	absRoot, err := filepath.Abs(expandHome(root))
	if err != nil {
		return "", fmt.Errorf("resolve root %q: %w", root, err)
	}

	p := expandHome(strings.TrimSpace(target))
	if !filepath.IsAbs(p) {
		p = filepath.Join(absRoot, p)
	}
	p = filepath.Clean(p)

	if allowOutsideRoot || within(absRoot, p) {
		return p, nil
	}

	return "", fmt.Errorf("%w: %q resolves outside %s", ErrPathEscape, target, absRoot)
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
