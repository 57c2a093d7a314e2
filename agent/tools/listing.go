package tools

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/kardolus/chatgpt-agent/agent/types"
)

const emptyDirectory = "(empty directory)"

func (e *Executor) ListDir(tc types.ToolContext, a types.ListDir) (string, error) {
	target := a.Path
	if strings.TrimSpace(target) == "" {
		target = "."
	}

	base, err := Resolve(tc.Root, target, tc.AllowOutsideRoot)
	if err != nil {
		return "", err
	}

	info, err := e.fs.Stat(base)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("list %s: not a directory", target)
	}

	var entries []string
	truncated := false

	if a.Recursive {
		if info, lerr := e.fs.Lstat(base); lerr == nil && info.Mode()&fs.ModeSymlink != 0 {
			if resolved, rerr := filepath.EvalSymlinks(base); rerr == nil {
				base = resolved
			}
		}
		err = e.fs.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if p == base {
					return err
				}
				return nil
			}
			if p == base {
				return nil
			}
			if !a.IncludeHidden && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if len(entries) >= e.maxListEntries {
				truncated = true
				return filepath.SkipAll
			}

			rel, err := filepath.Rel(base, p)
			if err != nil {
				return err
			}
			entries = append(entries, listName(filepath.ToSlash(rel), d.IsDir()))
			return nil
		})
		if err != nil {
			return "", err
		}
	} else {
		dirEntries, err := e.fs.ReadDir(base)
		if err != nil {
			return "", err
		}
		for _, d := range dirEntries {
			if !a.IncludeHidden && isHidden(d.Name()) {
				continue
			}
			if len(entries) >= e.maxListEntries {
				truncated = true
				break
			}
			entries = append(entries, listName(d.Name(), d.IsDir()))
		}
	}

	if len(entries) == 0 {
		return emptyDirectory, nil
	}
	if truncated {
		entries = append(entries, fmt.Sprintf("... (listing truncated at %d entries)", e.maxListEntries))
	}
	return strings.Join(entries, "\n"), nil
}

func (e *Executor) FileInfo(tc types.ToolContext, a types.FileInfo) (string, error) {
	p, err := Resolve(tc.Root, a.Path, tc.AllowOutsideRoot)
	if err != nil {
		return "", err
	}

	info, err := e.fs.Lstat(p)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "path: %s\n", a.Path)
	fmt.Fprintf(&b, "type: %s\n", fileKind(info.Mode()))
	fmt.Fprintf(&b, "size: %d bytes\n", info.Size())
	fmt.Fprintf(&b, "mode: %s\n", info.Mode().Perm())
	fmt.Fprintf(&b, "modified: %s", info.ModTime().Format(time.RFC3339))
	return b.String(), nil
}

func fileKind(m fs.FileMode) string {
	switch {
	case m.IsDir():
		return "directory"
	case m&fs.ModeSymlink != 0:
		return "symlink"
	case m.IsRegular():
		return "file"
	default:
		return "other"
	}
}

func listName(name string, dir bool) string {
	if dir {
		return name + "/"
	}
	return name
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
