package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/kardolus/chatgpt-agent/agent/types"
)

func (e *Executor) ReadFile(tc types.ToolContext, a types.ReadFile) (string, error) {
	p, err := Resolve(tc.Root, a.Path, tc.AllowOutsideRoot)
	if err != nil {
		return "", err
	}

	data, err := e.fs.ReadFile(p)
	if err != nil {
		return "", err
	}

	if a.Start == nil && a.End == nil {
		return string(data), nil
	}

	lines := strings.Split(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	start, end := 1, len(lines)
	if a.Start != nil {
		start = *a.Start
	}
	if a.End != nil && *a.End < end {
		end = *a.End
	}

	switch {
	case start < 1:
		return "", fmt.Errorf("read %s: start line must be >= 1, got %d", a.Path, start)
	case start > len(lines):
		return "", fmt.Errorf("read %s: start line %d is past end of file (%d lines)", a.Path, start, len(lines))
	case start > end:
		return "", fmt.Errorf("read %s: invalid line range %d-%d", a.Path, start, end)
	}

	return strings.Join(lines[start-1:end], "\n"), nil
}

func (e *Executor) WriteFile(tc types.ToolContext, a types.WriteFile) (string, error) {
	p, err := e.prepareWrite(tc, a.Path)
	if err != nil {
		return "", err
	}

	if err := e.fs.WriteFile(p, []byte(a.Content)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Wrote %d bytes to %s", len(a.Content), a.Path), nil
}

func (e *Executor) AppendFile(tc types.ToolContext, a types.AppendFile) (string, error) {
	p, err := e.prepareWrite(tc, a.Path)
	if err != nil {
		return "", err
	}

	if err := e.fs.AppendFile(p, []byte(a.Content)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Appended %d bytes to %s", len(a.Content), a.Path), nil
}

func (e *Executor) CreateFile(tc types.ToolContext, a types.CreateFile) (string, error) {
	p, err := e.prepareWrite(tc, a.Path)
	if err != nil {
		return "", err
	}

	if a.Overwrite {
		err = e.fs.WriteFile(p, []byte(a.Content))
	} else {
		err = e.fs.CreateExclusive(p, []byte(a.Content))
	}

	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("create %s: %w (set overwrite to replace it)", a.Path, ErrAlreadyExists)
	}
	if err != nil {
		return "", err
	}

	return "Created " + a.Path, nil
}

func (e *Executor) DeleteFile(tc types.ToolContext, a types.DeleteFile) (string, error) {
	p, err := Resolve(tc.Root, a.Path, tc.AllowOutsideRoot)
	if err != nil {
		return "", err
	}

	if root, _ := Resolve(tc.Root, ".", true); p == root {
		return "", fmt.Errorf("delete %s: refusing to delete the workspace root", a.Path)
	}

	info, err := e.fs.Lstat(p)
	if err != nil {
		return "", err
	}

	if info.IsDir() && a.Recursive {
		err = e.fs.RemoveAll(p)
	} else {
		err = e.fs.Remove(p)
	}
	if err != nil {
		if info.IsDir() {
			return "", fmt.Errorf("delete %s: %w (set recursive to remove a non-empty directory)", a.Path, err)
		}
		return "", err
	}

	return "Deleted " + a.Path, nil
}

func (e *Executor) ReplaceInFile(tc types.ToolContext, a types.ReplaceInFile) (string, error) {
	if a.Search == "" {
		return "", fmt.Errorf("replace %s: search string must be non-empty", a.Path)
	}

	p, err := Resolve(tc.Root, a.Path, tc.AllowOutsideRoot)
	if err != nil {
		return "", err
	}

	orig, err := e.fs.ReadFile(p)
	if err != nil {
		return "", err
	}

	content := string(orig)
	found := strings.Count(content, a.Search)
	if found == 0 {
		return "", fmt.Errorf("replace %s: %q not found", a.Path, a.Search)
	}

	limit, replaced := 1, 1
	if a.ReplaceAll {
		limit, replaced = -1, found
	}

	updated := strings.Replace(content, a.Search, a.Replace, limit)
	if err := e.fs.WriteFile(p, []byte(updated)); err != nil {
		return "", err
	}

	return fmt.Sprintf("Replaced %d occurrence(s) in %s", replaced, a.Path), nil
}

func (e *Executor) MoveFile(tc types.ToolContext, a types.MoveFile) (string, error) {
	from, err := Resolve(tc.Root, a.From, tc.AllowOutsideRoot)
	if err != nil {
		return "", err
	}
	to, err := e.prepareWrite(tc, a.To)
	if err != nil {
		return "", err
	}

	if err := e.rename(from, to, a.To); err != nil {
		return "", err
	}
	return fmt.Sprintf("Moved %s to %s", a.From, a.To), nil
}

func (e *Executor) RenameFile(tc types.ToolContext, a types.RenameFile) (string, error) {
	name := strings.TrimSpace(a.NewName)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("rename %s: new_name must be a plain file name, got %q", a.Path, a.NewName)
	}

	from, err := Resolve(tc.Root, a.Path, tc.AllowOutsideRoot)
	if err != nil {
		return "", err
	}
	to := filepath.Join(filepath.Dir(from), name)

	if err := e.rename(from, to, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Renamed %s to %s", a.Path, name), nil
}

func (e *Executor) rename(from, to, display string) error {
	if _, err := e.fs.Lstat(from); err != nil {
		return err
	}
	if _, err := e.fs.Lstat(to); err == nil {
		return fmt.Errorf("%s: %w", display, ErrAlreadyExists)
	}
	return e.fs.Rename(from, to)
}

// prepareWrite resolves target and creates its parent directories.
func (e *Executor) prepareWrite(tc types.ToolContext, target string) (string, error) {
	p, err := Resolve(tc.Root, target, tc.AllowOutsideRoot)
	if err != nil {
		return "", err
	}
	if err := e.fs.MkdirAll(filepath.Dir(p)); err != nil {
		return "", fmt.Errorf("create parent of %s: %w", target, err)
	}
	return p, nil
}
