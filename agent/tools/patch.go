package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kardolus/chatgpt-agent/agent/types"
)

// ApplyPatch applies a unified diff relative to the workspace root. The
// patch is staged in a temp file that is removed on every return path, then
// applied with git when the root is a repository, with patch(1) when it is
// installed, and in-process otherwise.
func (e *Executor) ApplyPatch(ctx context.Context, tc types.ToolContext, a types.ApplyPatch) (string, error) {
	if strings.TrimSpace(a.Patch) == "" {
		return "", errors.New("apply_patch requires a non-empty patch")
	}

	root, err := Resolve(tc.Root, ".", true)
	if err != nil {
		return "", err
	}

	targets := patchTargets(a.Patch)
	if len(targets) == 0 {
		return "", errors.New("apply_patch: no file headers found in patch")
	}
	for _, t := range targets {
		if _, err := Resolve(root, t, tc.AllowOutsideRoot); err != nil {
			return "", err
		}
	}

	tmp, err := os.CreateTemp(e.tempDir, "agent-patch-*.diff")
	if err != nil {
		return "", fmt.Errorf("stage patch: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	body := a.Patch
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	if _, err := tmp.WriteString(body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("stage patch: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("stage patch: %w", err)
	}

	switch {
	case e.isGitRepo(root):
		_, err = e.runProcess(ctx, root, "git", "apply", "--whitespace=nowarn", tmp.Name())
	case e.available("patch"):
		_, err = e.runProcess(ctx, root, "patch", "-p1", "--forward", "--batch", "-i", tmp.Name())
	default:
		err = e.applyInProcess(tc, root, []byte(body))
	}
	if err != nil {
		return "", fmt.Errorf("apply patch: %w", err)
	}

	return fmt.Sprintf("Applied patch to %d file(s): %s", len(targets), strings.Join(targets, ", ")), nil
}

func (e *Executor) isGitRepo(root string) bool {
	_, err := e.fs.Lstat(filepath.Join(root, ".git"))
	return err == nil
}

// applyInProcess computes every file's result before writing any of them,
// so a hunk that fails to apply leaves the tree untouched.
func (e *Executor) applyInProcess(tc types.ToolContext, root string, patch []byte) error {
	files, err := ParsePatch(patch)
	if err != nil {
		return err
	}

	type change struct {
		oldPath string
		newPath string
		content []byte
	}
	changes := make([]change, 0, len(files))

	for _, fp := range files {
		var c change
		var orig []byte

		if fp.OldPath != "" {
			if c.oldPath, err = Resolve(root, fp.OldPath, tc.AllowOutsideRoot); err != nil {
				return err
			}
			if orig, err = e.fs.ReadFile(c.oldPath); err != nil {
				return err
			}
		}
		if fp.NewPath != "" {
			if c.newPath, err = Resolve(root, fp.NewPath, tc.AllowOutsideRoot); err != nil {
				return err
			}
		}

		if c.content, err = fp.Apply(orig); err != nil {
			return err
		}
		changes = append(changes, c)
	}

	for _, c := range changes {
		if c.newPath == "" {
			if err := e.fs.Remove(c.oldPath); err != nil {
				return err
			}
			continue
		}
		if err := e.fs.MkdirAll(filepath.Dir(c.newPath)); err != nil {
			return err
		}
		if err := e.fs.WriteFile(c.newPath, c.content); err != nil {
			return err
		}
		if c.oldPath != "" && c.oldPath != c.newPath {
			if err := e.fs.Remove(c.oldPath); err != nil {
				return err
			}
		}
	}
	return nil
}
