package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/kardolus/chatgpt-agent/agent/types"
	"github.com/kardolus/chatgpt-agent/internal/fsio"
)

const (
	NoOutput = "(no output)"

	defaultMaxSearchResults = 200
	defaultMaxListEntries   = 1000
)

// Executor runs plan actions against the filesystem and the host shell.
// Every path an action names goes through Resolve first.
type Executor struct {
	fs       fsio.FS
	shell    Shell
	lookPath func(string) (string, error)
	tempDir  string

	maxSearchResults int
	maxListEntries   int
}

type ExecutorOption func(*Executor)

// WithLookPath replaces the PATH probe used to detect rg and patch.
func WithLookPath(fn func(string) (string, error)) ExecutorOption {
	return func(e *Executor) {
		if fn != nil {
			e.lookPath = fn
		}
	}
}

// WithTempDir sets where patches are staged before they are applied.
func WithTempDir(dir string) ExecutorOption {
	return func(e *Executor) { e.tempDir = dir }
}

func WithMaxSearchResults(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxSearchResults = n
		}
	}
}

func WithMaxListEntries(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxListEntries = n
		}
	}
}

func NewExecutor(fs fsio.FS, shell Shell, opts ...ExecutorOption) *Executor {
	e := &Executor{
		fs:               fs,
		shell:            shell,
		lookPath:         exec.LookPath,
		tempDir:          os.TempDir(),
		maxSearchResults: defaultMaxSearchResults,
		maxListEntries:   defaultMaxListEntries,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute dispatches action to its adapter and returns the adapter's
// human-readable result.
func (e *Executor) Execute(ctx context.Context, tc types.ToolContext, action types.Action) (string, error) {
	switch a := action.(type) {
	case types.ReadFile:
		return e.ReadFile(tc, a)
	case types.WriteFile:
		return e.WriteFile(tc, a)
	case types.AppendFile:
		return e.AppendFile(tc, a)
	case types.CreateFile:
		return e.CreateFile(tc, a)
	case types.DeleteFile:
		return e.DeleteFile(tc, a)
	case types.ReplaceInFile:
		return e.ReplaceInFile(tc, a)
	case types.ListDir:
		return e.ListDir(tc, a)
	case types.FileInfo:
		return e.FileInfo(tc, a)
	case types.SearchFiles:
		return e.SearchFiles(ctx, tc, a)
	case types.ApplyPatch:
		return e.ApplyPatch(ctx, tc, a)
	case types.MoveFile:
		return e.MoveFile(tc, a)
	case types.RenameFile:
		return e.RenameFile(tc, a)
	case types.ShellCommand:
		return e.ShellCommand(ctx, tc, a)
	case types.Git:
		return e.Git(ctx, tc, a)
	case nil:
		return "", fmt.Errorf("nil action")
	default:
		return "", fmt.Errorf("unsupported action type %q", action.Type())
	}
}

func (e *Executor) available(name string) bool {
	_, err := e.lookPath(name)
	return err == nil
}
