package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/kardolus/chatgpt-agent/agent/types"
)

//go:generate mockgen -destination=shellmocks_test.go -package=tools_test github.com/kardolus/chatgpt-agent/agent/tools Shell
type Shell interface {
	Run(
		ctx context.Context,
		workDir string,
		name string,
		args ...string,
	) (Result, error)
}

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

type ExecShellRunner struct{}

func NewExecShellRunner() *ExecShellRunner {
	return &ExecShellRunner{}
}

// Run executes name in workDir. A non-zero exit is reported through
// Result.ExitCode; the error is reserved for processes that could not run.
func (r *ExecShellRunner) Run(
	ctx context.Context,
	workDir string,
	name string,
	args ...string,
) (Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = workDir

	var outb, errb bytes.Buffer
	cmd.Stdout = &outb
	cmd.Stderr = &errb

	res := Result{}
	if err := cmd.Run(); err != nil {
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return Result{Duration: time.Since(start)}, err
		}
		res.ExitCode = ee.ExitCode()
	}

	res.Stdout = outb.String()
	res.Stderr = errb.String()
	res.Duration = time.Since(start)
	return res, nil
}

func (e *Executor) ShellCommand(ctx context.Context, tc types.ToolContext, a types.ShellCommand) (string, error) {
	cmd := strings.TrimSpace(a.Command)
	if cmd == "" {
		return "", errors.New("shell_command requires a command")
	}

	dir, err := Resolve(tc.Root, ".", true)
	if err != nil {
		return "", err
	}

	if len(a.Args) > 0 {
		return e.runProcess(ctx, dir, cmd, a.Args...)
	}

	if runtime.GOOS == "windows" {
		return e.runProcess(ctx, dir, "cmd", "/C", cmd)
	}
	return e.runProcess(ctx, dir, "sh", "-c", cmd)
}

func (e *Executor) Git(ctx context.Context, tc types.ToolContext, a types.Git) (string, error) {
	if len(a.Args) == 0 {
		return "", errors.New("git requires at least one argument")
	}

	dir, err := Resolve(tc.Root, ".", true)
	if err != nil {
		return "", err
	}
	return e.runProcess(ctx, dir, "git", a.Args...)
}

func (e *Executor) runProcess(ctx context.Context, dir, name string, args ...string) (string, error) {
	res, err := e.shell.Run(ctx, dir, name, args...)
	if err != nil {
		return "", fmt.Errorf("run %s: %w", name, err)
	}

	if res.ExitCode != 0 {
		if msg := strings.TrimSpace(res.Stderr); msg != "" {
			return "", errors.New(msg)
		}
		return "", fmt.Errorf("command exited with code %d", res.ExitCode)
	}

	if out := strings.TrimSpace(res.Stdout); out != "" {
		return out, nil
	}
	return NoOutput, nil
}
