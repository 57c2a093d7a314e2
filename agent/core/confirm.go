package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kardolus/chatgpt-agent/agent/types"
)

//go:generate mockgen -destination=confirmermocks_test.go -package=planexec_test github.com/kardolus/chatgpt-agent/agent/core Confirmer
type Confirmer interface {
	// Confirm blocks until the user approves or declines action.
	Confirm(ctx context.Context, action types.Action) (bool, error)
}

type ConfirmFunc func(ctx context.Context, action types.Action) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, action types.Action) (bool, error) {
	return f(ctx, action)
}

// PromptConfirmer asks a y/N question per action on a plain line-based
// terminal. Anything but y or yes declines; end of input declines too.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *PromptConfirmer) Confirm(ctx context.Context, action types.Action) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := fmt.Fprint(p.out, Question(action)); err != nil {
		return false, err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return IsYes(line), nil
}

// Question renders the approval prompt for action.
func Question(action types.Action) string {
	q := "Execute " + action.Describe()
	if why := action.Why(); why != "" {
		q += " (" + why + ")"
	}
	return q + "? [y/N] "
}

func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
