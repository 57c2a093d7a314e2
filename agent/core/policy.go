package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kardolus/chatgpt-agent/agent/types"
)

type Policy interface {
	AllowAction(tc types.ToolContext, action types.Action) error
}

const (
	PolicyKindActionType = "action_type"
	PolicyKindShell      = "shell"
)

type PolicyLimits struct {
	// AllowedActions restricts plans to these kinds when non-empty.
	AllowedActions []types.ActionType
	// DeniedShellCommands names programs shell_command may not start.
	DeniedShellCommands []string
}

type DefaultPolicy struct {
	limits PolicyLimits
}

func NewDefaultPolicy(limits PolicyLimits) *DefaultPolicy {
	return &DefaultPolicy{limits: limits}
}

func (p *DefaultPolicy) AllowAction(_ types.ToolContext, action types.Action) error {
	if action == nil {
		return PolicyDeniedError{Kind: PolicyKindActionType, Reason: "nil action"}
	}

	if len(p.limits.AllowedActions) > 0 && !contains(p.limits.AllowedActions, action.Type()) {
		return PolicyDeniedError{
			Kind:   PolicyKindActionType,
			Reason: fmt.Sprintf("action not allowed: %s", action.Type()),
		}
	}

	if sh, ok := action.(types.ShellCommand); ok && len(p.limits.DeniedShellCommands) > 0 {
		program := commandName(sh)
		if contains(p.limits.DeniedShellCommands, program) {
			return PolicyDeniedError{
				Kind:   PolicyKindShell,
				Reason: fmt.Sprintf("shell command denied: %s", program),
			}
		}
	}

	return nil
}

// PolicyDeniedError is a typed error so the orchestrator can tell a policy
// refusal from a tool failure.
type PolicyDeniedError struct {
	Kind   string
	Reason string
}

func (e PolicyDeniedError) Error() string {
	return fmt.Sprintf("policy denied: kind=%s reason=%s", e.Kind, e.Reason)
}

func IsPolicyDenied(err error) bool {
	var pe PolicyDeniedError
	return errors.As(err, &pe)
}

// commandName is the program a shell_command starts: the command itself
// when args are given, otherwise the first word of the command line.
func commandName(sh types.ShellCommand) string {
	cmd := strings.TrimSpace(sh.Command)
	if len(sh.Args) == 0 {
		if fields := strings.Fields(cmd); len(fields) > 0 {
			cmd = fields[0]
		}
	}
	return filepath.Base(cmd)
}

func contains[T comparable](xs []T, v T) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
