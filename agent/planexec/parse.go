package planexec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kardolus/chatgpt-agent/agent/types"
)

// PlanParseError reports model output that is not a valid plan. Raw is the
// text exactly as the model returned it.
type PlanParseError struct {
	Raw string
	Err error
}

func (e *PlanParseError) Error() string {
	return fmt.Sprintf("invalid plan: %v\nraw model output:\n%s", e.Err, e.Raw)
}

func (e *PlanParseError) Unwrap() error { return e.Err }

func IsPlanParseError(err error) bool {
	var pe *PlanParseError
	return errors.As(err, &pe)
}

// ParsePlan validates raw model output against the plan schema and decodes
// it into typed actions. Nothing is executed for a plan that fails here.
func ParsePlan(raw string) (types.Plan, error) {
	cleaned := cleanPlannerOutput(raw)
	if cleaned == "" {
		return types.Plan{}, &PlanParseError{Raw: raw, Err: errors.New("empty response")}
	}

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return types.Plan{}, &PlanParseError{Raw: raw, Err: fmt.Errorf("not JSON: %w", err)}
	}

	schema, err := planSchema()
	if err != nil {
		return types.Plan{}, fmt.Errorf("compile plan schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return types.Plan{}, &PlanParseError{Raw: raw, Err: err}
	}

	var envelope struct {
		Summary  string            `json:"summary"`
		Response string            `json:"response"`
		Actions  []json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return types.Plan{}, &PlanParseError{Raw: raw, Err: err}
	}

	plan := types.Plan{
		Summary:  strings.TrimSpace(envelope.Summary),
		Response: strings.TrimSpace(envelope.Response),
		Actions:  make([]types.Action, 0, len(envelope.Actions)),
	}
	for i, rawAction := range envelope.Actions {
		a, err := decodeAction(rawAction)
		if err != nil {
			return types.Plan{}, &PlanParseError{Raw: raw, Err: fmt.Errorf("action %d: %w", i, err)}
		}
		plan.Actions = append(plan.Actions, a)
	}

	return plan, nil
}

func decodeAction(raw json.RawMessage) (types.Action, error) {
	var head struct {
		Type types.ActionType `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case types.ActionReadFile:
		return decodeAs[types.ReadFile](raw)
	case types.ActionWriteFile:
		return decodeAs[types.WriteFile](raw)
	case types.ActionAppendFile:
		return decodeAs[types.AppendFile](raw)
	case types.ActionCreateFile:
		return decodeAs[types.CreateFile](raw)
	case types.ActionDeleteFile:
		return decodeAs[types.DeleteFile](raw)
	case types.ActionReplaceInFile:
		return decodeAs[types.ReplaceInFile](raw)
	case types.ActionListDir:
		return decodeAs[types.ListDir](raw)
	case types.ActionFileInfo:
		return decodeAs[types.FileInfo](raw)
	case types.ActionSearchFiles:
		return decodeAs[types.SearchFiles](raw)
	case types.ActionApplyPatch:
		return decodeAs[types.ApplyPatch](raw)
	case types.ActionMoveFile:
		return decodeAs[types.MoveFile](raw)
	case types.ActionRenameFile:
		return decodeAs[types.RenameFile](raw)
	case types.ActionShellCommand:
		return decodeAs[types.ShellCommand](raw)
	case types.ActionGit:
		return decodeAs[types.Git](raw)
	default:
		return nil, fmt.Errorf("unsupported action type %q", head.Type)
	}
}

func decodeAs[T types.Action](raw json.RawMessage) (types.Action, error) {
	var a T
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return a, nil
}

// cleanPlannerOutput strips Markdown fences and any prose around the JSON
// object.
func cleanPlannerOutput(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
		if strings.HasPrefix(strings.ToLower(s), "json") {
			s = strings.TrimSpace(s[len("json"):])
		}
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	if !strings.HasPrefix(s, "{") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start >= 0 && end > start {
			s = s[start : end+1]
		}
	}

	return s
}
