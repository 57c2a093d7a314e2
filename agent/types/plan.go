package types

import (
	"encoding/json"
	"fmt"
)

// Plan is the model's proposed answer to a task. Actions run strictly in
// order because later ones may depend on state left by earlier ones.
type Plan struct {
	Summary  string
	Response string
	Actions  []Action
}

func (p Plan) MarshalJSON() ([]byte, error) {
	actions := make([]json.RawMessage, 0, len(p.Actions))
	for i, a := range p.Actions {
		raw, err := MarshalAction(a)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, raw)
	}

	return json.Marshal(struct {
		Summary  string            `json:"summary,omitempty"`
		Response string            `json:"response,omitempty"`
		Actions  []json.RawMessage `json:"actions"`
	}{
		Summary:  p.Summary,
		Response: p.Response,
		Actions:  actions,
	})
}

// ToolContext is shared read-only by every tool call within a run.
type ToolContext struct {
	Root             string
	AllowOutsideRoot bool
}

type Status string

const (
	StatusOK      Status = "OK"
	StatusError   Status = "ERROR"
	StatusSkipped Status = "SKIPPED"
)

// LogEntry is the outcome of one attempted action.
type LogEntry struct {
	Status      Status `json:"status"`
	Description string `json:"description"`
	Output      string `json:"output,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Detail is the result text for OK entries and the error message otherwise.
func (e LogEntry) Detail() string {
	if e.Status == StatusOK {
		return e.Output
	}
	return e.Error
}

const (
	SystemRole    = "system"
	UserRole      = "user"
	AssistantRole = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
