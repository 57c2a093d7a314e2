package planexec

import (
	"fmt"
	"strings"

	"github.com/kardolus/chatgpt-agent/agent/types"
)

const planPromptTemplate = `You are a local automation agent. You act on the user's machine only through the actions listed below; every action is shown to the user and may be declined.

Platform: %s
Workspace root: %s
Relative paths resolve against the workspace root. Paths outside it are refused unless the user allowed them.

Reply with a single JSON object and nothing else. No Markdown, no prose outside the JSON.
{
  "summary": "one sentence describing the plan",
  "response": "optional text answer for the user",
  "actions": [ { "type": "<action type>", "reason": "why this step is needed", ... } ]
}

Available actions (fields marked ? are optional):
%s
Rules:
- Use only the fields listed for each action type.
- Actions run in order. Later actions may rely on earlier ones.
- Prefer file actions over shell_command when both can do the job.
- If the task needs no action, return an empty "actions" array and answer in "response".`

// SystemPrompt is the planning instruction sent ahead of every task.
func SystemPrompt(platform, root string) string {
	return fmt.Sprintf(planPromptTemplate, platform, root, actionReference())
}

const followupSystemPrompt = `You report the outcome of actions an automation agent just ran for the user. Answer in plain text, briefly. Say whether the task was accomplished, name every action with status ERROR or SKIPPED and why, and include any information the user asked for that appears in the action output.`

// FollowupMessages asks the model to summarize an execution log.
func FollowupMessages(task, execLog string) []types.Message {
	var b strings.Builder
	b.WriteString("Task:\n")
	b.WriteString(task)
	b.WriteString("\n\nExecution log:\n")
	b.WriteString(execLog)

	return []types.Message{
		{Role: types.SystemRole, Content: followupSystemPrompt},
		{Role: types.UserRole, Content: b.String()},
	}
}
