package planexec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/kardolus/chatgpt-agent/agent/core"
	"github.com/kardolus/chatgpt-agent/agent/types"
	"github.com/kardolus/chatgpt-agent/agent/usage"
	"github.com/kardolus/chatgpt-agent/api/client"
)

// Run pipeline: task → plan (LLM, JSON) → validate → execute each action
// behind policy, budget and approval → summarize the execution log (LLM).

const (
	DefaultModel = "gpt-4o-mini"

	PlanArtifact           = "plan.json"
	NormalizedPlanArtifact = "plan.normalized.json"

	maxEntryDetailBytes = 8 * 1024
)

//go:generate mockgen -destination=llmmocks_test.go -package=planexec_test github.com/kardolus/chatgpt-agent/agent/planexec LLM
type LLM interface {
	Chat(ctx context.Context, req client.ChatRequest) (client.ChatResponse, error)
}

//go:generate mockgen -destination=executormocks_test.go -package=planexec_test github.com/kardolus/chatgpt-agent/agent/planexec Executor
type Executor interface {
	Execute(ctx context.Context, tc types.ToolContext, action types.Action) (string, error)
}

type Settings struct {
	Model       string
	AutoApprove bool

	Temperature         float32
	FollowupTemperature float32

	Pricing  map[string]usage.Price
	Platform string
}

type RunRequest struct {
	Task string
	// History is sent ahead of Task so the model sees the earlier turns of
	// an interactive session.
	History []types.Message
}

type RunResult struct {
	Plan    types.Plan
	RawPlan string
	Log     []types.LogEntry
	Summary string

	PlanUsage     *types.UsageSummary
	FollowupUsage *types.UsageSummary
	Usage         types.UsageSummary
}

// Counts tallies the execution log by status.
func (r RunResult) Counts() (ok, failed, skipped int) {
	for _, e := range r.Log {
		switch e.Status {
		case types.StatusOK:
			ok++
		case types.StatusError:
			failed++
		case types.StatusSkipped:
			skipped++
		}
	}
	return ok, failed, skipped
}

// Transcript renders a finished turn as history for the next one.
func (r RunResult) Transcript(task string) []types.Message {
	var out []types.Message
	if task != "" {
		out = append(out, types.Message{Role: types.UserRole, Content: task})
	}
	if r.RawPlan != "" {
		out = append(out, types.Message{Role: types.AssistantRole, Content: r.RawPlan})
	}

	if len(r.Log) > 0 || r.Summary != "" {
		var b strings.Builder
		if len(r.Log) > 0 {
			b.WriteString("Execution log:\n")
			for i, e := range r.Log {
				b.WriteString(formatEntry(i+1, e))
			}
		}
		if r.Summary != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(r.Summary)
		}
		out = append(out, types.Message{Role: types.AssistantRole, Content: strings.TrimRight(b.String(), "\n")})
	}

	return out
}

type PlanExecuteAgent struct {
	*core.BaseAgent
	LLM       LLM
	Executor  Executor
	Confirmer core.Confirmer
	Policy    core.Policy
	Budget    core.Budget
	Settings  Settings
	Tools     types.ToolContext
}

func NewPlanExecuteAgent(clk core.Clock, llm LLM, exec Executor, settings Settings, tc types.ToolContext, opts ...core.BaseOption) *PlanExecuteAgent {
	base := core.NewBaseAgent(clk)
	if tc.Root != "" {
		base.WorkDir = tc.Root
	}
	for _, o := range opts {
		o(base)
	}

	if settings.Model == "" {
		settings.Model = DefaultModel
	}
	if settings.Platform == "" {
		settings.Platform = runtime.GOOS + "/" + runtime.GOARCH
	}

	return &PlanExecuteAgent{
		BaseAgent: base,
		LLM:       llm,
		Executor:  exec,
		Policy:    core.NewDefaultPolicy(core.PolicyLimits{}),
		Budget:    core.NewDefaultBudget(core.BudgetLimits{}),
		Settings:  settings,
		Tools:     tc,
	}
}

// Run plans the task, executes the plan action by action and summarizes the
// outcome. Declined and failing actions are recorded and never stop the
// plan; only planning errors and a failed summary request are returned.
func (a *PlanExecuteAgent) Run(ctx context.Context, req RunRequest, sink types.EventSink) (RunResult, error) {
	if sink == nil {
		sink = types.Discard
	}
	emit := func(ev types.Event) {
		a.record(ev)
		sink(ev)
	}

	task := currentTask(req)
	if task == "" {
		return RunResult{}, errors.New("task is required")
	}

	start := a.StartTimer()
	defer a.FinishTimer(start)

	a.Budget.Start(start)
	a.LogTask(task)

	var result RunResult

	plan, err := a.plan(ctx, req, &result, emit)
	if err != nil {
		return result, err
	}
	result.Plan = plan

	emit(types.Event{Kind: types.EventPlan, Message: planHeadline(plan), Plan: &plan, Total: len(plan.Actions)})
	if plan.Response != "" {
		kind := types.EventInfo
		if len(plan.Actions) == 0 {
			kind = types.EventResult
		}
		emit(types.Event{Kind: kind, Message: plan.Response})
	}

	execLog := a.NewExecLog()
	total := len(plan.Actions)
	for i, action := range plan.Actions {
		index := i + 1
		emit(types.Event{Kind: types.EventAction, Message: action.Describe(), Action: action, Index: index, Total: total})

		entry := a.execute(ctx, action)
		result.Log = append(result.Log, entry)
		execLog.AppendString(formatEntry(index, entry))

		emit(outcomeEvent(index, total, action, entry))
	}

	if len(result.Log) > 0 {
		if err := a.followup(ctx, task, execLog.String(), &result, emit); err != nil {
			return result, err
		}
	}

	result.Usage = usage.Sum(a.Settings.Model, result.PlanUsage, result.FollowupUsage)
	if result.Usage.TotalTokens > 0 {
		runUsage := result.Usage
		emit(types.Event{Kind: types.EventUsage, Phase: types.PhaseRun, Usage: &runUsage, Message: usage.Format(runUsage)})
	}

	return result, nil
}

func (a *PlanExecuteAgent) plan(ctx context.Context, req RunRequest, result *RunResult, emit types.EventSink) (types.Plan, error) {
	messages := []types.Message{{Role: types.SystemRole, Content: SystemPrompt(a.Settings.Platform, a.Tools.Root)}}
	messages = append(messages, req.History...)
	if task := strings.TrimSpace(req.Task); task != "" {
		messages = append(messages, types.Message{Role: types.UserRole, Content: task})
	}

	a.Debug.Debugw("plan request", "model", a.Settings.Model, "messages", len(messages))

	resp, err := a.LLM.Chat(ctx, client.ChatRequest{
		Model:       a.Settings.Model,
		Messages:    messages,
		Temperature: a.Settings.Temperature,
		JSONMode:    true,
	})
	if err != nil {
		a.Debug.Errorf("plan request failed: %v", err)
		return types.Plan{}, fmt.Errorf("plan request failed: %w", err)
	}

	result.RawPlan = resp.Content
	result.PlanUsage = a.account(resp, types.PhasePlan, emit)

	a.Debug.Debugf("raw plan:\n%s", resp.Content)
	a.WriteArtifact(PlanArtifact, []byte(resp.Content))

	plan, err := ParsePlan(resp.Content)
	if err != nil {
		a.Debug.Errorf("plan rejected: %v", err)
		return types.Plan{}, err
	}

	if normalized, err := json.MarshalIndent(plan, "", "  "); err == nil {
		a.WriteArtifact(NormalizedPlanArtifact, normalized)
	}

	return plan, nil
}

func (a *PlanExecuteAgent) execute(ctx context.Context, action types.Action) types.LogEntry {
	entry := types.LogEntry{Description: action.Describe()}

	if err := ctx.Err(); err != nil {
		return skipped(entry, "run cancelled: "+err.Error())
	}

	if err := a.Policy.AllowAction(a.Tools, action); err != nil {
		return skipped(entry, err.Error())
	}

	if !a.Settings.AutoApprove {
		if a.Confirmer == nil {
			return skipped(entry, "no approval available")
		}
		approved, err := a.Confirmer.Confirm(ctx, action)
		if err != nil {
			return skipped(entry, "approval failed: "+err.Error())
		}
		if !approved {
			return skipped(entry, "declined by user")
		}
	}

	if err := a.Budget.AllowAction(a.Clock.Now()); err != nil {
		return failed(entry, err)
	}

	out, err := a.Executor.Execute(ctx, a.Tools, action)
	if err != nil {
		return failed(entry, err)
	}

	entry.Status = types.StatusOK
	entry.Output = out
	return entry
}

func (a *PlanExecuteAgent) followup(ctx context.Context, task, execLog string, result *RunResult, emit types.EventSink) error {
	if err := ctx.Err(); err != nil {
		emit(types.Event{Kind: types.EventInfo, Message: "Skipping summary: run cancelled"})
		return nil
	}
	if err := a.Budget.AllowTokens(a.Clock.Now()); err != nil {
		emit(types.Event{Kind: types.EventInfo, Message: "Skipping summary: " + err.Error()})
		return nil
	}

	resp, err := a.LLM.Chat(ctx, client.ChatRequest{
		Model:       a.Settings.Model,
		Messages:    FollowupMessages(task, execLog),
		Temperature: a.Settings.FollowupTemperature,
	})
	if err != nil {
		a.Debug.Errorf("summary request failed: %v", err)
		return fmt.Errorf("summary request failed: %w", err)
	}

	result.FollowupUsage = a.account(resp, types.PhaseFollowup, emit)

	summary := strings.TrimSpace(resp.Content)
	result.Summary = summary
	if summary != "" {
		emit(types.Event{Kind: types.EventResult, Message: summary})
	}
	return nil
}

// account prices one model response, charges the token budget and reports
// it. Responses without usage are not charged.
func (a *PlanExecuteAgent) account(resp client.ChatResponse, phase types.Phase, emit types.EventSink) *types.UsageSummary {
	model := resp.Model
	if model == "" {
		model = a.Settings.Model
	}

	summary := usage.Summarize(model, resp.Usage, a.Settings.Pricing)
	if summary == nil {
		a.Debug.Debugw("no usage reported", "phase", phase)
		return nil
	}

	a.Budget.ChargeTokens(summary.TotalTokens, a.Clock.Now())
	emit(types.Event{Kind: types.EventUsage, Phase: phase, Usage: summary, Message: usage.Format(*summary)})
	return summary
}

func (a *PlanExecuteAgent) record(ev types.Event) {
	switch ev.Kind {
	case types.EventPlan:
		a.Out.Infof("Plan: %s", ev.Message)
	case types.EventAction:
		a.Out.Infof("[%d/%d] %s", ev.Index, ev.Total, ev.Message)
	case types.EventResult, types.EventInfo:
		a.Out.Info(ev.Message)
	case types.EventError:
		a.Out.Errorf("%s", ev.Message)
	case types.EventUsage:
		a.Out.Infof("Usage (%s): %s", ev.Phase, ev.Message)
	}

	fields := []any{"kind", ev.Kind}
	if ev.Index > 0 {
		fields = append(fields, "index", ev.Index, "total", ev.Total)
	}
	if ev.Entry != nil {
		fields = append(fields, "status", ev.Entry.Status)
	}
	if ev.Phase != "" {
		fields = append(fields, "phase", ev.Phase)
	}
	a.Debug.Debugw(ev.Message, fields...)
}

func outcomeEvent(index, total int, action types.Action, entry types.LogEntry) types.Event {
	ev := types.Event{Index: index, Total: total, Action: action, Entry: &entry, Message: entry.Detail()}
	switch entry.Status {
	case types.StatusOK:
		ev.Kind = types.EventResult
	case types.StatusError:
		ev.Kind = types.EventError
	default:
		ev.Kind = types.EventInfo
		ev.Message = "Skipped: " + entry.Error
	}
	return ev
}

func skipped(entry types.LogEntry, reason string) types.LogEntry {
	entry.Status = types.StatusSkipped
	entry.Error = reason
	return entry
}

func failed(entry types.LogEntry, err error) types.LogEntry {
	entry.Status = types.StatusError
	entry.Error = err.Error()
	return entry
}

func formatEntry(index int, entry types.LogEntry) string {
	detail := entry.Detail()
	if len(detail) > maxEntryDetailBytes {
		detail = truncateUTF8(detail, maxEntryDetailBytes) + "\n…(output truncated)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d. [%s] %s\n", index, entry.Status, entry.Description)
	if detail != "" {
		for _, line := range strings.Split(strings.TrimRight(detail, "\n"), "\n") {
			b.WriteString("   ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func planHeadline(p types.Plan) string {
	summary := p.Summary
	if summary == "" {
		summary = "(no summary)"
	}
	return fmt.Sprintf("%s (%d action(s))", summary, len(p.Actions))
}

// currentTask is the task text, or the last user turn when resuming a
// session without a new task.
func currentTask(req RunRequest) string {
	if task := strings.TrimSpace(req.Task); task != "" {
		return task
	}
	for i := len(req.History) - 1; i >= 0; i-- {
		if req.History[i].Role == types.UserRole {
			return strings.TrimSpace(req.History[i].Content)
		}
	}
	return ""
}
