package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kardolus/chatgpt-agent/agent/planexec"
	"github.com/kardolus/chatgpt-agent/agent/types"
	"github.com/kardolus/chatgpt-agent/agent/usage"
	"github.com/kardolus/chatgpt-agent/store"
)

const maxTaskColumn = 60

func ColorToAnsi(color string) (string, string) {
	if color == "" {
		return "", ""
	}

	color = strings.ToLower(strings.TrimSpace(color))

	reset := "\033[0m"

	switch color {
	case "red":
		return "\033[31m", reset
	case "green":
		return "\033[32m", reset
	case "yellow":
		return "\033[33m", reset
	case "blue":
		return "\033[34m", reset
	case "magenta":
		return "\033[35m", reset
	default:
		return "", ""
	}
}

func FileToString(fileName string) (string, error) {
	bytes, err := os.ReadFile(fileName)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func StatusColor(status types.Status) string {
	switch status {
	case types.StatusOK:
		return "green"
	case types.StatusError:
		return "red"
	case types.StatusSkipped:
		return "yellow"
	default:
		return ""
	}
}

// FormatEvent renders one run event as terminal text. Colors are applied
// only when color is true.
func FormatEvent(ev types.Event, color bool) string {
	paint := func(c, s string) string {
		if !color {
			return s
		}
		start, reset := ColorToAnsi(c)
		return start + s + reset
	}

	switch ev.Kind {
	case types.EventPlan:
		return paint("magenta", "Plan: ") + ev.Message
	case types.EventAction:
		return paint("blue", fmt.Sprintf("[%d/%d]", ev.Index, ev.Total)) + " " + ev.Message
	case types.EventUsage:
		return fmt.Sprintf("Usage (%s): %s", ev.Phase, ev.Message)
	}

	if ev.Entry != nil {
		status := paint(StatusColor(ev.Entry.Status), string(ev.Entry.Status))
		return indent("  "+status+" ", ev.Entry.Detail())
	}

	return ev.Message
}

func indent(prefix, text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	pad := strings.Repeat(" ", 4)

	var b strings.Builder
	b.WriteString(strings.TrimRight(prefix+lines[0], " "))
	for _, line := range lines[1:] {
		b.WriteString("\n")
		b.WriteString(pad)
		b.WriteString(line)
	}
	return b.String()
}

func FormatCounts(result planexec.RunResult) string {
	ok, failed, skipped := result.Counts()
	return fmt.Sprintf("%d ok / %d failed / %d skipped", ok, failed, skipped)
}

// NewRunRecord builds the ledger row for a finished run. runErr is the
// error returned by the agent, if any.
func NewRunRecord(runID, task, root, model, thread string, started, finished time.Time, result planexec.RunResult, runErr error) store.RunRecord {
	ok, failed, skipped := result.Counts()

	record := store.RunRecord{
		RunID:            runID,
		Task:             task,
		Root:             root,
		Model:            model,
		Thread:           thread,
		Status:           store.StatusCompleted,
		StartedAt:        started,
		FinishedAt:       finished,
		OK:               ok,
		Failed:           failed,
		Skipped:          skipped,
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		TotalTokens:      result.Usage.TotalTokens,
		CachedTokens:     result.Usage.CachedTokens,
		Cost:             result.Usage.Cost,
		Entries:          result.Log,
	}

	if runErr != nil {
		record.Status = store.StatusFailed
		record.Error = runErr.Error()
	}

	return record
}

// FormatRun renders one ledger row for `agent runs`.
func FormatRun(r store.RunRecord) string {
	cost := "cost unknown"
	if r.Cost != nil {
		cost = usage.FormatCost(*r.Cost)
	}

	task := strings.Join(strings.Fields(r.Task), " ")
	if len([]rune(task)) > maxTaskColumn {
		task = string([]rune(task)[:maxTaskColumn-1]) + "…"
	}

	return fmt.Sprintf("%s  %s  %-9s  %d ok / %d failed / %d skipped  %d tokens  %s  %s",
		r.StartedAt.Local().Format("2006-01-02 15:04:05"),
		r.RunID,
		r.Status,
		r.OK, r.Failed, r.Skipped,
		r.TotalTokens,
		cost,
		task,
	)
}

func FormatEntry(index int, e types.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. [%s] %s", index, e.Status, e.Description)
	if detail := strings.TrimRight(e.Detail(), "\n"); detail != "" {
		for _, line := range strings.Split(detail, "\n") {
			b.WriteString("\n   ")
			b.WriteString(line)
		}
	}
	return b.String()
}
