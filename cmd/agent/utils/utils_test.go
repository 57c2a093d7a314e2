package utils_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kardolus/chatgpt-agent/agent/planexec"
	"github.com/kardolus/chatgpt-agent/agent/types"
	"github.com/kardolus/chatgpt-agent/cmd/agent/utils"
	"github.com/kardolus/chatgpt-agent/store"
	. "github.com/onsi/gomega"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
)

func TestUnitUtils(t *testing.T) {
	spec.Run(t, "Testing the Utils", testUtils, spec.Report(report.Terminal{}))
}

func testUtils(t *testing.T, when spec.G, it spec.S) {
	it.Before(func() {
		RegisterTestingT(t)
	})

	when("ColorToAnsi()", func() {
		it("should return an empty color and reset if the input is an empty string", func() {
			color, reset := utils.ColorToAnsi("")
			Expect(color).To(Equal(""))
			Expect(reset).To(Equal(""))
		})

		it("should return an empty color and reset if the input is an unsupported color", func() {
			color, reset := utils.ColorToAnsi("unsupported")
			Expect(color).To(Equal(""))
			Expect(reset).To(Equal(""))
		})

		it("should return the correct ANSI code for red", func() {
			color, reset := utils.ColorToAnsi("red")
			Expect(color).To(Equal("\033[31m"))
			Expect(reset).To(Equal("\033[0m"))
		})

		it("should handle case-insensitivity and surrounding spaces", func() {
			color, reset := utils.ColorToAnsi("  GrEeN ")
			Expect(color).To(Equal("\033[32m"))
			Expect(reset).To(Equal("\033[0m"))
		})
	})

	when("FileToString()", func() {
		it("reads the whole file", func() {
			p := filepath.Join(t.TempDir(), "task.txt")
			Expect(os.WriteFile(p, []byte("create notes.txt\n"), 0o644)).To(Succeed())

			content, err := utils.FileToString(p)
			Expect(err).NotTo(HaveOccurred())
			Expect(content).To(Equal("create notes.txt\n"))
		})

		it("returns an error for a missing file", func() {
			_, err := utils.FileToString(filepath.Join(t.TempDir(), "missing"))
			Expect(err).To(HaveOccurred())
		})
	})

	when("FormatEvent()", func() {
		it("renders plan and action events", func() {
			Expect(utils.FormatEvent(types.Event{Kind: types.EventPlan, Message: "write a file (1 action)"}, false)).
				To(Equal("Plan: write a file (1 action)"))
			Expect(utils.FormatEvent(types.Event{Kind: types.EventAction, Message: "Create notes.txt", Index: 1, Total: 2}, false)).
				To(Equal("[1/2] Create notes.txt"))
		})

		it("renders outcomes with their status and indented detail", func() {
			entry := types.LogEntry{Status: types.StatusOK, Output: "line one\nline two\n"}
			Expect(utils.FormatEvent(types.Event{Kind: types.EventResult, Entry: &entry}, false)).
				To(Equal("  OK line one\n    line two"))

			skipped := types.LogEntry{Status: types.StatusSkipped, Error: "declined by user"}
			Expect(utils.FormatEvent(types.Event{Kind: types.EventInfo, Message: "Skipped: declined by user", Entry: &skipped}, false)).
				To(Equal("  SKIPPED declined by user"))

			empty := types.LogEntry{Status: types.StatusOK}
			Expect(utils.FormatEvent(types.Event{Kind: types.EventResult, Entry: &empty}, false)).To(Equal("  OK"))
		})

		it("colors the status when asked to", func() {
			entry := types.LogEntry{Status: types.StatusError, Error: "boom"}
			Expect(utils.FormatEvent(types.Event{Kind: types.EventError, Entry: &entry}, true)).
				To(Equal("  \033[31mERROR\033[0m boom"))
		})

		it("renders usage and plain messages", func() {
			Expect(utils.FormatEvent(types.Event{Kind: types.EventUsage, Phase: types.PhaseRun, Message: "m: 1 in / 2 out / 3 total, cost unknown"}, false)).
				To(Equal("Usage (run): m: 1 in / 2 out / 3 total, cost unknown"))
			Expect(utils.FormatEvent(types.Event{Kind: types.EventResult, Message: "All done."}, false)).To(Equal("All done."))
		})
	})

	when("NewRunRecord()", func() {
		started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		cost := 0.5
		result := planexec.RunResult{
			Log: []types.LogEntry{
				{Status: types.StatusOK, Description: "a"},
				{Status: types.StatusError, Description: "b", Error: "boom"},
				{Status: types.StatusSkipped, Description: "c"},
			},
			Usage: types.UsageSummary{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15, Cost: &cost},
		}

		it("copies counts, usage and entries", func() {
			record := utils.NewRunRecord("run-1", "task", "/work", "m", "t", started, started.Add(time.Second), result, nil)

			Expect(record.Status).To(Equal(store.StatusCompleted))
			Expect(record.OK).To(Equal(1))
			Expect(record.Failed).To(Equal(1))
			Expect(record.Skipped).To(Equal(1))
			Expect(record.TotalTokens).To(Equal(15))
			Expect(*record.Cost).To(Equal(0.5))
			Expect(record.Entries).To(HaveLen(3))
			Expect(record.Error).To(BeEmpty())
		})

		it("marks a run that returned an error as failed", func() {
			record := utils.NewRunRecord("run-1", "task", "/work", "m", "", started, started, planexec.RunResult{}, errors.New("plan request failed: nope"))

			Expect(record.Status).To(Equal(store.StatusFailed))
			Expect(record.Error).To(Equal("plan request failed: nope"))
		})
	})

	when("FormatRun()", func() {
		it("shows counts, tokens and cost", func() {
			cost := 0.00042
			line := utils.FormatRun(store.RunRecord{
				RunID:       "run-1",
				Task:        "create\nnotes.txt",
				Status:      store.StatusCompleted,
				StartedAt:   time.Now(),
				OK:          2,
				TotalTokens: 1500,
				Cost:        &cost,
			})

			Expect(line).To(ContainSubstring("run-1"))
			Expect(line).To(ContainSubstring("2 ok / 0 failed / 0 skipped"))
			Expect(line).To(ContainSubstring("1500 tokens"))
			Expect(line).To(ContainSubstring("$0.000420"))
			Expect(line).To(HaveSuffix("create notes.txt"))
		})

		it("truncates long tasks and reports unknown costs", func() {
			line := utils.FormatRun(store.RunRecord{Task: strings.Repeat("x", 100), StartedAt: time.Now()})

			Expect(line).To(ContainSubstring("cost unknown"))
			Expect(line).To(HaveSuffix(strings.Repeat("x", 59) + "…"))
		})
	})

	when("FormatEntry()", func() {
		it("indents the detail under the entry", func() {
			Expect(utils.FormatEntry(2, types.LogEntry{Status: types.StatusError, Description: "List .", Error: "boom\nagain"})).
				To(Equal("2. [ERROR] List .\n   boom\n   again"))
			Expect(utils.FormatEntry(1, types.LogEntry{Status: types.StatusSkipped, Description: "Run ls"})).
				To(Equal("1. [SKIPPED] Run ls"))
		})
	})
}
