package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kardolus/chatgpt-agent/cache"
	"github.com/kardolus/chatgpt-agent/cmd/agent/utils"
	"github.com/kardolus/chatgpt-agent/config"
	"github.com/kardolus/chatgpt-agent/history"
	"github.com/kardolus/chatgpt-agent/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	GitCommit  string
	GitVersion string
)

var (
	showVersion    bool
	setCompletions string
	taskFile       string
	resumeThread   bool
	listThreads    bool
	clearHistory   bool
	runsLimit      int
)

func main() {
	rootCmd := newRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "agent [task]",
		Short:         "Plan and execute workspace tasks with an LLM",
		Long:          "Asks a language model for a plan of file, shell and git actions, then runs it in the current workspace with your approval.",
		Args:          cobra.ArbitraryArgs,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolP("yes", "y", false, "Approve every action without asking")
	flags.Bool("allow-outside-root", false, "Allow actions to touch paths outside the workspace root")
	flags.StringP("model", "m", "", "Model used for planning and summaries")
	flags.StringP("workdir", "C", "", "Workspace root (defaults to the current directory)")
	flags.Bool("debug", false, "Print request, response and usage details")
	flags.String("thread", "", "History thread for chat and history")
	for _, name := range []string{"yes", "allow-outside-root", "model", "workdir", "debug", "thread"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print the version and exit")
	rootCmd.Flags().StringVar(&setCompletions, "set-completions", "", "Print a completion script for bash, zsh, fish or powershell")
	rootCmd.Flags().StringVarP(&taskFile, "file", "f", "", "Read the task from a file")

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session that keeps history between tasks",
		Args:  cobra.NoArgs,
		RunE:  runChat,
	}
	chatCmd.Flags().BoolVar(&resumeThread, "resume", false, "Continue the last thread used in this workspace")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List the chat models available to the configured account",
		Args:  cobra.NoArgs,
		RunE:  runModels,
	}

	runsCmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recent runs, or show the execution log of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRuns,
	}
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "Number of runs to list")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Print, list or clear chat history threads",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().BoolVar(&listThreads, "list", false, "List all threads")
	historyCmd.Flags().BoolVar(&clearHistory, "clear", false, "Delete the thread")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfig,
	}

	rootCmd.AddCommand(chatCmd, modelsCmd, runsCmd, historyCmd, configCmd)

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Printf("commit %s\nversion %s\n", GitCommit, GitVersion)
		return nil
	}

	if setCompletions != "" {
		return config.GenCompletions(cmd.Root(), setCompletions, os.Stdout)
	}

	task := strings.TrimSpace(strings.Join(args, " "))
	if taskFile != "" {
		content, err := utils.FileToString(taskFile)
		if err != nil {
			return err
		}
		task = strings.TrimSpace(strings.TrimSpace(content) + "\n\n" + task)
	}
	if task == "" {
		return errors.New("you must specify a task")
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	confirmer, closeConfirmer := newConfirmer()
	defer closeConfirmer()

	ctx, stop := interruptContext()
	defer stop()

	_, err = s.run(ctx, task, nil, "", confirmer)
	return err
}

func runModels(cmd *cobra.Command, _ []string) error {
	cm, err := loadConfig()
	if err != nil {
		return err
	}

	llm, err := newClient(cm)
	if err != nil {
		return err
	}

	models, err := llm.ListModels(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println("Available models:")
	for _, m := range models {
		fmt.Println(m)
	}
	return nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	ctx := cmd.Context()
	ledger, err := store.Open(ctx)
	if err != nil {
		return err
	}
	defer ledger.Close()

	if len(args) == 1 {
		entries, err := ledger.Entries(ctx, args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Printf("No log entries for run %s\n", args[0])
			return nil
		}
		for i, e := range entries {
			fmt.Println(utils.FormatEntry(i+1, e))
		}
		return nil
	}

	runs, err := ledger.ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		return nil
	}
	for _, r := range runs {
		fmt.Println(utils.FormatRun(r))
	}
	return nil
}

func runHistory(_ *cobra.Command, _ []string) error {
	cm, err := loadConfig()
	if err != nil {
		return err
	}

	hs, err := history.New()
	if err != nil {
		return err
	}
	hm := history.NewHistory(hs)

	root, err := resolveRoot()
	if err != nil {
		return err
	}

	c, err := cache.NewDefault()
	if err != nil {
		return err
	}

	thread := cm.Config.Thread
	if !viper.IsSet("thread") {
		if cached, err := c.GetThread(root); err == nil && cached != "" {
			thread = cached
		}
	}

	switch {
	case listThreads:
		threads, err := hm.ListThreads(thread)
		if err != nil {
			return err
		}
		for _, t := range threads {
			fmt.Println(t)
		}
	case clearHistory:
		if err := hm.Delete(thread); err != nil {
			return err
		}
		if err := c.DeleteThread(root); err != nil {
			zap.S().Warnf("failed to forget thread for %s: %v", root, err)
		}
		fmt.Printf("Deleted thread %s\n", thread)
	default:
		out, err := hm.Print(thread)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("No history for thread %s\n", thread)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Print(out)
	}
	return nil
}

func runConfig(_ *cobra.Command, _ []string) error {
	cm, err := loadConfig()
	if err != nil {
		return err
	}

	out, err := cm.ShowConfig()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signalContext(context.Background())
}
