package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/kardolus/chatgpt-agent/agent/core"
	"github.com/kardolus/chatgpt-agent/agent/factory"
	"github.com/kardolus/chatgpt-agent/agent/planexec"
	"github.com/kardolus/chatgpt-agent/agent/tools"
	"github.com/kardolus/chatgpt-agent/agent/types"
	"github.com/kardolus/chatgpt-agent/api/client"
	"github.com/kardolus/chatgpt-agent/cmd/agent/utils"
	"github.com/kardolus/chatgpt-agent/config"
	"github.com/kardolus/chatgpt-agent/internal"
	"github.com/kardolus/chatgpt-agent/internal/fsio"
	"github.com/kardolus/chatgpt-agent/internal/rootlock"
	"github.com/kardolus/chatgpt-agent/store"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// loadConfig layers defaults, config.yaml, the environment and finally the
// flags that were set on the command line.
func loadConfig() (*config.Manager, error) {
	cm := config.NewManager(config.New()).WithEnvironment()

	if viper.IsSet("yes") {
		cm.Config.AutoApprove = viper.GetBool("yes")
	}
	if viper.IsSet("allow-outside-root") {
		cm.Config.AllowOutsideRoot = viper.GetBool("allow-outside-root")
	}
	if viper.IsSet("model") {
		cm.Config.Model = viper.GetString("model")
	}
	if viper.IsSet("debug") {
		cm.Config.Debug = viper.GetBool("debug")
	}
	if viper.IsSet("thread") {
		cm.Config.Thread = viper.GetString("thread")
	}

	internal.InitLogger(internal.ConsoleLevels(cm.Config.Debug))

	return cm, nil
}

func newClient(cm *config.Manager) (*client.OpenAIClient, error) {
	key, err := cm.ResolveAPIKey()
	if err != nil {
		return nil, err
	}
	return client.New(cm.Config, key), nil
}

func resolveRoot() (string, error) {
	dir := viper.GetString("workdir")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace root %s is not a directory", root)
	}
	return root, nil
}

// session holds what every agent run in one CLI invocation shares.
type session struct {
	cfg    config.Config
	root   string
	llm    *client.OpenAIClient
	exec   *tools.Executor
	logs   *core.Logs
	ledger *store.SQLiteStore
	color  bool
}

func newSession() (*session, error) {
	cm, err := loadConfig()
	if err != nil {
		return nil, err
	}

	llm, err := newClient(cm)
	if err != nil {
		return nil, err
	}

	root, err := resolveRoot()
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:   cm.Config,
		root:  root,
		llm:   llm,
		exec:  tools.NewExecutor(fsio.NewOS(), tools.NewExecShellRunner()),
		color: readline.IsTerminal(int(os.Stdout.Fd())),
	}

	if s.logs, err = core.NewLogs(); err != nil {
		zap.S().Warnf("run logs disabled: %v", err)
	}

	if s.ledger, err = store.Open(context.Background()); err != nil {
		zap.S().Warnf("run ledger disabled: %v", err)
	}

	return s, nil
}

func (s *session) Close() {
	if s.logs != nil {
		s.logs.Close()
	}
	if s.ledger != nil {
		_ = s.ledger.Close()
	}
}

// run executes one task with the workspace root locked and records it in
// the ledger.
func (s *session) run(ctx context.Context, task string, history []types.Message, thread string, confirmer core.Confirmer) (planexec.RunResult, error) {
	lock, err := rootlock.Acquire(s.root)
	if err != nil {
		return planexec.RunResult{}, fmt.Errorf("lock workspace: %w", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			zap.S().Warnf("release workspace lock: %v", err)
		}
	}()

	var opts []core.BaseOption
	if s.logs != nil {
		opts = append(opts, core.WithLogs(s.logs))
	}

	agent, err := factory.New(s.cfg, s.root, factory.Deps{
		Clock:     core.NewRealClock(),
		LLM:       s.llm,
		Executor:  s.exec,
		Confirmer: confirmer,
	}, opts...)
	if err != nil {
		return planexec.RunResult{}, err
	}

	started := time.Now()
	result, runErr := agent.Run(ctx, planexec.RunRequest{Task: task, History: history}, s.render)
	finished := time.Now()

	if len(result.Log) > 0 {
		zap.S().Infof("Done: %s", utils.FormatCounts(result))
	}

	if s.ledger != nil {
		record := utils.NewRunRecord(internal.GenerateUniqueSlug("run-"), task, s.root, agent.Settings.Model, thread, started, finished, result, runErr)
		if err := s.ledger.RecordRun(context.Background(), record); err != nil {
			zap.S().Warnf("failed to record run: %v", err)
		}
	}

	return result, runErr
}

func (s *session) render(ev types.Event) {
	line := utils.FormatEvent(ev, s.color)
	if ev.Kind == types.EventUsage && ev.Phase != types.PhaseRun {
		zap.S().Debug(line)
		return
	}
	zap.S().Info(line)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}

// readlineConfirmer asks for approval on the terminal shared with the chat
// prompt. Ctrl-C and Ctrl-D decline.
type readlineConfirmer struct {
	rl *readline.Instance
}

func (r *readlineConfirmer) Confirm(ctx context.Context, action types.Action) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	prompt := r.rl.Config.Prompt
	defer r.rl.SetPrompt(prompt)

	r.rl.SetPrompt(core.Question(action))
	line, err := r.rl.Readline()
	if err != nil {
		return false, nil
	}
	return core.IsYes(strings.TrimSpace(line)), nil
}

// newConfirmer prefers readline on a terminal and falls back to line reads
// from stdin otherwise.
func newConfirmer() (core.Confirmer, func()) {
	if readline.DefaultIsTerminal() {
		rl, err := readline.NewEx(&readline.Config{})
		if err == nil {
			return &readlineConfirmer{rl: rl}, func() { _ = rl.Close() }
		}
		zap.S().Debugf("readline unavailable: %v", err)
	}
	return core.NewPromptConfirmer(os.Stdin, os.Stdout), func() {}
}
