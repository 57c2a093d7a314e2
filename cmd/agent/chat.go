package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/kardolus/chatgpt-agent/agent/types"
	"github.com/kardolus/chatgpt-agent/cache"
	"github.com/kardolus/chatgpt-agent/config"
	"github.com/kardolus/chatgpt-agent/history"
	"github.com/kardolus/chatgpt-agent/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const chatHistoryFile = "chat_history"

func runChat(_ *cobra.Command, _ []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	hs, err := history.New()
	if err != nil {
		return err
	}
	hm := history.NewHistory(hs)

	threads, err := cache.NewDefault()
	if err != nil {
		return err
	}

	thread := chatThread(s.cfg, threads, s.root)
	if err := threads.SetThread(s.root, thread); err != nil {
		zap.S().Warnf("failed to remember thread: %v", err)
	}

	var historyFile string
	if cacheHome, err := internal.GetCacheHome(); err == nil {
		historyFile = filepath.Join(cacheHome, chatHistoryFile)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          config.FormatPrompt(s.cfg.CommandPrompt, 0, 0, time.Now()),
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	confirmer := &readlineConfirmer{rl: rl}

	fmt.Printf("Thread %s in %s. Type 'clear' to reset the history, 'exit' to quit.\n", thread, s.root)

	var counter, tokens int
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if strings.TrimSpace(line) == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		task := strings.TrimSpace(line)
		switch task {
		case "":
			continue
		case "exit", "quit", ":q":
			return nil
		case "clear":
			if err := hm.Delete(thread); err != nil {
				zap.S().Warnf("failed to clear history: %v", err)
			} else {
				fmt.Println("History cleared")
			}
			continue
		}

		var past []types.Message
		if !s.cfg.OmitHistory {
			if past, err = hm.Messages(thread); err != nil {
				zap.S().Warnf("failed to read history: %v", err)
			}
		}

		ctx, stop := interruptContext()
		result, err := s.run(ctx, task, past, thread, confirmer)
		stop()
		if err != nil {
			zap.S().Error(err)
		}

		if !s.cfg.OmitHistory {
			if err := hm.Append(thread, result.Transcript(task)...); err != nil {
				zap.S().Warnf("failed to save history: %v", err)
			}
		}

		counter++
		tokens += result.Usage.TotalTokens
		rl.SetPrompt(config.FormatPrompt(s.cfg.CommandPrompt, counter, tokens, time.Now()))
	}
}

// chatThread picks the thread for a chat session: --thread wins, --resume
// reuses the last thread of this workspace, anything else starts fresh.
func chatThread(cfg config.Config, threads *cache.Cache, root string) string {
	if viper.IsSet("thread") {
		return cfg.Thread
	}
	if resumeThread {
		if last, err := threads.GetThread(root); err == nil && last != "" {
			return last
		}
		zap.S().Info("No previous thread for this workspace, starting a new one")
	}
	return internal.GenerateUniqueSlug("chat-")
}
