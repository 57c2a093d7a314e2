package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultExecLogMaxBytes = 64 * 1024

type BaseAgent struct {
	Clock   Clock
	WorkDir string

	Out   *zap.SugaredLogger
	Debug *zap.SugaredLogger

	SyncOut   func()
	SyncDebug func()

	// ArtifactDir receives plan.json and plan.normalized.json when set.
	ArtifactDir string

	execLogMaxBytes int
}

type BaseOption func(*BaseAgent)

func WithWorkDir(d string) BaseOption {
	return func(b *BaseAgent) {
		d = strings.TrimSpace(d)
		if d != "" {
			b.WorkDir = d
		}
	}
}

func WithHumanLogger(l *zap.SugaredLogger, sync func()) BaseOption {
	return func(b *BaseAgent) {
		if l != nil {
			b.Out = l
		}
		if sync != nil {
			b.SyncOut = sync
		}
	}
}

func WithDebugLogger(l *zap.SugaredLogger, sync func()) BaseOption {
	return func(b *BaseAgent) {
		if l != nil {
			b.Debug = l
		}
		if sync != nil {
			b.SyncDebug = sync
		}
	}
}

func WithArtifactDir(dir string) BaseOption {
	return func(b *BaseAgent) { b.ArtifactDir = dir }
}

// WithLogs routes both file loggers and plan artifacts into l.
func WithLogs(l *Logs) BaseOption {
	return func(b *BaseAgent) {
		if l == nil {
			return
		}
		WithHumanLogger(l.HumanLogger, func() { _ = l.HumanZap.Sync() })(b)
		WithDebugLogger(l.DebugLogger, func() { _ = l.DebugZap.Sync() })(b)
		b.ArtifactDir = l.Dir
	}
}

func WithExecLogMaxBytes(n int) BaseOption {
	return func(b *BaseAgent) {
		if n > 0 {
			b.execLogMaxBytes = n
		}
	}
}

func NewBaseAgent(clock Clock) *BaseAgent {
	return &BaseAgent{
		Clock:           clock,
		WorkDir:         ".",
		Out:             zap.NewNop().Sugar(),
		Debug:           zap.NewNop().Sugar(),
		execLogMaxBytes: defaultExecLogMaxBytes,
	}
}

func (b *BaseAgent) LogTask(task string) {
	b.Out.Infof("Task: %s", task)
	b.Debug.Debugw("run started", "task", task, "workdir", b.WorkDir)
}

func (b *BaseAgent) StartTimer() time.Time {
	return b.Clock.Now()
}

func (b *BaseAgent) FinishTimer(start time.Time) {
	dur := b.Clock.Now().Sub(start)
	b.Out.Infof("Total duration: %s", dur)
	b.Debug.Infof("Total duration: %s", dur)

	if b.SyncOut != nil {
		b.SyncOut()
	}
	if b.SyncDebug != nil {
		b.SyncDebug()
	}
}

// NewExecLog returns an empty execution-log buffer sized for the summary
// prompt.
func (b *BaseAgent) NewExecLog() *TranscriptBuffer {
	return NewTranscriptBuffer(b.execLogMaxBytes)
}

// WriteArtifact stores data under ArtifactDir. Failures are logged and
// otherwise ignored; artifacts never affect a run.
func (b *BaseAgent) WriteArtifact(name string, data []byte) {
	if b.ArtifactDir == "" {
		return
	}
	if err := os.MkdirAll(b.ArtifactDir, 0o755); err != nil {
		b.Debug.Warnf("artifact dir %s: %v", b.ArtifactDir, err)
		return
	}
	p := filepath.Join(b.ArtifactDir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		b.Debug.Warnf("write artifact %s: %v", p, err)
	}
}
