package core

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kardolus/chatgpt-agent/internal"
)

const (
	TranscriptLogName = "agent.transcript.log"
	DebugLogName      = "agent.debug.jsonl"
)

// Logs holds the per-run file loggers: a human-readable transcript and a
// JSONL debug stream. Both are truncated when opened.
type Logs struct {
	Dir       string
	HumanPath string
	DebugPath string

	HumanLogger *zap.SugaredLogger
	DebugLogger *zap.SugaredLogger

	HumanZap *zap.Logger
	DebugZap *zap.Logger

	files []*os.File
}

// NewLogs opens the loggers in <cache home>/agent.
func NewLogs() (*Logs, error) {
	cacheHome, err := internal.GetCacheHome()
	if err != nil {
		return nil, err
	}
	return NewLogsIn(filepath.Join(cacheHome, "agent"))
}

func NewLogsIn(dir string) (*Logs, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	l := &Logs{
		Dir:       dir,
		HumanPath: filepath.Join(dir, TranscriptLogName),
		DebugPath: filepath.Join(dir, DebugLogName),
	}

	var err error
	if l.HumanZap, err = l.open(l.HumanPath, zapcore.InfoLevel, false); err != nil {
		return nil, err
	}
	if l.DebugZap, err = l.open(l.DebugPath, zapcore.DebugLevel, true); err != nil {
		l.Close()
		return nil, err
	}

	l.HumanLogger = l.HumanZap.Sugar()
	l.DebugLogger = l.DebugZap.Sugar()
	return l, nil
}

func (l *Logs) Close() {
	for _, z := range []*zap.Logger{l.HumanZap, l.DebugZap} {
		if z != nil {
			_ = z.Sync()
		}
	}
	for _, f := range l.files {
		_ = f.Close()
	}
	l.files = nil
}

func (l *Logs) open(path string, level zapcore.Level, json bool) (*zap.Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l.files = append(l.files, f)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	enc := zapcore.NewConsoleEncoder(encCfg)
	if json {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(f), level)), nil
}
