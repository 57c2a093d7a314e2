package internal

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LevelSet map[zapcore.Level]bool

func (ls LevelSet) Enabled(l zapcore.Level) bool {
	return ls[l]
}

// ConsoleLevels returns the levels routed to stdout. Debug output is opt-in.
func ConsoleLevels(debug bool) LevelSet {
	levels := LevelSet{zapcore.InfoLevel: true}
	if debug {
		levels[zapcore.DebugLevel] = true
	}
	return levels
}

// InitLogger installs the global console logger used to render run events.
func InitLogger(levels LevelSet) {
	zap.ReplaceGlobals(NewConsoleLogger(levels, os.Stdout, os.Stderr))
}

// NewConsoleLogger sends the allowed levels to out and WARN and above to
// errOut, message text only.
func NewConsoleLogger(levels LevelSet, out, errOut io.Writer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:  "msg",
		EncodeLevel: zapcore.CapitalLevelEncoder,
		EncodeTime:  zapcore.ISO8601TimeEncoder,
	}

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	stdoutCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(out)), zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l < zapcore.WarnLevel && levels.Enabled(l)
	}))

	stderrCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(errOut)), zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.WarnLevel
	}))

	return zap.New(zapcore.NewTee(stdoutCore, stderrCore))
}
