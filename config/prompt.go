package config

import (
	"fmt"
	"strings"
	"time"
)

// FormatPrompt expands the command_prompt placeholders for the chat REPL.
func FormatPrompt(str string, counter, usage int, now time.Time) string {
	variables := map[string]string{
		"%datetime": now.Format("2006-01-02 15:04:05"),
		"%date":     now.Format("2006-01-02"),
		"%time":     now.Format("15:04:05"),
		"%counter":  fmt.Sprintf("%d", counter),
		"%usage":    fmt.Sprintf("%d", usage),
	}

	// longest keys first so %date does not eat %datetime
	for _, key := range []string{"%datetime", "%date", "%time", "%counter", "%usage"} {
		str = strings.ReplaceAll(str, key, variables[key])
	}

	str = strings.ReplaceAll(str, "\\n", "\n")

	if str != "" && !strings.HasSuffix(str, " ") {
		str += " "
	}

	return str
}
