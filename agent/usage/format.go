package usage

import (
	"fmt"
	"strings"

	"github.com/kardolus/chatgpt-agent/agent/types"
)

// Format renders a summary on one line, e.g.
// "gpt-4o-mini: 1200 in (200 cached) / 300 out / 1500 total, $0.000390".
func Format(s types.UsageSummary) string {
	var b strings.Builder
	if s.Model != "" {
		b.WriteString(s.Model)
		b.WriteString(": ")
	}

	fmt.Fprintf(&b, "%d in", s.PromptTokens)
	if s.CachedTokens > 0 {
		fmt.Fprintf(&b, " (%d cached)", s.CachedTokens)
	}
	fmt.Fprintf(&b, " / %d out / %d total", s.CompletionTokens, s.TotalTokens)

	if s.Cost != nil {
		fmt.Fprintf(&b, ", %s", FormatCost(*s.Cost))
	} else {
		b.WriteString(", cost unknown")
	}
	return b.String()
}

func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.6f", cost)
}
