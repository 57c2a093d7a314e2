package usage

import "github.com/kardolus/chatgpt-agent/agent/types"

const perMillion = 1_000_000

// Summarize turns raw counters into a UsageSummary for model. Nil counters
// mean the upstream reported nothing and yield nil. A model without a price
// still gets token counts; Cost stays nil.
func Summarize(model string, counters *types.UsageCounters, overrides map[string]Price) *types.UsageSummary {
	if counters == nil {
		return nil
	}

	prompt := nonNegative(counters.PromptTokens)
	completion := nonNegative(counters.CompletionTokens)
	cached := nonNegative(counters.CachedTokens)
	if cached > prompt {
		cached = prompt
	}

	total := nonNegative(counters.TotalTokens)
	if total == 0 {
		total = prompt + completion
	}

	s := &types.UsageSummary{
		Model:            model,
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      total,
		CachedTokens:     cached,
	}

	if price, ok := Lookup(model, overrides); ok {
		cost := Cost(price, prompt, completion, cached)
		s.Cost = &cost
	}

	return s
}

// Cost bills prompt tokens net of cached ones at the input rate, cached
// tokens at the cached rate, and completion tokens at the output rate.
func Cost(p Price, prompt, completion, cached int) float64 {
	billable := prompt - cached
	return (float64(billable)*p.Input +
		float64(cached)*p.cachedRate() +
		float64(completion)*p.Output) / perMillion
}

// Sum folds per-call summaries into one run total. Nil parts are skipped.
// The total carries a cost when at least one part was priced; unpriced
// parts contribute tokens only.
func Sum(model string, parts ...*types.UsageSummary) types.UsageSummary {
	total := types.UsageSummary{Model: model}

	var (
		cost   float64
		priced bool
	)
	for _, p := range parts {
		if p == nil {
			continue
		}
		total.PromptTokens += p.PromptTokens
		total.CompletionTokens += p.CompletionTokens
		total.TotalTokens += p.TotalTokens
		total.CachedTokens += p.CachedTokens
		if p.Cost != nil {
			cost += *p.Cost
			priced = true
		}
	}

	if priced {
		total.Cost = &cost
	}
	return total
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
