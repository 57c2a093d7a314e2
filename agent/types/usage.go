package types

// UsageCounters are the raw token counters reported by a model response.
type UsageCounters struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CachedTokens     int
}

// UsageSummary is the accounted usage of one model call, or of a whole run.
// Cost is nil when no price could be resolved for the model.
type UsageSummary struct {
	Model            string   `json:"model"`
	PromptTokens     int      `json:"prompt_tokens"`
	CompletionTokens int      `json:"completion_tokens"`
	TotalTokens      int      `json:"total_tokens"`
	CachedTokens     int      `json:"cached_tokens"`
	Cost             *float64 `json:"cost,omitempty"`
}
