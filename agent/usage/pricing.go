package usage

import "strings"

// Price is USD per million tokens. A zero CachedInput bills cached prompt
// tokens at the Input rate.
type Price struct {
	Input       float64 `yaml:"input" json:"input"`
	Output      float64 `yaml:"output" json:"output"`
	CachedInput float64 `yaml:"cached_input" json:"cached_input"`
}

func (p Price) cachedRate() float64 {
	if p.CachedInput > 0 {
		return p.CachedInput
	}
	return p.Input
}

var defaultPrices = map[string]Price{
	"gpt-4o":        {Input: 2.50, Output: 10.00, CachedInput: 1.25},
	"gpt-4o-mini":   {Input: 0.15, Output: 0.60, CachedInput: 0.075},
	"gpt-4.1":       {Input: 2.00, Output: 8.00, CachedInput: 0.50},
	"gpt-4.1-mini":  {Input: 0.40, Output: 1.60, CachedInput: 0.10},
	"gpt-4.1-nano":  {Input: 0.10, Output: 0.40, CachedInput: 0.025},
	"o3":            {Input: 2.00, Output: 8.00, CachedInput: 0.50},
	"o4-mini":       {Input: 1.10, Output: 4.40, CachedInput: 0.275},
	"gpt-5":         {Input: 1.25, Output: 10.00, CachedInput: 0.125},
	"gpt-5-mini":    {Input: 0.25, Output: 2.00, CachedInput: 0.025},
	"gpt-3.5-turbo": {Input: 0.50, Output: 1.50},
}

// DefaultPrices returns a copy of the built-in pricing table.
func DefaultPrices() map[string]Price {
	out := make(map[string]Price, len(defaultPrices))
	for k, v := range defaultPrices {
		out[k] = v
	}
	return out
}

// Lookup resolves the price for model: an exact override, then an exact
// table entry, then the longest known name that prefixes model, so
// "gpt-4o-2024-08-06" prices as "gpt-4o". Overrides win ties.
func Lookup(model string, overrides map[string]Price) (Price, bool) {
	model = strings.TrimSpace(model)
	if model == "" {
		return Price{}, false
	}

	if p, ok := overrides[model]; ok {
		return p, true
	}
	if p, ok := defaultPrices[model]; ok {
		return p, true
	}

	var (
		best    Price
		bestLen int
	)
	for _, table := range []map[string]Price{overrides, defaultPrices} {
		for name, p := range table {
			if len(name) > bestLen && strings.HasPrefix(model, name) {
				best, bestLen = p, len(name)
			}
		}
	}

	return best, bestLen > 0
}
