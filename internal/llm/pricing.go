package llm

import "strings"

// ModelCost holds per-million-token pricing for a model, in USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// Prices of the friendly model names each provider accepts. They are
// resolved through the provider's alias table, so the cost table is keyed
// by the model IDs that end up in the event log.
var (
	anthropicPrices = map[string]ModelCost{
		"claude-sonnet": {3, 15},
		"claude-haiku":  {1, 5},
		"claude-opus":   {15, 75},
	}
	openaiPrices = map[string]ModelCost{
		"gpt-4o":      {2.5, 10},
		"gpt-4o-mini": {0.15, 0.6},
		"gpt-mini":    {0.4, 1.6},
		"gpt":         {2, 8},
	}
	geminiPrices = map[string]ModelCost{
		"gemini-flash":      {0.3, 2.5},
		"gemini-flash-lite": {0.1, 0.4},
		"gemini-pro":        {1.25, 10},
	}
)

var modelCosts = buildCostTable()

func buildCostTable() map[string]ModelCost {
	table := map[string]ModelCost{
		defaultBedrockModel:      {0.15, 0.6},
		"openai.gpt-oss-20b-1:0": {0.07, 0.3},
		defaultOllamaModel:       {}, // local
	}
	for _, p := range []struct {
		aliases map[string]string
		prices  map[string]ModelCost
	}{
		{anthropicModels, anthropicPrices},
		{openaiModels, openaiPrices},
		{geminiModels, geminiPrices},
	} {
		for alias, cost := range p.prices {
			table[resolveModel(alias, p.aliases)] = cost
		}
	}
	return table
}

// LookupCost returns the pricing for a model ID as reported by a provider,
// or nil if unknown. An OpenRouter vendor prefix ("google/") is ignored and
// a dated snapshot ("gpt-4o-mini-2024-07-18") is priced as its base model.
func LookupCost(modelID string) *ModelCost {
	id := modelID
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	if c, ok := modelCosts[id]; ok {
		return &c
	}

	base := ""
	for known := range modelCosts {
		if strings.HasPrefix(id, known+"-") && len(known) > len(base) {
			base = known
		}
	}
	if base == "" {
		return nil
	}
	c := modelCosts[base]
	return &c
}
