package config

// ProviderInfo describes one supported analysis backend.
type ProviderInfo struct {
	ID           string
	Name         string
	NeedsAPIKey  bool
	JSONMode     bool // native JSON-constrained responses
	DefaultModel string
}

var Providers = []ProviderInfo{
	{
		ID:           "ollama",
		Name:         "Ollama",
		NeedsAPIKey:  false,
		JSONMode:     true,
		DefaultModel: "llama3.1:8b",
	},
	{
		ID:           "openai",
		Name:         "OpenAI",
		NeedsAPIKey:  true,
		JSONMode:     true,
		DefaultModel: "gpt-4o-mini",
	},
	{
		ID:           "anthropic",
		Name:         "Anthropic",
		NeedsAPIKey:  true,
		JSONMode:     false,
		DefaultModel: "claude-3-5-sonnet-20241022",
	},
	{
		ID:           "groq",
		Name:         "Groq",
		NeedsAPIKey:  true,
		JSONMode:     true,
		DefaultModel: "llama-3.1-70b-versatile",
	},
	{
		ID:           "openrouter",
		Name:         "OpenRouter",
		NeedsAPIKey:  true,
		JSONMode:     true,
		DefaultModel: "meta-llama/llama-3.1-70b-instruct",
	},
}

func GetProvider(id string) *ProviderInfo {
	for _, p := range Providers {
		if p.ID == id {
			return &p
		}
	}
	return nil
}
