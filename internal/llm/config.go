package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderBedrock    = "bedrock"
	ProviderOllama     = "ollama"
	ProviderMock       = "mock"
)

// Providers lists every supported provider name.
var Providers = []string{
	ProviderAnthropic, ProviderOpenAI, ProviderGemini,
	ProviderOpenRouter, ProviderBedrock, ProviderOllama, ProviderMock,
}

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use. See Providers.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Bedrock    BedrockConfig
	Ollama     OllamaConfig
	Retry      RetryConfig

	// Timeout bounds a single generation call including retries.
	// Default: 2m.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for OpenAI-compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.5-flash"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// BedrockConfig holds configuration for Bedrock's OpenAI-compatible
// endpoint.
type BedrockConfig struct {
	APIKey          string // Bearer token.
	Model           string // Default: "openai.gpt-oss-120b-1:0"
	BaseURL         string // Default: the us-west-2 runtime endpoint.
	ReasoningEffort string // low, medium or high. Default: "medium"
}

// OllamaConfig holds configuration for a local Ollama server.
type OllamaConfig struct {
	ServerURL string // Default: "http://localhost:11434"
	Model     string // Default: "llama3.1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderBedrock,
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash",
		},
		Bedrock: BedrockConfig{
			Model:           defaultBedrockModel,
			BaseURL:         defaultBedrockBaseURL,
			ReasoningEffort: defaultBedrockEffort,
		},
		Ollama: OllamaConfig{
			ServerURL: defaultOllamaServerURL,
			Model:     defaultOllamaModel,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 2 * time.Minute,
	}
}

// DiscoverConfig checks the vendors' standard env vars in priority order
// (Bedrock → Gemini → OpenAI → Anthropic → OpenRouter) and fills cfg for
// the first provider whose key is found. It returns false, leaving cfg
// untouched, if none is set.
func DiscoverConfig(cfg Config) (Config, bool) {
	if k := os.Getenv("AWS_BEARER_TOKEN_BEDROCK"); k != "" {
		cfg.Provider = ProviderBedrock
		cfg.Bedrock.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}
	return cfg, false
}

// HasCredentials reports whether the selected provider has what it needs
// to authenticate. Ollama and mock need nothing.
func (c Config) HasCredentials() bool {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic.APIKey != ""
	case ProviderOpenAI:
		return c.OpenAI.APIKey != ""
	case ProviderGemini:
		return c.Gemini.APIKey != ""
	case ProviderOpenRouter:
		return c.OpenRouter.APIKey != ""
	case ProviderBedrock:
		return c.Bedrock.APIKey != ""
	default:
		return true
	}
}

// Validate checks that the selected provider is known and has its
// required credentials.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if !c.HasCredentials() {
			return fmt.Errorf("llm.%s.api_key (RUBRIX_LLM_%s_API_KEY) is required for the %s provider",
				c.Provider, strings.ToUpper(c.Provider), c.Provider)
		}
	case ProviderBedrock:
		if !c.HasCredentials() {
			return fmt.Errorf("a bearer token is required for the bedrock provider: run `rubrix auth login` or set AWS_BEARER_TOKEN_BEDROCK")
		}
		switch c.Bedrock.ReasoningEffort {
		case "", "low", "medium", "high":
		default:
			return fmt.Errorf("invalid bedrock reasoning effort %q (want low, medium or high)", c.Bedrock.ReasoningEffort)
		}
	case ProviderOllama, ProviderMock:
		// No credentials needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("llm timeout must not be negative")
	}
	return nil
}
