// Package config loads rubrix settings from flags, RUBRIX_* environment
// variables, an optional rubrix.yaml file and built-in defaults, in that
// order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/rubrix/internal/llm"
)

const (
	envPrefix  = "RUBRIX"
	configName = "rubrix"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"provider":      "llm.provider",
	"model":         "llm.model",
	"db":            "db.path",
	"knowledge-dir": "knowledge.dir",
	"log-format":    "log.format",
}

// vendorEnv holds the standard API key variable for each provider. They
// are consulted when no RUBRIX_* key is configured.
var vendorEnv = map[string]string{
	llm.ProviderAnthropic:  "ANTHROPIC_API_KEY",
	llm.ProviderOpenAI:     "OPENAI_API_KEY",
	llm.ProviderGemini:     "GEMINI_API_KEY",
	llm.ProviderOpenRouter: "OPENROUTER_API_KEY",
	llm.ProviderBedrock:    "AWS_BEARER_TOKEN_BEDROCK",
}

// Config is the resolved application configuration.
type Config struct {
	LLM        LLMSettings
	Knowledge  KnowledgeConfig
	DB         DBConfig
	Auth       AuthConfig
	Export     ExportConfig
	Log        LogConfig
	Generation GenerationConfig

	// File is the config file that was read, or "" if none was found.
	File string
}

// LLMSettings is the llm section. Provider-specific settings are kept by
// provider name.
type LLMSettings struct {
	Provider    string
	ProviderSet bool // Provider came from a flag, env var or file.
	Model       string
	Timeout     time.Duration
	Providers   map[string]ProviderSettings
	Retry       llm.RetryConfig

	ReasoningEffort string // Bedrock only.
}

// ProviderSettings are the per-provider llm.<name>.* keys.
type ProviderSettings struct {
	APIKey  string
	Model   string
	BaseURL string
}

type KnowledgeConfig struct {
	Dir string
}

type DBConfig struct {
	Path string
}

type AuthConfig struct {
	URL string
}

type ExportConfig struct {
	DOCXURL string
}

// LogConfig selects the log level (debug, info, warn, error) and the
// encoding (console or json).
type LogConfig struct {
	Level  string
	Format string
}

type GenerationConfig struct {
	MaxExamples int
	MaxTokens   int
	Temperature float64
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file path. When set it must exist.
	File string

	// Flags are bound to config keys by name (see flagKeys). A --verbose
	// flag forces the debug log level.
	Flags *pflag.FlagSet

	// SearchPaths overrides the directories searched for rubrix.yaml.
	SearchPaths []string
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		paths := opts.SearchPaths
		if paths == nil {
			paths = defaultSearchPaths()
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if opts.Flags != nil {
		if verbose, err := opts.Flags.GetBool("verbose"); err == nil && verbose {
			cfg.Log.Level = "debug"
		}
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	// llm.provider has no default so IsSet tells whether it was chosen.
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
	v.SetDefault("llm.bedrock.reasoning_effort", d.Bedrock.ReasoningEffort)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	v.SetDefault("generation.max_examples", 3)
	v.SetDefault("generation.max_tokens", 8192)
	v.SetDefault("generation.temperature", 0.7)

	for _, p := range llm.Providers {
		v.SetDefault("llm."+p+".api_key", "")
		v.SetDefault("llm."+p+".model", "")
		v.SetDefault("llm."+p+".base_url", "")
	}
	v.SetDefault("llm.model", "")
	v.SetDefault("knowledge.dir", "")
	v.SetDefault("db.path", "")
	v.SetDefault("auth.url", "")
	v.SetDefault("export.docx_url", "")
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		LLM: LLMSettings{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			ProviderSet: v.IsSet("llm.provider"),
			Model:       v.GetString("llm.model"),
			Timeout:     v.GetDuration("llm.timeout"),
			Providers:   make(map[string]ProviderSettings, len(llm.Providers)),
			Retry: llm.RetryConfig{
				MaxAttempts: v.GetInt("llm.retry.max_attempts"),
				InitialWait: v.GetDuration("llm.retry.initial_wait"),
				MaxWait:     v.GetDuration("llm.retry.max_wait"),
				Multiplier:  v.GetFloat64("llm.retry.multiplier"),
			},
			ReasoningEffort: v.GetString("llm.bedrock.reasoning_effort"),
		},
		Knowledge: KnowledgeConfig{Dir: v.GetString("knowledge.dir")},
		DB:        DBConfig{Path: v.GetString("db.path")},
		Auth:      AuthConfig{URL: v.GetString("auth.url")},
		Export:    ExportConfig{DOCXURL: v.GetString("export.docx_url")},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Generation: GenerationConfig{
			MaxExamples: v.GetInt("generation.max_examples"),
			MaxTokens:   v.GetInt("generation.max_tokens"),
			Temperature: v.GetFloat64("generation.temperature"),
		},
		File: v.ConfigFileUsed(),
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llm.DefaultConfig().Provider
	}
	for _, p := range llm.Providers {
		cfg.LLM.Providers[p] = ProviderSettings{
			APIKey:  v.GetString("llm." + p + ".api_key"),
			Model:   v.GetString("llm." + p + ".model"),
			BaseURL: v.GetString("llm." + p + ".base_url"),
		}
	}
	return cfg
}

// LLMConfig converts the llm section into an llm.Config. Keys missing from
// rubrix settings are filled from the vendors' standard variables; when no
// provider was chosen explicitly and the default has no credentials, the
// first provider with a vendor key is selected.
func (c *Config) LLMConfig() llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Provider = c.LLM.Provider
	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	if c.LLM.Retry.MaxAttempts > 0 {
		cfg.Retry = c.LLM.Retry
	}
	if c.LLM.ReasoningEffort != "" {
		cfg.Bedrock.ReasoningEffort = c.LLM.ReasoningEffort
	}

	for name, s := range c.LLM.Providers {
		if s.APIKey == "" {
			if env, ok := vendorEnv[name]; ok {
				s.APIKey = os.Getenv(env)
			}
		}
		apply(&cfg, name, s)
	}

	// llm.model applies to the selected provider unless llm.<name>.model is set.
	if c.LLM.Model != "" && c.LLM.Providers[cfg.Provider].Model == "" {
		apply(&cfg, cfg.Provider, ProviderSettings{Model: c.LLM.Model})
	}

	if !c.LLM.ProviderSet && !cfg.HasCredentials() {
		if found, ok := llm.DiscoverConfig(cfg); ok {
			cfg = found
		}
	}
	return cfg
}

// apply copies the non-empty fields of s into the named provider's section.
func apply(cfg *llm.Config, name string, s ProviderSettings) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	switch name {
	case llm.ProviderAnthropic:
		set(&cfg.Anthropic.APIKey, s.APIKey)
		set(&cfg.Anthropic.Model, s.Model)
		set(&cfg.Anthropic.BaseURL, s.BaseURL)
	case llm.ProviderOpenAI:
		set(&cfg.OpenAI.APIKey, s.APIKey)
		set(&cfg.OpenAI.Model, s.Model)
		set(&cfg.OpenAI.BaseURL, s.BaseURL)
	case llm.ProviderGemini:
		set(&cfg.Gemini.APIKey, s.APIKey)
		set(&cfg.Gemini.Model, s.Model)
	case llm.ProviderOpenRouter:
		set(&cfg.OpenRouter.APIKey, s.APIKey)
		set(&cfg.OpenRouter.Model, s.Model)
		set(&cfg.OpenRouter.BaseURL, s.BaseURL)
	case llm.ProviderBedrock:
		set(&cfg.Bedrock.APIKey, s.APIKey)
		set(&cfg.Bedrock.Model, s.Model)
		set(&cfg.Bedrock.BaseURL, s.BaseURL)
	case llm.ProviderOllama:
		set(&cfg.Ollama.Model, s.Model)
		set(&cfg.Ollama.ServerURL, s.BaseURL)
	}
}

func defaultSearchPaths() []string {
	paths := []string{"."}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return append(paths, filepath.Join(dir, configName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", configName))
	}
	return paths
}
