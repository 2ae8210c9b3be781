package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/rubrix/internal/store"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordedEvents) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(resp1.Content))
	assert.Equal(t, 10, resp1.Usage.InputTokens)
	assert.Equal(t, "end", resp1.StopReason)

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(resp2.Content))
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail), "got %T", err)
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	_, _ = mock.Generate(context.Background(), Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "sys", mock.Calls[0].System)
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{RetryAfter: 0}})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.True(t, errors.As(err, &rl), "got %T", err)
}

func TestMockProvider_Truncated(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`[{"text":`), StopReason: "max_tokens"})

	_, err := mock.Generate(context.Background(), Request{})
	var mt *ErrMaxTokensExceeded
	require.True(t, errors.As(err, &mt), "got %T", err)
	assert.Equal(t, `[{"text":`, string(mt.Content))
}

func TestMockProvider_ModelID(t *testing.T) {
	assert.Equal(t, "mock", NewMockProvider().ModelID())
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))

	ctx = WithPurpose(ctx, "question-set")
	assert.Equal(t, "question-set", PurposeFrom(ctx))
}

func TestStreamContext(t *testing.T) {
	assert.Nil(t, streamFrom(context.Background()))

	var got string
	ctx := WithStream(context.Background(), func(delta string) { got += delta })
	fn := streamFrom(WithPurpose(ctx, "question-set"))
	require.NotNil(t, fn)
	fn("abc")
	assert.Equal(t, "abc", got)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "k"}}, false},
		{"bedrock without token", Config{Provider: ProviderBedrock}, true},
		{"bedrock with token", Config{Provider: ProviderBedrock, Bedrock: BedrockConfig{APIKey: "t"}}, false},
		{"bedrock bad effort", Config{Provider: ProviderBedrock, Bedrock: BedrockConfig{APIKey: "t", ReasoningEffort: "extreme"}}, true},
		{"ollama needs no key", Config{Provider: ProviderOllama}, false},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"negative timeout", Config{Provider: ProviderMock, Timeout: -time.Second}, true},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateNamesEnvVar(t *testing.T) {
	err := Config{Provider: ProviderOpenAI}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUBRIX_LLM_OPENAI_API_KEY")
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AWS_BEARER_TOKEN_BEDROCK", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestDiscoverConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		provider string
		found    bool
	}{
		{"nothing set", nil, ProviderBedrock, false},
		{"openai only", map[string]string{"OPENAI_API_KEY": "o"}, ProviderOpenAI, true},
		{"anthropic only", map[string]string{"ANTHROPIC_API_KEY": "a"}, ProviderAnthropic, true},
		{"openrouter only", map[string]string{"OPENROUTER_API_KEY": "r"}, ProviderOpenRouter, true},
		{"bedrock wins", map[string]string{"AWS_BEARER_TOKEN_BEDROCK": "b", "OPENAI_API_KEY": "o"}, ProviderBedrock, true},
		{"gemini before openai", map[string]string{"GEMINI_API_KEY": "g", "OPENAI_API_KEY": "o"}, ProviderGemini, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearProviderEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, found := DiscoverConfig(DefaultConfig())
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.provider, cfg.Provider)
			assert.Equal(t, found, cfg.HasCredentials())
		})
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("openai.gpt-oss-120b-1:0")
	require.NotNil(t, c)
	assert.InDelta(t, 0.15+0.6, c.Cost(1_000_000, 1_000_000), 1e-9)

	assert.Nil(t, LookupCost("no-such-model"))
	assert.Nil(t, LookupCost("gpt-4o2"))
}

func TestLookupCost_CoversResolvedAliases(t *testing.T) {
	for _, table := range []map[string]string{anthropicModels, openaiModels, geminiModels} {
		for alias, id := range table {
			assert.NotNil(t, LookupCost(id), "alias %s resolves to unpriced %s", alias, id)
		}
	}
	for _, id := range []string{DefaultConfig().Bedrock.Model, DefaultConfig().Ollama.Model} {
		assert.NotNil(t, LookupCost(id), id)
	}
}

func TestLookupCost_ReportedModelIDs(t *testing.T) {
	tests := []struct {
		model string
		want  ModelCost
	}{
		{"claude-haiku-4-5-20251001", ModelCost{1, 5}},
		{"gpt-4o-mini-2024-07-18", ModelCost{0.15, 0.6}},
		{"gpt-4.1-mini", ModelCost{0.4, 1.6}},
		{"google/gemini-2.5-flash", ModelCost{0.3, 2.5}},
		{"llama3.1", ModelCost{}},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			c := LookupCost(tt.model)
			require.NotNil(t, c)
			assert.Equal(t, tt.want, *c)
		})
	}
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	events := &recordedEvents{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(questionArray),
		Usage:   Usage{InputTokens: 12, OutputTokens: 34},
	})
	p := WithLogging(mock, ProviderMock, events, nil)

	ctx := WithPurpose(context.Background(), "question-set")
	_, err := p.Generate(ctx, Request{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "Generate 1 question"}},
	})
	require.NoError(t, err)

	require.Len(t, events.events, 1)
	e := events.events[0]
	assert.Equal(t, "mock", e.Provider)
	assert.Equal(t, "mock", e.Model)
	assert.Equal(t, "question-set", e.Purpose)
	assert.Equal(t, 12, e.InputTokens)
	assert.Equal(t, 34, e.OutputTokens)
	assert.True(t, e.Success)
	assert.Empty(t, e.ErrorMessage)
	assert.Contains(t, e.RequestBody, "[system]\nbe brief")
	assert.Contains(t, e.RequestBody, "[user]\nGenerate 1 question")
	assert.Equal(t, questionArray, e.ResponseBody)
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	events := &recordedEvents{}
	core, logs := observer.New(zap.WarnLevel)
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, ProviderMock, events, zap.New(core))

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)

	require.Len(t, events.events, 1)
	assert.False(t, events.events[0].Success)
	assert.Contains(t, events.events[0].ErrorMessage, "down")
	assert.Equal(t, 1, logs.FilterMessage("llm request failed").Len())
}

func TestLoggingProvider_KeepsTruncatedOutput(t *testing.T) {
	events := &recordedEvents{}
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`[{"text":"cut`), StopReason: "max_tokens"})
	p := WithLogging(mock, ProviderMock, events, nil)

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)
	require.Len(t, events.events, 1)
	assert.Equal(t, `[{"text":"cut`, events.events[0].ResponseBody)
}

func TestLoggingProvider_RecorderFailureIsNotFatal(t *testing.T) {
	events := &recordedEvents{err: errors.New("disk full")}
	core, logs := observer.New(zap.WarnLevel)
	p := WithLogging(NewMockProvider(ok()), ProviderMock, events, zap.New(core))

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("failed to record llm request event").Len())
}

func TestLoggingProvider_NilRecorder(t *testing.T) {
	p := WithLogging(NewMockProvider(ok()), ProviderMock, nil, nil)
	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"unknown provider", Config{Provider: "nope"}, "unknown LLM provider"},
		{"openai without key", Config{Provider: ProviderOpenAI}, "initializing openai provider"},
		{"bedrock without key", Config{Provider: ProviderBedrock}, "initializing bedrock provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.cfg, nil, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
}

func TestNewProvider_WrapsWithLoggingAndRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(func() http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				openAIError(http.StatusServiceUnavailable)(w, r)
				return
			}
			openAIReply(questionArray, "stop")(w, r)
		}
	}())
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenAI
	cfg.OpenAI = OpenAIConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: server.URL + "/v1"}
	cfg.Retry = retryConfig()

	events := &recordedEvents{}
	p, err := NewProvider(context.Background(), cfg, events, nil)
	require.NoError(t, err)

	resp, err := p.Generate(WithPurpose(context.Background(), "question-set"), Request{
		Messages: []Message{{Role: RoleUser, Content: "q"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, questionArray, string(resp.Content))

	require.Len(t, events.events, 2, "each attempt is recorded")
	assert.False(t, events.events[0].Success)
	assert.True(t, events.events[1].Success)
	assert.Equal(t, ProviderOpenAI, events.events[1].Provider)
	assert.Equal(t, "question-set", events.events[1].Purpose)
}
