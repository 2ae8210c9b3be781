package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOllamaProvider(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOllamaProvider(OllamaConfig{ServerURL: server.URL, Model: "qwen3:8b"})
	require.NoError(t, err)
	return p
}

func TestOllamaProvider_HappyPath(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":             "qwen3:8b",
			"created_at":        "2025-01-01T00:00:00Z",
			"message":           map[string]any{"role": "assistant", "content": "\n" + questionArray + "\n"},
			"done":              true,
			"done_reason":       "stop",
			"prompt_eval_count": 12,
			"eval_count":        34,
		})
	}
	p := newTestOllamaProvider(t, handler)

	resp, err := p.Generate(context.Background(), Request{
		System:   "You write quiz questions.",
		Messages: []Message{{Role: RoleUser, Content: "Generate 1 question."}},
	})
	require.NoError(t, err)
	assert.Equal(t, questionArray, resp.Text())
	assert.Equal(t, "qwen3:8b", resp.Model)
	assert.Equal(t, "end", resp.StopReason)

	assert.Equal(t, "qwen3:8b", body.Model)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "user", body.Messages[1].Role)
	assert.Equal(t, "Generate 1 question.", body.Messages[1].Content)
}

func TestOllamaProvider_ServerDown(t *testing.T) {
	p := newTestOllamaProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var unavail *ErrProviderUnavailable
	require.True(t, errors.As(err, &unavail), "got %T (%v)", err, err)
	assert.Contains(t, err.Error(), "ollama at http://")
}

func TestOllamaDefaults(t *testing.T) {
	p, err := NewOllamaProvider(OllamaConfig{})
	require.NoError(t, err)
	assert.Equal(t, defaultOllamaModel, p.ModelID())
	assert.Equal(t, defaultOllamaServerURL, p.serverURL)
}

func TestOllamaUsage(t *testing.T) {
	u := ollamaUsage(map[string]any{"PromptTokens": 10, "CompletionTokens": int64(5)})
	assert.Equal(t, Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, u)
	assert.Equal(t, Usage{}, ollamaUsage(nil))
}
