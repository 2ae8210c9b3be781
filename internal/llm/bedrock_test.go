package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseHandler streams each delta as a chat.completion.chunk, then a usage
// chunk and [DONE].
func sseHandler(t *testing.T, gotBody *map[string]any, finish string, deltas ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gotBody != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(gotBody))
		}
		w.Header().Set("Content-Type", "text/event-stream")

		write := func(v any) {
			b, err := json.Marshal(v)
			require.NoError(t, err)
			fmt.Fprintf(w, "data: %s\n\n", b)
		}
		for i, d := range deltas {
			choice := map[string]any{"index": 0, "delta": map[string]any{"content": d}}
			if i == len(deltas)-1 {
				choice["finish_reason"] = finish
			}
			write(map[string]any{
				"id":      "chunk",
				"object":  "chat.completion.chunk",
				"model":   "openai.gpt-oss-120b-1:0",
				"choices": []any{choice},
			})
		}
		write(map[string]any{
			"id":      "chunk",
			"object":  "chat.completion.chunk",
			"model":   "openai.gpt-oss-120b-1:0",
			"choices": []any{},
			"usage":   map[string]any{"prompt_tokens": 11, "completion_tokens": 22, "total_tokens": 33},
		})
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func newTestBedrockProvider(t *testing.T, handler http.HandlerFunc) *BedrockProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewBedrockProvider(BedrockConfig{APIKey: "bearer-token", BaseURL: server.URL + "/openai/v1"})
	require.NoError(t, err)
	return p
}

func TestBedrockProvider_StreamsAndStripsReasoning(t *testing.T) {
	var body map[string]any
	p := newTestBedrockProvider(t, sseHandler(t, &body, "stop",
		"<reason", "ing>Let me think about", " recursion.</reasoning>",
		"[{\"text\":\"Q\",", "\"answers\":[]}]"))

	var streamed strings.Builder
	ctx := WithStream(context.Background(), func(d string) { streamed.WriteString(d) })

	resp, err := p.Generate(ctx, Request{Messages: []Message{{Role: RoleUser, Content: "Generate."}}})
	require.NoError(t, err)

	assert.Equal(t, `[{"text":"Q","answers":[]}]`, resp.Text())
	assert.Equal(t, resp.Text(), streamed.String())
	assert.Equal(t, 33, resp.Usage.TotalTokens)
	assert.Equal(t, "openai.gpt-oss-120b-1:0", resp.Model)
	assert.Equal(t, "end", resp.StopReason)

	assert.Equal(t, true, body["stream"])
	assert.Equal(t, "medium", body["reasoning_effort"])
	assert.Equal(t, defaultBedrockModel, body["model"])
	assert.Equal(t, map[string]any{"include_usage": true}, body["stream_options"])
}

func TestBedrockProvider_SendsBearerToken(t *testing.T) {
	var auth string
	handler := func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		sseHandler(t, nil, "stop", questionArray)(w, r)
	}
	p := newTestBedrockProvider(t, handler)

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.NoError(t, err)
	assert.Equal(t, "Bearer bearer-token", auth)
}

func TestBedrockProvider_Truncated(t *testing.T) {
	p := newTestBedrockProvider(t, sseHandler(t, nil, "length", `[{"text":"Q1"`))

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var maxTok *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &maxTok)
}

func TestBedrockProvider_OnlyReasoning(t *testing.T) {
	p := newTestBedrockProvider(t, sseHandler(t, nil, "stop", "<reasoning>hmm</reasoning>  "))

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestBedrockProvider_Unauthorized(t *testing.T) {
	p := newTestBedrockProvider(t, openAIError(http.StatusUnauthorized))

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var authErr *ErrAuth
	assert.ErrorAs(t, err, &authErr)
}

func TestNewBedrockProvider(t *testing.T) {
	_, err := NewBedrockProvider(BedrockConfig{})
	assert.Error(t, err)

	p, err := NewBedrockProvider(BedrockConfig{APIKey: "t", Model: "openai.gpt-oss-20b-1:0", ReasoningEffort: "high"})
	require.NoError(t, err)
	assert.Equal(t, "openai.gpt-oss-20b-1:0", p.ModelID())
	assert.Equal(t, "high", p.reasoningEffort)
}

func TestReasoningFilter(t *testing.T) {
	tests := []struct {
		name   string
		deltas []string
		want   string
	}{
		{"no tags", []string{"plain ", "text"}, "plain text"},
		{"whole block", []string{"a<reasoning>x</reasoning>b"}, "ab"},
		{"split open tag", []string{"a<rea", "soning>x</reasoning>b"}, "ab"},
		{"split close tag", []string{"<reasoning>x</re", "asoning>b"}, "b"},
		{"two blocks", []string{"<reasoning>1</reasoning>a<reasoning>2</reasoning>b"}, "ab"},
		{"lone angle bracket", []string{"x < y", " and y > z"}, "x < y and y > z"},
		{"trailing partial kept", []string{"x <"}, "x <"},
		{"unterminated block dropped", []string{"a<reasoning>never closed"}, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f reasoningFilter
			var out strings.Builder
			for _, d := range tt.deltas {
				out.WriteString(f.feed(d))
			}
			out.WriteString(f.flush())
			assert.Equal(t, tt.want, out.String())
		})
	}
}
