package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	defaultOllamaServerURL = "http://localhost:11434"
	defaultOllamaModel     = "llama3.1"
)

// OllamaProvider runs generation against a local Ollama server through
// langchaingo. Structured output is requested with Ollama's JSON format
// and validated like the hosted providers.
type OllamaProvider struct {
	client    llms.Model
	model     string
	serverURL string
}

// NewOllamaProvider creates an Ollama provider. No key is needed.
func NewOllamaProvider(cfg OllamaConfig) (*OllamaProvider, error) {
	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = defaultOllamaServerURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	client, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return &OllamaProvider{client: client, model: model, serverURL: serverURL}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	opts := []llms.CallOption{
		llms.WithMaxTokens(maxTokens(req)),
	}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}
	if req.Schema != nil {
		opts = append(opts, llms.WithJSONMode())
	}
	if onDelta := streamFrom(ctx); onDelta != nil {
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			onDelta(string(chunk))
			return nil
		}))
	}

	resp, err := p.client.GenerateContent(ctx, buildOllamaMessages(req), opts...)
	if err != nil {
		return nil, p.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no choices in Ollama response")}
	}

	choice := resp.Choices[0]
	content := json.RawMessage(strings.TrimSpace(choice.Content))

	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}

	return finish(&Response{
		Content:    content,
		Usage:      ollamaUsage(choice.GenerationInfo),
		Model:      p.model,
		StopReason: mapOllamaStopReason(choice.StopReason),
	})
}

func (p *OllamaProvider) ModelID() string {
	return p.model
}

func buildOllamaMessages(req Request) []llms.MessageContent {
	var msgs []llms.MessageContent
	if req.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, m := range req.Messages {
		role := llms.ChatMessageTypeHuman
		if m.Role == RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(role, m.Content))
	}
	return msgs
}

// ollamaUsage reads token counts from langchaingo's generation info.
func ollamaUsage(info map[string]any) Usage {
	u := Usage{
		InputTokens:  intField(info, "PromptTokens"),
		OutputTokens: intField(info, "CompletionTokens"),
		TotalTokens:  intField(info, "TotalTokens"),
	}
	if u.TotalTokens == 0 {
		u.TotalTokens = u.InputTokens + u.OutputTokens
	}
	return u
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func mapOllamaStopReason(reason string) string {
	if reason == "length" {
		return stopMaxTokens
	}
	return stopEnd
}

func (p *OllamaProvider) mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ErrProviderUnavailable{Err: fmt.Errorf("ollama at %s: %w", p.serverURL, err)}
}
