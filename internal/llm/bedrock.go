package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultBedrockBaseURL = "https://bedrock-runtime.us-west-2.amazonaws.com/openai/v1"
	defaultBedrockModel   = "openai.gpt-oss-120b-1:0"
	defaultBedrockEffort  = "medium"
)

// BedrockProvider talks to the OpenAI-compatible endpoint of Amazon
// Bedrock with a bearer token. Replies are always streamed; reasoning
// wrapped in <reasoning> tags is removed from both the streamed deltas and
// the final content.
type BedrockProvider struct {
	*OpenAIProvider
	reasoningEffort string
}

// NewBedrockProvider creates a Bedrock provider. cfg.APIKey is the bearer
// token.
func NewBedrockProvider(cfg BedrockConfig) (*BedrockProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("bedrock bearer token is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBedrockBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultBedrockModel
	}
	effort := cfg.ReasoningEffort
	if effort == "" {
		effort = defaultBedrockEffort
	}

	return &BedrockProvider{
		OpenAIProvider:  newOpenAICompatible(cfg.APIKey, baseURL, model),
		reasoningEffort: effort,
	}, nil
}

func (p *BedrockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq := p.chatRequest(req)
	chatReq.Stream = true
	chatReq.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	chatReq.ReasoningEffort = p.reasoningEffort

	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	defer stream.Close()

	onDelta := streamFrom(ctx)
	emit := func(b *strings.Builder, s string) {
		if s == "" {
			return
		}
		b.WriteString(s)
		if onDelta != nil {
			onDelta(s)
		}
	}

	var (
		filter reasoningFilter
		text   strings.Builder
	)
	resp := &Response{Model: p.model, StopReason: stopEnd}

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, mapOpenAIError(err)
		}

		if chunk.Model != "" {
			resp.Model = chunk.Model
		}
		if chunk.Usage != nil {
			resp.Usage = mapOpenAIUsage(*chunk.Usage)
		}
		for _, choice := range chunk.Choices {
			emit(&text, filter.feed(choice.Delta.Content))
			if choice.FinishReason != "" {
				resp.StopReason = mapOpenAIStopReason(choice.FinishReason)
			}
		}
	}
	emit(&text, filter.flush())

	content := strings.TrimSpace(text.String())
	if content == "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty response from Bedrock")}
	}
	resp.Content = json.RawMessage(content)

	if req.Schema != nil {
		if err := validateResponse(req.Schema, resp.Content); err != nil {
			return nil, err
		}
	}
	return finish(resp)
}

const (
	reasoningOpen  = "<reasoning>"
	reasoningClose = "</reasoning>"
)

// reasoningFilter drops text between <reasoning> and </reasoning> from a
// stream of deltas. Tags may be split across deltas.
type reasoningFilter struct {
	inside  bool
	pending string
}

// feed returns the visible part of delta. A trailing fragment that could
// start a tag is held back until the next call.
func (f *reasoningFilter) feed(delta string) string {
	s := f.pending + delta
	f.pending = ""

	var out strings.Builder
	for s != "" {
		tag := reasoningOpen
		if f.inside {
			tag = reasoningClose
		}

		i := strings.Index(s, tag)
		if i < 0 {
			keep := partialTagSuffix(s, tag)
			if !f.inside {
				out.WriteString(s[:len(s)-keep])
			}
			f.pending = s[len(s)-keep:]
			break
		}

		if !f.inside {
			out.WriteString(s[:i])
		}
		s = s[i+len(tag):]
		f.inside = !f.inside
	}
	return out.String()
}

// flush returns any held-back text once the stream ends. An unterminated
// reasoning block is discarded.
func (f *reasoningFilter) flush() string {
	p := f.pending
	f.pending = ""
	if f.inside {
		return ""
	}
	return p
}

// partialTagSuffix returns the length of the longest suffix of s that is a
// proper prefix of tag.
func partialTagSuffix(s, tag string) int {
	for n := min(len(tag)-1, len(s)); n > 0; n-- {
		if strings.HasSuffix(s, tag[:n]) {
			return n
		}
	}
	return 0
}
