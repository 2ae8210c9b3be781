// Package quizgen turns generation requests into validated questions. It
// pulls few-shot examples from the knowledge base, renders the prompt,
// calls the LLM provider and parses the reply.
//
// A Generator holds no mutable state; callers own the question set.
package quizgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/rubrix/internal/llm"
	"github.com/abhisek/rubrix/internal/parse"
	"github.com/abhisek/rubrix/internal/question"
)

// Purpose labels recorded with each LLM call.
const (
	PurposeGenerate   = "question-gen"
	PurposeRegenerate = "question-regen"
)

// Used by Regenerate when the question carries no subject or topics.
const (
	fallbackSubject = "Computer Science"
	fallbackTopic   = "recursion"
)

// ErrInvalidRequest is returned for a request that cannot produce a prompt.
var ErrInvalidRequest = errors.New("invalid generation request")

// Knowledge is the part of the knowledge base the generator reads.
type Knowledge interface {
	BankExamples(subject string, topicIDs []string, difficulty question.Difficulty, maxTotal int) []question.BankEntry
	PromptTemplate(subject string) string
	TopicLabels(subject string, ids []string) string
}

// Generator produces questions with an LLM provider.
type Generator struct {
	provider llm.Provider
	kb       Knowledge
	config   Config
	log      *zap.Logger
}

// New creates a Generator. A nil logger discards logs.
func New(provider llm.Provider, kb Knowledge, cfg Config, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{provider: provider, kb: kb, config: cfg, log: log}
}

// Prompt renders the generation prompt for req without calling the model.
func (g *Generator) Prompt(req question.GenerationRequest) string {
	examples := g.kb.BankExamples(req.Subject, req.Topics, req.Difficulty, g.config.MaxExamples)
	label := g.kb.TopicLabels(req.Subject, req.Topics)
	return BuildGenerationPrompt(req, label, examples, g.kb.PromptTemplate(req.Subject))
}

// Generate asks the model for req.Count questions. Either every returned
// question parsed and passed validation, or an error is returned and no
// questions are.
func (g *Generator) Generate(ctx context.Context, req question.GenerationRequest) ([]question.Question, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	log := g.log.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("subject", req.Subject),
		zap.Strings("topics", req.Topics),
		zap.String("difficulty", string(req.Difficulty)),
	)

	qs, err := g.complete(llm.WithPurpose(ctx, PurposeGenerate), g.Prompt(req), log)
	if err != nil {
		return nil, err
	}

	for i := range qs {
		qs[i].Subject = req.Subject
		qs[i].Topics = append([]string(nil), req.Topics...)
	}
	if err := validate(g.config.Validators, qs, req); err != nil {
		log.Warn("generated questions rejected", zap.Error(err))
		return nil, err
	}

	if len(qs) != req.Count {
		log.Warn("model returned a different number of questions",
			zap.Int("requested", req.Count), zap.Int("returned", len(qs)))
	}
	log.Info("questions generated", zap.Int("count", len(qs)))
	return qs, nil
}

// RegeneratePrompt renders the prompt for replacing current without
// calling the model. set is the question list current belongs to.
func (g *Generator) RegeneratePrompt(current question.Question, set []question.Question, instructions string) string {
	subject, topics := subjectAndTopics(current)
	withDefaults := current.Clone()
	withDefaults.Subject = subject
	withDefaults.Topics = topics

	return BuildRegeneratePrompt(RegenerateInput{
		Current:      withDefaults,
		Others:       set,
		MaxOthers:    g.config.MaxContextQuestions,
		Examples:     g.kb.BankExamples(subject, topics, "", 1),
		Instructions: instructions,
		Template:     g.kb.PromptTemplate(subject),
		TopicsLabel:  g.kb.TopicLabels(subject, topics),
	})
}

// Regenerate asks the model for one question to replace current. The
// replacement keeps current's id, subject and topics.
func (g *Generator) Regenerate(ctx context.Context, current question.Question, set []question.Question, instructions string) (question.Question, error) {
	subject, topics := subjectAndTopics(current)
	log := g.log.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("question_id", current.ID),
		zap.String("subject", subject),
	)

	prompt := g.RegeneratePrompt(current, set, instructions)
	qs, err := g.complete(llm.WithPurpose(ctx, PurposeRegenerate), prompt, log)
	if err != nil {
		return question.Question{}, err
	}

	q := qs[0]
	q.ID = current.ID
	q.Subject = current.Subject
	q.Topics = append([]string(nil), current.Topics...)

	req := question.GenerationRequest{Subject: subject, Topics: topics, Count: 1}
	if err := validate(g.config.Validators, []question.Question{q}, req); err != nil {
		log.Warn("replacement question rejected", zap.Error(err))
		return question.Question{}, err
	}

	log.Info("question regenerated")
	return q, nil
}

// complete sends prompt to the provider and parses the reply.
func (g *Generator) complete(ctx context.Context, prompt string, log *zap.Logger) ([]question.Question, error) {
	start := time.Now()
	resp, err := g.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}
	log.Debug("model replied",
		zap.String("model", resp.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))

	text := string(resp.Content)
	var qs []question.Question
	if g.config.FallbackParsing {
		qs, err = parse.ParseAny(text)
	} else {
		qs, err = parse.Parse(text)
	}
	if err != nil {
		log.Warn("model reply could not be parsed",
			zap.Error(err), zap.String("excerpt", parse.Excerpt(text)))
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return qs, nil
}

func checkRequest(req question.GenerationRequest) error {
	switch {
	case req.Subject == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	case len(req.Topics) == 0:
		return fmt.Errorf("%w: at least one topic is required", ErrInvalidRequest)
	case req.Count < 1:
		return fmt.Errorf("%w: count must be at least 1, got %d", ErrInvalidRequest, req.Count)
	}
	return nil
}

func subjectAndTopics(q question.Question) (string, []string) {
	subject := q.Subject
	if subject == "" {
		subject = fallbackSubject
	}
	topics := q.Topics
	if len(topics) == 0 {
		topics = []string{fallbackTopic}
	}
	return subject, topics
}
