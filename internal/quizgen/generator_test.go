package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rubrix/internal/llm"
	"github.com/abhisek/rubrix/internal/parse"
	"github.com/abhisek/rubrix/internal/question"
)

type stubKnowledge struct {
	examples []question.BankEntry
	template string

	gotSubject    string
	gotTopics     []string
	gotDifficulty question.Difficulty
	gotMax        int
}

func (k *stubKnowledge) BankExamples(subject string, topicIDs []string, difficulty question.Difficulty, maxTotal int) []question.BankEntry {
	k.gotSubject, k.gotTopics, k.gotDifficulty, k.gotMax = subject, topicIDs, difficulty, maxTotal
	if maxTotal < len(k.examples) {
		return k.examples[:maxTotal]
	}
	return k.examples
}

func (k *stubKnowledge) PromptTemplate(string) string { return k.template }

func (k *stubKnowledge) TopicLabels(_ string, ids []string) string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = strings.ToUpper(id[:1]) + id[1:]
	}
	return strings.Join(labels, ", ")
}

const twoQuestions = "Here are your questions:\n```json\n" + `[
  {"text": "What is 2 + 2?", "answers": [
    {"text": "3", "is_correct": false},
    {"text": "4", "is_correct": true},
    {"text": "5", "is_correct": false},
    {"text": "22", "is_correct": false}
  ], "explanation": "Add."},
  {"text": "What is 3 * 3?", "answers": [
    {"text": "6", "is_correct": false},
    {"text": "9", "is_correct": true},
    {"text": "33", "is_correct": false},
    {"text": "12", "is_correct": false}
  ]}
]` + "\n```"

func raw(s string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(s)}
}

func TestGenerate(t *testing.T) {
	kb := &stubKnowledge{examples: []question.BankEntry{sampleEntry(), sampleEntry(), sampleEntry(), sampleEntry()}}
	mock := llm.NewMockProvider(raw(twoQuestions))
	gen := New(mock, kb, DefaultConfig(), nil)

	qs, err := gen.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, qs, 2)

	assert.Equal(t, "q1", qs[0].ID)
	assert.Equal(t, "q2", qs[1].ID)
	assert.Equal(t, "Computer Science", qs[1].Subject)
	assert.Equal(t, []string{"recursion", "strings"}, qs[1].Topics)
	assert.Equal(t, 1, qs[0].CorrectIndex())

	assert.Equal(t, question.DifficultyMedium, kb.gotDifficulty)
	assert.Equal(t, 3, kb.gotMax)

	require.Equal(t, 1, mock.CallCount())
	call := mock.Calls[0]
	assert.Nil(t, call.Schema)
	assert.Equal(t, 8192, call.MaxTokens)
	require.Len(t, call.Messages, 1)
	assert.Equal(t, llm.RoleUser, call.Messages[0].Role)
	prompt := call.Messages[0].Content
	assert.Contains(t, prompt, "**Target Topic(s):** Recursion, Strings")
	assert.Contains(t, prompt, "### Example 3")
	assert.NotContains(t, prompt, "### Example 4")
}

func TestGenerate_TopicsAreCopied(t *testing.T) {
	mock := llm.NewMockProvider(raw(twoQuestions))
	gen := New(mock, &stubKnowledge{}, DefaultConfig(), nil)

	req := testRequest()
	qs, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)

	qs[0].Topics[0] = "changed"
	assert.Equal(t, "recursion", req.Topics[0])
	assert.Equal(t, "recursion", qs[1].Topics[0])
}

func TestGenerate_UsesSubjectTemplate(t *testing.T) {
	mock := llm.NewMockProvider(raw(twoQuestions))
	gen := New(mock, &stubKnowledge{template: "Write {count} about {topics}."}, DefaultConfig(), nil)

	_, err := gen.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "Write 2 about Recursion, Strings.", mock.Calls[0].Messages[0].Content)
}

func TestGenerate_InvalidRequest(t *testing.T) {
	mock := llm.NewMockProvider()
	gen := New(mock, &stubKnowledge{}, DefaultConfig(), nil)

	for _, mutate := range []func(*question.GenerationRequest){
		func(r *question.GenerationRequest) { r.Subject = "" },
		func(r *question.GenerationRequest) { r.Topics = nil },
		func(r *question.GenerationRequest) { r.Count = 0 },
	} {
		req := testRequest()
		mutate(&req)
		_, err := gen.Generate(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
	assert.Equal(t, 0, mock.CallCount())
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	gen := New(mock, &stubKnowledge{}, DefaultConfig(), nil)

	_, err := gen.Generate(context.Background(), testRequest())
	var rl *llm.ErrRateLimit
	assert.True(t, errors.As(err, &rl))
}

func TestGenerate_ParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
		check    func(t *testing.T, err error)
	}{
		{"refusal", "I can't do that.", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, parse.ErrNoJSONArray)
		}},
		{"broken json", `[{"text": "Q", "answers": [{"text": "A", "is_correct": yes}]}]`, func(t *testing.T, err error) {
			var ij *parse.InvalidJSONError
			assert.True(t, errors.As(err, &ij))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := New(llm.NewMockProvider(raw(tt.response)), &stubKnowledge{}, DefaultConfig(), nil)
			qs, err := gen.Generate(context.Background(), testRequest())
			require.Error(t, err)
			assert.Nil(t, qs)
			tt.check(t, err)
		})
	}
}

func TestGenerate_ValidationRejectsWholeResponse(t *testing.T) {
	response := `[
	  {"text": "ok", "answers": [{"text": "a", "is_correct": true}, {"text": "b", "is_correct": false}]},
	  {"text": "one answer", "answers": [{"text": "a", "is_correct": true}]}
	]`
	gen := New(llm.NewMockProvider(raw(response)), &stubKnowledge{}, DefaultConfig(), nil)

	qs, err := gen.Generate(context.Background(), testRequest())
	assert.Nil(t, qs)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "answer-count", verr.Validator)
	assert.Equal(t, "q2", verr.QuestionID)
}

func TestGenerate_MarkdownFallback(t *testing.T) {
	response := "# Question 1\n\nWhich is prime?\n\n## Choices\n\na. 4\nb. 7\nc. 9\nd. 15\n\n---\n**Correct Answer:** b"

	gen := New(llm.NewMockProvider(raw(response)), &stubKnowledge{}, DefaultConfig(), nil)
	qs, err := gen.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, 1, qs[0].CorrectIndex())

	cfg := DefaultConfig()
	cfg.FallbackParsing = false
	gen = New(llm.NewMockProvider(raw(response)), &stubKnowledge{}, cfg, nil)
	_, err = gen.Generate(context.Background(), testRequest())
	assert.ErrorIs(t, err, parse.ErrNoJSONArray)
}

func TestRegenerate(t *testing.T) {
	set := []question.Question{
		{ID: "q1", Text: "First question"},
		{ID: "q2", Text: "Replace me", Subject: "Computer Science", Topics: []string{"strings"}},
	}
	reply := `[{"id": "q9", "text": "Fresh", "answers": [{"text": "x", "is_correct": false}, {"text": "y", "is_correct": true}]}, {"text": "ignored", "answers": [{"text": "z", "is_correct": true}]}]`

	kb := &stubKnowledge{examples: []question.BankEntry{sampleEntry(), sampleEntry()}}
	mock := llm.NewMockProvider(raw(reply))
	gen := New(mock, kb, DefaultConfig(), nil)

	q, err := gen.Regenerate(context.Background(), set[1], set, "harder please")
	require.NoError(t, err)
	assert.Equal(t, "q2", q.ID)
	assert.Equal(t, "Fresh", q.Text)
	assert.Equal(t, "Computer Science", q.Subject)
	assert.Equal(t, []string{"strings"}, q.Topics)

	assert.Equal(t, question.Difficulty(""), kb.gotDifficulty)
	assert.Equal(t, 1, kb.gotMax)

	prompt := mock.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, "**Current question to replace:**\nReplace me")
	assert.Contains(t, prompt, "- First question")
	assert.Contains(t, prompt, "**Additional Instructions:**\nharder please")
	assert.Contains(t, prompt, "**Target Topic(s):** Strings")
}

func TestRegenerate_FallbackSubjectAndTopics(t *testing.T) {
	current := question.Question{ID: "q1", Text: "Bare"}
	reply := `[{"text": "New", "answers": [{"text": "a", "is_correct": true}, {"text": "b", "is_correct": false}]}]`

	kb := &stubKnowledge{}
	mock := llm.NewMockProvider(raw(reply))
	gen := New(mock, kb, DefaultConfig(), nil)

	q, err := gen.Regenerate(context.Background(), current, []question.Question{current}, "")
	require.NoError(t, err)

	assert.Equal(t, "Computer Science", kb.gotSubject)
	assert.Equal(t, []string{"recursion"}, kb.gotTopics)
	assert.Empty(t, q.Subject, "the replacement keeps the original's empty subject")
	assert.Empty(t, q.Topics)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "expert Computer Science question writer")
}

func TestRegenerate_Failures(t *testing.T) {
	current := question.Question{ID: "q1", Text: "Q"}

	gen := New(llm.NewMockProvider(raw("no json here")), &stubKnowledge{}, DefaultConfig(), nil)
	_, err := gen.Regenerate(context.Background(), current, nil, "")
	assert.ErrorIs(t, err, parse.ErrNoJSONArray)

	bad := `[{"text": "Q", "answers": [{"text": "a", "is_correct": false}, {"text": "b", "is_correct": false}]}]`
	gen = New(llm.NewMockProvider(raw(bad)), &stubKnowledge{}, DefaultConfig(), nil)
	_, err = gen.Regenerate(context.Background(), current, nil, "")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "single-correct", verr.Validator)
	assert.Equal(t, "q1", verr.QuestionID)
}
