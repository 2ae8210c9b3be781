package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/rubrix/internal/question"
)

// rawQuestion is the model's question object before normalization.
type rawQuestion struct {
	Text        string          `json:"text"`
	Stem        string          `json:"stem"`
	Content     string          `json:"content"`
	Code        *string         `json:"code"`
	Answers     []rawAnswer     `json:"answers"`
	Options     []rawAnswer     `json:"options"`
	Explanation json.RawMessage `json:"explanation"`
	Distractors json.RawMessage `json:"distractors"`
}

type rawAnswer struct {
	Text        string          `json:"text"`
	IsCorrect   bool            `json:"is_correct"`
	Explanation json.RawMessage `json:"explanation"`
}

// Decode turns a JSON array of question objects into questions with ids
// q1..qN. The payload must be the array itself; use Parse for free-form
// model output.
func Decode(payload string) ([]question.Question, error) {
	if !json.Valid([]byte(payload)) {
		var raw any
		err := json.Unmarshal([]byte(payload), &raw)
		return nil, invalid(payload, err)
	}
	if err := validateShape(payload); err != nil {
		return nil, invalid(payload, err)
	}

	var raws []rawQuestion
	if err := json.Unmarshal([]byte(payload), &raws); err != nil {
		return nil, invalid(payload, err)
	}
	if len(raws) == 0 {
		return nil, ErrEmptyResult
	}

	out := make([]question.Question, len(raws))
	for i, r := range raws {
		out[i] = r.normalize()
	}
	question.Renumber(out, 0)
	return out, nil
}

func (r rawQuestion) normalize() question.Question {
	q := question.Question{
		Explanation: flexText(r.Explanation),
		Distractors: flexText(r.Distractors),
	}
	if r.Code != nil {
		q.Code = *r.Code
	}

	switch {
	case r.Text != "":
		q.Text = r.Text
	case r.Stem != "":
		q.Text = r.Stem
		if q.Code != "" {
			q.Text = withCodeBlock(r.Stem, q.Code)
		}
	default:
		q.Text = r.Content
	}

	answers := r.Answers
	if answers == nil {
		answers = r.Options
	}
	q.Answers = make([]question.Answer, len(answers))
	for i, a := range answers {
		q.Answers[i] = question.Answer{
			Text:        a.Text,
			IsCorrect:   a.IsCorrect,
			Explanation: flexText(a.Explanation),
		}
	}
	return q
}

// withCodeBlock appends code to stem as a fenced block.
func withCodeBlock(stem, code string) string {
	return fmt.Sprintf("%s\n\n```\n%s\n```", strings.TrimRight(stem, "\n"), strings.Trim(code, "\n"))
}

// flexText accepts either a JSON string or any other JSON value. Non-string
// values are pretty-printed so they stay readable.
func flexText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
