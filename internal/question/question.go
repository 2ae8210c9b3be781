package question

import (
	"strconv"
	"strings"
)

// Question is a single multiple-choice item produced by generation or
// edited by the user.
type Question struct {
	// ID is assigned sequentially ("q1", "q2", ...) when a response is
	// parsed. Model-supplied ids are never kept.
	ID string `json:"id"`

	// Text is the question body in Markdown. It may embed a fenced code block.
	Text string `json:"text"`

	// Code is an optional code snippet kept separate from Text.
	Code string `json:"code,omitempty"`

	// Answers is in display order. Exactly one answer is expected to be
	// correct; this is checked by validators, not guaranteed by decoding.
	Answers []Answer `json:"answers"`

	// Explanation is the rationale for the correct answer.
	Explanation string `json:"explanation,omitempty"`

	// Distractors describes why the wrong answers are tempting.
	Distractors string `json:"distractors,omitempty"`

	// Subject and Topics are copied from the originating request.
	Subject string   `json:"subject"`
	Topics  []string `json:"topics"`
}

// Answer is one choice of a Question.
type Answer struct {
	Text        string `json:"text"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation,omitempty"`
}

// CorrectCount returns how many answers are flagged correct.
func (q Question) CorrectCount() int {
	n := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// CorrectIndex returns the index of the first correct answer, or -1.
func (q Question) CorrectIndex() int {
	for i, a := range q.Answers {
		if a.IsCorrect {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	c := q
	c.Answers = append([]Answer(nil), q.Answers...)
	c.Topics = append([]string(nil), q.Topics...)
	return c
}

// CloneAll deep-copies a question list.
func CloneAll(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

// Renumber assigns ids "q<start+1>", "q<start+2>", ... in slice order.
func Renumber(qs []Question, start int) {
	for i := range qs {
		qs[i].ID = ID(start + i + 1)
	}
}

// Number parses an id produced by ID. ok is false for any other id.
func Number(id string) (n int, ok bool) {
	digits, found := strings.CutPrefix(id, "q")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ID formats the 1-based sequential question id.
func ID(n int) string {
	return "q" + strconv.Itoa(n)
}
