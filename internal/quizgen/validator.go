package quizgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/rubrix/internal/question"
)

// Validator checks a generated question.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in errors and logs.
	Name() string

	// Validate returns nil if q passes. req is the request the question
	// was generated for.
	Validate(q *question.Question, req question.GenerationRequest) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator  string // Name of the validator that failed
	QuestionID string // Id of the offending question, when known
	Message    string // Human-readable description of the failure
	Retryable  bool   // Whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	if e.QuestionID != "" {
		return fmt.Sprintf("validator %q: %s: %s", e.Validator, e.QuestionID, e.Message)
	}
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// TextValidator checks that the question and every answer have text.
type TextValidator struct{}

func (v *TextValidator) Name() string { return "text" }

func (v *TextValidator) Validate(q *question.Question, _ question.GenerationRequest) *ValidationError {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Validator: v.Name(), Message: "question text is empty", Retryable: true}
	}
	for i, a := range q.Answers {
		if strings.TrimSpace(a.Text) == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("answer %d has no text", i+1),
				Retryable: true,
			}
		}
	}
	return nil
}

// AnswerCountValidator bounds the number of answers.
type AnswerCountValidator struct {
	Min int
	Max int
}

func (v *AnswerCountValidator) Name() string { return "answer-count" }

func (v *AnswerCountValidator) Validate(q *question.Question, _ question.GenerationRequest) *ValidationError {
	n := len(q.Answers)
	if n < v.Min || (v.Max > 0 && n > v.Max) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("has %d answers, want %d to %d", n, v.Min, v.Max),
			Retryable: true,
		}
	}
	return nil
}

// SingleCorrectValidator requires exactly one answer flagged correct.
type SingleCorrectValidator struct{}

func (v *SingleCorrectValidator) Name() string { return "single-correct" }

func (v *SingleCorrectValidator) Validate(q *question.Question, _ question.GenerationRequest) *ValidationError {
	if n := q.CorrectCount(); n != 1 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("%d answers are marked correct, want exactly 1", n),
			Retryable: true,
		}
	}
	return nil
}

// validate runs validators over qs in order and stops at the first failure.
func validate(validators []Validator, qs []question.Question, req question.GenerationRequest) error {
	for i := range qs {
		for _, v := range validators {
			if verr := v.Validate(&qs[i], req); verr != nil {
				verr.QuestionID = qs[i].ID
				return verr
			}
		}
	}
	return nil
}
