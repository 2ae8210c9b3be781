// Package parse recovers question records from free-form LLM output.
//
// The model is asked for a single JSON array of question objects, but its
// output routinely arrives wrapped in prose or code fences, repeated, or
// with invalid escapes (LaTeX delimiters, raw newlines inside strings).
// Parse locates the first array of objects, repairs escapes inside string
// literals, validates the structure and assigns sequential ids.
package parse

import (
	"errors"
	"fmt"

	"github.com/abhisek/rubrix/internal/parse/legacy"
	"github.com/abhisek/rubrix/internal/question"
)

// Parse extracts the first JSON array of question objects from response.
// Either every question in that array is returned or an error is:
// ErrNoJSONArray, *InvalidJSONError or ErrEmptyResult.
func Parse(response string) ([]question.Question, error) {
	candidate, ok := locateArray(response)
	if !ok {
		return nil, ErrNoJSONArray
	}
	return Decode(sanitize(candidate))
}

// ParseAny tries the JSON format first and falls back to the older
// Markdown formats only when the response holds no JSON array at all.
func ParseAny(response string) ([]question.Question, error) {
	qs, err := Parse(response)
	if !errors.Is(err, ErrNoJSONArray) {
		return qs, err
	}

	qs, lerr := legacy.Parse(response)
	if lerr != nil {
		return nil, fmt.Errorf("%w (markdown fallback: %v)", ErrNoJSONArray, lerr)
	}
	return qs, nil
}
