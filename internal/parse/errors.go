package parse

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrNoJSONArray means the response contains no array of objects.
var ErrNoJSONArray = errors.New("no JSON array of question objects found in response")

// ErrEmptyResult means the payload decoded but held no questions.
var ErrEmptyResult = errors.New("response decoded to zero questions")

// excerptLimit bounds how much of a payload is carried in errors and logs.
const excerptLimit = 500

// InvalidJSONError indicates the located payload could not be decoded into
// questions. Excerpt holds at most the first 500 characters of the
// sanitized payload.
type InvalidJSONError struct {
	Message string
	Excerpt string
	Err     error
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("invalid question JSON: %s (near %q)", e.Message, e.Excerpt)
}

func (e *InvalidJSONError) Unwrap() error { return e.Err }

func invalid(payload string, err error) *InvalidJSONError {
	return &InvalidJSONError{
		Message: err.Error(),
		Excerpt: Excerpt(payload),
		Err:     err,
	}
}

// Excerpt returns at most the first 500 characters of s, cut on a rune
// boundary.
func Excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptLimit {
		return s
	}
	n := 0
	for i := range s {
		if n == excerptLimit {
			return s[:i]
		}
		n++
	}
	return s
}
