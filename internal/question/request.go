package question

import "strings"

// Difficulty is the requested difficulty of a generation run.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Code maps the difficulty to the bank's difficulty code (D1, D2, D3).
// Unknown values return "".
func (d Difficulty) Code() string {
	switch Difficulty(strings.ToLower(strings.TrimSpace(string(d)))) {
	case DifficultyEasy:
		return "D1"
	case DifficultyMedium:
		return "D2"
	case DifficultyHard:
		return "D3"
	default:
		return ""
	}
}

// Valid reports whether d is one of easy, medium or hard.
func (d Difficulty) Valid() bool {
	return d.Code() != ""
}

// GenerationRequest describes one generation run.
type GenerationRequest struct {
	Subject    string     `json:"subject"`
	Topics     []string   `json:"topics"`
	Difficulty Difficulty `json:"difficulty"`
	Count      int        `json:"count"`
	Notes      string     `json:"notes,omitempty"`

	// Append adds the generated questions to the current set instead of
	// replacing it.
	Append bool `json:"append"`
}

// SubjectInfo describes a subject in the knowledge base.
type SubjectInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TopicCount int    `json:"topic_count"`
}

// TopicInfo describes a topic of a subject. ID is the name callers use in
// requests; Code is the bank topic code (e.g. "T009").
type TopicInfo struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ExampleCount int    `json:"example_count"`
}
