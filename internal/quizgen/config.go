package quizgen

// Config controls the behavior of the Generator.
type Config struct {
	// Validators is the ordered list of validators run on every generated
	// question. The first failure rejects the whole response.
	Validators []Validator

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxExamples is the number of bank examples included in a generation
	// prompt. Regeneration always uses one.
	MaxExamples int

	// MaxContextQuestions is the number of other questions in the set shown
	// to the model when regenerating one, to discourage duplicates.
	MaxContextQuestions int

	// FallbackParsing enables the Markdown formats when a response holds no
	// JSON array.
	FallbackParsing bool
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&TextValidator{},
			&AnswerCountValidator{Min: 2, Max: 5},
			&SingleCorrectValidator{},
		},
		MaxTokens:           8192,
		Temperature:         0.7,
		MaxExamples:         3,
		MaxContextQuestions: 3,
		FallbackParsing:     true,
	}
}
