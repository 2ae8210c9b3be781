package question

// BankEntry is a curated reference question used as a few-shot example.
type BankEntry struct {
	ID             string       `json:"id"`
	Text           string       `json:"text"`
	Code           string       `json:"code,omitempty"`
	Options        []BankOption `json:"options"`
	Explanation    string       `json:"explanation"`
	Difficulty     string       `json:"difficulty"`
	CognitiveLevel string       `json:"cognitive_level"`
	Topics         []string     `json:"topics"`
	Subtopics      []string     `json:"subtopics,omitempty"`
	Skills         []string     `json:"skills"`
	Distractors    Distractors  `json:"distractors"`
}

// BankOption is one choice of a BankEntry.
type BankOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Distractors records the misconceptions behind wrong options.
type Distractors struct {
	CommonMistakes []CommonMistake `json:"common_mistakes"`
	CommonErrors   []string        `json:"common_errors"`
}

// CommonMistake links a wrong option to the misconception that leads to it.
type CommonMistake struct {
	OptionID      string `json:"option_id"`
	Misconception string `json:"misconception"`
}

// HasTopic reports whether the entry is tagged with any of codes.
func (e BankEntry) HasTopic(codes map[string]struct{}) bool {
	for _, t := range e.Topics {
		if _, ok := codes[t]; ok {
			return true
		}
	}
	return false
}
