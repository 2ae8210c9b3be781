package quizgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/rubrix/internal/question"
)

// contextSnippetLen is how much of each other question is quoted when
// regenerating.
const contextSnippetLen = 50

// DifficultyDescription maps a difficulty to the description placed in
// prompts. Unknown values get the medium description without a step count.
func DifficultyDescription(d question.Difficulty) string {
	switch d.Code() {
	case "D1":
		return "D1 (Easy) - Basic recall or simple application, 1-2 steps"
	case "D2":
		return "D2 (Medium) - Requires analysis or multi-step reasoning, 3-5 steps"
	case "D3":
		return "D3 (Hard) - Complex analysis, synthesis of multiple concepts, 5+ steps"
	default:
		return "D2 (Medium) - Requires analysis or multi-step reasoning"
	}
}

// BuildGenerationPrompt renders the prompt for generating req.Count new
// questions. topicsLabel is the display form of the requested topics; when
// empty the raw topic ids are used. An empty template selects the built-in
// one.
func BuildGenerationPrompt(req question.GenerationRequest, topicsLabel string, examples []question.BankEntry, template string) string {
	if template == "" {
		template = defaultGenerationTemplate
	}
	return fill(template, map[string]string{
		phSubject:      req.Subject,
		phTopics:       labelOr(topicsLabel, req.Topics),
		phDifficulty:   DifficultyDescription(req.Difficulty),
		phCount:        strconv.Itoa(req.Count),
		phExamples:     renderExamples(req.Subject, examples),
		phInstructions: instructionsBlock(req.Notes),
		phRegenerate:   "",
	})
}

// RegenerateInput holds everything needed to ask for one replacement
// question.
type RegenerateInput struct {
	// Current is the question being replaced.
	Current question.Question

	// Others is the rest of the set; questions with Current's id are
	// skipped.
	Others []question.Question

	// MaxOthers caps how many of Others are quoted. Zero means 3.
	MaxOthers int

	Examples     []question.BankEntry
	Instructions string
	Template     string
	TopicsLabel  string
	Difficulty   question.Difficulty
}

// BuildRegeneratePrompt renders the prompt for a single replacement
// question. A subject template is filled with a count of 1 and the
// replacement details in {regenerate}.
func BuildRegeneratePrompt(in RegenerateInput) string {
	values := map[string]string{
		phSubject:      in.Current.Subject,
		phTopics:       labelOr(in.TopicsLabel, in.Current.Topics),
		phDifficulty:   DifficultyDescription(in.Difficulty),
		phCount:        "1",
		phInstructions: instructionsBlock(in.Instructions),
		phRegenerate:   regenerateBlock(in),
	}

	template := in.Template
	if template == "" {
		template = defaultRegenerateTemplate
		values[phExamples] = referenceExample(in.Examples)
	} else {
		values[phExamples] = renderExamples(in.Current.Subject, in.Examples)
	}
	return fill(template, values)
}

// fill substitutes placeholders in a single pass, so substituted text is
// never scanned again.
func fill(template string, values map[string]string) string {
	pairs := make([]string, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func labelOr(label string, ids []string) string {
	if label != "" {
		return label
	}
	return strings.Join(ids, ", ")
}

func instructionsBlock(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return ""
	}
	return "\n\n**Additional Instructions:**\n" + notes
}

func regenerateBlock(in RegenerateInput) string {
	var b strings.Builder
	b.WriteString("\n**Current question to replace:**\n")
	b.WriteString(in.Current.Text)

	if others := contextQuestions(in); len(others) > 0 {
		b.WriteString("\n\n**Other questions in this set (avoid duplicating):**\n")
		b.WriteString(strings.Join(others, "\n"))
	}
	b.WriteString("\n")
	return b.String()
}

func contextQuestions(in RegenerateInput) []string {
	limit := in.MaxOthers
	if limit <= 0 {
		limit = 3
	}
	var out []string
	for _, q := range in.Others {
		if len(out) == limit {
			break
		}
		if q.ID == in.Current.ID {
			continue
		}
		out = append(out, "- "+truncate(q.Text, contextSnippetLen))
	}
	return out
}

func referenceExample(examples []question.BankEntry) string {
	if len(examples) == 0 {
		return ""
	}
	return fmt.Sprintf("\n**Reference example for quality/style:**\n```json\n%s\n```\n", formatExample(examples[0]))
}

// truncate collapses whitespace and cuts s to n runes, marking the cut
// with "...".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
