package quizgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/rubrix/internal/question"
)

var jsonEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// escapeJSONString escapes s for embedding between double quotes in the
// JSON examples shown to the model.
func escapeJSONString(s string) string {
	return jsonEscaper.Replace(s)
}

// formatExample renders a bank entry as a small JSON object holding only
// the fields that teach the model something: stem, code, options,
// explanation, difficulty, cognitive level, skills and distractors.
func formatExample(e question.BankEntry) string {
	var b strings.Builder

	b.WriteString("{\n")
	fmt.Fprintf(&b, "  \"stem\": \"%s\",\n", escapeJSONString(e.Text))
	if e.Code != "" {
		fmt.Fprintf(&b, "  \"code\": \"%s\",\n", escapeJSONString(e.Code))
	}

	b.WriteString("  \"options\": [\n")
	for i, o := range e.Options {
		fmt.Fprintf(&b, "    {\"id\": \"%s\", \"text\": \"%s\", \"is_correct\": %t}",
			escapeJSONString(o.ID), escapeJSONString(o.Text), o.IsCorrect)
		b.WriteString(separator(i, len(e.Options)))
	}
	b.WriteString("  ],\n")

	fmt.Fprintf(&b, "  \"explanation\": \"%s\",\n", escapeJSONString(e.Explanation))
	fmt.Fprintf(&b, "  \"difficulty\": \"%s\",\n", escapeJSONString(e.Difficulty))
	fmt.Fprintf(&b, "  \"cognitive_level\": \"%s\",\n", escapeJSONString(e.CognitiveLevel))
	fmt.Fprintf(&b, "  \"skills\": [%s],\n", quotedList(e.Skills))

	b.WriteString("  \"distractors\": {\n")
	b.WriteString("    \"common_mistakes\": [\n")
	mistakes := e.Distractors.CommonMistakes
	for i, m := range mistakes {
		fmt.Fprintf(&b, "      {\"option_id\": \"%s\", \"misconception\": \"%s\"}",
			escapeJSONString(m.OptionID), escapeJSONString(m.Misconception))
		b.WriteString(separator(i, len(mistakes)))
	}
	b.WriteString("    ],\n")
	fmt.Fprintf(&b, "    \"common_errors\": [%s]\n", quotedList(e.Distractors.CommonErrors))
	b.WriteString("  }\n")
	b.WriteString("}")

	return b.String()
}

func separator(i, n int) string {
	if i < n-1 {
		return ",\n"
	}
	return "\n"
}

func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = `"` + escapeJSONString(s) + `"`
	}
	return strings.Join(quoted, ", ")
}

// renderExamples numbers examples as fenced JSON blocks. With no examples it
// tells the model to fall back on the subject's usual standards.
func renderExamples(subject string, examples []question.BankEntry) string {
	if len(examples) == 0 {
		if subject == "" {
			subject = "the subject's"
		}
		return fmt.Sprintf("(No examples available - generate based on %s standards)", subject)
	}

	blocks := make([]string, len(examples))
	for i, e := range examples {
		blocks[i] = fmt.Sprintf("### Example %d\n```json\n%s\n```", i+1, formatExample(e))
	}
	return strings.Join(blocks, "\n\n")
}
