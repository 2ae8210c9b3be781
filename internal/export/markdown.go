package export

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/abhisek/rubrix/internal/question"
)

// MarkdownOptions controls Markdown rendering.
type MarkdownOptions struct {
	// Shuffle reorders each question's answers. Nil keeps stored order.
	Shuffle *rand.Rand
}

// Markdown renders a numbered question sheet with lettered choices followed
// by an answer key.
func Markdown(title string, qs []question.Question, opts MarkdownOptions) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}

	key := make([]string, len(qs))
	for i, q := range qs {
		answers := append([]question.Answer(nil), q.Answers...)
		if opts.Shuffle != nil {
			opts.Shuffle.Shuffle(len(answers), func(a, b int) {
				answers[a], answers[b] = answers[b], answers[a]
			})
		}

		fmt.Fprintf(&b, "**%d.** %s\n\n", i+1, strings.TrimSpace(q.Text))
		key[i] = "?"
		for j, a := range answers {
			fmt.Fprintf(&b, "%s. %s\n", letter(j), a.Text)
			if a.IsCorrect && key[i] == "?" {
				key[i] = letter(j)
			}
		}
		b.WriteString("\n")
	}

	if len(qs) > 0 {
		b.WriteString("---\n\n## Answer Key\n\n")
		for i, k := range key {
			fmt.Fprintf(&b, "%d. %s\n", i+1, k)
		}
	}
	return b.String()
}

func letter(i int) string {
	return string(rune('a' + i))
}
