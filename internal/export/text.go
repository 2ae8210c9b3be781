// Package export renders a question set for use outside rubrix: a plain
// intermediate text format, Markdown with an answer key, an IMS Common
// Cartridge QTI package and Word documents via a conversion service.
package export

import (
	"fmt"
	"strings"

	"github.com/abhisek/rubrix/internal/question"
)

// Text renders the intermediate .txt format: a title line, then each
// question numbered with its answers listed correct-first, every answer
// prefixed "a.".
func Text(title string, qs []question.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n\n", title)

	for i, q := range qs {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, q.Text)
		for _, a := range correctFirst(q.Answers) {
			fmt.Fprintf(&b, "a. %s\n", a.Text)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// correctFirst returns answers with the correct ones moved to the front.
// Relative order is otherwise kept.
func correctFirst(answers []question.Answer) []question.Answer {
	out := make([]question.Answer, 0, len(answers))
	for _, a := range answers {
		if a.IsCorrect {
			out = append(out, a)
		}
	}
	for _, a := range answers {
		if !a.IsCorrect {
			out = append(out, a)
		}
	}
	return out
}
