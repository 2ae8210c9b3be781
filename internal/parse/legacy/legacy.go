// Package legacy reads the Markdown question formats that predate the JSON
// array format:
//
//	# Question 1            1. What is returned?
//	...stem...              ...stem...
//	## Solution             a. `8`
//	## Choices              b. `53`
//	a. `8`                  ---
//	b. `53`                 **Correct Answer:** a
//	---
//	**Correct Answer:** a
//
// Only an explicit correct-answer letter marks an answer correct.
package legacy

import (
	"errors"
	"regexp"
	"strings"

	"github.com/abhisek/rubrix/internal/question"
)

// ErrNoQuestions means no block of the response looked like a question.
var ErrNoQuestions = errors.New("no markdown questions found")

var (
	questionStart  = regexp.MustCompile(`\n(?:#\s*Question\s+\d+|\d+\.)\s*`)
	leadingMarker  = regexp.MustCompile(`^(?:#\s*Question\s+\d+|#{1,2}\s*Question|\d+\.)\s*`)
	choicesMarker  = regexp.MustCompile(`\n#{1,2}\s*Choices\s*\n`)
	solutionMarker = regexp.MustCompile(`\n#{1,2}\s*Solution\s*\n`)
	firstChoice    = regexp.MustCompile(`\n\s*a\.\s+`)
	answerKey      = regexp.MustCompile(`\n---\s*\n\*{0,2}Correct Answer`)
	correctLetter  = regexp.MustCompile(`\*{0,2}Correct Answer:?\*{0,2}\s*([a-eA-E])\b`)
	choiceLine     = regexp.MustCompile(`(?m)^([a-eA-E])\.\s+(.*)$`)

	workedExplanation = regexp.MustCompile(`(?s)\*\*Correct Answer Explanation:\*\*\s*(.*?)(?:\n\s*\*\*Distractor Analysis|\n#{1,2}\s*Choices|$)`)
	shortExplanation  = regexp.MustCompile(`\*\*Explanation:\*\*\s*(.+)`)
	distractorSection = regexp.MustCompile(`(?s)\*\*Distractor Analysis:\*\*\s*(.*?)(?:\n#{1,2}\s*Choices|$)`)
)

// Parse splits response into question blocks and parses each. Blocks that
// have no answer choices are skipped. Ids are q1..qN.
func Parse(response string) ([]question.Question, error) {
	var qs []question.Question
	for _, block := range splitBlocks(response) {
		if q, ok := parseBlock(block); ok {
			qs = append(qs, q)
		}
	}
	if len(qs) == 0 {
		if q, ok := parseBlock(strings.TrimSpace(response)); ok {
			qs = append(qs, q)
		}
	}
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}
	question.Renumber(qs, 0)
	return qs, nil
}

// splitBlocks returns the text following each question marker. Text before
// the first marker is dropped.
func splitBlocks(response string) []string {
	content := "\n" + strings.TrimSpace(response)

	var blocks []string
	last := -1
	for _, m := range questionStart.FindAllStringIndex(content, -1) {
		if last >= 0 && last < m[0] {
			if b := strings.TrimSpace(content[last:m[0]]); b != "" {
				blocks = append(blocks, b)
			}
		}
		last = m[1]
	}
	if last >= 0 && last < len(content) {
		if b := strings.TrimSpace(content[last:]); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func parseBlock(block string) (question.Question, bool) {
	text := leadingMarker.ReplaceAllString(block, "")
	// Markers below are anchored on a preceding newline.
	text = "\n" + text

	var answerStart int
	choices := choicesMarker.FindStringIndex(text)
	switch {
	case choices != nil:
		answerStart = choices[1]
	default:
		m := firstChoice.FindStringIndex(text)
		if m == nil {
			return question.Question{}, false
		}
		answerStart = m[0]
	}

	contentEnd := answerStart
	if m := solutionMarker.FindStringIndex(text); m != nil && m[0] < contentEnd {
		contentEnd = m[0]
	} else if choices != nil {
		contentEnd = choices[0]
	}

	answersEnd := len(text)
	if m := answerKey.FindStringIndex(text[answerStart:]); m != nil {
		answersEnd = answerStart + m[0]
	}

	letter := ""
	if m := correctLetter.FindStringSubmatch(text); m != nil {
		letter = strings.ToLower(m[1])
	}

	answers := parseChoices(text[answerStart:answersEnd], letter)
	if len(answers) == 0 {
		return question.Question{}, false
	}

	return question.Question{
		Text:        strings.TrimSpace(text[:contentEnd]),
		Answers:     answers,
		Explanation: explanation(text),
		Distractors: submatch(distractorSection, text),
	}, true
}

func parseChoices(section, correct string) []question.Answer {
	var answers []question.Answer
	for _, m := range choiceLine.FindAllStringSubmatch(section, -1) {
		answers = append(answers, question.Answer{
			Text:      strings.TrimSpace(m[2]),
			IsCorrect: correct != "" && strings.ToLower(m[1]) == correct,
		})
	}
	return answers
}

func explanation(text string) string {
	if s := submatch(workedExplanation, text); s != "" {
		return s
	}
	return submatch(shortExplanation, text)
}

func submatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
