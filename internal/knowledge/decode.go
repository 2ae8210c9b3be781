package knowledge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/rubrix/internal/question"
)

// topicSchema is the on-disk question-schema.json. Only the topic list is
// read; the rest of the document describes the bank format for editors.
type topicSchema struct {
	Topics struct {
		Items []topicItem `json:"items"`
	} `json:"topics"`
}

type topicItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Display     string `json:"display"`
	Description string `json:"description,omitempty"`
}

// bankDocument is the on-disk question-bank.json.
type bankDocument struct {
	Questions []bankQuestion `json:"questions"`
}

type bankQuestion struct {
	ID             string               `json:"id"`
	Difficulty     string               `json:"difficulty"`
	CognitiveLevel string               `json:"cognitive_level"`
	Content        bankContent          `json:"content"`
	Pedagogy       bankPedagogy         `json:"pedagogy"`
	Distractors    question.Distractors `json:"distractors"`
}

type bankContent struct {
	Stem        string                `json:"stem,omitempty"`
	Text        string                `json:"text,omitempty"`
	Code        string                `json:"code,omitempty"`
	Options     []question.BankOption `json:"options"`
	Explanation string                `json:"explanation"`
}

type bankPedagogy struct {
	Topics    []string `json:"topics"`
	Subtopics []string `json:"subtopics,omitempty"`
	Skills    []string `json:"skills"`
}

// decodeTopics returns the topic items whose ids start with "T", in file
// order.
func decodeTopics(data []byte) ([]topicItem, error) {
	var doc topicSchema
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var items []topicItem
	for _, it := range doc.Topics.Items {
		if !strings.HasPrefix(it.ID, "T") {
			continue
		}
		if it.Display == "" {
			it.Display = it.Name
		}
		items = append(items, it)
	}
	return items, nil
}

func decodeBank(data []byte) ([]question.BankEntry, error) {
	var doc bankDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	entries := make([]question.BankEntry, 0, len(doc.Questions))
	for i, q := range doc.Questions {
		text := q.Content.Stem
		if text == "" {
			text = q.Content.Text
		}
		if text == "" {
			return nil, fmt.Errorf("question %d (%s): no stem or text", i, q.ID)
		}
		entries = append(entries, question.BankEntry{
			ID:             q.ID,
			Text:           text,
			Code:           q.Content.Code,
			Options:        q.Content.Options,
			Explanation:    q.Content.Explanation,
			Difficulty:     q.Difficulty,
			CognitiveLevel: q.CognitiveLevel,
			Topics:         q.Pedagogy.Topics,
			Subtopics:      q.Pedagogy.Subtopics,
			Skills:         q.Pedagogy.Skills,
			Distractors:    q.Distractors,
		})
	}
	return entries, nil
}

// encodeBank renders entries in the on-disk bank format.
func encodeBank(entries []question.BankEntry) ([]byte, error) {
	doc := bankDocument{Questions: make([]bankQuestion, len(entries))}
	for i, e := range entries {
		doc.Questions[i] = bankQuestion{
			ID:             e.ID,
			Difficulty:     e.Difficulty,
			CognitiveLevel: e.CognitiveLevel,
			Content: bankContent{
				Stem:        e.Text,
				Code:        e.Code,
				Options:     e.Options,
				Explanation: e.Explanation,
			},
			Pedagogy: bankPedagogy{
				Topics:    e.Topics,
				Subtopics: e.Subtopics,
				Skills:    e.Skills,
			},
			Distractors: e.Distractors,
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}
