package knowledge

import (
	"strings"

	"github.com/abhisek/rubrix/internal/question"
)

// BankExamples selects up to maxTotal bank entries of subject tagged with
// any of the topics. With a difficulty, entries of that difficulty come
// first and topic matches of other difficulties fill the remainder. Within
// each pass entries keep bank order. An unknown subject or no match yields
// an empty slice.
func (st *Store) BankExamples(subjectName string, topicIDs []string, difficulty question.Difficulty, maxTotal int) []question.BankEntry {
	s, ok := st.byName[subjectName]
	if !ok || maxTotal <= 0 {
		return []question.BankEntry{}
	}

	codes := s.codesFor(topicIDs)
	if len(codes) == 0 {
		return []question.BankEntry{}
	}

	want := difficulty.Code()
	out := make([]question.BankEntry, 0, maxTotal)
	taken := make([]bool, len(s.entries))

	for i, e := range s.entries {
		if len(out) == maxTotal {
			return out
		}
		if !e.HasTopic(codes) {
			continue
		}
		if want != "" && e.Difficulty != want {
			continue
		}
		out = append(out, e)
		taken[i] = true
	}

	if want == "" {
		return out
	}

	for i, e := range s.entries {
		if len(out) == maxTotal {
			break
		}
		if taken[i] || !e.HasTopic(codes) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// codesFor maps topic ids to the set of topic codes they name. An id that
// matches no topic is used as a code directly.
func (s *subject) codesFor(ids []string) map[string]struct{} {
	codes := make(map[string]struct{})
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		mapped, ok := s.lookup[id]
		if !ok {
			mapped, ok = s.lookup[strings.ToLower(id)]
		}
		if !ok {
			mapped = []string{id}
		}
		for _, c := range mapped {
			codes[c] = struct{}{}
		}
	}
	return codes
}
