package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rubrix/internal/question"
)

func TestSaveBank_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	base := fstest.MapFS{
		"subjects.yaml":           {Data: []byte("subjects:\n  - name: Computer Science\n    dir: cs\n")},
		"cs/question-schema.json": {Data: []byte(testSchema)},
		"cs/question-bank.json":   {Data: bankJSON(t, bankQ{"old", "D1", []string{"T009"}})},
	}

	st, err := Load(context.Background(), Options{Dir: dir, FS: base})
	require.NoError(t, err)
	require.Equal(t, []string{"old"}, ids(st.BankEntries("Computer Science")))

	entry := question.BankEntry{
		ID:             "new",
		Text:           "What does `f(3)` return?",
		Code:           "int f(int n) { return n <= 1 ? 1 : n * f(n - 1); }",
		Options:        []question.BankOption{{ID: "a", Text: "`6`", IsCorrect: true}, {ID: "b", Text: "`3`"}},
		Explanation:    "3 * 2 * 1",
		Difficulty:     "D2",
		CognitiveLevel: "C2",
		Topics:         []string{"T009"},
		Skills:         []string{"recursion tracing"},
		Distractors: question.Distractors{
			CommonMistakes: []question.CommonMistake{{OptionID: "b", Misconception: "stops at the first call"}},
			CommonErrors:   []string{"base case"},
		},
	}

	path, err := st.SaveBank("Computer Science", []question.BankEntry{entry})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cs", "question-bank.json"), path)

	matches, err := filepath.Glob(filepath.Join(dir, "cs", "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp file left behind")

	// The loaded store is unchanged; a fresh load sees the on-disk bank.
	assert.Equal(t, []string{"old"}, ids(st.BankEntries("Computer Science")))

	reloaded, err := Load(context.Background(), Options{Dir: dir, FS: base})
	require.NoError(t, err)
	got := reloaded.BankEntries("Computer Science")
	require.Len(t, got, 1)
	assert.Equal(t, entry, got[0])
	assert.Equal(t, 1, reloaded.Topics("Computer Science")[1].ExampleCount)
}

func TestSaveBank_Errors(t *testing.T) {
	base := fstest.MapFS{"Computer Science/question-schema.json": {Data: []byte(testSchema)}}

	st, err := Load(context.Background(), Options{FS: base})
	require.NoError(t, err)
	_, err = st.SaveBank("Computer Science", nil)
	assert.ErrorIs(t, err, ErrReadOnly)

	st, err = Load(context.Background(), Options{Dir: t.TempDir(), FS: base})
	require.NoError(t, err)
	_, err = st.SaveBank("Biology", nil)
	assert.ErrorIs(t, err, ErrUnknownSubject)
}

func TestWriteFileAtomic_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bank.json")
	require.NoError(t, writeFileAtomic(path, []byte("one")))
	require.NoError(t, writeFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestParseBank(t *testing.T) {
	valid := `{"questions":[{"id":"q1","difficulty":"D1","content":{"stem":"S","options":[{"id":"a","text":"x","is_correct":true},{"id":"b","text":"y","is_correct":false}]},"pedagogy":{"topics":["T001"]}}]}`

	entries, err := ParseBank([]byte(valid))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "S", entries[0].Text)

	data, err := EncodeBank(entries)
	require.NoError(t, err)
	again, err := ParseBank(data)
	require.NoError(t, err)
	assert.Equal(t, entries, again)

	bad := map[string]string{
		"not json":      `{`,
		"no stem":       `{"questions":[{"id":"q1","content":{"options":[]}}]}`,
		"no id":         `{"questions":[{"content":{"stem":"S","options":[{"text":"x","is_correct":true},{"text":"y"}]}}]}`,
		"one option":    `{"questions":[{"id":"q1","content":{"stem":"S","options":[{"text":"x","is_correct":true}]}}]}`,
		"two correct":   `{"questions":[{"id":"q1","content":{"stem":"S","options":[{"text":"x","is_correct":true},{"text":"y","is_correct":true}]}}]}`,
		"none correct":  `{"questions":[{"id":"q1","content":{"stem":"S","options":[{"text":"x"},{"text":"y"}]}}]}`,
		"duplicate ids": `{"questions":[` + `{"id":"q1","content":{"stem":"S","options":[{"text":"x","is_correct":true},{"text":"y"}]}},` + `{"id":"q1","content":{"stem":"T","options":[{"text":"x","is_correct":true},{"text":"y"}]}}]}`,
	}
	for name, in := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBank([]byte(in))
			assert.Error(t, err)
		})
	}
}
