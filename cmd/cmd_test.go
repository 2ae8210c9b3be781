package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rubrix/internal/question"
	"github.com/abhisek/rubrix/internal/store"
	"github.com/abhisek/rubrix/internal/workspace"
)

func run(t *testing.T, db string, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	rootCmd.SetArgs(append([]string{"--db", db}, args...))
	return rootCmd.ExecuteContext(context.Background())
}

func latest(t *testing.T, db string) []question.Question {
	t.Helper()
	s, err := store.Open(db)
	require.NoError(t, err)
	defer s.Close()

	qs, err := s.QuestionSetRepo().LatestQuestionSet(context.Background())
	require.NoError(t, err)
	return qs
}

func TestParseIndex(t *testing.T) {
	i, err := parseIndex("3")
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = parseIndex("0")
	assert.ErrorIs(t, err, workspace.ErrInvalidIndex)

	_, err = parseIndex("two")
	assert.Error(t, err)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "What is recursion?", firstLine("\n  What is recursion?\nMore text"))
	assert.Equal(t, "", firstLine(""))
}

func TestFilterByTopic(t *testing.T) {
	entries := []question.BankEntry{
		{ID: "a", Topics: []string{"T001"}},
		{ID: "b", Topics: []string{"T002"}},
		{ID: "c", Topics: []string{"T002", "T001"}},
	}
	topics := []question.TopicInfo{{ID: "recursion", Code: "T001"}}

	got := filterByTopic(entries, topics, "recursion")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	got = filterByTopic(entries, topics, "T002")
	assert.Len(t, got, 2)
}

func TestRequestFromFlags(t *testing.T) {
	newCmd := func() *cobra.Command {
		c := &cobra.Command{Use: "x"}
		addRequestFlags(c)
		return c
	}

	c := newCmd()
	require.NoError(t, c.ParseFlags([]string{"-s", "Computer Science", "-t", "recursion,sorting", "-d", "HARD", "-n", "2", "--notes", "no trick questions"}))
	req, err := requestFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", req.Subject)
	assert.Equal(t, []string{"recursion", "sorting"}, req.Topics)
	assert.Equal(t, question.DifficultyHard, req.Difficulty)
	assert.Equal(t, 2, req.Count)
	assert.Equal(t, "no trick questions", req.Notes)

	c = newCmd()
	require.NoError(t, c.ParseFlags([]string{"-d", "impossible"}))
	_, err = requestFromFlags(c)
	assert.Error(t, err)
}

func TestWorkingSetCommands(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "rubrix.db")

	require.NoError(t, run(t, db, "add"))
	require.NoError(t, run(t, db, "add"))
	require.NoError(t, run(t, db, "delete", "1"))

	qs := latest(t, db)
	require.Len(t, qs, 1)
	assert.Equal(t, "q2", qs[0].ID)

	assert.Error(t, run(t, db, "delete", "5"))
	assert.Len(t, latest(t, db), 1)

	file := filepath.Join(dir, "set.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"text":"What does a base case do?","answers":[{"text":"Stops recursion","is_correct":true},{"text":"Starts it","is_correct":false}]},
		{"text":"Which uses a stack?","answers":[{"text":"Recursion","is_correct":true},{"text":"Assignment","is_correct":false}]}
	]`), 0o644))
	require.NoError(t, run(t, db, "set", file))

	qs = latest(t, db)
	require.Len(t, qs, 2)
	assert.Equal(t, "q1", qs[0].ID)
	assert.Equal(t, "Which uses a stack?", qs[1].Text)

	one := filepath.Join(dir, "one.json")
	require.NoError(t, os.WriteFile(one, []byte(`{"text":"Edited","answers":[{"text":"Yes","is_correct":true},{"text":"No","is_correct":false}]}`), 0o644))
	require.NoError(t, run(t, db, "update", "2", one))

	qs = latest(t, db)
	require.Len(t, qs, 2)
	assert.Equal(t, "q2", qs[1].ID)
	assert.Equal(t, "Edited", qs[1].Text)

	out := filepath.Join(dir, "quiz.txt")
	require.NoError(t, run(t, db, "export", "--format", "txt", "--title", "Recursion", "--out", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Title: Recursion\n\n1. What does a base case do?"))
}

func TestGenerateFailureKeepsSet(t *testing.T) {
	db := filepath.Join(t.TempDir(), "rubrix.db")
	require.NoError(t, run(t, db, "add"))

	err := run(t, db, "--provider", "mock", "generate", "-s", "Computer Science", "-t", "recursion", "-n", "2")
	require.Error(t, err)

	qs := latest(t, db)
	require.Len(t, qs, 1)
	assert.Equal(t, workspace.Placeholder(1), qs[0])
}

func TestGenerateUnknownSubject(t *testing.T) {
	db := filepath.Join(t.TempDir(), "rubrix.db")
	err := run(t, db, "--provider", "mock", "generate", "-s", "Alchemy", "-t", "transmutation")
	assert.ErrorContains(t, err, "unknown subject")
}
