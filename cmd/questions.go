package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rubrix/internal/parse"
	"github.com/abhisek/rubrix/internal/question"
	"github.com/abhisek/rubrix/internal/workspace"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the working question set",
	Args:    cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		ws, err := e.workspace(cmd.Context(), nil)
		if err != nil {
			return err
		}
		printList(ws.List())
		return nil
	}),
}

var showCmd = &cobra.Command{
	Use:   "show [n]",
	Short: "Show a question in full, or every question when n is omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		ws, err := e.workspace(cmd.Context(), nil)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			qs := ws.List()
			if len(qs) == 0 {
				fmt.Println(emptySetHint)
			}
			for i, q := range qs {
				printQuestion(i+1, q)
			}
			return nil
		}

		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		q, err := ws.Get(index)
		if err != nil {
			return err
		}
		printQuestion(index+1, q)
		return nil
	}),
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <n>",
	Short: "Replace question n with a freshly generated one",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		instructions, _ := cmd.Flags().GetString("instructions")

		gen, ctx, cancel, err := e.generator(cmd.Context())
		if err != nil {
			return err
		}
		defer cancel()

		ws, err := e.workspace(ctx, gen)
		if err != nil {
			return err
		}
		q, err := ws.Regenerate(ctx, index, instructions)
		if err != nil {
			return fmt.Errorf("regenerate: %w", err)
		}
		printQuestion(index+1, q)
		return nil
	}),
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a placeholder question to edit with `rubrix update`",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		ws, err := e.workspace(cmd.Context(), nil)
		if err != nil {
			return err
		}
		q, err := ws.Add(cmd.Context())
		if err != nil {
			return err
		}
		printQuestion(ws.Len(), q)
		return nil
	}),
}

var deleteCmd = &cobra.Command{
	Use:     "delete <n>",
	Aliases: []string{"rm"},
	Short:   "Remove question n from the working set",
	Args:    cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		ws, err := e.workspace(cmd.Context(), nil)
		if err != nil {
			return err
		}
		if err := ws.Delete(cmd.Context(), index); err != nil {
			return err
		}
		fmt.Printf("Deleted question %d. %d question(s) left.\n", index+1, ws.Len())
		return nil
	}),
}

var updateCmd = &cobra.Command{
	Use:   "update <n> <file>",
	Short: "Overwrite question n with a JSON question object read from file (- for stdin)",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		data, err := readInput(args[1])
		if err != nil {
			return err
		}

		ws, err := e.workspace(cmd.Context(), nil)
		if err != nil {
			return err
		}
		current, err := ws.Get(index)
		if err != nil {
			return err
		}

		qs, err := parse.Parse("[" + strings.TrimSpace(string(data)) + "]")
		if err != nil {
			return fmt.Errorf("read question: %w", err)
		}
		q := qs[0]
		q.ID = current.ID
		if q.Subject == "" {
			q.Subject = current.Subject
		}
		if len(q.Topics) == 0 {
			q.Topics = current.Topics
		}

		if err := ws.Update(cmd.Context(), index, q); err != nil {
			return err
		}
		printQuestion(index+1, q)
		return nil
	}),
}

var setCmd = &cobra.Command{
	Use:   "set <file>",
	Short: "Replace the working set with a JSON array of questions read from file (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		qs, err := parse.Parse(string(data))
		if err != nil {
			return fmt.Errorf("read questions: %w", err)
		}

		ws, err := e.workspace(cmd.Context(), nil)
		if err != nil {
			return err
		}
		if err := ws.Set(cmd.Context(), qs); err != nil {
			return err
		}
		printList(qs)
		return nil
	}),
}

const emptySetHint = "No questions yet. Run `rubrix generate` to create some."

func printList(qs []question.Question) {
	if len(qs) == 0 {
		fmt.Println(emptySetHint)
		return
	}
	for i, q := range qs {
		mark := styled(dimStyle, fmt.Sprintf("[%d answers]", len(q.Answers)))
		if q.CorrectCount() != 1 {
			mark = styled(errorStyle, fmt.Sprintf("[%d correct]", q.CorrectCount()))
		}
		fmt.Printf("%3d. %s %s\n", i+1, truncate(firstLine(q.Text), 72), mark)
	}
}

func printQuestion(n int, q question.Question) {
	fmt.Println(styled(headingStyle, fmt.Sprintf("Question %d", n)) + " " + styled(dimStyle, "("+q.ID+")"))
	fmt.Println(q.Text)
	if q.Code != "" {
		fmt.Printf("\n```\n%s\n```\n", q.Code)
	}
	fmt.Println()
	for i, a := range q.Answers {
		line := fmt.Sprintf("  %s. %s", letter(i), a.Text)
		if a.IsCorrect {
			line = styled(correctStyle, line+"  ✓")
		}
		fmt.Println(line)
	}
	if q.Explanation != "" {
		fmt.Printf("\n%s %s\n", styled(dimStyle, "Explanation:"), q.Explanation)
	}
	if q.Distractors != "" {
		fmt.Printf("%s %s\n", styled(dimStyle, "Distractors:"), q.Distractors)
	}
	if q.Subject != "" {
		fmt.Printf("%s %s / %s\n", styled(dimStyle, "Topic:"), q.Subject, strings.Join(q.Topics, ", "))
	}
	fmt.Println()
}

// parseIndex converts a 1-based question number to a workspace index.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid question number %q", arg)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: question numbers start at 1", workspace.ErrInvalidIndex)
	}
	return n - 1, nil
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, errors.New(path + " is empty")
	}
	return data, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func letter(i int) string {
	return string(rune('a' + i))
}

func init() {
	regenerateCmd.Flags().StringP("instructions", "i", "", "Extra instructions for the replacement question")
}
