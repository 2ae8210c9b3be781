package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved versions of the working question set",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := e.openStore()
		if err != nil {
			return err
		}
		sets, err := s.QuestionSetRepo().QuestionSetHistory(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		if len(sets) == 0 {
			fmt.Println("No saved question sets.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %9s\n", "ID", "Saved", "Questions")
		fmt.Println(strings.Repeat("─", 37))
		for i, qs := range sets {
			line := fmt.Sprintf("%-5d  %-19s  %9d", qs.ID, qs.Timestamp.Local().Format("2006-01-02 15:04:05"), qs.Count)
			if i == 0 {
				line += "  " + styled(dimStyle, "(current)")
			}
			fmt.Println(line)
		}
		return nil
	}),
}

var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Make a saved version the working question set",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := e.openStore()
		if err != nil {
			return err
		}
		saved, err := s.QuestionSetRepo().GetQuestionSet(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get question set: %w", err)
		}
		if saved == nil {
			return fmt.Errorf("question set %d not found", id)
		}

		ws, err := e.workspace(cmd.Context(), nil)
		if err != nil {
			return err
		}
		if err := ws.Set(cmd.Context(), saved.Data.Questions); err != nil {
			return err
		}
		fmt.Printf("Restored question set %d (%d questions).\n", id, saved.Count)
		return nil
	}),
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of versions to show")
}
