package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rubrix/internal/knowledge"
	"github.com/abhisek/rubrix/internal/question"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Inspect and edit a subject's example question bank",
}

var bankShowCmd = &cobra.Command{
	Use:   "show <subject>",
	Short: "List the bank entries of a subject",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		topic, _ := cmd.Flags().GetString("topic")

		kb, err := e.subject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		entries := kb.BankEntries(args[0])
		if topic != "" {
			entries = filterByTopic(entries, kb.Topics(args[0]), topic)
		}
		if len(entries) == 0 {
			fmt.Println("No bank entries found.")
			return nil
		}

		fmt.Printf("%-10s  %-4s  %-12s  %s\n", "ID", "Diff", "Topics", "Question")
		fmt.Println(strings.Repeat("─", 90))
		for _, en := range entries {
			fmt.Printf("%-10s  %-4s  %-12s  %s\n",
				truncate(en.ID, 10), en.Difficulty,
				truncate(strings.Join(en.Topics, ","), 12),
				truncate(firstLine(en.Text), 56))
		}
		return nil
	}),
}

var bankExportCmd = &cobra.Command{
	Use:   "export <subject>",
	Short: "Write a subject's bank as question-bank JSON",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		out, _ := cmd.Flags().GetString("out")

		kb, err := e.subject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := knowledge.EncodeBank(kb.BankEntries(args[0]))
		if err != nil {
			return err
		}
		data = append(data, '\n')

		if out == "" || out == "-" {
			_, err := os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote bank to %s\n", out)
		return nil
	}),
}

var bankImportCmd = &cobra.Command{
	Use:   "import <subject> <file>",
	Short: "Validate a question-bank JSON file and save it as the subject's bank",
	Long: "Import replaces the subject's question-bank.json in the knowledge directory\n" +
		"(--knowledge-dir or knowledge.dir). The file is checked before anything is written.",
	Args: cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		data, err := readInput(args[1])
		if err != nil {
			return err
		}
		entries, err := knowledge.ParseBank(data)
		if err != nil {
			return err
		}

		kb, err := e.subject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		path, err := kb.SaveBank(args[0], entries)
		if err != nil {
			return fmt.Errorf("save bank: %w", err)
		}
		fmt.Printf("Saved %d entries to %s\n", len(entries), path)
		return nil
	}),
}

// filterByTopic keeps entries tagged with the topic whose id or code is topic.
func filterByTopic(entries []question.BankEntry, topics []question.TopicInfo, topic string) []question.BankEntry {
	codes := map[string]struct{}{topic: {}}
	for _, t := range topics {
		if strings.EqualFold(t.ID, topic) {
			codes[t.Code] = struct{}{}
		}
	}
	var out []question.BankEntry
	for _, en := range entries {
		if en.HasTopic(codes) {
			out = append(out, en)
		}
	}
	return out
}

func init() {
	bankShowCmd.Flags().String("topic", "", "Only show entries for this topic ID or code")
	bankExportCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")

	bankCmd.AddCommand(bankShowCmd)
	bankCmd.AddCommand(bankExportCmd)
	bankCmd.AddCommand(bankImportCmd)
}
