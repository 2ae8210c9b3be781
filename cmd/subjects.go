package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List the subjects in the knowledge base",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		kb, err := e.knowledge(cmd.Context())
		if err != nil {
			return err
		}

		subjects := kb.Subjects()
		if len(subjects) == 0 {
			fmt.Println("No subjects found.")
			return nil
		}

		fmt.Printf("%-32s  %6s\n", "Subject", "Topics")
		fmt.Println(strings.Repeat("─", 40))
		for _, s := range subjects {
			fmt.Printf("%-32s  %6d\n", truncate(s.Name, 32), s.TopicCount)
		}
		return nil
	}),
}

var topicsCmd = &cobra.Command{
	Use:   "topics <subject>",
	Short: "List the topics of a subject",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		kb, err := e.subject(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		topics := kb.Topics(args[0])
		if len(topics) == 0 {
			fmt.Printf("No topics found for %s.\n", args[0])
			return nil
		}

		fmt.Printf("%-24s  %-6s  %-40s  %8s\n", "ID", "Code", "Name", "Examples")
		fmt.Println(strings.Repeat("─", 84))
		for _, t := range topics {
			fmt.Printf("%-24s  %-6s  %-40s  %8d\n",
				truncate(t.ID, 24), t.Code, truncate(t.Name, 40), t.ExampleCount)
		}
		return nil
	}),
}
