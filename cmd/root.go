package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rubrix",
	Short: "LLM-assisted multiple-choice quiz generator",
	Long: "Rubrix generates multiple-choice quiz questions for academic subjects with an LLM,\n" +
		"keeps a working question set you can edit, and exports it as text, Markdown, QTI or DOCX.",
	SilenceUsage: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default: ./rubrix.yaml or $XDG_CONFIG_HOME/rubrix/rubrix.yaml)")
	pf.String("db", "", "Path to SQLite database file (overrides RUBRIX_DB_PATH)")
	pf.String("provider", "", "LLM provider (anthropic, openai, gemini, openrouter, bedrock, ollama, mock)")
	pf.String("model", "", "Model name or ID for the selected provider")
	pf.String("knowledge-dir", "", "Knowledge base directory that shadows the bundled one")
	pf.String("log-format", "", "Log encoding: console or json")
	pf.BoolP("verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
