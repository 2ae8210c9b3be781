package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rubrix/internal/llm"
	"github.com/abhisek/rubrix/internal/question"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate questions into the working set",
	Long: "Generate asks the configured LLM for new questions on the given subject and topics.\n" +
		"The working set is replaced unless --append is given.",
	Args: cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		req.Append, _ = cmd.Flags().GetBool("append")

		ctx := cmd.Context()
		if _, err := e.subject(ctx, req.Subject); err != nil {
			return err
		}
		gen, ctx, cancel, err := e.generator(ctx)
		if err != nil {
			return err
		}
		defer cancel()

		ws, err := e.workspace(ctx, gen)
		if err != nil {
			return err
		}

		if stream, _ := cmd.Flags().GetBool("stream"); stream {
			ctx = llm.WithStream(ctx, func(delta string) {
				fmt.Fprint(os.Stderr, delta)
			})
		}

		fmt.Fprintf(os.Stderr, "Generating %d %s question(s) on %s...\n",
			req.Count, req.Difficulty, strings.Join(req.Topics, ", "))
		qs, err := ws.Generate(ctx, req)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}

		printList(qs)
		return nil
	}),
}

// requestFromFlags reads the request flags shared by generate and prompt.
func requestFromFlags(cmd *cobra.Command) (question.GenerationRequest, error) {
	subject, _ := cmd.Flags().GetString("subject")
	topics, _ := cmd.Flags().GetStringSlice("topics")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")
	notes, _ := cmd.Flags().GetString("notes")

	d := question.Difficulty(strings.ToLower(difficulty))
	if !d.Valid() {
		return question.GenerationRequest{}, fmt.Errorf("invalid difficulty %q (want easy, medium or hard)", difficulty)
	}
	return question.GenerationRequest{
		Subject:    subject,
		Topics:     topics,
		Difficulty: d,
		Count:      count,
		Notes:      notes,
	}, nil
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("subject", "s", "", "Subject name (see `rubrix subjects`)")
	cmd.Flags().StringSliceP("topics", "t", nil, "Comma-separated topic IDs (see `rubrix topics`)")
	cmd.Flags().StringP("difficulty", "d", string(question.DifficultyMedium), "Difficulty: easy, medium or hard")
	cmd.Flags().IntP("count", "n", 5, "Number of questions to generate")
	cmd.Flags().String("notes", "", "Additional instructions for the model")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("topics")
}

func init() {
	addRequestFlags(generateCmd)
	generateCmd.Flags().Bool("append", false, "Append to the working set instead of replacing it")
	generateCmd.Flags().Bool("stream", false, "Echo model output to stderr as it arrives")
}
