package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/rubrix/internal/quizgen"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the generation prompt without calling the model",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		kb, err := e.subject(cmd.Context(), req.Subject)
		if err != nil {
			return err
		}

		gen := quizgen.New(nil, kb, e.generatorConfig(), e.log)
		fmt.Println(gen.Prompt(req))
		return nil
	}),
}

var promptRegenerateCmd = &cobra.Command{
	Use:   "regenerate <n>",
	Short: "Print the prompt that would replace question n",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		instructions, _ := cmd.Flags().GetString("instructions")

		kb, err := e.knowledge(cmd.Context())
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

		gen := quizgen.New(nil, kb, e.generatorConfig(), e.log)
		fmt.Println(gen.RegeneratePrompt(current, ws.List(), instructions))
		return nil
	}),
}

func init() {
	addRequestFlags(promptCmd)
	promptRegenerateCmd.Flags().StringP("instructions", "i", "", "Extra instructions for the replacement question")
	promptCmd.AddCommand(promptRegenerateCmd)
}
