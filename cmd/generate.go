package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdeck/internal/bank"
	"github.com/abhisek/quizdeck/internal/quiz"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate questions and print them as text or as a question bank",
	Long: "Generate questions for the given topics. With --format json or yaml the output is a\n" +
		"question bank that can be loaded for assessments with --bank.",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "text", string(bank.FormatJSON), string(bank.FormatYAML):
		default:
			return fmt.Errorf("unknown format %q: must be text, json or yaml", format)
		}

		e, err := newEnv(cmd, envOptions{llm: true})
		if err != nil {
			return err
		}
		defer e.close()

		ctx := commandContext(cmd)
		settings, err := settingsFromFlags(ctx, cmd, e)
		if err != nil {
			return err
		}
		if !settings.Mode.Generated() {
			return &quiz.ValidationError{Field: "mode", Message: "generate works with practice or remedial mode"}
		}

		banks, _ := cmd.Flags().GetStringSlice("bank")
		questions, err := generate(ctx, e, settings, e.bankPaths(banks), seededRand(cmd), os.Stderr)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
			if format == "text" && bank.FormatFromPath(path) == bank.FormatYAML {
				format = string(bank.FormatYAML)
			}
		}

		if format == "text" {
			printQuestions(out, questions)
			return nil
		}
		return bank.Write(out, questions, bank.Format(format))
	},
}

func init() {
	addSettingsFlags(generateCmd)
	generateCmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")
	generateCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	generateCmd.Flags().StringSliceP("bank", "b", nil, "Question bank with style examples (used with --style)")
}

func printQuestions(w io.Writer, questions []quiz.Question) {
	for i, q := range questions {
		fmt.Fprintf(w, "%d. [%s, %s] %s\n", i+1, q.Topic, q.Difficulty, q.Text)
		for j, opt := range q.Options {
			fmt.Fprintf(w, "   %c) %s\n", 'a'+j, opt)
		}
		fmt.Fprintf(w, "   Answer: %s\n", q.CorrectAnswer)
		if q.Explanation != "" {
			fmt.Fprintf(w, "   %s\n", q.Explanation)
		}
		fmt.Fprintln(w)
	}
}
