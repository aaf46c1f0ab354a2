package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	askTimeout   time.Duration
	showEvidence bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question",
	Long: `Ask answers one question from the corpus, escalating to web search
when the corpus answer is graded inadequate.

Example:
  sibyl ask "What is hypertension?"
  sibyl ask "What is today's weather in Lagos?" --show-evidence`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall answer timeout")
	askCmd.Flags().BoolVar(&showEvidence, "show-evidence", false, "print accumulated evidence documents")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	cfg := loadConfig()
	logger := newLogger()

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if verbose {
		fmt.Fprintf(os.Stderr, "Question: %s\n", question)
	}

	result, err := engine.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}

	fmt.Println(result.Generation)

	if showEvidence {
		fmt.Fprintf(os.Stderr, "\nSource: %s (rounds: %d)\n", result.Source, result.Rounds)
		for i, doc := range result.Documents {
			fmt.Fprintf(os.Stderr, "\n--- Evidence %d ---\n%s\n", i+1, doc.Content)
			for _, src := range doc.Sources {
				fmt.Fprintf(os.Stderr, "  - %s\n", src)
			}
		}
	}

	return nil
}
