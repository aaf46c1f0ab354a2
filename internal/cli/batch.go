package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sibyl/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Answer multiple questions from a file in parallel",
	Long: `Batch answers multiple questions concurrently:
- Read questions from input file (one per line, '#' comments skipped)
- Each question runs its own escalation loop
- One JSON result file per question

Example:
  sibyl batch questions.txt
  sibyl batch questions.txt --concurrency 4 --output-dir ./answers`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./sibyl-answers", "output directory for answers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	logger := newLogger()

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintf(os.Stderr, "Input file: %s\n", file)
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "Output dir: %s\n\n", outputDir)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(engine, concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return err
	}

	failed := 0
	for i, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Question, result.Error)
			continue
		}

		path := filepath.Join(outputDir, fmt.Sprintf("answer-%03d.json", i+1))
		data, err := json.MarshalIndent(result.Answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal answer: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write answer: %w", err)
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "✓ %s -> %s\n", result.Question, path)
		}
	}

	fmt.Fprintf(os.Stderr, "\nAnswered %d/%d questions\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d question(s) failed", failed)
	}
	return nil
}
