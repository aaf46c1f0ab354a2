package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sibyl/internal/api"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query API",
	Long: `Serve exposes the escalation loop over HTTP:

  POST /query   {"question": "..."}  =>  {"generation": "..."}
  GET  /health

Requires OPENAI_API_KEY (or GROQ_API_KEY), TAVILY_API_KEY and
SIBYL_DATABASE_URL in the environment.

Example:
  sibyl serve
  sibyl serve --addr 0.0.0.0:8090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger := newLogger()

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if verbose {
		fmt.Fprintf(os.Stderr, "Provider: %s, model: %s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(os.Stderr, "Corpus table: %s (top %d)\n", cfg.Store.Table, cfg.Store.TopK)
		fmt.Fprintf(os.Stderr, "Max escalation rounds: %d\n", cfg.Loop.MaxRounds)
	}

	server := api.NewServer(engine, logger)
	return server.Run(ctx, cfg.Server.Addr)
}
