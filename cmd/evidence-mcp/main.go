package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phototype/evidence-mcp/internal/config"
	"github.com/phototype/evidence-mcp/internal/document"
	"github.com/phototype/evidence-mcp/internal/extract"
	"github.com/phototype/evidence-mcp/internal/fieldmap"
	"github.com/phototype/evidence-mcp/internal/link"
	"github.com/phototype/evidence-mcp/internal/logging"
	"github.com/phototype/evidence-mcp/internal/match"
	"github.com/phototype/evidence-mcp/internal/mcp"
	"github.com/phototype/evidence-mcp/internal/mcp/tools"
	"github.com/phototype/evidence-mcp/internal/query"
	"github.com/phototype/evidence-mcp/internal/schema"
	"github.com/phototype/evidence-mcp/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:   "evidence-mcp",
		Short: "MCP server linking extracted field values to evidence spans in document text",
		// Running with no subcommand starts the server, so the binary
		// can be used directly as an MCP stdio command.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newLinkCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe loads configuration from the environment (see internal/config for
// all options) and runs the stdio MCP server until the context is cancelled.
func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	closeLog, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closeLog()

	st, err := store.New(cfg.UploadsDir, cfg.JSONDir, cfg.DocCacheMax)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return fmt.Errorf("building schema: %w", err)
	}

	deps := &tools.Deps{
		Config:    cfg,
		Store:     st,
		Extractor: extract.New(),
		Query:     query.NewEngine(),
		Schema:    validator,
	}

	server, err := mcp.NewServer(deps)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	slog.Info("starting evidence MCP server on stdio")
	if err := server.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	slog.Info("server stopped")
	return nil
}

func newLinkCmd() *cobra.Command {
	var (
		floor       float64
		maxResults  int
		step        float64
		concurrency int
		deadlineMs  int64
	)

	cmd := &cobra.Command{
		Use:   "link <text-file> <mapping.json>",
		Short: "Link a field mapping to evidence spans in a text file and print the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			mappingData, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			doc, err := document.New(string(text), store.PageBreaks(string(text)))
			if err != nil {
				return err
			}
			mapping, err := fieldmap.Decode(mappingData)
			if err != nil {
				return fmt.Errorf("parsing mapping: %w", err)
			}

			cfg := link.Config{
				Match: match.Config{
					ScoreFloor:   floor,
					StepFraction: step,
				},
				MaxResultsPerField: maxResults,
				Concurrency:        concurrency,
				Deadline:           time.Duration(deadlineMs) * time.Millisecond,
			}

			result, err := link.Link(cmd.Context(), doc, mapping, cfg)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().Float64Var(&floor, "floor", config.DefaultScoreFloor, "minimum span score")
	cmd.Flags().IntVar(&maxResults, "max-results", config.DefaultMaxResultsPerField, "max spans per field")
	cmd.Flags().Float64Var(&step, "step", config.DefaultStepFraction, "window step as a fraction of the window size")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "field workers (0 uses all CPUs)")
	cmd.Flags().Int64Var(&deadlineMs, "deadline-ms", 0, "overall deadline in milliseconds (0 means none)")
	return cmd
}
