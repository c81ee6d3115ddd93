package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/internal/logging"
	"github.com/contriblens/contriblens/internal/mcp"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ranking tools over MCP stdio",
		Long: `Start an MCP server on stdio exposing search_opportunities,
match_user, trending_opportunities, and repo_health as tools.

Stdout carries JSON-RPC exclusively; logs go to the configured log
file and stderr. Point an MCP client at the binary:

  { "command": "contriblens", "args": ["serve"] }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}

	return cmd
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup, err := logging.Setup(logging.Config{
		Level:         cfg.Server.LogLevel,
		FilePath:      cfg.Server.LogFile,
		WriteToStderr: cfg.Server.LogFile == "",
	})
	if err != nil {
		return err
	}
	defer cleanup()
	slog.SetDefault(logger)

	p, closeStore, err := openPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	server, err := mcp.NewServer(p, logger)
	if err != nil {
		return err
	}

	logger.Info("mcp server starting",
		slog.String("store_dir", cfg.Store.Dir),
		slog.String("log_level", cfg.Server.LogLevel))

	return server.Run(ctx)
}
