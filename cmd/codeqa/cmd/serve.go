package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/mcpserver"
)

func newServeCmd() *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the ten operations as MCP tools over stdio",
		Long: `serve starts an MCP server exposing every operation as a tool,
for an agent framework such as Claude Code or Cursor to call. It writes
nothing to stdout — that is reserved for the JSON-RPC transport — and runs
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, transport)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport to serve on (only stdio is currently supported)")
	return cmd
}

func runServe(cmd *cobra.Command, transport string) error {
	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcpserver.NewServer(engine)
	return server.Serve(ctx, transport)
}
