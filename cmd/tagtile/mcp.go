package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagtile/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP tools over stdio",
	Long: `Start an MCP server on stdio that inspects and drives the running
window manager through its control socket.

Example (Claude Code):
  claude mcp add tagtile -- tagtile mcp`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// stdout carries the protocol, so logs stay on stderr.
		logger := newLogger(cmd, "warn")
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return mcp.NewServer(ipcClient(cmd), logger).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
