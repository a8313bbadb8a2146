// Package mcp exposes the running window manager to MCP clients over stdio.
// Every tool is a thin call through the daemon's IPC socket.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagtile/internal/ipc"
)

const (
	ServerName    = "tagtile"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools use.
type Daemon interface {
	Status() (*ipc.StatusData, error)
	Clients() (*ipc.ClientsData, error)
	Monitors() (*ipc.MonitorsData, error)
	Dispatch(action string) error
	Reload() error
}

// Server is the MCP server for tagtile.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a server that talks to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{daemon: daemon, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report what the status bar shows for every monitor: focused window title and app id, occupied, active and urgent tag masks, and the layout symbol.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List managed windows in tiling order with their tags, monitor, floating and fullscreen state and geometry.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List monitors with geometry, work area, shown tags, layout, master factor and master count.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dispatch",
		Description: "Run a window manager action on the selected monitor, exactly as a key binding would.",
	}, s.handleDispatch)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "view_tag",
		Description: "Show a tag on the selected monitor, or toggle it into the current view.",
	}, s.handleViewTag)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Re-read the configuration file. An invalid file is rejected and the running config stays in place.",
	}, s.handleReloadConfig)
}
