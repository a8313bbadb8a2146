package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/wm"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	st, err := s.daemon.Status()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		Monitors:      st.Monitors,
		ClientCount:   st.ClientCount,
		Tags:          st.Tags,
		UptimeSeconds: st.UptimeSeconds,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.daemon.Clients()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	appID := strings.ToLower(args.AppID)
	windows := make([]wm.ClientInfo, 0, len(data.Clients))
	for _, c := range data.Clients {
		if args.Monitor != "" && c.Monitor != args.Monitor {
			continue
		}
		if appID != "" && !strings.Contains(strings.ToLower(c.AppID), appID) {
			continue
		}
		if args.VisibleOnly && !c.Visible {
			continue
		}
		windows = append(windows, c)
	}
	return nil, ListWindowsOutput{Windows: windows}, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.daemon.Monitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}
	return nil, ListMonitorsOutput{Monitors: data.Monitors}, nil
}

func (s *Server) handleDispatch(_ context.Context, _ *mcpsdk.CallToolRequest, args DispatchInput) (*mcpsdk.CallToolResult, DispatchOutput, error) {
	action := strings.TrimSpace(args.Action)
	// Parse locally so a typo is reported without a round trip.
	if _, err := bindings.ParseAction(action); err != nil {
		return nil, DispatchOutput{}, fmt.Errorf("invalid action %q: %w", action, err)
	}
	if err := s.daemon.Dispatch(action); err != nil {
		return nil, DispatchOutput{}, err
	}
	s.logger.Info("mcp dispatch", "action", action)
	return nil, DispatchOutput{Action: action, OK: true}, nil
}

func (s *Server) handleViewTag(ctx context.Context, req *mcpsdk.CallToolRequest, args ViewTagInput) (*mcpsdk.CallToolResult, DispatchOutput, error) {
	if args.Tag < 1 {
		return nil, DispatchOutput{}, fmt.Errorf("tag must be >= 1, got %d", args.Tag)
	}
	verb := "view"
	if args.Toggle {
		verb = "toggleview"
	}
	return s.handleDispatch(ctx, req, DispatchInput{Action: fmt.Sprintf("%s %d", verb, args.Tag)})
}

func (s *Server) handleReloadConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadConfigInput) (*mcpsdk.CallToolResult, ReloadConfigOutput, error) {
	if err := s.daemon.Reload(); err != nil {
		return nil, ReloadConfigOutput{}, err
	}
	return nil, ReloadConfigOutput{OK: true}, nil
}
