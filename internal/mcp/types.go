package mcp

import "github.com/1broseidon/tagtile/internal/wm"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Monitors      []wm.MonitorStatus `json:"monitors"`
	ClientCount   int                `json:"client_count"`
	Tags          []string           `json:"tags"`
	UptimeSeconds int64              `json:"uptime_seconds"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Monitor     string `json:"monitor,omitempty" jsonschema:"Only list windows on this output (e.g. eDP-1)"`
	AppID       string `json:"app_id,omitempty" jsonschema:"Only list windows whose app id contains this text (case-insensitive)"`
	VisibleOnly bool   `json:"visible_only,omitempty" jsonschema:"When true, skip windows whose tags are not shown"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []wm.ClientInfo `json:"windows"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []wm.MonitorInfo `json:"monitors"`
}

// DispatchInput is the input for the dispatch tool.
type DispatchInput struct {
	Action string `json:"action" jsonschema:"required,Action in text form, e.g. 'view 3', 'tag 2', 'setlayout 1', 'setmfact +0.05', 'focusmon right', 'spawn foot'"`
}

// DispatchOutput is the output for the dispatch tool.
type DispatchOutput struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
}

// ViewTagInput is the input for the view_tag tool.
type ViewTagInput struct {
	Tag    int  `json:"tag" jsonschema:"required,1-based tag number to show"`
	Toggle bool `json:"toggle,omitempty" jsonschema:"When true, add or remove the tag from the view instead of replacing it"`
}

// ReloadConfigInput is the input for the reload_config tool.
type ReloadConfigInput struct{}

// ReloadConfigOutput is the output for the reload_config tool.
type ReloadConfigOutput struct {
	OK bool `json:"ok"`
}
