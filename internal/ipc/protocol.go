package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/tagtile/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing     CommandType = "PING"
	CommandStatus   CommandType = "STATUS"
	CommandClients  CommandType = "CLIENTS"
	CommandMonitors CommandType = "MONITORS"
	CommandDispatch CommandType = "DISPATCH"
	CommandReload   CommandType = "RELOAD"
	CommandClick    CommandType = "CLICK"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by STATUS.
type StatusData struct {
	Monitors      []wm.MonitorStatus `json:"monitors"`
	ClientCount   int                `json:"client_count"`
	Tags          []string           `json:"tags"`
	UptimeSeconds int64              `json:"uptime_seconds"`
}

// ClientsData is returned by CLIENTS.
type ClientsData struct {
	Clients []wm.ClientInfo `json:"clients"`
}

// MonitorsData is returned by MONITORS.
type MonitorsData struct {
	Monitors []wm.MonitorInfo `json:"monitors"`
}

// DispatchPayload carries one action in its textual form, e.g. "view 3".
type DispatchPayload struct {
	Action string `json:"action"`
}

// ClickPayload reports a pointer click on an external bar. Tag is the
// 1-based tag number for tag-bar clicks.
type ClickPayload struct {
	Monitor string   `json:"monitor,omitempty"`
	Click   string   `json:"click"`
	Mods    []string `json:"mods,omitempty"`
	Button  string   `json:"button"`
	Tag     int      `json:"tag,omitempty"`
}

// ClickData tells the bar whether a binding consumed the click.
type ClickData struct {
	Consumed bool `json:"consumed"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
