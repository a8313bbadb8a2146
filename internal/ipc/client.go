package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/tagtile/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket of this session.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = raw
	}
	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Ping checks that the daemon answers.
func (c *Client) Ping() error {
	return c.call(CommandPing, nil, nil)
}

// Status returns the per-monitor status.
func (c *Client) Status() (*StatusData, error) {
	var data StatusData
	if err := c.call(CommandStatus, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Clients returns every managed window.
func (c *Client) Clients() (*ClientsData, error) {
	var data ClientsData
	if err := c.call(CommandClients, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Monitors returns every monitor.
func (c *Client) Monitors() (*MonitorsData, error) {
	var data MonitorsData
	if err := c.call(CommandMonitors, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Dispatch runs an action such as "view 2" or "setlayout 1".
func (c *Client) Dispatch(action string) error {
	return c.call(CommandDispatch, DispatchPayload{Action: action}, nil)
}

// Reload asks the daemon to re-read its config.
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Click reports a click on an external bar and returns whether a binding
// consumed it.
func (c *Client) Click(p ClickPayload) (bool, error) {
	var data ClickData
	if err := c.call(CommandClick, p, &data); err != nil {
		return false, err
	}
	return data.Consumed, nil
}
