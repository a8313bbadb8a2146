package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Controller runs a closure against the window manager on its owning
// goroutine.
type Controller interface {
	Do(ctx context.Context, fn func(*wm.Manager) error) error
}

// Reloader re-reads the configuration and applies it.
type Reloader interface {
	Reload(ctx context.Context, reason string) error
}

const requestTimeout = 5 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	ctl        Controller
	reloader   Reloader
	logger     *slog.Logger
	startTime  time.Time

	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a server that will listen on socketPath.
func NewServer(socketPath string, ctl Controller, reloader Reloader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		ctl:        ctl,
		reloader:   reloader,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// A stale socket from a crashed daemon would make Listen fail.
	if conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return fmt.Errorf("another daemon is listening on %s", s.socketPath)
	}
	_ = os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves one newline-terminated JSON request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(requestTimeout))

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("invalid request: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	s.send(conn, s.handleCommand(ctx, req))
}

func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)
	switch req.Command {
	case CommandPing:
		return ok(nil)
	case CommandStatus:
		return s.handleStatus(ctx)
	case CommandClients:
		return s.handleClients(ctx)
	case CommandMonitors:
		return s.handleMonitors(ctx)
	case CommandDispatch:
		return s.handleDispatch(ctx, req.Payload)
	case CommandReload:
		return s.handleReload(ctx)
	case CommandClick:
		return s.handleClick(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func (s *Server) handleStatus(ctx context.Context) *Response {
	var data StatusData
	err := s.ctl.Do(ctx, func(m *wm.Manager) error {
		data.Monitors = m.Status()
		data.ClientCount = len(m.Clients())
		data.Tags = m.Config().TagSpace().Labels()
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("status: %v", err))
	}
	data.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	return ok(data)
}

func (s *Server) handleClients(ctx context.Context) *Response {
	var data ClientsData
	err := s.ctl.Do(ctx, func(m *wm.Manager) error {
		data.Clients = m.ClientInfos()
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("clients: %v", err))
	}
	return ok(data)
}

func (s *Server) handleMonitors(ctx context.Context) *Response {
	var data MonitorsData
	err := s.ctl.Do(ctx, func(m *wm.Manager) error {
		data.Monitors = m.MonitorInfos()
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("monitors: %v", err))
	}
	return ok(data)
}

func (s *Server) handleDispatch(ctx context.Context, payload json.RawMessage) *Response {
	var req DispatchPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("invalid dispatch payload: %v", err))
	}
	action, err := bindings.ParseAction(req.Action)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("dispatch: %v", err))
	}
	s.logger.Info("IPC dispatch", "action", req.Action)
	if err := s.ctl.Do(ctx, func(m *wm.Manager) error {
		return m.Dispatch(action)
	}); err != nil {
		return NewErrorResponse(fmt.Sprintf("dispatch: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleClick(ctx context.Context, payload json.RawMessage) *Response {
	var req ClickPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("invalid click payload: %v", err))
	}
	click, err := bindings.ParseClick(req.Click)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("click: %v", err))
	}
	button, err := bindings.ParseButton(req.Button)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("click: %v", err))
	}
	if click == bindings.ClickTagBar && req.Tag < 1 {
		return NewErrorResponse("click: tag-bar clicks need a tag number")
	}

	var data ClickData
	err = s.ctl.Do(ctx, func(m *wm.Manager) error {
		mods, err := bindings.ParseMods(req.Mods, m.Config().ModKey)
		if err != nil {
			return err
		}
		data.Consumed, err = m.BarClick(req.Monitor, click, mods, button, req.Tag-1)
		return err
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("click: %v", err))
	}
	return ok(data)
}

func (s *Server) handleReload(ctx context.Context) *Response {
	if s.reloader == nil {
		return NewErrorResponse("reload is not available")
	}
	if err := s.reloader.Reload(ctx, "ipc request"); err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(nil)
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("failed to send IPC response", "error", err)
	}
}

func ok(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
