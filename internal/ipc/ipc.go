// Package ipc is the local control channel between the cliprecall CLI and
// a running daemon: one JSON request and one JSON response per connection
// over a Unix domain socket.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrDaemonUnavailable is returned when no daemon is listening on the socket.
var ErrDaemonUnavailable = errors.New("daemon is not running")

const connTimeout = 10 * time.Second

// Handler answers one request.
type Handler func(ctx context.Context, req *Request) *Response

// Server serves IPC requests on a Unix socket.
type Server struct {
	socketPath string
	handler    Handler
	logger     *zap.Logger
}

func NewServer(socketPath string, handler Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{socketPath: socketPath, handler: handler, logger: logger}
}

// Listen creates the socket, removing a stale one left by a crashed run.
func Listen(socketPath string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}
	if IsRunning(socketPath) {
		return nil, fmt.Errorf("another daemon is already listening on %s", socketPath)
	}
	_ = os.Remove(socketPath)
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on socket: %w", err)
	}
	return ln, nil
}

// ListenAndServe listens on the server's socket and serves until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := Listen(s.socketPath)
	if err != nil {
		return err
	}
	defer os.Remove(s.socketPath)
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then closes ln and waits
// for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("IPC server listening", zap.String("socket", ln.Addr().String()))

	var wg sync.WaitGroup
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				wg.Wait()
				return err
			}
			s.logger.Debug("IPC accept failed", zap.Error(err))
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(connTimeout))

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	var req Request
	if err := dec.Decode(&req); err != nil {
		_ = enc.Encode(Errorf("invalid request: %v", err))
		return
	}

	s.logger.Debug("IPC request", zap.String("command", req.Command))
	resp := s.safeHandle(ctx, &req)
	if err := enc.Encode(resp); err != nil {
		s.logger.Debug("Failed to write IPC response", zap.Error(err))
	}
}

func (s *Server) safeHandle(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("IPC handler panicked",
				zap.String("command", req.Command),
				zap.Any("panic", r))
			resp = Errorf("internal error handling %q", req.Command)
		}
	}()
	resp = s.handler(ctx, req)
	if resp == nil {
		resp = Errorf("no response for %q", req.Command)
	}
	return resp
}

// SendRequest connects to the daemon, sends a request, and returns the response.
func SendRequest(ctx context.Context, socketPath string, req *Request) (*Response, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(connTimeout)
	}
	_ = conn.SetDeadline(deadline)

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// IsRunning reports whether something is accepting connections on the
// socket. No data is exchanged.
func IsRunning(socketPath string) bool {
	c, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}
