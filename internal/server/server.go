package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cruciblehq/provision/internal"
	"github.com/cruciblehq/provision/internal/paths"
	"github.com/cruciblehq/provision/internal/protocol"
	"github.com/cruciblehq/provision/internal/target"
)

const (

	// Group name used to grant socket access. Members of this group can
	// connect to the daemon socket without owning the process.
	socketGroup = internal.Name

	// File mode applied to the Unix socket. Owner and group get read-write
	// (required for connect); others get no access.
	socketMode = 0660
)

// Holds server configuration.
type Config struct {
	SocketPath string        // Override for the Unix socket path. Empty uses the default.
	Engine     target.Engine // Engine builds run against. Closed by [Server.Stop].
	EngineName string        // Engine name reported by status.
	Output     string        // Base output directory for builds that do not name one.
}

// Listens on a Unix domain socket and dispatches commands.
type Server struct {
	socketPath string        // Path to the Unix socket file.
	pidPath    string        // Path to the PID file, next to the socket.
	engine     target.Engine // Engine builds run against.
	engineName string        // Engine name reported by status.
	output     string        // Base output directory.
	listener   net.Listener  // Listener for incoming connections.
	startedAt  time.Time     // Timestamp when the server started.
	builds     int           // Total number of successful builds.
	done       chan struct{} // Channel to signal server shutdown.
	stopOnce   sync.Once     // Guards the shutdown sequence.
	mu         sync.Mutex    // Mutex to protect shared state.
	buildMu    sync.Mutex    // Serializes builds on the engine.
}

// Creates a new server instance.
//
// The socket is not opened until [Start] is called.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("%w: no engine configured", ErrServer)
	}

	socketPath := cfg.SocketPath
	if socketPath == "" {
		socketPath = paths.Socket()
	}

	return &Server{
		socketPath: socketPath,
		pidPath:    strings.TrimSuffix(socketPath, filepath.Ext(socketPath)) + ".pid",
		engine:     cfg.Engine,
		engineName: cfg.EngineName,
		output:     cfg.Output,
		done:       make(chan struct{}),
	}, nil
}

// Opens the Unix socket and begins accepting connections.
func (s *Server) Start() error {
	listener, err := listen(s.socketPath)
	if err != nil {
		return err
	}

	s.listener = listener
	s.startedAt = time.Now()

	if err := s.writePID(); err != nil {
		slog.Warn("failed to write PID file", "error", err)
	}

	slog.Info("server listening on socket", "path", s.socketPath)

	go s.accept()
	return nil
}

// Creates the Unix socket listener, removes any stale socket from a previous
// run, and applies permissions.
func listen(socketPath string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}

	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to listen on %s: %w", ErrServer, socketPath, err)
	}

	if err := setSocketPermissions(socketPath); err != nil {
		listener.Close()
		return nil, err
	}

	return listener, nil
}

// Restricts socket access to owner and group. Any user in the provision
// group can also connect.
func setSocketPermissions(socketPath string) error {
	if err := os.Chmod(socketPath, socketMode); err != nil {
		return fmt.Errorf("%w: failed to chmod socket %s: %w", ErrServer, socketPath, err)
	}

	if g, err := user.LookupGroup(socketGroup); err == nil {
		if gid, err := strconv.Atoi(g.Gid); err == nil {
			if err := os.Chown(socketPath, -1, gid); err != nil {
				slog.Warn("failed to chgrp socket", "group", socketGroup, "error", err)
			}
		}
	} else {
		slog.Debug("socket group not found, socket accessible to owner only", "group", socketGroup)
	}

	return nil
}

// Shuts down the server and cleans up resources. Calling Stop more than once
// is safe.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)

		if s.listener != nil {
			s.listener.Close()
		}

		// Wait for a running build to release the engine.
		s.buildMu.Lock()
		s.engine.Close()
		s.buildMu.Unlock()

		os.Remove(s.socketPath)
		os.Remove(s.pidPath)
	})
	return nil
}

// Blocks until the server stops.
func (s *Server) Wait() {
	<-s.done
}

// Returns a channel that is closed when the server stops.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Accepts connections in a loop until the server shuts down.
func (s *Server) accept() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				slog.Error("accept error", "error", err)
				continue
			}
		}

		go s.handle(conn)
	}
}

// Processes a single connection.
//
// Reads one newline-delimited JSON message, dispatches the command, and
// writes the response. The connection is closed after one exchange.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	line, err := reader.ReadBytes('\n')
	if err != nil {
		slog.Error("read error", "error", err)
		return
	}

	env, payload, err := protocol.Decode(line)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	slog.Info("command received", "command", env.Command)

	ctx, cancel := contextWithDisconnect(context.Background(), reader)
	defer cancel()

	s.dispatch(ctx, conn, env.Command, payload)
}

// Routes a command to the appropriate handler.
func (s *Server) dispatch(ctx context.Context, conn net.Conn, cmd protocol.Command, payload json.RawMessage) {
	switch cmd {
	case protocol.CmdBuild:
		s.handleBuild(ctx, conn, payload)
	case protocol.CmdStatus:
		s.handleStatus(conn)
	case protocol.CmdShutdown:
		s.handleShutdown(conn)
	default:
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{
			Message: fmt.Sprintf("unknown command: %s", cmd),
		})
	}
}

// Writes a JSON envelope response to the connection.
func (s *Server) respond(conn net.Conn, cmd protocol.Command, payload any) {
	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}

// Writes the daemon PID next to the socket so clients can detect whether
// the daemon is already running and send it signals.
func (s *Server) writePID() error {
	return os.WriteFile(s.pidPath, []byte(strconv.Itoa(os.Getpid())), paths.DefaultFileMode)
}

// Returns a derived context that is cancelled when the remote end of the
// connection closes.
//
// Detection works by reading from r in a background goroutine. The read blocks
// until the peer closes the connection, at which point it returns an error and
// the derived context is cancelled. The caller must ensure that no further data
// is expected on r for the lifetime of the returned context. If data arrives
// unexpectedly, it will be discarded and the context will be cancelled
// prematurely. The returned [context.CancelFunc] must always be called to
// release resources, even if the connection closes on its own.
func contextWithDisconnect(parent context.Context, r io.Reader) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		buf := make([]byte, 1)
		r.Read(buf)
		cancel()
	}()

	return ctx, cancel
}
