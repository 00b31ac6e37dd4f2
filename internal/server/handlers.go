package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/cruciblehq/provision/internal"
	"github.com/cruciblehq/provision/internal/pipeline"
	"github.com/cruciblehq/provision/internal/protocol"
	"github.com/cruciblehq/provision/internal/recipe"
)

// Handles a build command.
//
// Loads the recipe for the requested context and runs the pipeline against
// the server's engine. Builds are serialized; a request waits for the
// running build to finish.
func (s *Server) handleBuild(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.BuildRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	rcp, err := recipe.Find(req.Context, req.Recipe)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	output := req.Output
	if output == "" && s.output != "" {
		output = filepath.Join(s.output, rcp.Name)
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	select {
	case <-s.done:
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: "server is shutting down"})
		return
	default:
	}

	result, err := pipeline.Run(ctx, s.engine, pipeline.Options{
		Recipe:  rcp,
		Context: req.Context,
		Output:  output,
		Tag:     req.Tag,
	})
	if err != nil {
		res := &protocol.ErrorResult{Message: err.Error()}
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			res.Stage = stageErr.Stage
		}
		slog.Error("build failed", "context", req.Context, "error", err)
		s.respond(conn, protocol.CmdError, res)
		return
	}

	s.mu.Lock()
	s.builds++
	s.mu.Unlock()

	s.respond(conn, protocol.CmdOK, result)
}

// Handles a status command.
func (s *Server) handleStatus(conn net.Conn) {
	s.mu.Lock()
	builds := s.builds
	s.mu.Unlock()

	uptime := time.Since(s.startedAt).Truncate(time.Second)

	s.respond(conn, protocol.CmdOK, &protocol.StatusResult{
		Running: true,
		Version: internal.VersionString(),
		Engine:  s.engineName,
		Pid:     os.Getpid(),
		Uptime:  uptime.String(),
		Builds:  builds,
	})
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}
