package cli

import (
	"context"
	"log/slog"

	"github.com/cruciblehq/provision/internal/server"
	"github.com/cruciblehq/provision/internal/settings"
)

// Represents the 'provision serve' command.
type ServeCmd struct {
	Socket string `short:"s" placeholder:"PATH" help:"Override the default Unix socket path."`
}

// Executes the serve command.
//
// Starts the build daemon on a Unix domain socket and blocks until the
// context is cancelled (e.g. via SIGINT or SIGTERM) or a client requests a
// shutdown.
func (c *ServeCmd) Run(ctx context.Context, s *settings.Settings) error {
	engine, err := openEngine(s)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		SocketPath: c.Socket,
		Engine:     engine,
		EngineName: s.Engine,
		Output:     s.Output,
	})
	if err != nil {
		engine.Close()
		return err
	}

	if err := srv.Start(); err != nil {
		engine.Close()
		return err
	}

	slog.Info("provision daemon is running", "engine", s.Engine)

	select {
	case <-ctx.Done():
	case <-srv.Done():
	}

	slog.Info("shutting down")
	return srv.Stop()
}
