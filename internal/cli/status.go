package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/provision/internal/paths"
	"github.com/cruciblehq/provision/internal/protocol"
)

// Represents the 'provision status' command.
type StatusCmd struct {
	Socket string `short:"s" placeholder:"PATH" help:"Override the default Unix socket path."`
}

// Executes the status command.
func (c *StatusCmd) Run(ctx context.Context) error {
	var status protocol.StatusResult
	if err := protocol.Request(ctx, socketPath(c.Socket), protocol.CmdStatus, nil, &status); err != nil {
		return err
	}

	fmt.Printf("version: %s\nengine:  %s\npid:     %d\nuptime:  %s\nbuilds:  %d\n",
		status.Version, status.Engine, status.Pid, status.Uptime, status.Builds)
	return nil
}

// Represents the 'provision stop' command.
type StopCmd struct {
	Socket string `short:"s" placeholder:"PATH" help:"Override the default Unix socket path."`
}

// Executes the stop command.
func (c *StopCmd) Run(ctx context.Context) error {
	return protocol.Request(ctx, socketPath(c.Socket), protocol.CmdShutdown, nil, nil)
}

// Returns path, or the default socket path when it is empty.
func socketPath(path string) string {
	if path == "" {
		return paths.Socket()
	}
	return path
}
