package docker

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/cruciblehq/provision/internal/target"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

// Interval between polls for the exit code of a finished exec.
const inspectInterval = 50 * time.Millisecond

// Runs command through "shell -c" inside the container.
//
// Standard output and error are captured separately. A non-zero exit code
// is reported in the result, not as an error.
func (c *Container) Exec(ctx context.Context, shell, command string, env []string, workdir string) (*target.ExecResult, error) {
	var stdout, stderr bytes.Buffer

	exitCode, err := c.exec(ctx, []string{shell, "-c", command}, env, workdir, &stdout, &stderr)
	if err != nil {
		return nil, err
	}

	slog.Debug("exec", "command", command, "exit", exitCode)

	return &target.ExecResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// Creates a directory inside the container, including parents.
func (c *Container) MkdirAll(ctx context.Context, path string) error {
	var stderr bytes.Buffer
	exitCode, err := c.exec(ctx, []string{"mkdir", "-p", path}, nil, "", io.Discard, &stderr)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return wrapf("mkdir failed with exit code %d (%s)", exitCode, stderr.String())
	}
	return nil
}

// Extracts a tar stream into destDir inside the container.
func (c *Container) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	if err := c.client.CopyToContainer(ctx, c.id, destDir, r, container.CopyToContainerOptions{}); err != nil {
		return wrap(err)
	}
	return nil
}

// Runs args in the container, demultiplexing the attached output into stdout
// and stderr. Returns the exit code.
func (c *Container) exec(ctx context.Context, args, env []string, workdir string, stdout, stderr io.Writer) (int, error) {
	created, err := c.client.ContainerExecCreate(ctx, c.id, container.ExecOptions{
		Cmd:          args,
		Env:          env,
		WorkingDir:   workdir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return 0, wrap(err)
	}

	resp, err := c.client.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return 0, wrap(err)
	}
	defer resp.Close()

	if _, err := stdcopy.StdCopy(stdout, stderr, resp.Reader); err != nil {
		return 0, wrap(err)
	}

	return c.exitCode(ctx, created.ID)
}

// Waits for an exec to be reported as finished and returns its exit code.
//
// The attached stream closes when the process exits, but the daemon may
// still report the exec as running for a short while.
func (c *Container) exitCode(ctx context.Context, execID string) (int, error) {
	for {
		inspect, err := c.client.ContainerExecInspect(ctx, execID)
		if err != nil {
			return 0, wrap(err)
		}
		if !inspect.Running {
			return inspect.ExitCode, nil
		}

		select {
		case <-ctx.Done():
			return 0, wrap(ctx.Err())
		case <-time.After(inspectInterval):
		}
	}
}
