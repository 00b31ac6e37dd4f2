package runtime

import (
	"context"
	"io"
)

// Creates a directory inside the container, including parents.
func (c *Container) MkdirAll(ctx context.Context, path string) error {
	return c.mustExec(ctx, "mkdir", nil, "mkdir", "-p", path)
}

// Copies a tar stream into the container's filesystem.
//
// The contents of r are extracted into destDir by piping them to "tar xf - -C
// destDir" inside the container.
func (c *Container) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	return c.mustExec(ctx, "tar extract", r, "tar", "xf", "-", "-C", destDir)
}

// Helper method that runs a command inside the container, returning an error
// that includes desc if the process exits with a non-zero code.
func (c *Container) mustExec(ctx context.Context, desc string, stdin io.Reader, args ...string) error {
	exitCode, stderr, err := c.execCommand(ctx, stdin, nil, nil, "", args...)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return wrapf("%s failed with exit code %d (%s)", desc, exitCode, stderr)
	}
	return nil
}
